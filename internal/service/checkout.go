package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vuongnd/learnify/internal/models"
	"github.com/vuongnd/learnify/internal/payment"
)

type SettlementConfig struct {
	// InstructorShare is the fixed seller revenue-share ratio, e.g. 0.70.
	InstructorShare float64
}

type PaymentService struct {
	db       *gorm.DB
	cart     CartStore
	registry *payment.Registry
	notifier *Notifier
	logger   *zap.Logger
	cfg      SettlementConfig
}

func NewPaymentService(db *gorm.DB, cart CartStore, registry *payment.Registry, notifier *Notifier, logger *zap.Logger, cfg SettlementConfig) *PaymentService {
	return &PaymentService{
		db:       db,
		cart:     cart,
		registry: registry,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
	}
}

type CheckoutResult struct {
	OrderID     string
	RedirectURL string
	Amount      int64
}

// Checkout prices the caller's stored cart server-side, applies an optional
// coupon, initiates the gateway payment and records the pending ledger entry.
// The ledger write happens after a successful initiation (a gateway failure
// leaves the cart untouched and writes nothing) but before the redirect URL
// is returned, so a callback arriving right after the redirect always finds
// its entry.
func (s *PaymentService) Checkout(ctx context.Context, userID uuid.UUID, provider, couponCode, ipAddress, returnURL string) (*CheckoutResult, error) {
	strategy, err := s.registry.Get(provider)
	if err != nil {
		return nil, err
	}

	courseIDs, err := s.cart.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	if len(courseIDs) == 0 {
		return nil, ErrEmptyCart
	}

	var courses []models.Course
	if err := s.db.WithContext(ctx).Where("id IN ?", courseIDs).Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	if len(courses) == 0 {
		return nil, ErrEmptyCart
	}

	var total int64
	for _, course := range courses {
		total += course.Price
	}

	var appliedCode string
	var discount int64
	if couponCode != "" {
		cd, err := EvaluateCoupon(s.db.WithContext(ctx), couponCode, courses, time.Now())
		if err != nil {
			return nil, err
		}
		appliedCode = cd.Coupon.Code
		discount = cd.Amount
	}

	total -= discount
	if total < 0 {
		total = 0
	}

	orderID := fmt.Sprintf("ORD-%d", time.Now().UnixNano())
	description := fmt.Sprintf("Thanh toan don hang %s", orderID)

	result, err := strategy.Initiate(ctx, payment.InitiateRequest{
		Amount:      total,
		OrderID:     orderID,
		Description: description,
		ReturnURL:   returnURL,
		IPAddress:   ipAddress,
	})
	if err != nil {
		return nil, err
	}

	items := make([]models.TransactionItem, 0, len(courses))
	for _, course := range courses {
		items = append(items, models.TransactionItem{
			CourseID:     course.ID,
			InstructorID: course.InstructorID,
			Price:        course.Price,
		})
	}

	transaction := models.Transaction{
		OrderID:        orderID,
		Provider:       provider,
		UserID:         userID,
		Items:          items,
		Amount:         total,
		Currency:       "VND",
		Status:         models.TransactionPending,
		GatewayOrderID: result.GatewayOrderID,
		RedirectURL:    result.RedirectURL,
		CouponCode:     appliedCode,
		DiscountAmount: discount,
	}
	if err := s.db.WithContext(ctx).Create(&transaction).Error; err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	s.logger.Info("payment initiated",
		zap.String("order_id", orderID),
		zap.String("provider", provider),
		zap.Int64("amount", total),
		zap.Int64("discount", discount),
		zap.String("user_id", userID.String()))

	return &CheckoutResult{
		OrderID:     orderID,
		RedirectURL: result.RedirectURL,
		Amount:      total,
	}, nil
}
