package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vuongnd/learnify/internal/models"
)

type CouponDiscount struct {
	Coupon *models.Coupon
	Amount int64
}

// EvaluateCoupon validates a code against the priced cart. The check order
// matters for user-facing messages: existence/active first, then expiry,
// then applicability to a course actually in the cart.
func EvaluateCoupon(db *gorm.DB, code string, courses []models.Course, now time.Time) (*CouponDiscount, error) {
	var coupon models.Coupon
	err := db.Where("code = ? AND is_active = ?", strings.ToUpper(strings.TrimSpace(code)), true).
		First(&coupon).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}

	if now.After(coupon.ExpiryDate) {
		return nil, ErrCouponExpired
	}

	var bound *models.Course
	for i := range courses {
		if courses[i].ID == coupon.CourseID {
			bound = &courses[i]
			break
		}
	}
	if bound == nil {
		return nil, ErrCouponNotApplicable
	}

	discount := decimal.NewFromInt(bound.Price).
		Mul(decimal.NewFromInt(int64(coupon.DiscountPercent))).
		Div(decimal.NewFromInt(100)).
		Floor().IntPart()

	// The bound course's contribution never goes negative.
	if discount > bound.Price {
		discount = bound.Price
	}
	if discount < 0 {
		discount = 0
	}

	return &CouponDiscount{Coupon: &coupon, Amount: discount}, nil
}
