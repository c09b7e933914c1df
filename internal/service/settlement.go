package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vuongnd/learnify/internal/models"
)

// AllocateShares splits the collected amount across items in proportion to
// their listed prices, rounding each share to a whole currency unit. A zero
// listed-price sum with a non-zero collected amount is a data inconsistency
// and allocates nothing rather than dividing by zero.
func AllocateShares(items []models.TransactionItem, collected int64) []int64 {
	shares := make([]int64, len(items))

	var listedSum int64
	for _, item := range items {
		listedSum += item.Price
	}
	if listedSum == 0 {
		return shares
	}

	total := decimal.NewFromInt(collected)
	sum := decimal.NewFromInt(listedSum)
	for i, item := range items {
		shares[i] = decimal.NewFromInt(item.Price).
			Mul(total).
			Div(sum).
			Round(0).IntPart()
	}
	return shares
}

// settle runs the post-payment side effects for a fresh pending->paid
// transition: earnings rows, enrollment activation, student counters, cart
// clearing and a best-effort receipt. The effects are independent; a partial
// failure is logged for reconciliation and never unwinds the paid status.
func (s *PaymentService) settle(ctx context.Context, transaction *models.Transaction) {
	if len(transaction.Items) == 0 {
		return
	}

	shares := AllocateShares(transaction.Items, transaction.Amount)
	ratio := decimal.NewFromFloat(s.cfg.InstructorShare)
	month := transaction.PaidAt.Format("2006-01")

	earnings := make([]models.Earning, 0, len(transaction.Items))
	for i, item := range transaction.Items {
		amount := decimal.NewFromInt(shares[i]).Mul(ratio).Round(0).IntPart()
		earnings = append(earnings, models.Earning{
			TransactionID: transaction.ID,
			CourseID:      item.CourseID,
			InstructorID:  item.InstructorID,
			Amount:        amount,
			Month:         month,
		})
	}
	if err := s.db.WithContext(ctx).Create(&earnings).Error; err != nil {
		s.logger.Error("settlement: recording earnings failed",
			zap.String("order_id", transaction.OrderID), zap.Error(err))
	}

	courseIDs := make([]uuid.UUID, 0, len(transaction.Items))
	courses := make([]models.Course, 0, len(transaction.Items))
	for _, item := range transaction.Items {
		courseIDs = append(courseIDs, item.CourseID)
		courses = append(courses, models.Course{ID: item.CourseID})
	}

	// Set union on the join table; re-processing must not duplicate rows.
	user := models.User{ID: transaction.UserID}
	if err := s.db.WithContext(ctx).Model(&user).
		Association("EnrolledCourses").Append(&courses); err != nil {
		s.logger.Error("settlement: enrollment activation failed",
			zap.String("order_id", transaction.OrderID), zap.Error(err))
	}

	if err := s.db.WithContext(ctx).Model(&models.Course{}).
		Where("id IN ?", courseIDs).
		UpdateColumn("total_students", gorm.Expr("total_students + ?", 1)).Error; err != nil {
		s.logger.Error("settlement: student counter increment failed",
			zap.String("order_id", transaction.OrderID), zap.Error(err))
	}

	if err := s.cart.Clear(ctx, transaction.UserID); err != nil {
		s.logger.Error("settlement: cart clear failed",
			zap.String("order_id", transaction.OrderID), zap.Error(err))
	}

	if s.notifier != nil {
		go s.notifier.SendReceipt(transaction)
	}
}
