package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vuongnd/learnify/internal/models"
)

// TotalEarned sums an instructor's settlement earnings across all paid
// transactions.
func (s *PaymentService) TotalEarned(ctx context.Context, instructorID uuid.UUID) (int64, error) {
	return s.sumEarned(s.db.WithContext(ctx), instructorID)
}

// AvailableBalance is lifetime earnings minus amounts reserved by payout
// requests that are pending or approved. Pending requests count as reserved
// so a request awaiting review cannot be double-withdrawn.
func (s *PaymentService) AvailableBalance(ctx context.Context, instructorID uuid.UUID) (int64, error) {
	db := s.db.WithContext(ctx)

	earned, err := s.sumEarned(db, instructorID)
	if err != nil {
		return 0, err
	}
	reserved, err := s.sumReserved(db, instructorID)
	if err != nil {
		return 0, err
	}
	return earned - reserved, nil
}

func (s *PaymentService) sumEarned(db *gorm.DB, instructorID uuid.UUID) (int64, error) {
	var earned int64
	err := db.Model(&models.Earning{}).
		Where("instructor_id = ?", instructorID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&earned).Error
	if err != nil {
		return 0, fmt.Errorf("sum earnings: %w", err)
	}
	return earned, nil
}

func (s *PaymentService) sumReserved(db *gorm.DB, instructorID uuid.UUID) (int64, error) {
	var reserved int64
	err := db.Model(&models.PayoutRequest{}).
		Where("instructor_id = ? AND status IN ?", instructorID,
			[]models.PayoutStatus{models.PayoutPending, models.PayoutApproved}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&reserved).Error
	if err != nil {
		return 0, fmt.Errorf("sum reserved payouts: %w", err)
	}
	return reserved, nil
}

type BankInfo struct {
	BankName      string
	AccountNumber string
	AccountName   string
	Note          string
}

// RequestPayout creates a withdrawal request. The balance check and the
// insert run in one serializable transaction so concurrent requests cannot
// both pass the check and overdraw the balance.
func (s *PaymentService) RequestPayout(ctx context.Context, instructorID uuid.UUID, amount int64, bank BankInfo) (*models.PayoutRequest, error) {
	var request *models.PayoutRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pendingCount int64
		err := tx.Model(&models.PayoutRequest{}).
			Where("instructor_id = ? AND status = ?", instructorID, models.PayoutPending).
			Count(&pendingCount).Error
		if err != nil {
			return fmt.Errorf("count pending payouts: %w", err)
		}
		if pendingCount > 0 {
			return ErrPayoutPending
		}

		earned, err := s.sumEarned(tx, instructorID)
		if err != nil {
			return err
		}
		reserved, err := s.sumReserved(tx, instructorID)
		if err != nil {
			return err
		}
		if amount > earned-reserved {
			return ErrInsufficientBalance
		}

		request = &models.PayoutRequest{
			InstructorID:  instructorID,
			Amount:        amount,
			BankName:      bank.BankName,
			AccountNumber: bank.AccountNumber,
			AccountName:   bank.AccountName,
			Note:          bank.Note,
			Status:        models.PayoutPending,
		}
		return tx.Create(request).Error
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payout requested",
		zap.String("payout_id", request.ID.String()),
		zap.String("instructor_id", instructorID.String()),
		zap.Int64("amount", amount))
	return request, nil
}

// ProcessPayout moves a pending request to approved or rejected. Approval
// re-verifies that total reserved amounts still fit inside total earnings,
// so a payout chain can never drive the available balance negative.
func (s *PaymentService) ProcessPayout(ctx context.Context, payoutID uuid.UUID, approve bool, adminComment string) (*models.PayoutRequest, error) {
	var request models.PayoutRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, "id = ?", payoutID).Error; err != nil {
			return err
		}
		if request.Status != models.PayoutPending {
			return ErrPayoutProcessed
		}

		if approve {
			earned, err := s.sumEarned(tx, request.InstructorID)
			if err != nil {
				return err
			}
			reserved, err := s.sumReserved(tx, request.InstructorID)
			if err != nil {
				return err
			}
			if reserved > earned {
				return ErrInsufficientBalance
			}
			request.Status = models.PayoutApproved
		} else {
			request.Status = models.PayoutRejected
		}

		now := time.Now()
		request.ProcessedAt = &now
		request.AdminComment = adminComment

		res := tx.Model(&models.PayoutRequest{}).
			Where("id = ? AND status = ?", payoutID, models.PayoutPending).
			Updates(map[string]interface{}{
				"status":        request.Status,
				"processed_at":  now,
				"admin_comment": adminComment,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPayoutProcessed
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payout processed",
		zap.String("payout_id", payoutID.String()),
		zap.String("status", string(request.Status)))
	return &request, nil
}
