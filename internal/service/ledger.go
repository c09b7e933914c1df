package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vuongnd/learnify/internal/models"
)

type PaymentOutcome struct {
	Success bool
	OrderID string
	Message string
}

// HandleCallback verifies a provider callback and applies the resulting
// terminal transition to the ledger at most once. Lookups try both the
// internal order reference and the provider's own correlation reference,
// since some providers key their callbacks by their own token.
func (s *PaymentService) HandleCallback(ctx context.Context, provider string, params url.Values) (*PaymentOutcome, error) {
	strategy, err := s.registry.Get(provider)
	if err != nil {
		return nil, err
	}

	result, err := strategy.VerifyCallback(ctx, params)
	if err != nil {
		return nil, err
	}

	if !result.Valid {
		s.logger.Warn("untrusted payment callback dropped",
			zap.String("provider", provider),
			zap.String("reason", result.Message))
		return nil, ErrInvalidSignature
	}

	var transaction models.Transaction
	err = s.db.WithContext(ctx).Preload("Items").
		Where("order_id = ? OR gateway_order_id = ?", result.OrderID, result.OrderID).
		First(&transaction).Error
	if err != nil {
		// Only a confirmed miss is an orphan; a transient DB failure must not
		// show up in the orphan alerting signal.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("orphan payment callback",
				zap.String("provider", provider),
				zap.String("reference", result.OrderID))
			return nil, ErrOrphanCallback
		}
		return nil, fmt.Errorf("lookup transaction %s: %w", result.OrderID, err)
	}

	if transaction.Status != models.TransactionPending {
		// Terminal already. A replayed success callback returns the prior
		// outcome without re-running settlement.
		s.logger.Info("duplicate payment callback",
			zap.String("order_id", transaction.OrderID),
			zap.String("status", string(transaction.Status)))
		return &PaymentOutcome{
			Success: transaction.Status == models.TransactionPaid,
			OrderID: transaction.OrderID,
			Message: "Already processed",
		}, nil
	}

	newStatus := models.TransactionFailed
	if result.Success {
		newStatus = models.TransactionPaid
	}

	raw, _ := json.Marshal(params)
	updates := map[string]interface{}{
		"status":         newStatus,
		"gateway_txn_id": result.TransactionID,
		"raw_response":   datatypes.JSON(raw),
	}
	paidAt := time.Now()
	if newStatus == models.TransactionPaid {
		updates["paid_at"] = paidAt
	}

	// CAS on pending status serializes concurrent deliveries for the same
	// transaction; exactly one wins the transition.
	res := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND status = ?", transaction.ID, models.TransactionPending).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("transition transaction %s: %w", transaction.OrderID, res.Error)
	}
	if res.RowsAffected == 0 {
		// A concurrent delivery transitioned it first.
		var current models.Transaction
		if err := s.db.WithContext(ctx).First(&current, "id = ?", transaction.ID).Error; err != nil {
			return nil, fmt.Errorf("reload transaction %s: %w", transaction.OrderID, err)
		}
		return &PaymentOutcome{
			Success: current.Status == models.TransactionPaid,
			OrderID: current.OrderID,
			Message: "Already processed",
		}, nil
	}

	s.logger.Info("payment transitioned",
		zap.String("order_id", transaction.OrderID),
		zap.String("status", string(newStatus)),
		zap.String("gateway_txn_id", result.TransactionID))

	if newStatus == models.TransactionPaid {
		transaction.Status = models.TransactionPaid
		transaction.PaidAt = &paidAt
		s.settle(ctx, &transaction)
	}

	return &PaymentOutcome{
		Success: result.Success,
		OrderID: transaction.OrderID,
		Message: result.Message,
	}, nil
}
