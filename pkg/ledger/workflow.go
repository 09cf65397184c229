package ledger

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"himakeu/models"
)

// Decision actions. Matching is case-sensitive: "Approve" is rejected.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Decide moves a pending income transaction to approved or rejected on behalf
// of an admin. Role enforcement happens at the HTTP boundary; this layer
// trusts adminID and only guards the state machine:
//
//	pending -> approved | rejected
//
// Any other current status returns ErrInvalidTransition. The UPDATE repeats
// the status guard in its WHERE clause, so two concurrent decisions cannot
// both win. Each successful call appends a TransactionDecision audit row in
// the same database transaction.
func (s *Store) Decide(ctx context.Context, transactionID, action, notes string, adminID uint) (models.TransactionStatus, error) {
	var target models.TransactionStatus
	switch action {
	case ActionApprove:
		target = models.StatusApproved
	case ActionReject:
		target = models.StatusRejected
	default:
		return "", ErrInvalidAction
	}

	now := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.Transaction
		if err := tx.Where("transaction_id = ?", transactionID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if row.Status != models.StatusPending {
			return ErrInvalidTransition
		}

		res := tx.Model(&models.Transaction{}).
			Where("transaction_id = ? AND status = ?", transactionID, models.StatusPending).
			Updates(map[string]interface{}{
				"status":      target,
				"notes":       notes,
				"approved_by": adminID,
				"approved_at": now,
				"updated_at":  now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// lost the race to another decision
			return ErrInvalidTransition
		}

		dec := models.TransactionDecision{
			TransactionID: transactionID,
			Action:        action,
			FromStatus:    row.Status,
			ToStatus:      target,
			AdminID:       adminID,
			Notes:         notes,
		}
		return tx.Create(&dec).Error
	})
	if err != nil {
		return "", err
	}
	return target, nil
}
