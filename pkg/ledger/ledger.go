package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"himakeu/models"
)

// Store wraps the transactions database (MySQL). All money amounts are whole
// rupiah.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreatePending inserts a member-submitted income transaction awaiting admin
// approval. The receipt file must already be on disk; callers persist the
// file first so a failed write never leaves a ledger row pointing nowhere.
func (s *Store) CreatePending(ctx context.Context, memberID uint, amount int64, period, description, receiptURL string) (*models.Transaction, error) {
	txn := models.Transaction{
		TransactionID: NewTransactionID(PrefixPayment),
		MemberID:      memberID,
		Type:          models.TypeIncome,
		Amount:        amount,
		Period:        period,
		Description:   description,
		ReceiptURL:    receiptURL,
		Status:        models.StatusPending,
		CreatedBy:     memberID,
	}
	if err := s.db.WithContext(ctx).Create(&txn).Error; err != nil {
		if isDuplicateKey(err) {
			// id collision within one millisecond; retry once with a fresh id
			txn.ID = 0
			txn.TransactionID = NewTransactionID(PrefixPayment)
			if err2 := s.db.WithContext(ctx).Create(&txn).Error; err2 != nil {
				return nil, err2
			}
			return &txn, nil
		}
		return nil, err
	}
	return &txn, nil
}

// AddExpense inserts an admin expense. Expenses skip the approval workflow
// and land already approved with the acting admin as approver.
func (s *Store) AddExpense(ctx context.Context, adminID, memberID uint, amount int64, description string) (*models.Transaction, error) {
	now := time.Now()
	txn := models.Transaction{
		TransactionID: NewTransactionID(PrefixExpense),
		MemberID:      memberID,
		Type:          models.TypeExpense,
		Amount:        amount,
		Description:   description,
		Status:        models.StatusApproved,
		CreatedBy:     adminID,
		ApprovedBy:    &adminID,
		ApprovedAt:    &now,
	}
	if err := s.db.WithContext(ctx).Create(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// ByTransactionID fetches a single row by its generated id.
func (s *Store) ByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// PendingApprovals lists member income submissions waiting for a decision,
// oldest first so admins work the queue in order.
func (s *Store) PendingApprovals(ctx context.Context) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := s.db.WithContext(ctx).
		Where("status = ? AND transaction_type = ?", models.StatusPending, models.TypeIncome).
		Order("created_at asc").
		Find(&txns).Error
	return txns, err
}

// PendingCount counts rows with status pending.
func (s *Store) PendingCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("status = ?", models.StatusPending).
		Count(&n).Error
	return n, err
}

// HistoryForMember returns the member's income submissions, newest first.
func (s *Store) HistoryForMember(ctx context.Context, memberID uint) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := s.db.WithContext(ctx).
		Where("member_id = ? AND transaction_type = ?", memberID, models.TypeIncome).
		Order("created_at desc").
		Find(&txns).Error
	return txns, err
}

// Recent returns the latest ledger rows of any type and status.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	var txns []models.Transaction
	err := s.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&txns).Error
	return txns, err
}

// AttachOCRAmount stores the amount hint scanned from the receipt. Best
// effort: the row may already be decided, in which case the hint is still
// recorded for the audit trail.
func (s *Store) AttachOCRAmount(ctx context.Context, transactionID string, amount int64) error {
	return s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("transaction_id = ?", transactionID).
		Update("ocr_amount", amount).Error
}

// Flag marks a row found inconsistent by the reconciler.
func (s *Store) Flag(ctx context.Context, transactionID, reason string) error {
	return s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("transaction_id = ?", transactionID).
		Updates(map[string]interface{}{"flagged": true, "flag_reason": reason}).Error
}

// Unflagged returns rows the reconciler has not flagged yet, oldest first.
func (s *Store) Unflagged(ctx context.Context, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 500
	}
	var txns []models.Transaction
	err := s.db.WithContext(ctx).
		Where("flagged = ?", false).
		Order("created_at asc").
		Limit(limit).
		Find(&txns).Error
	return txns, err
}

// HasReceipt reports whether any ledger row references the given receipt URL.
func (s *Store) HasReceipt(ctx context.Context, receiptURL string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("receipt_url = ?", receiptURL).
		Count(&n).Error
	return n > 0, err
}

// DecisionsFor returns the append-only decision history of a transaction.
func (s *Store) DecisionsFor(ctx context.Context, transactionID string) ([]models.TransactionDecision, error) {
	var decs []models.TransactionDecision
	err := s.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("created_at asc").
		Find(&decs).Error
	return decs, err
}

// isDuplicateKey detects a MySQL duplicate-key error (1062). String matching
// stays as a fallback for wrapped driver errors.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}
