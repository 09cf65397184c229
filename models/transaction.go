package models

import "time"

// TransactionType distinguishes money in from money out.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// TransactionStatus is the approval lifecycle of a ledger row. Only income
// rows submitted by members ever sit in pending; admin expenses are inserted
// already approved.
type TransactionStatus string

const (
	StatusPending  TransactionStatus = "pending"
	StatusApproved TransactionStatus = "approved"
	StatusRejected TransactionStatus = "rejected"
)

// Transaction is a ledger entry (transactions database, MySQL). The member
// reference points into the master database; there is no cross-database
// foreign key, so the reconciler checks it instead.
type Transaction struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	TransactionID string            `gorm:"size:64;not null;uniqueIndex"`
	MemberID      uint              `gorm:"index;not null"`
	Type          TransactionType   `gorm:"column:transaction_type;size:16;not null"`
	Amount        int64             `gorm:"not null"` // whole rupiah
	Period        string            `gorm:"size:16;index"`
	Description   string            `gorm:"size:512"`
	ReceiptURL    string            `gorm:"size:512"`
	OCRAmount     *int64            `gorm:"column:ocr_amount"` // amount hint scanned from the receipt
	Status        TransactionStatus `gorm:"size:16;not null;default:pending;index"`
	Notes         string            `gorm:"size:512"`
	CreatedBy     uint              `gorm:"not null"`
	ApprovedBy    *uint             `gorm:"index"`
	ApprovedAt    *time.Time
	// Set by the reconciler when a row references a missing member or a
	// missing receipt file. Kept instead of deleted so admins can review.
	Flagged    bool   `gorm:"default:false;index"`
	FlagReason string `gorm:"size:255"`
}
