package models

import "time"

// TransactionDecision is one append-only audit row per approve/reject call.
// Rows are never updated or deleted; the latest one explains the current
// transaction status.
type TransactionDecision struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	TransactionID string            `gorm:"size:64;index;not null"`
	Action        string            `gorm:"size:16;not null"`
	FromStatus    TransactionStatus `gorm:"size:16;not null"`
	ToStatus      TransactionStatus `gorm:"size:16;not null"`
	AdminID       uint              `gorm:"not null"`
	Notes         string            `gorm:"size:512"`
}
