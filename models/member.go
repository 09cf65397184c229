package models

import "time"

// MemberStatus is the lifecycle state of a member in the directory.
type MemberStatus string

const (
	MemberActive    MemberStatus = "active"
	MemberInactive  MemberStatus = "inactive"
	MemberSuspended MemberStatus = "suspended"
)

// Valid reports whether s is one of the declared member statuses.
func (s MemberStatus) Valid() bool {
	switch s {
	case MemberActive, MemberInactive, MemberSuspended:
		return true
	}
	return false
}

// Member is the directory identity record (master database, Postgres).
// Members are never hard-deleted in normal operation; admins toggle Status
// instead. Deletion is supported but removes the linked User credential too.
type Member struct {
	ID         uint `gorm:"primaryKey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	NIM        string       `gorm:"column:nim;size:32;not null;uniqueIndex"`
	FullName   string       `gorm:"size:255;not null"`
	Email      string       `gorm:"size:255;not null;uniqueIndex"`
	Department string       `gorm:"size:255"`
	YearJoined int          `gorm:"not null"`
	Phone      string       `gorm:"size:64"`
	Status     MemberStatus `gorm:"size:16;not null;default:active;index"`
	User       *User        `gorm:"foreignKey:MemberID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
