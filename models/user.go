package models

import "time"

// Roles stored on the credential row. The master data keeps roles as a plain
// column; there is no separate roles table.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User is the login credential, one-to-one with a Member (master database).
// It is created alongside the Member at registration and only mutated on
// login (LastLogin); the transaction workflow never touches it.
type User struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MemberID     uint   `gorm:"uniqueIndex;not null"`
	Username     string `gorm:"size:255;not null;unique"`
	PasswordHash []byte `gorm:"not null"`
	Role         string `gorm:"size:16;not null;default:member"`
	LastLogin    *time.Time
}
