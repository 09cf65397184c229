package directory

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"himakeu/models"
)

// Store wraps the master database (Postgres) holding members and their login
// credentials.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Registration is the input for creating a member plus credential pair.
type Registration struct {
	NIM        string
	FullName   string
	Email      string
	Department string
	YearJoined int
	Username   string
	Password   string
	Phone      string
	Role       string // defaults to member
}

var emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks the registration input without touching the database.
func (r *Registration) Validate() error {
	required := []struct{ field, value string }{
		{"nim", r.NIM},
		{"fullName", r.FullName},
		{"email", r.Email},
		{"department", r.Department},
		{"username", r.Username},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.field, Reason: "required"}
		}
	}
	if r.YearJoined == 0 {
		return &ValidationError{Field: "yearJoined", Reason: "required"}
	}
	if !emailRE.MatchString(r.Email) {
		return &ValidationError{Field: "email", Reason: "not a valid email address"}
	}
	if len(r.Password) < 6 {
		return &ValidationError{Field: "password", Reason: "must be at least 6 characters"}
	}
	return nil
}

// Register creates the Member and its User credential in one transaction.
// Duplicates are detected by the unique constraints, not by a prior existence
// check, so concurrent registrations cannot slip past.
func (s *Store) Register(ctx context.Context, reg Registration) (*models.Member, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	role := reg.Role
	if role == "" {
		role = models.RoleMember
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	member := models.Member{
		NIM:        strings.TrimSpace(reg.NIM),
		FullName:   strings.TrimSpace(reg.FullName),
		Email:      strings.TrimSpace(reg.Email),
		Department: strings.TrimSpace(reg.Department),
		YearJoined: reg.YearJoined,
		Phone:      strings.TrimSpace(reg.Phone),
		Status:     models.MemberActive,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		user := models.User{
			MemberID:     member.ID,
			Username:     strings.TrimSpace(reg.Username),
			PasswordHash: hash,
			Role:         role,
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &member, nil
}

// Authenticate verifies the credential and stamps last_login. The member
// record is returned alongside so callers can build the session.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*models.User, *models.Member, error) {
	username = strings.TrimSpace(username)
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	var member models.Member
	if err := s.db.WithContext(ctx).First(&member, user.MemberID).Error; err != nil {
		return nil, nil, err
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("last_login", now).Error; err != nil {
		return nil, nil, err
	}
	user.LastLogin = &now
	return &user, &member, nil
}

// MemberByID fetches a single member.
func (s *Store) MemberByID(ctx context.Context, id uint) (*models.Member, error) {
	var m models.Member
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// MemberExists reports whether the id resolves to a directory row. Used by
// the reconciler to cross-check ledger references.
func (s *Store) MemberExists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Member{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// MembersByIDs loads a batch of members keyed by id, for joining against
// ledger rows in application code (the two stores share no SQL engine).
func (s *Store) MembersByIDs(ctx context.Context, ids []uint) (map[uint]models.Member, error) {
	out := make(map[uint]models.Member, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var members []models.Member
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&members).Error; err != nil {
		return nil, err
	}
	for _, m := range members {
		out[m.ID] = m
	}
	return out, nil
}

// MemberAccount is a member row joined with its credential summary for the
// admin member list.
type MemberAccount struct {
	models.Member
	Username  string     `json:"username"`
	Role      string     `json:"role"`
	LastLogin *time.Time `json:"lastLogin"`
}

// Members lists every member with credential info, newest first.
func (s *Store) Members(ctx context.Context) ([]MemberAccount, error) {
	var out []MemberAccount
	err := s.db.WithContext(ctx).Model(&models.Member{}).
		Select("members.*, users.username, users.role, users.last_login").
		Joins("LEFT JOIN users ON users.member_id = members.id").
		Order("members.created_at desc").
		Scan(&out).Error
	return out, err
}

// CountMembers returns total and active member counts.
func (s *Store) CountMembers(ctx context.Context) (total, active int64, err error) {
	if err = s.db.WithContext(ctx).Model(&models.Member{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = s.db.WithContext(ctx).Model(&models.Member{}).
		Where("status = ?", models.MemberActive).
		Count(&active).Error; err != nil {
		return 0, 0, err
	}
	return total, active, nil
}

// UpdateStatus switches a member between active/inactive/suspended.
func (s *Store) UpdateStatus(ctx context.Context, id uint, status models.MemberStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	res := s.db.WithContext(ctx).Model(&models.Member{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the credential first, then the member, in one transaction.
// Irreversible; the ledger keeps its rows and the reconciler will flag them.
func (s *Store) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.Member
		if err := tx.First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("member_id = ?", id).Delete(&models.User{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Member{}, id).Error
	})
}

// isUniqueViolation detects a Postgres unique-constraint error (23505).
// String matching stays as a fallback for wrapped driver errors, same as the
// duplicate check on the ledger side.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint")
}
