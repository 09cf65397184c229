package directory

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"himakeu/models"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return NewStore(gdb), mock
}

func validRegistration() Registration {
	return Registration{
		NIM:        "2021001",
		FullName:   "Budi Santoso",
		Email:      "budi@kampus.ac.id",
		Department: "Teknik Informatika",
		YearJoined: 2021,
		Username:   "budi",
		Password:   "rahasia1",
	}
}

func TestRegistrationValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Registration)
		field  string
	}{
		{"missing nim", func(r *Registration) { r.NIM = "" }, "nim"},
		{"whitespace name", func(r *Registration) { r.FullName = "   " }, "fullName"},
		{"missing department", func(r *Registration) { r.Department = "" }, "department"},
		{"missing username", func(r *Registration) { r.Username = "" }, "username"},
		{"missing year", func(r *Registration) { r.YearJoined = 0 }, "yearJoined"},
		{"bad email", func(r *Registration) { r.Email = "not-an-email" }, "email"},
		{"bad email spaces", func(r *Registration) { r.Email = "a b@c.d" }, "email"},
		{"short password", func(r *Registration) { r.Password = "abc" }, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := validRegistration()
			tt.mutate(&reg)
			err := reg.Validate()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	reg := validRegistration()
	assert.NoError(t, reg.Validate())
}

func TestRegisterDuplicateMapsToErrDuplicate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "members"`).
		WillReturnError(&pq.Error{Code: "23505", Message: `duplicate key value violates unique constraint "idx_members_nim"`})
	mock.ExpectRollback()

	_, err := store.Register(context.Background(), validRegistration())
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterInvalidInputNoIO(t *testing.T) {
	store, mock := newMockStore(t)

	reg := validRegistration()
	reg.Email = "nope"
	_, err := store.Register(context.Background(), reg)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthenticateWrongPassword(t *testing.T) {
	store, mock := newMockStore(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia1"), bcrypt.MinCost)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "member_id", "username", "password_hash", "role"}).
		AddRow(1, 7, "budi", hash, models.RoleMember)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnRows(rows)

	_, _, err = store.Authenticate(context.Background(), "budi", "salah")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthenticateUnknownUser(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := store.Authenticate(context.Background(), "siapa", "apa")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateStampsLastLogin(t *testing.T) {
	store, mock := newMockStore(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia1"), bcrypt.MinCost)
	require.NoError(t, err)

	userRows := sqlmock.NewRows([]string{"id", "member_id", "username", "password_hash", "role"}).
		AddRow(1, 7, "budi", hash, models.RoleMember)
	memberRows := sqlmock.NewRows([]string{"id", "nim", "full_name", "status"}).
		AddRow(7, "2021001", "Budi Santoso", "active")
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnRows(userRows)
	mock.ExpectQuery(`SELECT \* FROM "members" WHERE "members"."id" = \$1`).
		WillReturnRows(memberRows)
	mock.ExpectExec(`UPDATE "users" SET "last_login"=\$1`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user, member, err := store.Authenticate(context.Background(), "budi", "rahasia1")
	require.NoError(t, err)
	assert.Equal(t, "budi", user.Username)
	assert.Equal(t, uint(7), member.ID)
	require.NotNil(t, user.LastLogin)
	assert.WithinDuration(t, time.Now(), *user.LastLogin, time.Minute)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	store, mock := newMockStore(t)

	// validation happens before any query
	err := store.UpdateStatus(context.Background(), 7, models.MemberStatus("banned"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE "members" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.UpdateStatus(context.Background(), 99, models.MemberSuspended)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRemovesCredentialBeforeMember(t *testing.T) {
	store, mock := newMockStore(t)

	memberRows := sqlmock.NewRows([]string{"id", "nim", "full_name", "status"}).
		AddRow(7, "2021001", "Budi Santoso", "active")
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "members" WHERE "members"."id" = \$1`).
		WillReturnRows(memberRows)
	mock.ExpectExec(`DELETE FROM "users" WHERE member_id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "members" WHERE "members"."id" = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.Delete(context.Background(), 7)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUnknownMember(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "members" WHERE "members"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := store.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(assert.AnError))
}
