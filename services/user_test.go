package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"meal-admin/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var userCols = []string{"id", "employee_code", "full_name", "password_hash", "role", "is_active", "created_at"}

func hashFor(t *testing.T, plain string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthenticate(t *testing.T) {
	hash := hashFor(t, "s3cret!")

	t.Run("valid password resets throttle", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectQuery(q("SELECT cooldown_until FROM login_throttle")).WithArgs("E100").
			WillReturnRows(sqlmock.NewRows([]string{"cooldown_until"}))
		mock.ExpectQuery(q("FROM users WHERE employee_code")).WithArgs("E100").
			WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(7), "E100", "Ann Lee", hash, "employee", true, time.Now()))
		mock.ExpectExec(q("INSERT INTO login_throttle")).WithArgs("E100").
			WillReturnResult(sqlmock.NewResult(0, 1))

		u, err := Authenticate(context.Background(), " E100 ", "s3cret!")
		require.NoError(t, err)
		assert.Equal(t, int64(7), u.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wrong password records failure", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectQuery(q("SELECT cooldown_until FROM login_throttle")).
			WillReturnRows(sqlmock.NewRows([]string{"cooldown_until"}))
		mock.ExpectQuery(q("FROM users WHERE employee_code")).
			WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(7), "E100", "Ann Lee", hash, "employee", true, time.Now()))
		mock.ExpectExec(q("fail_count = login_throttle.fail_count + 1")).WithArgs("E100").
			WillReturnResult(sqlmock.NewResult(0, 1))

		_, err := Authenticate(context.Background(), "E100", "nope")
		assert.ErrorIs(t, err, ErrInvalidLogin)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("account without password", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectQuery(q("SELECT cooldown_until FROM login_throttle")).
			WillReturnRows(sqlmock.NewRows([]string{"cooldown_until"}))
		mock.ExpectQuery(q("FROM users WHERE employee_code")).
			WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(7), "E100", "Ann Lee", nil, "employee", true, time.Now()))
		mock.ExpectExec(q("INSERT INTO login_throttle")).WillReturnResult(sqlmock.NewResult(0, 1))

		_, err := Authenticate(context.Background(), "E100", "anything")
		assert.ErrorIs(t, err, ErrInvalidLogin)
	})

	t.Run("throttled", func(t *testing.T) {
		mock := newMockDB(t)
		now := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
		fixClock(t, now)
		mock.ExpectQuery(q("SELECT cooldown_until FROM login_throttle")).
			WillReturnRows(sqlmock.NewRows([]string{"cooldown_until"}).AddRow(now.Add(10 * time.Second)))

		_, err := Authenticate(context.Background(), "E100", "s3cret!")
		assert.ErrorIs(t, err, ErrLoginThrottled)
	})

	t.Run("disabled account", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectQuery(q("SELECT cooldown_until FROM login_throttle")).
			WillReturnRows(sqlmock.NewRows([]string{"cooldown_until"}))
		mock.ExpectQuery(q("FROM users WHERE employee_code")).
			WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(7), "E100", "Ann Lee", hash, "employee", false, time.Now()))

		_, err := Authenticate(context.Background(), "E100", "s3cret!")
		assert.ErrorIs(t, err, ErrAccountDisabled)
	})
}

func TestGenerateSecurePassword(t *testing.T) {
	for i := 0; i < 50; i++ {
		p, err := GenerateSecurePassword()
		require.NoError(t, err)
		if len(p) != passwordLen {
			t.Fatalf("len = %d, want %d", len(p), passwordLen)
		}
		for _, set := range []string{upperLetters, lowerLetters, digits, symbols} {
			if !strings.ContainsAny(p, set) {
				t.Errorf("password %q has no character from %q", p, set)
			}
		}
	}
}

func TestHashPassword(t *testing.T) {
	_, err := HashPassword("")
	assert.ErrorIs(t, err, ErrInvalidInput)

	h, err := HashPassword("pa55word")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte("pa55word")))
}

func TestUpsertEmployee(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectQuery(q("INSERT INTO users (employee_code, full_name, role)")).WithArgs("E200", "Bo Chan").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(true))

	created, err := UpsertEmployee(context.Background(), models.Employee{Code: "E200", Name: " Bo Chan "})
	require.NoError(t, err)
	assert.True(t, created)

	_, err = UpsertEmployee(context.Background(), models.Employee{Code: "", Name: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
