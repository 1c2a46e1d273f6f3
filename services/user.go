package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"meal-admin/db"
	"meal-admin/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const userColumns = `id, employee_code, full_name, password_hash, role, is_active, created_at`

func GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := db.Pool.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id); err != nil {
		return nil, notFound("user", err)
	}
	return &u, nil
}

func GetUserByCode(ctx context.Context, code string) (*models.User, error) {
	var u models.User
	err := db.Pool.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE employee_code = $1`, strings.TrimSpace(code))
	if err != nil {
		return nil, notFound("user", err)
	}
	return &u, nil
}

func ListUsers(ctx context.Context) ([]models.User, error) {
	list := []models.User{}
	err := db.Pool.SelectContext(ctx, &list, `SELECT `+userColumns+` FROM users ORDER BY full_name, employee_code`)
	return list, err
}

// Authenticate checks the password of an employee code, honouring the login cooldown.
// Unknown codes and wrong passwords are indistinguishable to the caller.
func Authenticate(ctx context.Context, code, plainPassword string) (*models.User, error) {
	code = strings.TrimSpace(code)
	if code == "" || plainPassword == "" {
		return nil, ErrInvalidLogin
	}
	wait, err := LoginThrottleWaitSeconds(ctx, code)
	if err != nil {
		return nil, err
	}
	if wait > 0 {
		return nil, &ThrottledError{WaitSeconds: wait}
	}

	u, err := GetUserByCode(ctx, code)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if u == nil || u.PasswordHash == nil ||
		bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(plainPassword)) != nil {
		if recErr := RecordLoginFailed(ctx, code); recErr != nil {
			logrus.WithError(recErr).WithField("employee_code", code).Warn("record failed login")
		}
		return nil, ErrInvalidLogin
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}
	if err := RecordLoginSuccess(ctx, code); err != nil {
		logrus.WithError(err).WithField("employee_code", code).Warn("reset login throttle")
	}
	return u, nil
}

// EnsureAdmin creates or promotes the seed administrator and sets its password.
func EnsureAdmin(ctx context.Context, code, fullName, plainPassword string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return invalidf("admin code is required")
	}
	hash, err := HashPassword(plainPassword)
	if err != nil {
		return err
	}
	_, err = db.Pool.ExecContext(ctx, `
		INSERT INTO users (employee_code, full_name, password_hash, role, is_active)
		VALUES ($1, $2, $3, 'admin', true)
		ON CONFLICT (employee_code) DO UPDATE SET
			role = 'admin',
			password_hash = EXCLUDED.password_hash,
			is_active = true,
			updated_at = now()`,
		code, fullName, hash,
	)
	return err
}

// UpsertEmployee creates a local account for a directory employee or refreshes its name.
// New accounts have no password until an admin resets it.
func UpsertEmployee(ctx context.Context, e models.Employee) (created bool, err error) {
	code := strings.TrimSpace(e.Code)
	if code == "" {
		return false, invalidf("employee code is required")
	}
	err = db.Pool.QueryRowxContext(ctx, `
		INSERT INTO users (employee_code, full_name, role)
		VALUES ($1, $2, 'employee')
		ON CONFLICT (employee_code) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			updated_at = now()
		RETURNING (xmax = 0)`,
		code, strings.TrimSpace(e.Name),
	).Scan(&created)
	return created, err
}

// ResetPassword sets a freshly generated password and returns it in plain text once.
func ResetPassword(ctx context.Context, userID int64) (string, error) {
	plain, err := GenerateSecurePassword()
	if err != nil {
		return "", err
	}
	hash, err := HashPassword(plain)
	if err != nil {
		return "", err
	}
	res, err := db.Pool.ExecContext(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, hash, userID)
	if err != nil {
		return "", err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return "", fmt.Errorf("user: %w", ErrNotFound)
	}
	logrus.WithField("user_id", userID).Info("password reset")
	return plain, nil
}

func SetUserActive(ctx context.Context, userID int64, active bool) error {
	res, err := db.Pool.ExecContext(ctx, `
		UPDATE users SET is_active = $1, updated_at = now() WHERE id = $2`, active, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user: %w", ErrNotFound)
	}
	return nil
}
