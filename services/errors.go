package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrMenuFinalized   = errors.New("menu is finalized")
	ErrInvalidLogin    = errors.New("invalid employee code or password")
	ErrLoginThrottled  = errors.New("too many failed login attempts")
	ErrAccountDisabled = errors.New("account is disabled")
)

// ThrottledError carries the remaining cooldown of a throttled login.
type ThrottledError struct {
	WaitSeconds int
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("%s, retry in %ds", ErrLoginThrottled, e.WaitSeconds)
}

func (e *ThrottledError) Unwrap() error { return ErrLoginThrottled }

const dateLayout = "2006-01-02"

var nowFunc = time.Now

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func notFound(what string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, invalidf("date %q must be YYYY-MM-DD", s)
	}
	return t, nil
}

// DateKey formats the calendar date part of t.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}
