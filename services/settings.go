package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"meal-admin/db"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const settingCompanyPortion = "company_portion"

// DefaultCompanyPortion is returned until an admin stores a value.
var DefaultCompanyPortion = decimal.Zero

// GetCompanyPortion returns the subsidy offered per employee per calendar day.
func GetCompanyPortion(ctx context.Context) (decimal.Decimal, error) {
	var raw string
	err := db.Pool.QueryRowContext(ctx, `SELECT value FROM app_settings WHERE key = $1`, settingCompanyPortion).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DefaultCompanyPortion, nil
		}
		return decimal.Zero, err
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("stored company portion %q: %w", raw, err)
	}
	return v, nil
}

// SetCompanyPortion stores a new subsidy amount, rounded to cents.
func SetCompanyPortion(ctx context.Context, amount decimal.Decimal, updatedBy int64) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, invalidf("company portion must be >= 0")
	}
	amount = amount.Round(2)
	_, err := db.Pool.ExecContext(ctx, `
		INSERT INTO app_settings (key, value, updated_by, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_by = EXCLUDED.updated_by,
			updated_at = now()`,
		settingCompanyPortion, amount.StringFixed(2), updatedBy,
	)
	if err != nil {
		return decimal.Zero, err
	}
	logrus.WithFields(logrus.Fields{"amount": amount.StringFixed(2), "updated_by": updatedBy}).Info("company portion updated")
	return amount, nil
}
