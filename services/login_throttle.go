package services

import (
	"context"
	"math"
	"time"

	"meal-admin/db"
)

const ThrottleCooldownCapSeconds = 30

// LoginThrottleWaitSeconds returns how many seconds the employee code must wait before trying again (0 if no cooldown).
func LoginThrottleWaitSeconds(ctx context.Context, employeeCode string) (int, error) {
	var cooldownUntil *time.Time
	err := db.Pool.QueryRowxContext(ctx, `
		SELECT cooldown_until FROM login_throttle WHERE employee_code = $1`,
		employeeCode,
	).Scan(&cooldownUntil)
	if err != nil {
		return 0, nil // no row = no throttle
	}
	if cooldownUntil == nil {
		return 0, nil
	}
	if now := nowFunc(); now.Before(*cooldownUntil) {
		return int(cooldownUntil.Sub(now).Seconds()) + 1, nil
	}
	return 0, nil
}

// RecordLoginFailed increments fail_count and sets cooldown_until = now() + min(30, 2^fail_count) seconds.
func RecordLoginFailed(ctx context.Context, employeeCode string) error {
	_, err := db.Pool.ExecContext(ctx, `
		INSERT INTO login_throttle (employee_code, fail_count, last_failed_at, cooldown_until, updated_at)
		VALUES ($1, 1, now(), now() + (LEAST(30, POWER(2, 1)::int) || ' seconds')::interval, now())
		ON CONFLICT (employee_code) DO UPDATE SET
			fail_count = login_throttle.fail_count + 1,
			last_failed_at = now(),
			cooldown_until = now() + (LEAST(30, POWER(2, login_throttle.fail_count + 1)::int) || ' seconds')::interval,
			updated_at = now()`,
		employeeCode,
	)
	return err
}

// RecordLoginSuccess resets fail_count and cooldown_until for the employee code.
func RecordLoginSuccess(ctx context.Context, employeeCode string) error {
	_, err := db.Pool.ExecContext(ctx, `
		INSERT INTO login_throttle (employee_code, fail_count, last_failed_at, cooldown_until, updated_at)
		VALUES ($1, 0, NULL, NULL, now())
		ON CONFLICT (employee_code) DO UPDATE SET
			fail_count = 0,
			last_failed_at = NULL,
			cooldown_until = NULL,
			updated_at = now()`,
		employeeCode,
	)
	return err
}

// CooldownSecondsForFailCount returns min(30, 2^failCount).
func CooldownSecondsForFailCount(failCount int) int {
	s := int(math.Pow(2, float64(failCount)))
	if s > ThrottleCooldownCapSeconds {
		return ThrottleCooldownCapSeconds
	}
	return s
}
