package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"meal-admin/db"
	"meal-admin/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const menuColumns = `
	mn.id, mn.supplier_id, s.name AS supplier_name, mn.menu_date, mn.order_deadline,
	mn.is_finalized, mn.finalized_at, mn.version, mn.created_at`

func CreateMenu(ctx context.Context, input models.CreateMenuInput) (int64, error) {
	if input.SupplierID <= 0 {
		return 0, invalidf("supplier_id is required")
	}
	date, err := ParseDate(input.MenuDate)
	if err != nil {
		return 0, err
	}
	if _, err := GetSupplier(ctx, input.SupplierID); err != nil {
		return 0, err
	}

	var id int64
	err = db.Pool.QueryRowxContext(ctx, `
		INSERT INTO menus (supplier_id, menu_date, order_deadline) VALUES ($1, $2, $3)
		RETURNING id`,
		input.SupplierID, date, input.OrderDeadline,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("supplier %d already has a menu for %s: %w", input.SupplierID, input.MenuDate, ErrConflict)
		}
		return 0, err
	}
	return id, nil
}

// ListMenus returns menus of active suppliers between from and to inclusive.
// Nil bounds are open.
func ListMenus(ctx context.Context, from, to *time.Time) ([]models.Menu, error) {
	conds := []string{"NOT s.is_deleted"}
	var args []interface{}
	if from != nil {
		args = append(args, *from)
		conds = append(conds, fmt.Sprintf("mn.menu_date >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		conds = append(conds, fmt.Sprintf("mn.menu_date <= $%d", len(args)))
	}
	menus := []models.Menu{}
	err := db.Pool.SelectContext(ctx, &menus, `
		SELECT `+menuColumns+`
		FROM menus mn
		JOIN suppliers s ON s.id = mn.supplier_id
		WHERE `+strings.Join(conds, " AND ")+`
		ORDER BY mn.menu_date, s.name`,
		args...,
	)
	return menus, err
}

// GetMenu returns a menu together with its live meals.
func GetMenu(ctx context.Context, id int64) (*models.Menu, error) {
	var m models.Menu
	err := db.Pool.GetContext(ctx, &m, `
		SELECT `+menuColumns+`
		FROM menus mn
		JOIN suppliers s ON s.id = mn.supplier_id
		WHERE mn.id = $1`,
		id,
	)
	if err != nil {
		return nil, notFound("menu", err)
	}
	m.Meals = []models.Meal{}
	err = db.Pool.SelectContext(ctx, &m.Meals, `
		SELECT id, menu_id, name, description, price, is_deleted
		FROM meals WHERE menu_id = $1 AND NOT is_deleted
		ORDER BY id`,
		id,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func AddMeal(ctx context.Context, menuID int64, input models.MealInput) (int64, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return 0, invalidf("name is required")
	}
	if input.Price.IsNegative() {
		return 0, invalidf("price must be >= 0")
	}
	var finalized bool
	if err := db.Pool.GetContext(ctx, &finalized, `SELECT is_finalized FROM menus WHERE id = $1`, menuID); err != nil {
		return 0, notFound("menu", err)
	}
	if finalized {
		return 0, ErrMenuFinalized
	}

	var id int64
	err := db.Pool.QueryRowxContext(ctx, `
		INSERT INTO meals (menu_id, name, description, price) VALUES ($1, $2, $3, $4)
		RETURNING id`,
		menuID, name, input.Description, input.Price.Round(2),
	).Scan(&id)
	return id, err
}

// UpdateMealPrice changes the current price. Already placed orders keep their snapshot.
func UpdateMealPrice(ctx context.Context, mealID int64, price decimal.Decimal) error {
	if price.IsNegative() {
		return invalidf("price must be >= 0")
	}
	res, err := db.Pool.ExecContext(ctx, `
		UPDATE meals SET price = $1, updated_at = now() WHERE id = $2 AND NOT is_deleted`,
		price.Round(2), mealID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("meal: %w", ErrNotFound)
	}
	return nil
}

func DeleteMeal(ctx context.Context, mealID int64) error {
	res, err := db.Pool.ExecContext(ctx, `
		UPDATE meals SET is_deleted = true, updated_at = now() WHERE id = $1 AND NOT is_deleted`,
		mealID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("meal: %w", ErrNotFound)
	}
	return nil
}

// FinalizeMenu closes ordering for a menu and completes its pending orders.
// version must match the menu's current version; a stale version yields ErrConflict.
func FinalizeMenu(ctx context.Context, menuID int64, version int) (completed int64, err error) {
	tx, err := db.Pool.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE menus SET is_finalized = true, finalized_at = now(), version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2 AND NOT is_finalized`,
		menuID, version,
	)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var finalized bool
		if err := tx.GetContext(ctx, &finalized, `SELECT is_finalized FROM menus WHERE id = $1`, menuID); err != nil {
			return 0, notFound("menu", err)
		}
		if finalized {
			return 0, fmt.Errorf("menu %d: %w", menuID, ErrMenuFinalized)
		}
		return 0, fmt.Errorf("menu %d was modified, reload and retry: %w", menuID, ErrConflict)
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE meal_orders SET status = 'completed', updated_at = now()
		WHERE meal_id IN (SELECT id FROM meals WHERE menu_id = $1)
		  AND status = 'pending' AND NOT is_deleted`,
		menuID,
	)
	if err != nil {
		return 0, err
	}
	completed, _ = res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	logrus.WithFields(logrus.Fields{"menu_id": menuID, "completed_orders": completed}).Info("menu finalized")
	return completed, nil
}

// MenuMealSummaries returns per-meal quantities and totals of live orders on a menu.
func MenuMealSummaries(ctx context.Context, menuID int64) ([]models.MealSummary, error) {
	out := []models.MealSummary{}
	err := db.Pool.SelectContext(ctx, &out, `
		SELECT m.id AS meal_id, m.name, m.price,
		       COUNT(o.id)::int AS quantity,
		       COALESCE(SUM(o.price), 0) AS gross_total
		FROM meals m
		LEFT JOIN meal_orders o ON o.meal_id = m.id AND NOT o.is_deleted
		WHERE m.menu_id = $1 AND NOT m.is_deleted
		GROUP BY m.id, m.name, m.price
		ORDER BY m.id`,
		menuID,
	)
	return out, err
}

// MenuOrderLines lists every live ordered unit of a menu with its employee.
func MenuOrderLines(ctx context.Context, menuID int64) ([]models.MenuOrderLine, error) {
	out := []models.MenuOrderLine{}
	err := db.Pool.SelectContext(ctx, &out, `
		SELECT o.id AS order_id, u.employee_code, u.full_name, m.name AS meal_name,
		       o.price, o.portion_amount, o.payment_status
		FROM meal_orders o
		JOIN meals m ON m.id = o.meal_id
		JOIN users u ON u.id = o.user_id
		WHERE m.menu_id = $1 AND NOT o.is_deleted
		ORDER BY u.full_name, o.id`,
		menuID,
	)
	return out, err
}
