package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"meal-admin/db"
	"meal-admin/metrics"
	"meal-admin/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"

	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"

	defaultPageSize = 20
	maxPageSize     = 100
	maxPage         = 100000

	MaxUnitsPerLine    = 20
	MaxUnitsPerRequest = 50
)

// ValidStatusTransition reports whether an order may move from one status to another.
// Completed and cancelled are terminal.
func ValidStatusTransition(from, to string) bool {
	return from == OrderStatusPending && (to == OrderStatusCompleted || to == OrderStatusCancelled)
}

// ValidPaymentTransition reports whether the payment status may change. Paid is terminal.
func ValidPaymentTransition(from, to string) bool {
	return from == PaymentStatusUnpaid && to == PaymentStatusPaid
}

const orderColumns = `
	o.id, o.user_id, o.meal_id, m.name AS meal_name, o.menu_date, o.ordered_at,
	o.status, o.payment_status, o.paid_on, o.price, o.portion_applied, o.portion_amount, o.is_deleted`

type orderableMeal struct {
	ID            int64           `db:"id"`
	Price         decimal.Decimal `db:"price"`
	MenuDate      time.Time       `db:"menu_date"`
	IsFinalized   bool            `db:"is_finalized"`
	OrderDeadline *time.Time      `db:"order_deadline"`
}

// PlaceOrders creates one meal_orders row per ordered unit and returns their ids.
// Every line is validated before anything is written and all rows are inserted
// in a single transaction, so a bad line leaves no partial order behind.
func PlaceOrders(ctx context.Context, input models.PlaceOrdersInput) ([]int64, error) {
	if len(input.Lines) == 0 {
		return nil, invalidf("at least one order line is required")
	}
	dates := make([]time.Time, len(input.Lines))
	units := 0
	for i, l := range input.Lines {
		if l.Quantity < 1 {
			return nil, invalidf("line %d: quantity must be at least 1", i+1)
		}
		if l.Quantity > MaxUnitsPerLine {
			return nil, invalidf("line %d: quantity must be at most %d", i+1, MaxUnitsPerLine)
		}
		units += l.Quantity
		if units > MaxUnitsPerRequest {
			return nil, invalidf("at most %d units per request", MaxUnitsPerRequest)
		}
		if l.MealID <= 0 {
			return nil, invalidf("line %d: meal_id is required", i+1)
		}
		d, err := ParseDate(l.MenuDate)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		dates[i] = d
	}

	companyPortion, err := GetCompanyPortion(ctx)
	if err != nil {
		return nil, fmt.Errorf("load company portion: %w", err)
	}

	tx, err := db.Pool.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	// Serialise placements of one employee so two requests cannot both grant a day's portion.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, input.UserID); err != nil {
		return nil, fmt.Errorf("lock employee: %w", err)
	}

	var active bool
	if err := tx.QueryRowxContext(ctx, `SELECT is_active FROM users WHERE id = $1`, input.UserID).Scan(&active); err != nil {
		return nil, notFound("user", err)
	}
	if !active {
		return nil, ErrAccountDisabled
	}

	now := nowFunc()
	priced := make([]PricedLine, len(input.Lines))
	for i, l := range input.Lines {
		var meal orderableMeal
		err := tx.GetContext(ctx, &meal, `
			SELECT m.id, m.price, mn.menu_date, mn.is_finalized, mn.order_deadline
			FROM meals m
			JOIN menus mn ON mn.id = m.menu_id
			WHERE m.id = $1 AND NOT m.is_deleted`,
			l.MealID,
		)
		if err != nil {
			return nil, notFound(fmt.Sprintf("meal %d", l.MealID), err)
		}
		if DateKey(meal.MenuDate) != DateKey(dates[i]) {
			return nil, invalidf("line %d: meal %d is not on the menu for %s", i+1, l.MealID, l.MenuDate)
		}
		if meal.IsFinalized || (meal.OrderDeadline != nil && now.After(*meal.OrderDeadline)) {
			return nil, fmt.Errorf("line %d: %w", i+1, ErrMenuFinalized)
		}
		priced[i] = PricedLine{MealID: meal.ID, MenuDate: dates[i], Quantity: l.Quantity, Price: meal.Price}
	}

	subsidised := make(map[string]bool)
	for _, d := range dates {
		key := DateKey(d)
		if _, seen := subsidised[key]; seen {
			continue
		}
		var has bool
		err := tx.QueryRowxContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM meal_orders
				WHERE user_id = $1 AND menu_date = $2 AND portion_applied AND NOT is_deleted
			)`,
			input.UserID, d,
		).Scan(&has)
		if err != nil {
			return nil, fmt.Errorf("check portion for %s: %w", key, err)
		}
		subsidised[key] = has
	}

	plan, err := AllocatePortions(priced, companyPortion, subsidised)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(plan))
	portions := 0
	for _, p := range plan {
		var id int64
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO meal_orders (
				user_id, meal_id, menu_date, ordered_at, status, payment_status,
				price, portion_applied, portion_amount
			) VALUES ($1, $2, $3, $4, 'pending', 'unpaid', $5, $6, $7)
			RETURNING id`,
			input.UserID, p.MealID, p.MenuDate, now, p.Price, p.PortionApplied, p.PortionAmount,
		).Scan(&id)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("daily portion already granted: %w", ErrConflict)
			}
			return nil, fmt.Errorf("insert order: %w", err)
		}
		if p.PortionApplied {
			portions++
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	metrics.RecordOrdersPlaced(len(ids), portions)
	logrus.WithFields(logrus.Fields{
		"user_id":  input.UserID,
		"units":    len(ids),
		"portions": portions,
	}).Info("meal orders placed")
	return ids, nil
}

// GetOrder returns a live order. Employees may only read their own orders.
func GetOrder(ctx context.Context, orderID, requesterID int64, isAdmin bool) (*models.MealOrder, error) {
	var o models.MealOrder
	err := db.Pool.GetContext(ctx, &o, `
		SELECT `+orderColumns+`
		FROM meal_orders o
		JOIN meals m ON m.id = o.meal_id
		WHERE o.id = $1 AND NOT o.is_deleted`,
		orderID,
	)
	if err != nil {
		return nil, notFound("order", err)
	}
	if !isAdmin && o.UserID != requesterID {
		return nil, ErrForbidden
	}
	return &o, nil
}

// ListOrders returns one page of live orders matching the filter, newest menu date first.
func ListOrders(ctx context.Context, f models.OrderFilter) (*models.OrderPage, error) {
	page, size := normalizePage(f.Page, f.PageSize)

	conds := []string{"NOT o.is_deleted"}
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.UserID > 0 {
		conds = append(conds, "o.user_id = "+arg(f.UserID))
	}
	if f.From != nil {
		conds = append(conds, "o.menu_date >= "+arg(*f.From))
	}
	if f.To != nil {
		conds = append(conds, "o.menu_date <= "+arg(*f.To))
	}
	if f.PaymentStatus != "" {
		if f.PaymentStatus != PaymentStatusPaid && f.PaymentStatus != PaymentStatusUnpaid {
			return nil, invalidf("unknown payment status %q", f.PaymentStatus)
		}
		conds = append(conds, "o.payment_status = "+arg(f.PaymentStatus))
	}
	where := strings.Join(conds, " AND ")

	var total int
	if err := db.Pool.GetContext(ctx, &total, `SELECT COUNT(*) FROM meal_orders o WHERE `+where, args...); err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	limit := arg(size)
	offset := arg((page - 1) * size)
	items := []models.MealOrder{}
	err := db.Pool.SelectContext(ctx, &items, `
		SELECT `+orderColumns+`
		FROM meal_orders o
		JOIN meals m ON m.id = o.meal_id
		WHERE `+where+`
		ORDER BY o.menu_date DESC, o.id DESC
		LIMIT `+limit+` OFFSET `+offset,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return &models.OrderPage{Items: items, Total: total, Page: page, PageSize: size}, nil
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// CancelOrder soft-deletes a pending, unpaid order of the requesting employee
// while its menu is still open.
func CancelOrder(ctx context.Context, orderID, userID int64) error {
	var row struct {
		UserID        int64  `db:"user_id"`
		Status        string `db:"status"`
		PaymentStatus string `db:"payment_status"`
		IsFinalized   bool   `db:"is_finalized"`
	}
	err := db.Pool.GetContext(ctx, &row, `
		SELECT o.user_id, o.status, o.payment_status, mn.is_finalized
		FROM meal_orders o
		JOIN meals m ON m.id = o.meal_id
		JOIN menus mn ON mn.id = m.menu_id
		WHERE o.id = $1 AND NOT o.is_deleted`,
		orderID,
	)
	if err != nil {
		return notFound("order", err)
	}
	if row.UserID != userID {
		return ErrForbidden
	}
	if row.IsFinalized {
		return ErrMenuFinalized
	}
	if !ValidStatusTransition(row.Status, OrderStatusCancelled) || row.PaymentStatus != PaymentStatusUnpaid {
		return fmt.Errorf("order %d is %s/%s: %w", orderID, row.Status, row.PaymentStatus, ErrConflict)
	}

	res, err := db.Pool.ExecContext(ctx, `
		UPDATE meal_orders SET status = 'cancelled', is_deleted = true, updated_at = now()
		WHERE id = $1 AND status = 'pending' AND payment_status = 'unpaid' AND NOT is_deleted`,
		orderID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("order %d changed concurrently: %w", orderID, ErrConflict)
	}
	logrus.WithFields(logrus.Fields{"order_id": orderID, "user_id": userID}).Info("meal order cancelled")
	return nil
}

// BatchMarkPaid marks the listed unpaid orders of one employee as paid and
// returns how many rows changed and the sum of their net amounts. Ids that are
// already paid, deleted or belong to someone else are left untouched.
func BatchMarkPaid(ctx context.Context, userID int64, orderIDs []int64) (*models.PaymentResult, error) {
	if userID <= 0 {
		return nil, invalidf("user_id is required")
	}
	ids := uniqueIDs(orderIDs)
	if len(ids) == 0 {
		return nil, invalidf("at least one order id is required")
	}

	query, args, err := sqlx.In(`
		UPDATE meal_orders SET payment_status = 'paid', paid_on = ?, updated_at = now()
		WHERE user_id = ? AND id IN (?) AND payment_status = 'unpaid' AND NOT is_deleted
		RETURNING id, price, portion_amount`,
		nowFunc(), userID, ids,
	)
	if err != nil {
		return nil, err
	}
	rows, err := db.Pool.QueryxContext(ctx, db.Pool.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("mark paid: %w", err)
	}
	defer rows.Close()

	result := &models.PaymentResult{TotalPaid: decimal.Zero, PaidOrderIDs: []int64{}}
	for rows.Next() {
		var id int64
		var price, portion decimal.Decimal
		if err := rows.Scan(&id, &price, &portion); err != nil {
			return nil, err
		}
		result.PaidOrderIDs = append(result.PaidOrderIDs, id)
		result.PaidCount++
		result.TotalPaid = result.TotalPaid.Add(models.NetAmount(price, portion))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	collected, _ := result.TotalPaid.Float64()
	metrics.RecordPayment(result.PaidCount, collected)
	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"requested":  len(ids),
		"order_ids":  result.PaidOrderIDs,
		"total_paid": result.TotalPaid.StringFixed(2),
	}).Info("meal orders marked paid")
	return result, nil
}

// MarkOrderPaid marks a single order as paid on behalf of its owner.
func MarkOrderPaid(ctx context.Context, orderID int64) (*models.PaymentResult, error) {
	var userID int64
	err := db.Pool.GetContext(ctx, &userID, `SELECT user_id FROM meal_orders WHERE id = $1 AND NOT is_deleted`, orderID)
	if err != nil {
		return nil, notFound("order", err)
	}
	return BatchMarkPaid(ctx, userID, []int64{orderID})
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// GetOutstanding sums what one employee still owes over live unpaid orders.
func GetOutstanding(ctx context.Context, userID int64) (*models.OutstandingSummary, error) {
	s := models.OutstandingSummary{UserID: userID}
	err := db.Pool.QueryRowxContext(ctx, `
		SELECT COUNT(*)::int, COALESCE(SUM(GREATEST(price - portion_amount, 0)), 0)
		FROM meal_orders
		WHERE user_id = $1 AND payment_status = 'unpaid' AND NOT is_deleted`,
		userID,
	).Scan(&s.UnpaidCount, &s.OutstandingTotal)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetDailyStats aggregates the live orders of one menu date.
func GetDailyStats(ctx context.Context, date time.Time) (*models.DailyStats, error) {
	s := models.DailyStats{Date: DateKey(date)}
	err := db.Pool.QueryRowxContext(ctx, `
		SELECT
			COUNT(*)::int,
			COALESCE(SUM(price), 0),
			COALESCE(SUM(portion_amount), 0),
			COALESCE(SUM(GREATEST(price - portion_amount, 0)), 0),
			COALESCE(SUM(GREATEST(price - portion_amount, 0)) FILTER (WHERE payment_status = 'paid'), 0),
			COALESCE(SUM(GREATEST(price - portion_amount, 0)) FILTER (WHERE payment_status = 'unpaid'), 0)
		FROM meal_orders
		WHERE menu_date = $1 AND NOT is_deleted`,
		date,
	).Scan(&s.OrdersCount, &s.GrossTotal, &s.PortionTotal, &s.NetTotal, &s.PaidTotal, &s.UnpaidTotal)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &s, nil
		}
		return nil, err
	}
	return &s, nil
}
