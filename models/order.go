package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MealOrder is a single ordered unit. Price and portion are fixed when it is placed.
type MealOrder struct {
	ID             int64           `db:"id" json:"id"`
	UserID         int64           `db:"user_id" json:"user_id"`
	MealID         int64           `db:"meal_id" json:"meal_id"`
	MealName       string          `db:"meal_name" json:"meal_name"`
	MenuDate       time.Time       `db:"menu_date" json:"menu_date"`
	OrderedAt      time.Time       `db:"ordered_at" json:"ordered_at"`
	Status         string          `db:"status" json:"status"`
	PaymentStatus  string          `db:"payment_status" json:"payment_status"`
	PaidOn         *time.Time      `db:"paid_on" json:"paid_on,omitempty"`
	Price          decimal.Decimal `db:"price" json:"price"`
	PortionApplied bool            `db:"portion_applied" json:"portion_applied"`
	PortionAmount  decimal.Decimal `db:"portion_amount" json:"portion_amount"`
	IsDeleted      bool            `db:"is_deleted" json:"-"`
}

// NetAmount is what the employee owes for this order.
func (o *MealOrder) NetAmount() decimal.Decimal {
	return NetAmount(o.Price, o.PortionAmount)
}

// NetAmount returns price minus portion, floored at zero.
func NetAmount(price, portion decimal.Decimal) decimal.Decimal {
	net := price.Sub(portion)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

type OrderLineInput struct {
	MealID   int64  `json:"meal_id"`
	MenuDate string `json:"menu_date"` // YYYY-MM-DD
	Quantity int    `json:"quantity"`
}

type PlaceOrdersInput struct {
	UserID int64
	Lines  []OrderLineInput
}

type OrderFilter struct {
	UserID        int64 // 0 means every employee
	From          *time.Time
	To            *time.Time
	PaymentStatus string
	Page          int
	PageSize      int
}

type OrderPage struct {
	Items    []MealOrder `json:"items"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

type PaymentResult struct {
	PaidCount    int             `json:"paid_count"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	PaidOrderIDs []int64         `json:"paid_order_ids"`
}

type OutstandingSummary struct {
	UserID           int64           `json:"user_id"`
	UnpaidCount      int             `json:"unpaid_count"`
	OutstandingTotal decimal.Decimal `json:"outstanding_total"`
}

type DailyStats struct {
	Date         string          `json:"date"`
	OrdersCount  int             `json:"orders_count"`
	GrossTotal   decimal.Decimal `json:"gross_total"`
	PortionTotal decimal.Decimal `json:"portion_total"`
	NetTotal     decimal.Decimal `json:"net_total"`
	PaidTotal    decimal.Decimal `json:"paid_total"`
	UnpaidTotal  decimal.Decimal `json:"unpaid_total"`
}
