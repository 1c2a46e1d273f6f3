package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Supplier struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	ContactPhone string    `db:"contact_phone" json:"contact_phone"`
	ContactEmail string    `db:"contact_email" json:"contact_email"`
	IsDeleted    bool      `db:"is_deleted" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type SupplierInput struct {
	Name         string `json:"name"`
	ContactPhone string `json:"contact_phone"`
	ContactEmail string `json:"contact_email"`
}

// Menu is one supplier's offer for a single calendar day.
type Menu struct {
	ID            int64      `db:"id" json:"id"`
	SupplierID    int64      `db:"supplier_id" json:"supplier_id"`
	SupplierName  string     `db:"supplier_name" json:"supplier_name"`
	MenuDate      time.Time  `db:"menu_date" json:"menu_date"`
	OrderDeadline *time.Time `db:"order_deadline" json:"order_deadline,omitempty"`
	IsFinalized   bool       `db:"is_finalized" json:"is_finalized"`
	FinalizedAt   *time.Time `db:"finalized_at" json:"finalized_at,omitempty"`
	Version       int        `db:"version" json:"version"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	Meals         []Meal     `db:"-" json:"meals,omitempty"`
}

type CreateMenuInput struct {
	SupplierID    int64      `json:"supplier_id"`
	MenuDate      string     `json:"menu_date"` // YYYY-MM-DD
	OrderDeadline *time.Time `json:"order_deadline"`
}

type Meal struct {
	ID          int64           `db:"id" json:"id"`
	MenuID      int64           `db:"menu_id" json:"menu_id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	IsDeleted   bool            `db:"is_deleted" json:"-"`
}

type MealInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// MealSummary aggregates the live orders of one meal for reports.
type MealSummary struct {
	MealID     int64           `db:"meal_id" json:"meal_id"`
	Name       string          `db:"name" json:"name"`
	Price      decimal.Decimal `db:"price" json:"price"`
	Quantity   int             `db:"quantity" json:"quantity"`
	GrossTotal decimal.Decimal `db:"gross_total" json:"gross_total"`
}

// MenuOrderLine is one ordered unit on a menu, with the employee who ordered it.
type MenuOrderLine struct {
	OrderID       int64           `db:"order_id" json:"order_id"`
	EmployeeCode  string          `db:"employee_code" json:"employee_code"`
	FullName      string          `db:"full_name" json:"full_name"`
	MealName      string          `db:"meal_name" json:"meal_name"`
	Price         decimal.Decimal `db:"price" json:"price"`
	PortionAmount decimal.Decimal `db:"portion_amount" json:"portion_amount"`
	PaymentStatus string          `db:"payment_status" json:"payment_status"`
}
