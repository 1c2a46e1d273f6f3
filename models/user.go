package models

import "time"

const (
	RoleEmployee = "employee"
	RoleAdmin    = "admin"
)

type User struct {
	ID           int64     `db:"id" json:"id"`
	EmployeeCode string    `db:"employee_code" json:"employee_code"`
	FullName     string    `db:"full_name" json:"full_name"`
	PasswordHash *string   `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Employee is a code/name pair from the external employee directory.
type Employee struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
