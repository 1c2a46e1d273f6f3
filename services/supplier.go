package services

import (
	"context"
	"fmt"
	"strings"

	"meal-admin/db"
	"meal-admin/models"
)

const supplierColumns = `id, name, contact_phone, contact_email, is_deleted, created_at, updated_at`

func CreateSupplier(ctx context.Context, input models.SupplierInput) (int64, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return 0, invalidf("name is required")
	}
	var id int64
	err := db.Pool.QueryRowxContext(ctx, `
		INSERT INTO suppliers (name, contact_phone, contact_email) VALUES ($1, $2, $3)
		RETURNING id`,
		name, strings.TrimSpace(input.ContactPhone), strings.TrimSpace(input.ContactEmail),
	).Scan(&id)
	return id, err
}

func ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	list := []models.Supplier{}
	err := db.Pool.SelectContext(ctx, &list, `
		SELECT `+supplierColumns+` FROM suppliers WHERE NOT is_deleted ORDER BY name`)
	return list, err
}

func GetSupplier(ctx context.Context, id int64) (*models.Supplier, error) {
	var s models.Supplier
	err := db.Pool.GetContext(ctx, &s, `
		SELECT `+supplierColumns+` FROM suppliers WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return nil, notFound("supplier", err)
	}
	return &s, nil
}

func UpdateSupplier(ctx context.Context, id int64, input models.SupplierInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return invalidf("name is required")
	}
	res, err := db.Pool.ExecContext(ctx, `
		UPDATE suppliers SET name = $1, contact_phone = $2, contact_email = $3, updated_at = now()
		WHERE id = $4 AND NOT is_deleted`,
		name, strings.TrimSpace(input.ContactPhone), strings.TrimSpace(input.ContactEmail), id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("supplier: %w", ErrNotFound)
	}
	return nil
}

// DeleteSupplier soft-deletes a supplier; its menus disappear from listings.
func DeleteSupplier(ctx context.Context, id int64) error {
	res, err := db.Pool.ExecContext(ctx, `
		UPDATE suppliers SET is_deleted = true, updated_at = now() WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("supplier: %w", ErrNotFound)
	}
	return nil
}
