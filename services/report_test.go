package services

import (
	"bytes"
	"testing"

	"meal-admin/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMenuReportPDF(t *testing.T) {
	r := &MenuReport{
		Menu: &models.Menu{ID: 3, SupplierName: "Café Nord", MenuDate: day(10), IsFinalized: true},
		Meals: []models.MealSummary{
			{MealID: 1, Name: "Soup", Price: dec("5.00"), Quantity: 2, GrossTotal: dec("10.00")},
		},
		Lines: []models.MenuOrderLine{
			{OrderID: 1, EmployeeCode: "E100", FullName: "Ann Lee", MealName: "Soup", Price: dec("5.00"), PortionAmount: dec("3.00"), PaymentStatus: "paid"},
			{OrderID: 2, EmployeeCode: "E100", FullName: "Ann Lee", MealName: "Soup", Price: dec("5.00"), PortionAmount: dec("0"), PaymentStatus: "unpaid"},
		},
		Gross:   dec("10.00"),
		Portion: dec("3.00"),
		Net:     dec("7.00"),
	}
	var buf bytes.Buffer
	require.NoError(t, WriteMenuReportPDF(&buf, r))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "output is not a PDF")
}
