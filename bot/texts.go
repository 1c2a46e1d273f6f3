package bot

import (
	"fmt"
	"strings"

	"meal-admin/models"
	"meal-admin/services"
)

func MenuFinalizedText(menu *models.Menu, completed int64) string {
	var sb strings.Builder
	sb.WriteString("Menu finalized\n")
	fmt.Fprintf(&sb, "Supplier: %s\n", menu.SupplierName)
	fmt.Fprintf(&sb, "Date: %s\n", services.DateKey(menu.MenuDate))
	fmt.Fprintf(&sb, "Orders completed: %d", completed)
	return sb.String()
}

func PaymentText(user *models.User, res *models.PaymentResult) string {
	var sb strings.Builder
	sb.WriteString("Payment recorded\n")
	fmt.Fprintf(&sb, "Employee: %s (%s)\n", user.FullName, user.EmployeeCode)
	fmt.Fprintf(&sb, "Orders paid: %d\n", res.PaidCount)
	fmt.Fprintf(&sb, "Amount: %s", res.TotalPaid.StringFixed(2))
	return sb.String()
}
