package services

import (
	"context"
	"fmt"
	"io"

	"meal-admin/models"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

type MenuReport struct {
	Menu    *models.Menu
	Meals   []models.MealSummary
	Lines   []models.MenuOrderLine
	Gross   decimal.Decimal
	Portion decimal.Decimal
	Net     decimal.Decimal
}

// BuildMenuReport collects everything printed on a menu's order sheet.
func BuildMenuReport(ctx context.Context, menuID int64) (*MenuReport, error) {
	menu, err := GetMenu(ctx, menuID)
	if err != nil {
		return nil, err
	}
	meals, err := MenuMealSummaries(ctx, menuID)
	if err != nil {
		return nil, fmt.Errorf("meal summaries: %w", err)
	}
	lines, err := MenuOrderLines(ctx, menuID)
	if err != nil {
		return nil, fmt.Errorf("order lines: %w", err)
	}
	r := &MenuReport{Menu: menu, Meals: meals, Lines: lines}
	r.Gross, r.Portion, r.Net = decimal.Zero, decimal.Zero, decimal.Zero
	for _, l := range lines {
		r.Gross = r.Gross.Add(l.Price)
		r.Portion = r.Portion.Add(l.PortionAmount)
		r.Net = r.Net.Add(models.NetAmount(l.Price, l.PortionAmount))
	}
	return r, nil
}

// WriteMenuReportPDF renders the report as an A4 PDF.
func WriteMenuReportPDF(w io.Writer, r *MenuReport) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	title := fmt.Sprintf("%s - %s", r.Menu.SupplierName, DateKey(r.Menu.MenuDate))
	pdf.SetTitle(title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	state := "open"
	if r.Menu.IsFinalized {
		state = "finalized"
	}
	pdf.CellFormat(0, 6, "Menu #"+fmt.Sprint(r.Menu.ID)+" ("+state+")", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(90, 7, "Meal", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, "Price", "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 7, "Qty", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, "Total", "1", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, m := range r.Meals {
		pdf.CellFormat(90, 6, tr(m.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, m.Price.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprint(m.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, m.GrossTotal.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(30, 7, "Code", "1", 0, "L", false, 0, "")
	pdf.CellFormat(55, 7, "Employee", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, "Meal", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, "Net", "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 7, "Payment", "1", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, l := range r.Lines {
		pdf.CellFormat(30, 6, tr(l.EmployeeCode), "1", 0, "L", false, 0, "")
		pdf.CellFormat(55, 6, tr(l.FullName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, tr(l.MealName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, models.NetAmount(l.Price, l.PortionAmount).StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, l.PaymentStatus, "1", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Gross: "+r.Gross.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 7, "Company portion: "+r.Portion.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 7, "Net due: "+r.Net.StringFixed(2), "", 1, "R", false, 0, "")

	return pdf.Output(w)
}
