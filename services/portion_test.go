package services

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }

func TestAllocatePortions_TwoUnitsSameDay(t *testing.T) {
	lines := []PricedLine{{MealID: 1, MenuDate: day(10), Quantity: 2, Price: dec("5.00")}}
	plan, err := AllocatePortions(lines, dec("3.00"), nil)
	if err != nil {
		t.Fatalf("AllocatePortions: %v", err)
	}
	if len(plan) != 2 {
		t.Fatalf("got %d units, want 2", len(plan))
	}
	if !plan[0].PortionApplied || !plan[0].PortionAmount.Equal(dec("3.00")) {
		t.Errorf("first unit portion = %v/%s, want true/3.00", plan[0].PortionApplied, plan[0].PortionAmount)
	}
	if plan[1].PortionApplied || !plan[1].PortionAmount.IsZero() {
		t.Errorf("second unit portion = %v/%s, want false/0", plan[1].PortionApplied, plan[1].PortionAmount)
	}
}

func TestAllocatePortions_OnePerDistinctDate(t *testing.T) {
	lines := []PricedLine{
		{MealID: 1, MenuDate: day(10), Quantity: 1, Price: dec("4.00")},
		{MealID: 2, MenuDate: day(11), Quantity: 3, Price: dec("6.00")},
		{MealID: 3, MenuDate: day(10), Quantity: 1, Price: dec("9.00")},
		{MealID: 4, MenuDate: day(12), Quantity: 1, Price: dec("2.00")},
	}
	plan, err := AllocatePortions(lines, dec("3.50"), nil)
	if err != nil {
		t.Fatalf("AllocatePortions: %v", err)
	}
	if len(plan) != 6 {
		t.Fatalf("got %d units, want 6", len(plan))
	}
	perDay := map[string]int{}
	for _, p := range plan {
		if p.PortionApplied {
			perDay[DateKey(p.MenuDate)]++
		}
	}
	for _, d := range []int{10, 11, 12} {
		if got := perDay[DateKey(day(d))]; got != 1 {
			t.Errorf("day %d: %d subsidised units, want 1", d, got)
		}
	}
	// first unit of the 10th is meal 1, not the pricier meal 3
	if plan[0].MealID != 1 || !plan[0].PortionAmount.Equal(dec("3.50")) {
		t.Errorf("day 10 subsidy went to meal %d amount %s", plan[0].MealID, plan[0].PortionAmount)
	}
	// portion is capped by the unit price
	last := plan[len(plan)-1]
	if !last.PortionApplied || !last.PortionAmount.Equal(dec("2.00")) {
		t.Errorf("day 12 portion = %s, want 2.00", last.PortionAmount)
	}
}

func TestAllocatePortions_AlreadySubsidisedDate(t *testing.T) {
	lines := []PricedLine{
		{MealID: 1, MenuDate: day(10), Quantity: 1, Price: dec("5.00")},
		{MealID: 2, MenuDate: day(11), Quantity: 1, Price: dec("5.00")},
	}
	plan, err := AllocatePortions(lines, dec("3.00"), map[string]bool{DateKey(day(10)): true})
	if err != nil {
		t.Fatalf("AllocatePortions: %v", err)
	}
	if plan[0].PortionApplied {
		t.Error("day 10 already had a portion, should not get another")
	}
	if !plan[1].PortionApplied {
		t.Error("day 11 should get the portion")
	}
}

func TestAllocatePortions_ZeroPortionGrantsNothing(t *testing.T) {
	lines := []PricedLine{{MealID: 1, MenuDate: day(10), Quantity: 2, Price: dec("5.00")}}
	plan, err := AllocatePortions(lines, decimal.Zero, nil)
	if err != nil {
		t.Fatalf("AllocatePortions: %v", err)
	}
	for i, p := range plan {
		if p.PortionApplied || !p.PortionAmount.IsZero() {
			t.Errorf("unit %d got a portion with zero company portion", i)
		}
	}
}

func TestAllocatePortions_RejectsBadQuantity(t *testing.T) {
	for _, q := range []int{0, -1} {
		lines := []PricedLine{
			{MealID: 1, MenuDate: day(10), Quantity: 1, Price: dec("5.00")},
			{MealID: 2, MenuDate: day(10), Quantity: q, Price: dec("5.00")},
		}
		plan, err := AllocatePortions(lines, dec("3.00"), nil)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("quantity %d: err = %v, want ErrInvalidInput", q, err)
		}
		if plan != nil {
			t.Errorf("quantity %d: got %d planned units, want none", q, len(plan))
		}
	}
}

func TestAllocatePortions_RejectsOversizedQuantity(t *testing.T) {
	tests := [][]PricedLine{
		{{MealID: 1, MenuDate: day(10), Quantity: 3000000, Price: dec("5.00")}},
		{
			{MealID: 1, MenuDate: day(10), Quantity: MaxUnitsPerLine, Price: dec("5.00")},
			{MealID: 2, MenuDate: day(11), Quantity: MaxUnitsPerLine, Price: dec("5.00")},
			{MealID: 3, MenuDate: day(12), Quantity: MaxUnitsPerLine, Price: dec("5.00")},
		},
	}
	for i, lines := range tests {
		plan, err := AllocatePortions(lines, dec("3.00"), nil)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("case %d: err = %v, want ErrInvalidInput", i, err)
		}
		if plan != nil {
			t.Errorf("case %d: got %d planned units, want none", i, len(plan))
		}
	}

	lines := []PricedLine{{MealID: 1, MenuDate: day(10), Quantity: MaxUnitsPerLine, Price: dec("5.00")}}
	plan, err := AllocatePortions(lines, dec("3.00"), nil)
	if err != nil || len(plan) != MaxUnitsPerLine {
		t.Errorf("at the line limit: err = %v, units = %d", err, len(plan))
	}
}

func TestAllocatePortions_DoesNotMutateInput(t *testing.T) {
	subsidised := map[string]bool{}
	lines := []PricedLine{{MealID: 1, MenuDate: day(10), Quantity: 1, Price: dec("5.00")}}
	if _, err := AllocatePortions(lines, dec("3.00"), subsidised); err != nil {
		t.Fatal(err)
	}
	if len(subsidised) != 0 {
		t.Errorf("subsidised map was modified: %v", subsidised)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-10")
	if err != nil || !d.Equal(day(10)) {
		t.Errorf("ParseDate = %v, %v", d, err)
	}
	if _, err := ParseDate("10/01/2025"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ParseDate bad format err = %v, want ErrInvalidInput", err)
	}
}
