package services

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricedLine is an order line whose meal price is already known.
type PricedLine struct {
	MealID   int64
	MenuDate time.Time
	Quantity int
	Price    decimal.Decimal
}

// PlannedOrder is one unit to be inserted as a meal_orders row.
type PlannedOrder struct {
	MealID         int64
	MenuDate       time.Time
	Price          decimal.Decimal
	PortionApplied bool
	PortionAmount  decimal.Decimal
}

// AllocatePortions expands lines into single units and grants the daily
// subsidy to the first unit of every date not listed in subsidised.
// A zero company portion grants nothing. Quantities are bounded by
// MaxUnitsPerLine and MaxUnitsPerRequest.
func AllocatePortions(lines []PricedLine, companyPortion decimal.Decimal, subsidised map[string]bool) ([]PlannedOrder, error) {
	units := 0
	for i, l := range lines {
		if l.Quantity < 1 {
			return nil, invalidf("line %d: quantity must be at least 1", i+1)
		}
		if l.Quantity > MaxUnitsPerLine {
			return nil, invalidf("line %d: quantity must be at most %d", i+1, MaxUnitsPerLine)
		}
		units += l.Quantity
	}
	if units > MaxUnitsPerRequest {
		return nil, invalidf("at most %d units per request", MaxUnitsPerRequest)
	}

	granted := make(map[string]bool, len(subsidised))
	for k, v := range subsidised {
		granted[k] = v
	}

	out := make([]PlannedOrder, 0, units)
	for _, l := range lines {
		key := DateKey(l.MenuDate)
		for q := 0; q < l.Quantity; q++ {
			unit := PlannedOrder{
				MealID:        l.MealID,
				MenuDate:      l.MenuDate,
				Price:         l.Price,
				PortionAmount: decimal.Zero,
			}
			if companyPortion.IsPositive() && !granted[key] {
				unit.PortionApplied = true
				unit.PortionAmount = decimal.Min(companyPortion, l.Price)
				granted[key] = true
			}
			out = append(out, unit)
		}
	}
	return out, nil
}
