package domain

import "math"

// Totals are always derived from a cost line set and a tax rate.
type Totals struct {
	Subtotal  float64 `json:"subtotal"`
	TaxRate   float64 `json:"taxRate"`
	TaxAmount float64 `json:"taxAmount"`
	Total     float64 `json:"total"`
}

// RecomputeTotals sums amount times effective quantity over lines and applies
// taxRate as a percentage. Full float64 precision is kept; see Rounded.
func RecomputeTotals(lines []CostLine, taxRate float64) Totals {
	var subtotal float64
	for _, l := range lines {
		subtotal += l.LineTotal()
	}
	tax := subtotal * taxRate / 100
	return Totals{
		Subtotal:  subtotal,
		TaxRate:   taxRate,
		TaxAmount: tax,
		Total:     subtotal + tax,
	}
}

// Rounded returns the totals rounded half away from zero to two decimals,
// for display.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal:  Round2(t.Subtotal),
		TaxRate:   t.TaxRate,
		TaxAmount: Round2(t.TaxAmount),
		Total:     Round2(t.Total),
	}
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
