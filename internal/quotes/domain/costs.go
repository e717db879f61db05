package domain

import (
	"fmt"
	"math"
	"strings"

	"freight_backoffice/platform/apperr"
)

// CostLine is one charge on a quote or shipment. It has no identity of its own
// and lives embedded in its parent document.
type CostLine struct {
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Unit        Unit     `json:"unit"`
	Quantity    int      `json:"quantity"`
	Amount      float64  `json:"amount"`
	Mandatory   bool     `json:"mandatory"`
	Notes       string   `json:"notes"`
}

// EffectiveQuantity treats an unset quantity as 1.
func (l CostLine) EffectiveQuantity() int {
	if l.Quantity < 1 {
		return 1
	}
	return l.Quantity
}

// LineTotal is amount times effective quantity.
func (l CostLine) LineTotal() float64 {
	return l.Amount * float64(l.EffectiveQuantity())
}

// NewLine builds the default line for category. A non-empty preset fills
// description and unit from the catalog; an unknown preset name is kept as
// the description with the default unit.
func NewLine(category Category, preset string) CostLine {
	line := CostLine{
		Category:  category,
		Unit:      UnitPerShipment,
		Quantity:  1,
		Amount:    0,
		Mandatory: category == CategoryFreight,
	}
	preset = strings.TrimSpace(preset)
	if preset == "" {
		return line
	}
	line.Description = preset
	if p, ok := FindPreset(category, preset); ok {
		line.Unit = p.Unit
	}
	return line
}

// ValidateLine checks the enumerations and numeric bounds of a line.
func ValidateLine(l CostLine) error {
	if problems := lineProblems(l); len(problems) > 0 {
		return apperr.Validation("invalid cost line").WithDetails(problems)
	}
	return nil
}

func lineProblems(l CostLine) map[string]string {
	problems := map[string]string{}
	if !l.Category.Valid() {
		problems["category"] = fmt.Sprintf("unknown category %q", l.Category)
	}
	if !l.Unit.Valid() {
		problems["unit"] = fmt.Sprintf("unknown unit %q", l.Unit)
	}
	if l.Quantity < 0 {
		problems["quantity"] = "must be positive"
	}
	if l.Amount < 0 || math.IsNaN(l.Amount) || math.IsInf(l.Amount, 0) {
		problems["amount"] = "must be a non-negative number"
	}
	return problems
}

// CostSheet is an immutable ordered list of cost lines plus a tax rate. Every
// method that changes it returns a new sheet with totals already recomputed.
type CostSheet struct {
	lines   []CostLine
	taxRate float64
	totals  Totals
}

// NewCostSheet validates lines and builds a sheet. Unset quantities are
// normalised to 1.
func NewCostSheet(lines []CostLine, taxRate float64) (CostSheet, error) {
	if !validTaxRate(taxRate) {
		return CostSheet{}, errTaxRate()
	}
	copied := make([]CostLine, len(lines))
	problems := map[string]string{}
	for i, l := range lines {
		for field, msg := range lineProblems(l) {
			problems[fmt.Sprintf("costs[%d].%s", i, field)] = msg
		}
		l.Quantity = l.EffectiveQuantity()
		copied[i] = l
	}
	if len(problems) > 0 {
		return CostSheet{}, apperr.Validation("invalid cost lines").WithDetails(problems)
	}
	return newSheet(copied, taxRate), nil
}

func newSheet(lines []CostLine, taxRate float64) CostSheet {
	return CostSheet{
		lines:   lines,
		taxRate: taxRate,
		totals:  RecomputeTotals(lines, taxRate),
	}
}

// Lines returns a copy of the lines in order.
func (s CostSheet) Lines() []CostLine {
	out := make([]CostLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len is the number of lines.
func (s CostSheet) Len() int { return len(s.lines) }

// TaxRate is the tax percentage applied to the subtotal.
func (s CostSheet) TaxRate() float64 { return s.taxRate }

// Totals returns the totals derived from the current lines and tax rate.
func (s CostSheet) Totals() Totals { return s.totals }

// AddLine appends the default line for category (see NewLine).
func (s CostSheet) AddLine(category Category, preset string) CostSheet {
	return s.Append(NewLine(category, preset))
}

// Append adds an already built line. The caller is expected to have run
// ValidateLine.
func (s CostSheet) Append(line CostLine) CostSheet {
	line.Quantity = line.EffectiveQuantity()
	lines := make([]CostLine, len(s.lines), len(s.lines)+1)
	copy(lines, s.lines)
	return newSheet(append(lines, line), s.taxRate)
}

// RemoveLine drops the line at index. An index outside the sheet is a
// validation error and the receiver is returned unchanged.
func (s CostSheet) RemoveLine(index int) (CostSheet, error) {
	if index < 0 || index >= len(s.lines) {
		return s, apperr.Validation(fmt.Sprintf("cost line %d does not exist", index)).
			WithDetails(map[string]int{"index": index, "lines": len(s.lines)})
	}
	lines := make([]CostLine, 0, len(s.lines)-1)
	lines = append(lines, s.lines[:index]...)
	lines = append(lines, s.lines[index+1:]...)
	return newSheet(lines, s.taxRate), nil
}

// UpdateLine replaces the line at index.
func (s CostSheet) UpdateLine(index int, line CostLine) (CostSheet, error) {
	if index < 0 || index >= len(s.lines) {
		return s, apperr.Validation(fmt.Sprintf("cost line %d does not exist", index))
	}
	if err := ValidateLine(line); err != nil {
		return s, err
	}
	lines := s.Lines()
	line.Quantity = line.EffectiveQuantity()
	lines[index] = line
	return newSheet(lines, s.taxRate), nil
}

// WithTaxRate returns the sheet with a new tax rate.
func (s CostSheet) WithTaxRate(rate float64) (CostSheet, error) {
	if !validTaxRate(rate) {
		return s, errTaxRate()
	}
	return newSheet(s.lines, rate), nil
}

func validTaxRate(rate float64) bool {
	return rate >= 0 && !math.IsInf(rate, 0)
}

func errTaxRate() error {
	return apperr.Validation("tax rate must be a non-negative number").
		WithDetails(map[string]string{"taxRate": "must be a non-negative number"})
}

// LineGroup is the set of lines of one category, with their sheet indexes.
type LineGroup struct {
	Category    Category   `json:"category"`
	DisplayName string     `json:"displayName"`
	Indexes     []int      `json:"indexes"`
	Lines       []CostLine `json:"lines"`
	Subtotal    float64    `json:"subtotal"`
}

// Group returns non-empty category groups in catalog order.
func (s CostSheet) Group() []LineGroup {
	groups := make([]LineGroup, 0, len(Categories))
	for _, cat := range Categories {
		g := LineGroup{Category: cat, DisplayName: cat.DisplayName()}
		for i, l := range s.lines {
			if l.Category != cat {
				continue
			}
			g.Indexes = append(g.Indexes, i)
			g.Lines = append(g.Lines, l)
			g.Subtotal += l.LineTotal()
		}
		if len(g.Lines) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}
