package domain

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var displayPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatMoney renders amount rounded to two decimals with the ISO currency
// symbol, e.g. "USD 1,234.50". Unknown codes render with the bare code.
func FormatMoney(amount float64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return displayPrinter.Sprintf("%s %.2f", code, Round2(amount))
	}
	return displayPrinter.Sprint(currency.ISO(unit.Amount(Round2(amount))))
}

// DisplayTotals is the rounded, formatted view of a totals set.
type DisplayTotals struct {
	Subtotal  string `json:"subtotal"`
	TaxAmount string `json:"taxAmount"`
	Total     string `json:"total"`
}

// Display formats t in code.
func (t Totals) Display(code string) DisplayTotals {
	return DisplayTotals{
		Subtotal:  FormatMoney(t.Subtotal, code),
		TaxAmount: FormatMoney(t.TaxAmount, code),
		Total:     FormatMoney(t.Total, code),
	}
}
