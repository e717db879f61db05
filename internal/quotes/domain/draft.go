package domain

import (
	"fmt"
	"strings"
	"time"

	"freight_backoffice/platform/apperr"

	"github.com/google/uuid"
)

// ApplyDefaults fills the blanks of content the way a new quote form starts.
func ApplyDefaults(c Content, now time.Time, validityDays int) Content {
	if validityDays <= 0 {
		validityDays = DefaultValidityDays
	}
	if c.Type == "" {
		c.Type = QuoteTypeOcean
	}
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.Validity.IssuedDate.IsZero() {
		c.Validity.IssuedDate = now.UTC()
	}
	if c.Validity.ValidUntil.IsZero() {
		c.Validity.ValidUntil = c.Validity.IssuedDate.AddDate(0, 0, validityDays)
	}
	if c.Terms == nil {
		c.Terms = append([]string(nil), DefaultTerms...)
	}
	if c.Incoterm == "" {
		c.Incoterm = DefaultIncoterm
	}
	if c.FreightCondition == "" {
		c.FreightCondition = DefaultFreightCondition
	}
	if c.CargoDetails == nil {
		c.CargoDetails = []CargoItem{}
	}
	return c
}

// ValidateContent checks the fields a quote cannot be saved without.
func ValidateContent(c Content) error {
	problems := map[string]string{}
	if !c.Type.Valid() {
		problems["type"] = fmt.Sprintf("unknown quote type %q", c.Type)
	}
	if len(c.Currency) != 3 {
		problems["currency"] = "must be a 3-letter ISO code"
	}
	if c.Validity.ValidUntil.Before(c.Validity.IssuedDate) {
		problems["validity.validUntil"] = "must not be before issuedDate"
	}
	if c.Incoterm != "" && !IsIncotermLabel(c.Incoterm) {
		problems["incoterm"] = fmt.Sprintf("unknown incoterm %q", c.Incoterm)
	}
	if c.FreightCondition != "" && !IsFreightCondition(c.FreightCondition) {
		problems["freightCondition"] = fmt.Sprintf("unknown freight condition %q", c.FreightCondition)
	}
	for i, item := range c.CargoDetails {
		if item.Pieces < 0 || item.GrossWeight < 0 || item.NetWeight < 0 || item.Volume < 0 {
			problems[fmt.Sprintf("cargoDetails[%d]", i)] = "quantities must not be negative"
		}
	}
	if len(problems) > 0 {
		return apperr.Validation("invalid quote").WithDetails(problems)
	}
	return nil
}

// NewDraft assembles a quote in draft status.
func NewDraft(id uuid.UUID, reference string, content Content, sheet CostSheet, by UserRef, now time.Time) Quote {
	now = now.UTC()
	q := Quote{
		ID:        id,
		Reference: reference,
		Status:    StatusDraft,
		Content:   content,
		CreatedBy: by,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return q.WithCostSheet(sheet)
}

// FormatReference renders a quote reference such as BRL-Q-2024-0042.
func FormatReference(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}

// ReferenceSequence is the store counter name for references issued in year.
func ReferenceSequence(prefix string, year int) string {
	return fmt.Sprintf("quote-reference:%s:%d", prefix, year)
}
