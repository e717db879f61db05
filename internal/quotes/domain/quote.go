package domain

import (
	"time"

	"github.com/google/uuid"
)

// QuoteType is the transport mode a quote is priced for.
type QuoteType string

const (
	QuoteTypeOcean QuoteType = "ocean"
	QuoteTypeAir   QuoteType = "air"
)

// Valid reports whether t is a known quote type.
func (t QuoteType) Valid() bool {
	return t == QuoteTypeOcean || t == QuoteTypeAir
}

// Status is the stored workflow state of a quote.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	// StatusExpired is never stored. See Quote.EffectiveStatus.
	StatusExpired Status = "expired"
)

// Party is a snapshot of a customer or forwarder taken when the quote is saved.
type Party struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Company string    `json:"company"`
	Email   string    `json:"email"`
	Phone   string    `json:"phone,omitempty"`
}

// Location is a snapshot of a port or airport, or free city/country text.
type Location struct {
	ID      *uuid.UUID `json:"id,omitempty"`
	Name    string     `json:"name,omitempty"`
	Code    string     `json:"code,omitempty"`
	City    string     `json:"city"`
	Country string     `json:"country"`
}

// CargoItem describes one line of goods.
type CargoItem struct {
	Description string  `json:"description"`
	Pieces      int     `json:"pieces"`
	PackageType string  `json:"packageType"`
	GrossWeight float64 `json:"grossWeight"`
	NetWeight   float64 `json:"netWeight"`
	Volume      float64 `json:"volume"`
	NcmHsCode   string  `json:"ncmHsCode,omitempty"`
}

// Validity is the window a quote can be accepted in.
type Validity struct {
	IssuedDate time.Time `json:"issuedDate"`
	ValidUntil time.Time `json:"validUntil"`
}

// UserRef identifies the staff member who created a document.
type UserRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name,omitempty"`
	Email string    `json:"email"`
}

// Content is the part of a quote a manager edits while it is a draft.
type Content struct {
	Type             QuoteType   `json:"type"`
	Shipper          Party       `json:"shipper"`
	Consignee        Party       `json:"consignee"`
	Agent            *Party      `json:"agent,omitempty"`
	Origin           Location    `json:"origin"`
	Destination      Location    `json:"destination"`
	CargoDetails     []CargoItem `json:"cargoDetails"`
	Currency         string      `json:"currency"`
	Validity         Validity    `json:"validity"`
	Terms            []string    `json:"terms"`
	Notes            string      `json:"notes"`
	Incoterm         string      `json:"incoterm"`
	FreightCondition string      `json:"freightCondition"`
	AgentReference   string      `json:"agentReference,omitempty"`
}

// Quote is the aggregate persisted in the quotes collection. Subtotal, Taxes
// and Total are copies of the derived totals of Costs and TaxRate.
type Quote struct {
	ID        uuid.UUID `json:"id"`
	Reference string    `json:"reference"`
	Status    Status    `json:"status"`
	Content

	Costs    []CostLine `json:"costs"`
	TaxRate  float64    `json:"taxRate"`
	Subtotal float64    `json:"subtotal"`
	Taxes    float64    `json:"taxes"`
	Total    float64    `json:"total"`

	CreatedBy  UserRef    `json:"createdBy"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	SentAt     *time.Time `json:"sentAt,omitempty"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
	RejectedAt *time.Time `json:"rejectedAt,omitempty"`
}

// CostSheet rebuilds the sheet from the stored lines.
func (q Quote) CostSheet() (CostSheet, error) {
	return NewCostSheet(q.Costs, q.TaxRate)
}

// WithCostSheet copies the sheet's lines and totals onto the quote.
func (q Quote) WithCostSheet(sheet CostSheet) Quote {
	t := sheet.Totals()
	q.Costs = sheet.Lines()
	q.TaxRate = sheet.TaxRate()
	q.Subtotal = t.Subtotal
	q.Taxes = t.TaxAmount
	q.Total = t.Total
	return q
}

// Totals returns the totals recomputed from Costs and TaxRate.
func (q Quote) Totals() Totals {
	return RecomputeTotals(q.Costs, q.TaxRate)
}

// EffectiveStatus projects StatusExpired for a sent quote whose validity has
// passed. The stored status is never changed by expiry.
func (q Quote) EffectiveStatus(now time.Time) Status {
	if q.Status == StatusSent && !q.Validity.ValidUntil.IsZero() && now.After(q.Validity.ValidUntil) {
		return StatusExpired
	}
	return q.Status
}
