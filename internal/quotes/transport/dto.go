package transport

import (
	"time"

	"freight_backoffice/internal/quotes/domain"

	"github.com/google/uuid"
)

// ── Requests ──────────────────────────────────────────────────────────────────

// CostLineRequest is the input for a single cost line.
type CostLineRequest struct {
	Category    string  `json:"category" validate:"required,costcategory"`
	Description string  `json:"description" validate:"max=300"`
	Unit        string  `json:"unit" validate:"omitempty,costunit"`
	Quantity    int     `json:"quantity" validate:"min=0"`
	Amount      float64 `json:"amount" validate:"min=0"`
	Mandatory   bool    `json:"mandatory"`
	Notes       string  `json:"notes" validate:"max=1000"`
}

// ToDomain converts the request. A missing unit becomes PerShipment.
func (r CostLineRequest) ToDomain() domain.CostLine {
	unit := domain.Unit(r.Unit)
	if unit == "" {
		unit = domain.UnitPerShipment
	}
	return domain.CostLine{
		Category:    domain.Category(r.Category),
		Description: r.Description,
		Unit:        unit,
		Quantity:    r.Quantity,
		Amount:      r.Amount,
		Mandatory:   r.Mandatory,
		Notes:       r.Notes,
	}
}

// PartyRef selects a master data record by id.
type PartyRef struct {
	ID uuid.UUID `json:"id"`
}

// LocationRequest selects a port/airport by id or gives free city/country text.
type LocationRequest struct {
	ID      *uuid.UUID `json:"id"`
	City    string     `json:"city" validate:"max=200"`
	Country string     `json:"country" validate:"max=100"`
}

// CargoItemRequest is one line of goods.
type CargoItemRequest struct {
	Description string  `json:"description" validate:"max=500"`
	Pieces      int     `json:"pieces" validate:"min=0"`
	PackageType string  `json:"packageType" validate:"max=100"`
	GrossWeight float64 `json:"grossWeight" validate:"min=0"`
	NetWeight   float64 `json:"netWeight" validate:"min=0"`
	Volume      float64 `json:"volume" validate:"min=0"`
	NcmHsCode   string  `json:"ncmHsCode" validate:"max=50"`
}

// QuoteRequest is the body of create and update.
type QuoteRequest struct {
	Type             string             `json:"type" validate:"omitempty,oneof=ocean air"`
	Shipper          PartyRef           `json:"shipper"`
	Consignee        PartyRef           `json:"consignee"`
	Agent            *PartyRef          `json:"agent"`
	Origin           LocationRequest    `json:"origin"`
	Destination      LocationRequest    `json:"destination"`
	CargoDetails     []CargoItemRequest `json:"cargoDetails" validate:"omitempty,dive"`
	Costs            []CostLineRequest  `json:"costs" validate:"omitempty,dive"`
	TaxRate          float64            `json:"taxRate" validate:"min=0,max=100"`
	Currency         string             `json:"currency" validate:"omitempty,len=3,alpha"`
	IssuedDate       *time.Time         `json:"issuedDate"`
	ValidUntil       *time.Time         `json:"validUntil"`
	Terms            []string           `json:"terms" validate:"omitempty,dive,max=500"`
	Notes            string             `json:"notes" validate:"max=5000"`
	Incoterm         string             `json:"incoterm" validate:"max=100"`
	FreightCondition string             `json:"freightCondition" validate:"max=100"`
	AgentReference   string             `json:"agentReference" validate:"max=100"`
}

// Content converts the request into quote content carrying bare references.
// Party and location snapshots are filled in by the service.
func (r QuoteRequest) Content() domain.Content {
	c := domain.Content{
		Type:             domain.QuoteType(r.Type),
		Shipper:          domain.Party{ID: r.Shipper.ID},
		Consignee:        domain.Party{ID: r.Consignee.ID},
		Origin:           domain.Location{ID: r.Origin.ID, City: r.Origin.City, Country: r.Origin.Country},
		Destination:      domain.Location{ID: r.Destination.ID, City: r.Destination.City, Country: r.Destination.Country},
		Currency:         r.Currency,
		Terms:            r.Terms,
		Notes:            r.Notes,
		Incoterm:         r.Incoterm,
		FreightCondition: r.FreightCondition,
		AgentReference:   r.AgentReference,
	}
	if r.Agent != nil && r.Agent.ID != uuid.Nil {
		c.Agent = &domain.Party{ID: r.Agent.ID}
	}
	if r.IssuedDate != nil {
		c.Validity.IssuedDate = r.IssuedDate.UTC()
	}
	if r.ValidUntil != nil {
		c.Validity.ValidUntil = r.ValidUntil.UTC()
	}
	if r.CargoDetails != nil {
		c.CargoDetails = make([]domain.CargoItem, len(r.CargoDetails))
		for i, it := range r.CargoDetails {
			c.CargoDetails[i] = domain.CargoItem(it)
		}
	}
	return c
}

// CostLines converts the requested cost lines.
func (r QuoteRequest) CostLines() []domain.CostLine {
	return toLines(r.Costs)
}

// CalculationRequest is the body of the totals preview.
type CalculationRequest struct {
	Costs    []CostLineRequest `json:"costs" validate:"omitempty,dive"`
	TaxRate  float64           `json:"taxRate" validate:"min=0,max=100"`
	Currency string            `json:"currency" validate:"omitempty,len=3,alpha"`
}

// CostLines converts the requested cost lines.
func (r CalculationRequest) CostLines() []domain.CostLine {
	return toLines(r.Costs)
}

// AddCostRequest appends one line to a draft. Preset names a catalog charge
// of the category; explicit fields override what the preset filled in.
type AddCostRequest struct {
	Category    string   `json:"category" validate:"required,costcategory"`
	Preset      string   `json:"preset" validate:"max=300"`
	Description *string  `json:"description" validate:"omitempty,max=300"`
	Unit        *string  `json:"unit" validate:"omitempty,costunit"`
	Quantity    *int     `json:"quantity" validate:"omitempty,min=0"`
	Amount      *float64 `json:"amount" validate:"omitempty,min=0"`
	Mandatory   *bool    `json:"mandatory"`
	Notes       *string  `json:"notes" validate:"omitempty,max=1000"`
}

// Line builds the line to append.
func (r AddCostRequest) Line() domain.CostLine {
	line := domain.NewLine(domain.Category(r.Category), r.Preset)
	if r.Description != nil {
		line.Description = *r.Description
	}
	if r.Unit != nil {
		line.Unit = domain.Unit(*r.Unit)
	}
	if r.Quantity != nil {
		line.Quantity = *r.Quantity
	}
	if r.Amount != nil {
		line.Amount = *r.Amount
	}
	if r.Mandatory != nil {
		line.Mandatory = *r.Mandatory
	}
	if r.Notes != nil {
		line.Notes = *r.Notes
	}
	return line
}

// TaxRateRequest changes the tax percentage of a draft.
type TaxRateRequest struct {
	TaxRate float64 `json:"taxRate" validate:"min=0,max=100"`
}

// ListQuotesRequest is the query string of GET /quotes.
type ListQuotesRequest struct {
	Status string `form:"status" validate:"omitempty,oneof=draft sent accepted rejected expired"`
	Type   string `form:"type" validate:"omitempty,oneof=ocean air"`
	Search string `form:"search" validate:"max=200"`
}

func toLines(in []CostLineRequest) []domain.CostLine {
	out := make([]domain.CostLine, len(in))
	for i, l := range in {
		out[i] = l.ToDomain()
	}
	return out
}

// ── Responses ─────────────────────────────────────────────────────────────────

// QuoteResponse is a stored quote plus its read-time projections.
type QuoteResponse struct {
	domain.Quote
	EffectiveStatus domain.Status        `json:"effectiveStatus"`
	AllowedActions  []domain.Action      `json:"allowedActions"`
	Groups          []domain.LineGroup   `json:"groups"`
	Display         domain.DisplayTotals `json:"display"`
}

// QuoteListResponse wraps a filtered list.
type QuoteListResponse struct {
	Items []QuoteResponse `json:"items"`
	Total int             `json:"total"`
}

// CalculationResponse is the result of a totals preview.
type CalculationResponse struct {
	Lines   []domain.CostLine    `json:"lines"`
	Groups  []domain.LineGroup   `json:"groups"`
	Totals  domain.Totals        `json:"totals"`
	Rounded domain.Totals        `json:"rounded"`
	Display domain.DisplayTotals `json:"display"`
}

// CategoryResponse is one cost category with its preset charges.
type CategoryResponse struct {
	Category    domain.Category `json:"category"`
	DisplayName string          `json:"displayName"`
	Presets     []domain.Preset `json:"presets"`
}

// UnitResponse is one billing unit.
type UnitResponse struct {
	Unit  domain.Unit `json:"unit"`
	Label string      `json:"label"`
}

// CatalogResponse lists the static catalogs used to fill a quote.
type CatalogResponse struct {
	Categories        []CategoryResponse `json:"categories"`
	Units             []UnitResponse     `json:"units"`
	Incoterms         []string           `json:"incoterms"`
	FreightConditions []string           `json:"freightConditions"`
	DefaultTerms      []string           `json:"defaultTerms"`
	DefaultCurrency   string             `json:"defaultCurrency"`
}
