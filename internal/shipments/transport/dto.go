package transport

import (
	quotesdomain "freight_backoffice/internal/quotes/domain"
	quotestransport "freight_backoffice/internal/quotes/transport"
	"freight_backoffice/internal/shipments/domain"

	"github.com/google/uuid"
)

// ── Requests ──────────────────────────────────────────────────────────────────

// PartyRef selects a customer or freight forwarder record by id.
type PartyRef struct {
	ID uuid.UUID `json:"id"`
}

// PlaceRequest is a free-text origin or destination.
type PlaceRequest struct {
	City    string `json:"city" validate:"max=200"`
	Country string `json:"country" validate:"max=100"`
	Code    string `json:"code" validate:"max=10"`
	Name    string `json:"name" validate:"max=200"`
}

// ContainerRequest is one ocean container.
type ContainerRequest struct {
	Type       string  `json:"type" validate:"max=20"`
	Number     string  `json:"number" validate:"max=20"`
	SealNumber string  `json:"sealNumber" validate:"max=50"`
	Tare       float64 `json:"tare" validate:"min=0"`
	VGM        float64 `json:"vgm" validate:"min=0"`
	Status     string  `json:"status" validate:"max=100"`
}

// ShipmentRequest is the body of create and update.
type ShipmentRequest struct {
	Status              string                             `json:"status" validate:"omitempty,shipmentstatus"`
	BRLReference        string                             `json:"brlReference" validate:"max=100"`
	ShipperReference    string                             `json:"shipperReference" validate:"max=100"`
	ConsigneeReference  string                             `json:"consigneeReference" validate:"max=100"`
	AgentReference      string                             `json:"agentReference" validate:"max=100"`
	Shipper             PartyRef                           `json:"shipper"`
	Consignee           PartyRef                           `json:"consignee"`
	Agent               *PartyRef                          `json:"agent"`
	Origin              PlaceRequest                       `json:"origin"`
	Destination         PlaceRequest                       `json:"destination"`
	Schedule            domain.Schedule                    `json:"schedule"`
	CargoDetails        []quotestransport.CargoItemRequest `json:"cargoDetails" validate:"max=200,dive"`
	Containers          []ContainerRequest                 `json:"containers" validate:"max=200,dive"`
	BLNumber            string                             `json:"blNumber" validate:"max=50"`
	AWBNumber           string                             `json:"awbNumber" validate:"max=50"`
	CRTNumber           string                             `json:"crtNumber" validate:"max=50"`
	DueNumber           string                             `json:"dueNumber" validate:"max=50"`
	CustomsStatus       string                             `json:"customsStatus" validate:"omitempty,oneof=Green Yellow Red"`
	SpecialInstructions string                             `json:"specialInstructions" validate:"max=2000"`
	Costs               []quotestransport.CostLineRequest  `json:"costs" validate:"max=200,dive"`
	Active              *bool                              `json:"active"`
}

// Details converts the request. Party snapshots are resolved by the service
// and only carry the selected ids here. Active defaults to true.
func (r ShipmentRequest) Details() domain.Details {
	d := domain.Details{
		Status:              domain.Status(r.Status),
		BRLReference:        r.BRLReference,
		ShipperReference:    r.ShipperReference,
		ConsigneeReference:  r.ConsigneeReference,
		AgentReference:      r.AgentReference,
		Shipper:             domain.Party{ID: r.Shipper.ID},
		Consignee:           domain.Party{ID: r.Consignee.ID},
		Origin:              domain.Place(r.Origin),
		Destination:         domain.Place(r.Destination),
		Schedule:            r.Schedule,
		CargoDetails:        make([]quotesdomain.CargoItem, 0, len(r.CargoDetails)),
		BLNumber:            r.BLNumber,
		AWBNumber:           r.AWBNumber,
		CRTNumber:           r.CRTNumber,
		DueNumber:           r.DueNumber,
		CustomsStatus:       domain.CustomsStatus(r.CustomsStatus),
		SpecialInstructions: r.SpecialInstructions,
		Costs:               make([]quotesdomain.CostLine, 0, len(r.Costs)),
		Active:              r.Active == nil || *r.Active,
	}
	if r.Agent != nil && r.Agent.ID != uuid.Nil {
		d.Agent = &domain.Party{ID: r.Agent.ID}
	}
	for _, c := range r.CargoDetails {
		d.CargoDetails = append(d.CargoDetails, quotesdomain.CargoItem(c))
	}
	for _, c := range r.Containers {
		d.Containers = append(d.Containers, domain.Container(c))
	}
	for _, c := range r.Costs {
		d.Costs = append(d.Costs, c.ToDomain())
	}
	return d
}

// TrackingEventRequest is the body of POST /shipments/:type/:id/events.
type TrackingEventRequest struct {
	Status      string `json:"status" validate:"required,shipmentstatus"`
	Description string `json:"description" validate:"required,max=500"`
	Location    string `json:"location" validate:"max=200"`
}

// ListShipmentsRequest is the dashboard filter.
type ListShipmentsRequest struct {
	Type   string `form:"type" validate:"omitempty,oneof=ocean air airfreight truck"`
	Status string `form:"status" validate:"omitempty,shipmentstatus"`
	Search string `form:"search" validate:"max=200"`
}

// SearchRequest is the tracking number lookup.
type SearchRequest struct {
	Number string `form:"number" validate:"required,max=100"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// ShipmentResponse is a shipment with derived values.
type ShipmentResponse struct {
	domain.Shipment
	TrackingNumber string              `json:"trackingNumber"`
	Totals         quotesdomain.Totals `json:"totals"`
}

// ShipmentListResponse is a merged, newest-first list.
type ShipmentListResponse struct {
	Items []ShipmentResponse `json:"items"`
	Total int                `json:"total"`
}

// NewShipmentResponse derives the response for s.
func NewShipmentResponse(s domain.Shipment) ShipmentResponse {
	return ShipmentResponse{
		Shipment:       s,
		TrackingNumber: s.TrackingNumber(),
		Totals:         s.Totals().Rounded(),
	}
}

// NewShipmentListResponse wraps items.
func NewShipmentListResponse(items []domain.Shipment) ShipmentListResponse {
	out := make([]ShipmentResponse, 0, len(items))
	for _, s := range items {
		out = append(out, NewShipmentResponse(s))
	}
	return ShipmentListResponse{Items: out, Total: len(out)}
}
