// Package domain holds the shipment aggregate and its append-only tracking
// log. Nothing here performs I/O.
package domain

import (
	"fmt"
	"strings"
	"time"

	quotesdomain "freight_backoffice/internal/quotes/domain"
	"freight_backoffice/platform/apperr"

	"github.com/google/uuid"
)

// Type is the transport mode. Each type lives in its own collection.
type Type string

const (
	TypeOcean Type = "ocean"
	TypeAir   Type = "air"
	TypeTruck Type = "truck"
)

// Types lists every shipment type in query order.
var Types = []Type{TypeOcean, TypeAir, TypeTruck}

var typeInfo = map[Type]struct {
	collection string
	label      string
}{
	TypeOcean: {"oceanShipments", "Ocean"},
	TypeAir:   {"airShipments", "Air"},
	TypeTruck: {"truckShipments", "Truck"},
}

// ParseType accepts a type name from a URL. "airfreight" is an alias of air.
func ParseType(s string) (Type, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "airfreight" {
		return TypeAir, true
	}
	t := Type(s)
	_, ok := typeInfo[t]
	return t, ok
}

// Collection is the document store collection for t.
func (t Type) Collection() string { return typeInfo[t].collection }

// Label is the capitalised display name, e.g. "Ocean".
func (t Type) Label() string { return typeInfo[t].label }

// NumberField is the JSON field holding the tracking number for t.
func (t Type) NumberField() string {
	switch t {
	case TypeOcean:
		return "blNumber"
	case TypeAir:
		return "awbNumber"
	default:
		return "crtNumber"
	}
}

// Status is the current leg of a shipment. Any status may follow any other.
type Status string

const (
	StatusBooked    Status = "booked"
	StatusInTransit Status = "in-transit"
	StatusArrived   Status = "arrived"
	StatusDelayed   Status = "delayed"
)

// Statuses lists every known status.
var Statuses = []Status{StatusBooked, StatusInTransit, StatusArrived, StatusDelayed}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ValidateStatus returns a validation error for an unknown status.
func ValidateStatus(s Status) error {
	if !s.Valid() {
		return apperr.Validation(fmt.Sprintf("unknown shipment status %q", s)).
			WithDetails(map[string]string{"status": "must be one of booked, in-transit, arrived, delayed"})
	}
	return nil
}

// CustomsStatus is the clearance channel.
type CustomsStatus string

const (
	CustomsGreen  CustomsStatus = "Green"
	CustomsYellow CustomsStatus = "Yellow"
	CustomsRed    CustomsStatus = "Red"
)

// Party is a snapshot of a customer or agent. UserID links a customer
// record to the login that may see the shipment.
type Party struct {
	ID      uuid.UUID  `json:"id"`
	Name    string     `json:"name"`
	Company string     `json:"company,omitempty"`
	Email   string     `json:"email,omitempty"`
	Phone   string     `json:"phone,omitempty"`
	UserID  *uuid.UUID `json:"userId,omitempty"`
}

// Manager is the staff member responsible for the shipment.
type Manager struct {
	UID   uuid.UUID `json:"uid"`
	Name  string    `json:"name,omitempty"`
	Email string    `json:"email"`
}

// Place is an origin or destination.
type Place struct {
	City    string `json:"city"`
	Country string `json:"country"`
	Code    string `json:"code,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Schedule holds the planned and actual milestones. The ocean-only cut-offs
// are left nil for other types.
type Schedule struct {
	EstimatedDeparture *time.Time `json:"estimatedDeparture,omitempty"`
	ActualDeparture    *time.Time `json:"actualDeparture,omitempty"`
	EstimatedArrival   *time.Time `json:"estimatedArrival,omitempty"`
	ActualArrival      *time.Time `json:"actualArrival,omitempty"`
	DraftBLDate        *time.Time `json:"draftBlDate,omitempty"`
	VGMDeadline        *time.Time `json:"vgmDeadline,omitempty"`
	CargoCutOff        *time.Time `json:"cargoCutOff,omitempty"`
}

// Container is one ocean container.
type Container struct {
	Type       string  `json:"type"`
	Number     string  `json:"number"`
	SealNumber string  `json:"sealNumber"`
	Tare       float64 `json:"tare"`
	VGM        float64 `json:"vgm"`
	Status     string  `json:"status"`
}

// DefaultContainerStatus is used for containers added without a status.
const DefaultContainerStatus = "To be retrieved"

// TrackingEvent is one immutable entry of the tracking log.
type TrackingEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Status      Status    `json:"status"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
}

// Details is the part of a shipment a manager edits.
type Details struct {
	Status              Status                   `json:"status"`
	BRLReference        string                   `json:"brlReference"`
	ShipperReference    string                   `json:"shipperReference"`
	ConsigneeReference  string                   `json:"consigneeReference"`
	AgentReference      string                   `json:"agentReference"`
	Shipper             Party                    `json:"shipper"`
	Consignee           Party                    `json:"consignee"`
	Agent               *Party                   `json:"agent,omitempty"`
	Origin              Place                    `json:"origin"`
	Destination         Place                    `json:"destination"`
	Schedule            Schedule                 `json:"schedule"`
	CargoDetails        []quotesdomain.CargoItem `json:"cargoDetails"`
	Containers          []Container              `json:"containers,omitempty"`
	BLNumber            string                   `json:"blNumber,omitempty"`
	AWBNumber           string                   `json:"awbNumber,omitempty"`
	CRTNumber           string                   `json:"crtNumber,omitempty"`
	DueNumber           string                   `json:"dueNumber,omitempty"`
	CustomsStatus       CustomsStatus            `json:"customsStatus"`
	SpecialInstructions string                   `json:"specialInstructions,omitempty"`
	Costs               []quotesdomain.CostLine  `json:"costs"`
	Active              bool                     `json:"active"`
}

// Shipment is the aggregate stored in one of the per-type collections.
type Shipment struct {
	ID   uuid.UUID `json:"id"`
	Type Type      `json:"type"`
	Details

	Manager         Manager         `json:"manager"`
	TrackingHistory []TrackingEvent `json:"trackingHistory"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// TrackingNumber is the BL, AWB or CRT number depending on the type.
func (s Shipment) TrackingNumber() string {
	switch s.Type {
	case TypeOcean:
		return s.BLNumber
	case TypeAir:
		return s.AWBNumber
	default:
		return s.CRTNumber
	}
}

// OwnedBy reports whether the customer login userID is the shipper.
func (s Shipment) OwnedBy(userID uuid.UUID) bool {
	return userID != uuid.Nil && s.Shipper.UserID != nil && *s.Shipper.UserID == userID
}

// Totals derives the cost totals of the shipment (tax-free).
func (s Shipment) Totals() quotesdomain.Totals {
	return quotesdomain.RecomputeTotals(s.Costs, 0)
}
