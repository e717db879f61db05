// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"freight_backoffice/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// Event names.
const (
	NameQuoteSent             = "quotes.quote.sent"
	NameQuoteAccepted         = "quotes.quote.accepted"
	NameQuoteRejected         = "quotes.quote.rejected"
	NameQuoteExpiring         = "quotes.quote.expiring"
	NameShipmentStatusChanged = "shipments.status.changed"
)

// Recipient is a notification target taken from a party snapshot.
type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// =============================================================================
// Quote Domain Events
// =============================================================================

// QuoteSent is published when a draft quote is sent to the customer.
type QuoteSent struct {
	BaseEvent
	QuoteID    uuid.UUID   `json:"quoteId"`
	Reference  string      `json:"reference"`
	Total      float64     `json:"total"`
	Currency   string      `json:"currency"`
	ValidUntil time.Time   `json:"validUntil"`
	Recipients []Recipient `json:"recipients"`
}

func (e QuoteSent) EventName() string { return NameQuoteSent }

// QuoteAccepted is published when the customer accepts a sent quote.
// Snapshot holds the quote document as stored.
type QuoteAccepted struct {
	BaseEvent
	QuoteID   uuid.UUID `json:"quoteId"`
	Reference string    `json:"reference"`
	Snapshot  []byte    `json:"snapshot"`
}

func (e QuoteAccepted) EventName() string { return NameQuoteAccepted }

// QuoteRejected is published when the customer rejects a sent quote.
type QuoteRejected struct {
	BaseEvent
	QuoteID   uuid.UUID `json:"quoteId"`
	Reference string    `json:"reference"`
}

func (e QuoteRejected) EventName() string { return NameQuoteRejected }

// QuoteExpiring is published by the scheduler worker ahead of validUntil.
type QuoteExpiring struct {
	BaseEvent
	QuoteID    uuid.UUID `json:"quoteId"`
	Reference  string    `json:"reference"`
	ValidUntil time.Time `json:"validUntil"`
}

func (e QuoteExpiring) EventName() string { return NameQuoteExpiring }

// =============================================================================
// Shipment Domain Events
// =============================================================================

// ShipmentStatusChanged is published whenever a tracking event changes status.
type ShipmentStatusChanged struct {
	BaseEvent
	ShipmentID     uuid.UUID  `json:"shipmentId"`
	ShipmentType   string     `json:"shipmentType"`
	Reference      string     `json:"reference"`
	PreviousStatus string     `json:"previousStatus"`
	Status         string     `json:"status"`
	Description    string     `json:"description"`
	Location       string     `json:"location,omitempty"`
	Shipper        *Recipient `json:"shipper,omitempty"`
}

func (e ShipmentStatusChanged) EventName() string { return NameShipmentStatusChanged }
