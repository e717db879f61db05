// Package email renders and delivers notification emails.
package email

import (
	"context"
	"time"
)

// QuoteSentMessage is the content of the "your quote is ready" email.
type QuoteSentMessage struct {
	RecipientName string
	Reference     string
	Total         string
	ValidUntil    time.Time
}

// ShipmentStatusMessage is the content of a shipment status update email.
type ShipmentStatusMessage struct {
	RecipientName  string
	Reference      string
	ShipmentType   string
	PreviousStatus string
	Status         string
	Description    string
	Location       string
}

// Sender delivers the notification emails.
type Sender interface {
	SendQuoteSentEmail(ctx context.Context, toEmail string, msg QuoteSentMessage) error
	SendShipmentStatusEmail(ctx context.Context, toEmail string, msg ShipmentStatusMessage) error
}

// NoopSender drops every email. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendQuoteSentEmail(context.Context, string, QuoteSentMessage) error { return nil }

func (NoopSender) SendShipmentStatusEmail(context.Context, string, ShipmentStatusMessage) error {
	return nil
}
