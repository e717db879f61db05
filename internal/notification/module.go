// Package notification provides event handlers that react to quote and
// shipment events: customer emails, the accepted-quote archive and expiry
// reminders. Domain modules only publish events and never see providers.
package notification

import (
	"context"
	"errors"
	"fmt"

	"freight_backoffice/internal/email"
	"freight_backoffice/internal/events"
	quotesdomain "freight_backoffice/internal/quotes/domain"
	"freight_backoffice/platform/logger"

	"github.com/google/uuid"
)

// QuoteArchiver stores the document of an accepted quote.
type QuoteArchiver interface {
	ArchiveAcceptedQuote(ctx context.Context, quoteID uuid.UUID, reference string, snapshot []byte) error
}

// Module subscribes to domain events and fans them out to email and storage.
type Module struct {
	sender   email.Sender
	archiver QuoteArchiver // optional
	log      *logger.Logger
}

// New creates the notification module. A nil sender disables email.
func New(sender email.Sender, log *logger.Logger) *Module {
	if sender == nil {
		sender = email.NoopSender{}
	}
	return &Module{sender: sender, log: log}
}

// Name returns the module name for logging.
func (m *Module) Name() string { return "notification" }

// SetQuoteArchiver enables archiving of accepted quotes.
func (m *Module) SetQuoteArchiver(a QuoteArchiver) { m.archiver = a }

// RegisterHandlers subscribes the module to the events it handles.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.NameQuoteSent, m)
	bus.Subscribe(events.NameQuoteAccepted, m)
	bus.Subscribe(events.NameQuoteRejected, m)
	bus.Subscribe(events.NameQuoteExpiring, m)
	bus.Subscribe(events.NameShipmentStatusChanged, m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.QuoteSent:
		return m.handleQuoteSent(ctx, e)
	case events.QuoteAccepted:
		return m.handleQuoteAccepted(ctx, e)
	case events.QuoteRejected:
		m.log.Info("quote rejected", "quoteId", e.QuoteID, "reference", e.Reference)
		return nil
	case events.QuoteExpiring:
		m.log.Warn("quote expiring", "quoteId", e.QuoteID, "reference", e.Reference, "validUntil", e.ValidUntil)
		return nil
	case events.ShipmentStatusChanged:
		return m.handleShipmentStatusChanged(ctx, e)
	default:
		m.log.Warn("notification: unhandled event", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleQuoteSent(ctx context.Context, e events.QuoteSent) error {
	var errs []error
	for _, r := range e.Recipients {
		if r.Email == "" {
			continue
		}
		err := m.sender.SendQuoteSentEmail(ctx, r.Email, email.QuoteSentMessage{
			RecipientName: defaultName(r.Name, "customer"),
			Reference:     e.Reference,
			Total:         quotesdomain.FormatMoney(e.Total, e.Currency),
			ValidUntil:    e.ValidUntil,
		})
		if err != nil {
			m.log.Error("quote email failed", "quoteId", e.QuoteID, "to", r.Email, "error", err)
			errs = append(errs, fmt.Errorf("send to %s: %w", r.Email, err))
		}
	}
	if len(errs) == 0 {
		m.log.Info("quote sent event processed", "quoteId", e.QuoteID, "recipients", len(e.Recipients))
	}
	return errors.Join(errs...)
}

func (m *Module) handleQuoteAccepted(ctx context.Context, e events.QuoteAccepted) error {
	if m.archiver == nil {
		m.log.Info("quote accepted, archive disabled", "quoteId", e.QuoteID)
		return nil
	}
	if err := m.archiver.ArchiveAcceptedQuote(ctx, e.QuoteID, e.Reference, e.Snapshot); err != nil {
		m.log.Error("quote archive failed", "quoteId", e.QuoteID, "error", err)
		return err
	}
	m.log.Info("quote accepted event processed", "quoteId", e.QuoteID)
	return nil
}

func (m *Module) handleShipmentStatusChanged(ctx context.Context, e events.ShipmentStatusChanged) error {
	if e.Shipper == nil || e.Shipper.Email == "" {
		m.log.Info("shipment status changed, no shipper email", "shipmentId", e.ShipmentID, "status", e.Status)
		return nil
	}
	err := m.sender.SendShipmentStatusEmail(ctx, e.Shipper.Email, email.ShipmentStatusMessage{
		RecipientName:  defaultName(e.Shipper.Name, "customer"),
		Reference:      e.Reference,
		ShipmentType:   e.ShipmentType,
		PreviousStatus: e.PreviousStatus,
		Status:         e.Status,
		Description:    e.Description,
		Location:       e.Location,
	})
	if err != nil {
		m.log.Error("shipment email failed", "shipmentId", e.ShipmentID, "error", err)
		return err
	}
	return nil
}

func defaultName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
