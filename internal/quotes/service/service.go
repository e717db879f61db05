// Package service implements the quote lifecycle: drafting with master data
// snapshots, cost sheet edits and the send/accept/reject workflow.
package service

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"freight_backoffice/internal/events"
	"freight_backoffice/internal/quotes/domain"
	"freight_backoffice/internal/quotes/repository"
	"freight_backoffice/internal/quotes/transport"
	"freight_backoffice/platform/apperr"
	"freight_backoffice/platform/logger"

	"github.com/google/uuid"
)

const msgSelectParties = "Please select both shipper and consignee"

// Directory resolves master data references into snapshots.
// Implemented by an adapter in internal/adapters over the master data service.
type Directory interface {
	Customer(ctx context.Context, id uuid.UUID) (domain.Party, error)
	Forwarder(ctx context.Context, id uuid.UUID) (domain.Party, error)
	Port(ctx context.Context, id uuid.UUID) (domain.Location, error)
	Airport(ctx context.Context, id uuid.UUID) (domain.Location, error)
}

// ReminderScheduler enqueues the expiry reminder of a sent quote.
type ReminderScheduler interface {
	ScheduleQuoteExpiryReminder(ctx context.Context, quoteID uuid.UUID, runAt time.Time) error
}

// ArchiveReader opens the archived snapshot of an accepted quote.
type ArchiveReader interface {
	OpenArchivedQuote(ctx context.Context, quoteID uuid.UUID, reference string) (io.ReadCloser, error)
}

// Settings are the configurable quote defaults.
type Settings struct {
	ValidityDays    int
	ReferencePrefix string
	ReminderLead    time.Duration
}

// ListFilter narrows List. Status is matched against the effective status.
type ListFilter struct {
	Status domain.Status
	Type   domain.QuoteType
	Search string
}

// Service provides business logic for quotes
type Service struct {
	repo      *repository.Repository
	dir       Directory
	bus       events.Bus
	reminders ReminderScheduler // optional
	archive   ArchiveReader     // optional
	settings  Settings
	log       *logger.Logger
	now       func() time.Time
}

// New creates a new quotes service
func New(repo *repository.Repository, dir Directory, bus events.Bus, settings Settings, log *logger.Logger) *Service {
	if settings.ValidityDays <= 0 {
		settings.ValidityDays = domain.DefaultValidityDays
	}
	if settings.ReferencePrefix == "" {
		settings.ReferencePrefix = "BRL-Q"
	}
	return &Service{repo: repo, dir: dir, bus: bus, settings: settings, log: log, now: time.Now}
}

// SetReminderScheduler injects the expiry reminder scheduler.
func (s *Service) SetReminderScheduler(r ReminderScheduler) {
	s.reminders = r
}

// SetArchiveReader enables downloads of archived accepted quotes.
func (s *Service) SetArchiveReader(r ArchiveReader) {
	s.archive = r
}

// Create drafts a new quote with a freshly issued reference.
func (s *Service) Create(ctx context.Context, actor domain.UserRef, req transport.QuoteRequest) (transport.QuoteResponse, error) {
	now := s.now().UTC()
	content, sheet, err := s.prepare(ctx, req, req.Content(), now)
	if err != nil {
		return transport.QuoteResponse{}, err
	}

	reference, err := s.nextReference(ctx, now)
	if err != nil {
		return transport.QuoteResponse{}, err
	}

	q := domain.NewDraft(uuid.New(), reference, content, sheet, actor, now)
	if err := s.repo.Create(ctx, q); err != nil {
		return transport.QuoteResponse{}, err
	}
	s.log.WithContext(ctx).Info("quote created", "quoteId", q.ID, "reference", q.Reference)
	return s.response(q), nil
}

// Update replaces the content and costs of a draft. Validity dates that are
// not supplied keep their stored values.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.QuoteRequest) (transport.QuoteResponse, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.QuoteResponse{}, err
	}
	if !q.CanApply(domain.ActionEdit) {
		return transport.QuoteResponse{}, apperr.InvalidTransition(string(domain.ActionEdit), string(q.Status))
	}

	content := req.Content()
	if req.IssuedDate == nil {
		content.Validity.IssuedDate = q.Validity.IssuedDate
	}
	if req.ValidUntil == nil {
		content.Validity.ValidUntil = q.Validity.ValidUntil
	}
	content, sheet, err := s.prepare(ctx, req, content, s.now())
	if err != nil {
		return transport.QuoteResponse{}, err
	}

	next, err := q.Edit(content, sheet, s.now())
	if err != nil {
		return transport.QuoteResponse{}, err
	}
	if err := s.repo.Save(ctx, next); err != nil {
		return transport.QuoteResponse{}, err
	}
	return s.response(next), nil
}

// GetByID returns one quote.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.QuoteResponse, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.QuoteResponse{}, err
	}
	return s.response(q), nil
}

// List returns quotes newest first, filtered by effective status, type and
// a case-insensitive search over reference, shipper and consignee names.
func (s *Service) List(ctx context.Context, f ListFilter) (transport.QuoteListResponse, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return transport.QuoteListResponse{}, err
	}

	now := s.now()
	search := strings.ToLower(strings.TrimSpace(f.Search))
	items := make([]transport.QuoteResponse, 0, len(all))
	for _, q := range all {
		if f.Status != "" && q.EffectiveStatus(now) != f.Status {
			continue
		}
		if f.Type != "" && q.Type != f.Type {
			continue
		}
		if search != "" && !matchesSearch(q, search) {
			continue
		}
		items = append(items, s.responseAt(q, now))
	}
	return transport.QuoteListResponse{Items: items, Total: len(items)}, nil
}

// Delete hard-deletes a quote in any status.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// OpenArchive returns the archived snapshot of an accepted quote and the
// file name to serve it under. The caller closes the reader.
func (s *Service) OpenArchive(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, error) {
	if s.archive == nil {
		return nil, "", apperr.NotFound("quote archive is not configured")
	}
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if q.Status != domain.StatusAccepted {
		return nil, "", apperr.Conflict("only accepted quotes are archived")
	}
	rc, err := s.archive.OpenArchivedQuote(ctx, q.ID, q.Reference)
	if err != nil {
		return nil, "", err
	}
	return rc, q.Reference + ".json", nil
}

// Calculate previews the totals of a cost sheet without persisting anything.
func (s *Service) Calculate(req transport.CalculationRequest) (transport.CalculationResponse, error) {
	sheet, err := domain.NewCostSheet(req.CostLines(), req.TaxRate)
	if err != nil {
		return transport.CalculationResponse{}, err
	}
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	totals := sheet.Totals()
	return transport.CalculationResponse{
		Lines:   sheet.Lines(),
		Groups:  sheet.Group(),
		Totals:  totals,
		Rounded: totals.Rounded(),
		Display: totals.Display(currency),
	}, nil
}

// AddCost appends a line to a draft.
func (s *Service) AddCost(ctx context.Context, id uuid.UUID, req transport.AddCostRequest) (transport.QuoteResponse, error) {
	line := req.Line()
	if err := domain.ValidateLine(line); err != nil {
		return transport.QuoteResponse{}, err
	}
	return s.editCosts(ctx, id, func(sheet domain.CostSheet) (domain.CostSheet, error) {
		return sheet.Append(line), nil
	})
}

// RemoveCost drops the line at index from a draft.
func (s *Service) RemoveCost(ctx context.Context, id uuid.UUID, index int) (transport.QuoteResponse, error) {
	return s.editCosts(ctx, id, func(sheet domain.CostSheet) (domain.CostSheet, error) {
		return sheet.RemoveLine(index)
	})
}

// UpdateCost replaces the line at index of a draft.
func (s *Service) UpdateCost(ctx context.Context, id uuid.UUID, index int, req transport.CostLineRequest) (transport.QuoteResponse, error) {
	line := req.ToDomain()
	return s.editCosts(ctx, id, func(sheet domain.CostSheet) (domain.CostSheet, error) {
		return sheet.UpdateLine(index, line)
	})
}

// SetTaxRate changes the tax rate of a draft and recomputes its totals.
func (s *Service) SetTaxRate(ctx context.Context, id uuid.UUID, req transport.TaxRateRequest) (transport.QuoteResponse, error) {
	return s.editCosts(ctx, id, func(sheet domain.CostSheet) (domain.CostSheet, error) {
		return sheet.WithTaxRate(req.TaxRate)
	})
}

// Send moves a draft to sent, notifies listeners and schedules the expiry
// reminder.
func (s *Service) Send(ctx context.Context, id uuid.UUID) (transport.QuoteResponse, error) {
	q, err := s.transition(ctx, id, domain.ActionSend)
	if err != nil {
		return transport.QuoteResponse{}, err
	}

	s.bus.Publish(ctx, events.QuoteSent{
		BaseEvent:  events.NewBaseEvent(s.now()),
		QuoteID:    q.ID,
		Reference:  q.Reference,
		Total:      q.Total,
		Currency:   q.Currency,
		ValidUntil: q.Validity.ValidUntil,
		Recipients: recipients(q),
	})
	s.scheduleReminder(ctx, q)
	return s.response(q), nil
}

// Accept records the customer's acceptance of a sent quote.
func (s *Service) Accept(ctx context.Context, id uuid.UUID) (transport.QuoteResponse, error) {
	q, err := s.transition(ctx, id, domain.ActionAccept)
	if err != nil {
		return transport.QuoteResponse{}, err
	}

	snapshot, err := json.Marshal(q)
	if err != nil {
		s.log.WithContext(ctx).Warn("quote snapshot encoding failed", "quoteId", q.ID, "error", err)
	}
	s.bus.Publish(ctx, events.QuoteAccepted{
		BaseEvent: events.NewBaseEvent(s.now()),
		QuoteID:   q.ID,
		Reference: q.Reference,
		Snapshot:  snapshot,
	})
	return s.response(q), nil
}

// Reject records the customer's rejection of a sent quote.
func (s *Service) Reject(ctx context.Context, id uuid.UUID) (transport.QuoteResponse, error) {
	q, err := s.transition(ctx, id, domain.ActionReject)
	if err != nil {
		return transport.QuoteResponse{}, err
	}

	s.bus.Publish(ctx, events.QuoteRejected{
		BaseEvent: events.NewBaseEvent(s.now()),
		QuoteID:   q.ID,
		Reference: q.Reference,
	})
	return s.response(q), nil
}

// Catalog returns the static lists a quote form is filled from.
func (s *Service) Catalog() transport.CatalogResponse {
	out := transport.CatalogResponse{
		Categories:        make([]transport.CategoryResponse, 0, len(domain.Categories)),
		Units:             make([]transport.UnitResponse, 0, len(domain.Units)),
		Incoterms:         make([]string, 0, len(domain.Incoterms)),
		FreightConditions: append([]string(nil), domain.FreightConditions...),
		DefaultTerms:      append([]string(nil), domain.DefaultTerms...),
		DefaultCurrency:   domain.DefaultCurrency,
	}
	for _, c := range domain.Categories {
		out.Categories = append(out.Categories, transport.CategoryResponse{
			Category:    c,
			DisplayName: c.DisplayName(),
			Presets:     domain.Presets(c),
		})
	}
	for _, u := range domain.Units {
		out.Units = append(out.Units, transport.UnitResponse{Unit: u, Label: u.Label()})
	}
	for _, i := range domain.Incoterms {
		out.Incoterms = append(out.Incoterms, i.Label())
	}
	return out
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, action domain.Action) (domain.Quote, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Quote{}, err
	}
	next, err := q.Apply(action, s.now())
	if err != nil {
		return domain.Quote{}, err
	}
	if err := s.repo.Save(ctx, next); err != nil {
		return domain.Quote{}, err
	}
	s.log.WithContext(ctx).Info("quote status changed", "quoteId", next.ID, "from", q.Status, "to", next.Status)
	return next, nil
}

func (s *Service) editCosts(ctx context.Context, id uuid.UUID, edit func(domain.CostSheet) (domain.CostSheet, error)) (transport.QuoteResponse, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.QuoteResponse{}, err
	}
	if !q.CanApply(domain.ActionEdit) {
		return transport.QuoteResponse{}, apperr.InvalidTransition(string(domain.ActionEdit), string(q.Status))
	}
	sheet, err := q.CostSheet()
	if err != nil {
		return transport.QuoteResponse{}, err
	}
	sheet, err = edit(sheet)
	if err != nil {
		return transport.QuoteResponse{}, err
	}
	next, err := q.UpdateCosts(sheet, s.now())
	if err != nil {
		return transport.QuoteResponse{}, err
	}
	if err := s.repo.Save(ctx, next); err != nil {
		return transport.QuoteResponse{}, err
	}
	return s.response(next), nil
}

// prepare applies defaults, resolves snapshots and validates content and costs.
func (s *Service) prepare(ctx context.Context, req transport.QuoteRequest, content domain.Content, now time.Time) (domain.Content, domain.CostSheet, error) {
	content = domain.ApplyDefaults(content, now, s.settings.ValidityDays)
	if err := domain.ValidateContent(content); err != nil {
		return domain.Content{}, domain.CostSheet{}, err
	}
	sheet, err := domain.NewCostSheet(req.CostLines(), req.TaxRate)
	if err != nil {
		return domain.Content{}, domain.CostSheet{}, err
	}
	content, err = s.resolve(ctx, content)
	if err != nil {
		return domain.Content{}, domain.CostSheet{}, err
	}
	return content, sheet, nil
}

// resolve replaces party and location references with master data snapshots.
func (s *Service) resolve(ctx context.Context, c domain.Content) (domain.Content, error) {
	if c.Shipper.ID == uuid.Nil || c.Consignee.ID == uuid.Nil {
		return c, apperr.Validation(msgSelectParties)
	}

	var err error
	if c.Shipper, err = s.dir.Customer(ctx, c.Shipper.ID); err != nil {
		return c, referenceErr("shipper", err)
	}
	if c.Consignee, err = s.dir.Customer(ctx, c.Consignee.ID); err != nil {
		return c, referenceErr("consignee", err)
	}
	if c.Agent != nil {
		agent, err := s.dir.Forwarder(ctx, c.Agent.ID)
		if err != nil {
			return c, referenceErr("agent", err)
		}
		c.Agent = &agent
	}

	lookup := s.dir.Port
	if c.Type == domain.QuoteTypeAir {
		lookup = s.dir.Airport
	}
	if c.Origin.ID != nil {
		if c.Origin, err = lookup(ctx, *c.Origin.ID); err != nil {
			return c, referenceErr("origin", err)
		}
	}
	if c.Destination.ID != nil {
		if c.Destination, err = lookup(ctx, *c.Destination.ID); err != nil {
			return c, referenceErr("destination", err)
		}
	}
	return c, nil
}

// referenceErr turns a missing master data record into a validation error on
// field. Other failures pass through.
func referenceErr(field string, err error) error {
	if apperr.Is(err, apperr.KindNotFound) {
		return apperr.Validation(field + " not found").WithDetails(map[string]string{field: "unknown id"})
	}
	return err
}

func (s *Service) nextReference(ctx context.Context, now time.Time) (string, error) {
	year := now.Year()
	seq, err := s.repo.NextReferenceNumber(ctx, domain.ReferenceSequence(s.settings.ReferencePrefix, year))
	if err != nil {
		return "", err
	}
	return domain.FormatReference(s.settings.ReferencePrefix, year, seq), nil
}

func (s *Service) scheduleReminder(ctx context.Context, q domain.Quote) {
	if s.reminders == nil || q.Validity.ValidUntil.IsZero() {
		return
	}
	runAt := q.Validity.ValidUntil.Add(-s.settings.ReminderLead)
	if !runAt.After(s.now()) {
		return
	}
	if err := s.reminders.ScheduleQuoteExpiryReminder(ctx, q.ID, runAt); err != nil {
		s.log.WithContext(ctx).Warn("failed to schedule quote expiry reminder", "quoteId", q.ID, "error", err)
	}
}

func (s *Service) response(q domain.Quote) transport.QuoteResponse {
	return s.responseAt(q, s.now())
}

func (s *Service) responseAt(q domain.Quote, now time.Time) transport.QuoteResponse {
	groups := []domain.LineGroup{}
	if sheet, err := q.CostSheet(); err == nil {
		groups = sheet.Group()
	}
	return transport.QuoteResponse{
		Quote:           q,
		EffectiveStatus: q.EffectiveStatus(now),
		AllowedActions:  q.AllowedActions(),
		Groups:          groups,
		Display:         q.Totals().Display(q.Currency),
	}
}

func matchesSearch(q domain.Quote, search string) bool {
	for _, field := range []string{q.Reference, q.Shipper.Name, q.Consignee.Name} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func recipients(q domain.Quote) []events.Recipient {
	out := make([]events.Recipient, 0, 2)
	seen := map[string]bool{}
	for _, p := range []domain.Party{q.Shipper, q.Consignee} {
		email := strings.ToLower(strings.TrimSpace(p.Email))
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		out = append(out, events.Recipient{Name: p.Name, Email: p.Email})
	}
	return out
}
