package service

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"freight_backoffice/internal/events"
	"freight_backoffice/internal/quotes/domain"
	"freight_backoffice/internal/quotes/repository"
	"freight_backoffice/internal/quotes/transport"
	"freight_backoffice/platform/apperr"
	"freight_backoffice/platform/docstore"
	"freight_backoffice/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	acmeID      = uuid.MustParse("1a5e3c62-0d6e-4c2f-9a57-1f0d7c3b2e01")
	globoID     = uuid.MustParse("1a5e3c62-0d6e-4c2f-9a57-1f0d7c3b2e02")
	fwdID       = uuid.MustParse("1a5e3c62-0d6e-4c2f-9a57-1f0d7c3b2e03")
	santosID    = uuid.MustParse("2b6f4d73-1e7f-4d30-8b68-2a1e8d4c3f01")
	rotterdamID = uuid.MustParse("2b6f4d73-1e7f-4d30-8b68-2a1e8d4c3f02")
	guarulhosID = uuid.MustParse("2b6f4d73-1e7f-4d30-8b68-2a1e8d4c3f03")
	managerRef  = domain.UserRef{ID: uuid.MustParse("3c705e84-2f80-4e41-9c79-3b2f9e5d4a01"), Email: "mgr@example.com"}
)

type fakeDirectory struct {
	customers  map[uuid.UUID]domain.Party
	forwarders map[uuid.UUID]domain.Party
	ports      map[uuid.UUID]domain.Location
	airports   map[uuid.UUID]domain.Location
}

func party(m map[uuid.UUID]domain.Party, id uuid.UUID) (domain.Party, error) {
	p, ok := m[id]
	if !ok {
		return domain.Party{}, apperr.NotFound("record not found")
	}
	return p, nil
}

func location(m map[uuid.UUID]domain.Location, id uuid.UUID) (domain.Location, error) {
	l, ok := m[id]
	if !ok {
		return domain.Location{}, apperr.NotFound("record not found")
	}
	return l, nil
}

func (d fakeDirectory) Customer(_ context.Context, id uuid.UUID) (domain.Party, error) {
	return party(d.customers, id)
}

func (d fakeDirectory) Forwarder(_ context.Context, id uuid.UUID) (domain.Party, error) {
	return party(d.forwarders, id)
}

func (d fakeDirectory) Port(_ context.Context, id uuid.UUID) (domain.Location, error) {
	return location(d.ports, id)
}

func (d fakeDirectory) Airport(_ context.Context, id uuid.UUID) (domain.Location, error) {
	return location(d.airports, id)
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.EventName()
	}
	return out
}

type reminderCall struct {
	quoteID uuid.UUID
	runAt   time.Time
}

type fakeReminders struct {
	calls []reminderCall
}

func (f *fakeReminders) ScheduleQuoteExpiryReminder(_ context.Context, quoteID uuid.UUID, runAt time.Time) error {
	f.calls = append(f.calls, reminderCall{quoteID: quoteID, runAt: runAt})
	return nil
}

type fakeArchive map[uuid.UUID]string

func (a fakeArchive) OpenArchivedQuote(_ context.Context, quoteID uuid.UUID, _ string) (io.ReadCloser, error) {
	doc, ok := a[quoteID]
	if !ok {
		return nil, apperr.NotFound("archived quote not found")
	}
	return io.NopCloser(strings.NewReader(doc)), nil
}

type fixture struct {
	svc       *Service
	bus       *recordingBus
	reminders *fakeReminders
	clock     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := fakeDirectory{
		customers: map[uuid.UUID]domain.Party{
			acmeID:  {ID: acmeID, Name: "Acme Importers", Company: "Acme Ltda", Email: "ops@acme.example"},
			globoID: {ID: globoID, Name: "Globo Foods", Company: "Globo SA", Email: "buy@globo.example"},
		},
		forwarders: map[uuid.UUID]domain.Party{
			fwdID: {ID: fwdID, Name: "Fast Forwarding", Email: "desk@fwd.example"},
		},
		ports: map[uuid.UUID]domain.Location{
			santosID:    {ID: &santosID, Name: "Santos", Code: "BRSSZ", City: "Santos", Country: "Brazil"},
			rotterdamID: {ID: &rotterdamID, Name: "Rotterdam", Code: "NLRTM", City: "Rotterdam", Country: "Netherlands"},
		},
		airports: map[uuid.UUID]domain.Location{
			guarulhosID: {ID: &guarulhosID, Name: "Guarulhos", Code: "GRU", City: "Sao Paulo", Country: "Brazil"},
		},
	}
	f := &fixture{
		bus:       &recordingBus{},
		reminders: &fakeReminders{},
		clock:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = New(repository.New(docstore.NewMemoryStore()), dir, f.bus, Settings{
		ValidityDays:    30,
		ReferencePrefix: "BRL-Q",
		ReminderLead:    72 * time.Hour,
	}, logger.Discard())
	f.svc.now = func() time.Time { return f.clock }
	f.svc.SetReminderScheduler(f.reminders)
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func baseRequest() transport.QuoteRequest {
	return transport.QuoteRequest{
		Shipper:     transport.PartyRef{ID: acmeID},
		Consignee:   transport.PartyRef{ID: globoID},
		Origin:      transport.LocationRequest{ID: &santosID},
		Destination: transport.LocationRequest{ID: &rotterdamID},
		Costs: []transport.CostLineRequest{
			{Category: "freight", Description: "Ocean Freight", Amount: 1000, Quantity: 1},
			{Category: "origin", Description: "THC", Unit: "PerContainer", Amount: 200, Quantity: 2},
		},
		TaxRate: 10,
	}
}

func TestCreateFillsDefaultsSnapshotsAndTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q, err := f.svc.Create(ctx, managerRef, baseRequest())
	require.NoError(t, err)

	assert.Equal(t, "BRL-Q-2024-0001", q.Reference)
	assert.Equal(t, domain.StatusDraft, q.Status)
	assert.Equal(t, domain.QuoteTypeOcean, q.Type)
	assert.Equal(t, "USD", q.Currency)
	assert.Equal(t, "Acme Importers", q.Shipper.Name)
	assert.Equal(t, "buy@globo.example", q.Consignee.Email)
	assert.Equal(t, "BRSSZ", q.Origin.Code)
	assert.Equal(t, "Rotterdam", q.Destination.City)
	assert.Equal(t, f.clock.AddDate(0, 0, 30), q.Validity.ValidUntil)
	assert.Equal(t, domain.DefaultTerms, q.Terms)
	assert.Equal(t, managerRef.ID, q.CreatedBy.ID)
	assert.Equal(t, acmeID, q.Shipper.ID)
	require.NotNil(t, q.Origin.ID)
	assert.Equal(t, santosID, *q.Origin.ID)

	assert.Equal(t, 1400.0, q.Subtotal)
	assert.Equal(t, 140.0, q.Taxes)
	assert.Equal(t, 1540.0, q.Total)
	assert.Equal(t, "USD 1,540.00", q.Display.Total)

	second, err := f.svc.Create(ctx, managerRef, baseRequest())
	require.NoError(t, err)
	assert.Equal(t, "BRL-Q-2024-0002", second.Reference)
}

func TestCreateRequiresShipperAndConsignee(t *testing.T) {
	f := newFixture(t)
	req := baseRequest()
	req.Consignee = transport.PartyRef{}

	_, err := f.svc.Create(context.Background(), domain.UserRef{}, req)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, err.Error(), "Please select both shipper and consignee")
}

func TestCreateRejectsUnknownReferences(t *testing.T) {
	f := newFixture(t)
	req := baseRequest()
	req.Agent = &transport.PartyRef{ID: uuid.New()}

	_, err := f.svc.Create(context.Background(), domain.UserRef{}, req)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCreateAirQuoteResolvesAirports(t *testing.T) {
	f := newFixture(t)
	req := baseRequest()
	req.Type = "air"
	req.Origin = transport.LocationRequest{ID: &guarulhosID}
	req.Destination = transport.LocationRequest{City: "Lisbon", Country: "Portugal"}

	q, err := f.svc.Create(context.Background(), domain.UserRef{}, req)
	require.NoError(t, err)
	assert.Equal(t, "GRU", q.Origin.Code)
	assert.Equal(t, "Lisbon", q.Destination.City)
}

func TestCreateIgnoresClientTotalsAndRejectsBadLines(t *testing.T) {
	f := newFixture(t)
	req := baseRequest()
	req.Costs = append(req.Costs, transport.CostLineRequest{Category: "customs", Amount: -5})

	_, err := f.svc.Create(context.Background(), domain.UserRef{}, req)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestWorkflowSendAcceptPublishesEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q, err := f.svc.Create(ctx, domain.UserRef{}, baseRequest())
	require.NoError(t, err)

	f.advance(time.Hour)
	sent, err := f.svc.Send(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSent, sent.Status)
	require.NotNil(t, sent.SentAt)
	assert.Equal(t, f.clock, *sent.SentAt)

	require.Len(t, f.reminders.calls, 1)
	assert.Equal(t, q.ID, f.reminders.calls[0].quoteID)
	assert.Equal(t, q.Validity.ValidUntil.Add(-72*time.Hour), f.reminders.calls[0].runAt)

	_, err = f.svc.Update(ctx, q.ID, baseRequest())
	assert.True(t, apperr.Is(err, apperr.KindInvalidTransition))

	accepted, err := f.svc.Accept(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, accepted.Status)
	assert.Empty(t, accepted.AllowedActions)

	_, err = f.svc.Reject(ctx, q.ID)
	assert.True(t, apperr.Is(err, apperr.KindInvalidTransition))

	assert.Equal(t, []string{events.NameQuoteSent, events.NameQuoteAccepted}, f.bus.names())
	sentEvent := f.bus.events[0].(events.QuoteSent)
	assert.Equal(t, q.ID, sentEvent.QuoteID)
	assert.Len(t, sentEvent.Recipients, 2)
	acceptedEvent := f.bus.events[1].(events.QuoteAccepted)
	assert.Contains(t, string(acceptedEvent.Snapshot), q.Reference)
}

func TestAcceptDraftLeavesQuoteUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q, err := f.svc.Create(ctx, domain.UserRef{}, baseRequest())
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, q.ID)
	assert.True(t, apperr.Is(err, apperr.KindInvalidTransition))

	stored, err := f.svc.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, stored.Status)
	assert.Nil(t, stored.AcceptedAt)
	assert.Empty(t, f.bus.names())
}

func TestUpdateDraftKeepsValidityAndStampsUpdatedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q, err := f.svc.Create(ctx, domain.UserRef{}, baseRequest())
	require.NoError(t, err)

	f.advance(24 * time.Hour)
	req := baseRequest()
	req.Notes = "updated"
	req.Costs = req.Costs[:1]
	updated, err := f.svc.Update(ctx, q.ID, req)
	require.NoError(t, err)

	assert.Equal(t, q.Validity, updated.Validity)
	assert.Equal(t, q.Reference, updated.Reference)
	assert.Equal(t, "updated", updated.Notes)
	assert.Equal(t, 1100.0, updated.Total)
	assert.True(t, updated.UpdatedAt.After(q.UpdatedAt))
}

func TestCostLineOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q, err := f.svc.Create(ctx, domain.UserRef{}, baseRequest())
	require.NoError(t, err)

	amount := 50.0
	added, err := f.svc.AddCost(ctx, q.ID, transport.AddCostRequest{Category: "origin", Preset: "VGM Fee", Amount: &amount})
	require.NoError(t, err)
	require.Len(t, added.Costs, 3)
	assert.Equal(t, domain.UnitPerContainer, added.Costs[2].Unit)
	assert.False(t, added.Costs[2].Mandatory)
	assert.Equal(t, 1450.0, added.Subtotal)

	_, err = f.svc.RemoveCost(ctx, q.ID, 7)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	unchanged, err := f.svc.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Len(t, unchanged.Costs, 3)

	removed, err := f.svc.RemoveCost(ctx, q.ID, 0)
	require.NoError(t, err)
	require.Len(t, removed.Costs, 2)
	assert.Equal(t, 450.0, removed.Subtotal)
	assert.Equal(t, 495.0, removed.Total)
}

func TestUpdateCostAndTaxRate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q, err := f.svc.Create(ctx, domain.UserRef{}, baseRequest())
	require.NoError(t, err)

	updated, err := f.svc.UpdateCost(ctx, q.ID, 1, transport.CostLineRequest{Category: "origin", Description: "THC", Unit: "PerContainer", Amount: 250, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, updated.Costs, 2)
	assert.Equal(t, 250.0, updated.Costs[1].Amount)
	assert.Equal(t, 1500.0, updated.Subtotal)
	assert.Equal(t, 1650.0, updated.Total)

	_, err = f.svc.UpdateCost(ctx, q.ID, 9, transport.CostLineRequest{Category: "origin"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	taxed, err := f.svc.SetTaxRate(ctx, q.ID, transport.TaxRateRequest{TaxRate: 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, taxed.TaxRate)
	assert.Equal(t, 1500.0, taxed.Total)

	_, err = f.svc.Send(ctx, q.ID)
	require.NoError(t, err)
	_, err = f.svc.SetTaxRate(ctx, q.ID, transport.TaxRateRequest{TaxRate: 5})
	assert.True(t, apperr.Is(err, apperr.KindInvalidTransition))
	_, err = f.svc.UpdateCost(ctx, q.ID, 0, transport.CostLineRequest{Category: "freight", Amount: 1})
	assert.True(t, apperr.Is(err, apperr.KindInvalidTransition))
}

func TestListFiltersByEffectiveStatusTypeAndSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft, err := f.svc.Create(ctx, domain.UserRef{}, baseRequest())
	require.NoError(t, err)
	sent, err := f.svc.Create(ctx, domain.UserRef{}, baseRequest())
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, sent.ID)
	require.NoError(t, err)

	air := baseRequest()
	air.Type = "air"
	air.Origin = transport.LocationRequest{ID: &guarulhosID}
	air.Destination = transport.LocationRequest{City: "Miami", Country: "USA"}
	_, err = f.svc.Create(ctx, domain.UserRef{}, air)
	require.NoError(t, err)

	all, err := f.svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)

	airOnly, err := f.svc.List(ctx, ListFilter{Type: domain.QuoteTypeAir})
	require.NoError(t, err)
	assert.Equal(t, 1, airOnly.Total)

	byRef, err := f.svc.List(ctx, ListFilter{Search: draft.Reference})
	require.NoError(t, err)
	require.Equal(t, 1, byRef.Total)
	assert.Equal(t, draft.ID, byRef.Items[0].ID)

	byName, err := f.svc.List(ctx, ListFilter{Search: "globo"})
	require.NoError(t, err)
	assert.Equal(t, 3, byName.Total)

	f.advance(31 * 24 * time.Hour)
	expired, err := f.svc.List(ctx, ListFilter{Status: domain.StatusExpired})
	require.NoError(t, err)
	require.Equal(t, 1, expired.Total)
	assert.Equal(t, sent.ID, expired.Items[0].ID)
	assert.Equal(t, domain.StatusSent, expired.Items[0].Status)

	stillSent, err := f.svc.List(ctx, ListFilter{Status: domain.StatusSent})
	require.NoError(t, err)
	assert.Equal(t, 0, stillSent.Total)
}

func TestExpiredQuoteCanStillBeAccepted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q, err := f.svc.Create(ctx, domain.UserRef{}, baseRequest())
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, q.ID)
	require.NoError(t, err)

	f.advance(40 * 24 * time.Hour)
	got, err := f.svc.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, got.EffectiveStatus)

	accepted, err := f.svc.Accept(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, accepted.EffectiveStatus)
}

func TestOpenArchiveOnlyForAcceptedQuotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q, err := f.svc.Create(ctx, domain.UserRef{}, baseRequest())
	require.NoError(t, err)

	_, _, err = f.svc.OpenArchive(ctx, q.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "archive not configured")

	archive := fakeArchive{}
	f.svc.SetArchiveReader(archive)

	_, _, err = f.svc.OpenArchive(ctx, q.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = f.svc.Send(ctx, q.ID)
	require.NoError(t, err)
	_, err = f.svc.Accept(ctx, q.ID)
	require.NoError(t, err)

	_, _, err = f.svc.OpenArchive(ctx, q.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "not archived yet")

	archive[q.ID] = `{"reference":"` + q.Reference + `"}`
	rc, name, err := f.svc.OpenArchive(ctx, q.ID)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, q.Reference+".json", name)
	assert.Contains(t, string(body), q.Reference)
}

func TestCalculateDoesNotPersist(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Calculate(transport.CalculationRequest{
		Costs: []transport.CostLineRequest{
			{Category: "freight", Amount: 100.004, Quantity: 0},
			{Category: "customs", Amount: 10, Quantity: 3},
		},
		TaxRate:  5,
		Currency: "eur",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Lines[0].Quantity)
	assert.InDelta(t, 130.004, res.Totals.Subtotal, 1e-9)
	assert.Equal(t, 136.5, res.Rounded.Total)
	assert.Len(t, res.Groups, 2)
	assert.Contains(t, res.Display.Total, "EUR")

	list, err := f.svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestDeleteRemovesQuote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q, err := f.svc.Create(ctx, domain.UserRef{}, baseRequest())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, q.ID))
	_, err = f.svc.GetByID(ctx, q.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCatalogListsPresetsAndTerms(t *testing.T) {
	f := newFixture(t)
	cat := f.svc.Catalog()
	assert.Len(t, cat.Categories, 5)
	assert.Len(t, cat.Incoterms, 11)
	assert.Len(t, cat.FreightConditions, 7)
	assert.Contains(t, cat.Incoterms, "FOB - Free on Board")
	assert.NotEmpty(t, cat.Categories[1].Presets)
}
