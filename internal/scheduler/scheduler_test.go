package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"freight_backoffice/internal/events"
	quotesdomain "freight_backoffice/internal/quotes/domain"
	"freight_backoffice/platform/apperr"
	"freight_backoffice/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type quoteReaderStub struct {
	quotes map[uuid.UUID]quotesdomain.Quote
}

func (s quoteReaderStub) GetByID(_ context.Context, id uuid.UUID) (quotesdomain.Quote, error) {
	q, ok := s.quotes[id]
	if !ok {
		return quotesdomain.Quote{}, apperr.NotFound("quote not found")
	}
	return q, nil
}

type capturingBus struct {
	published []events.Event
}

func (b *capturingBus) Publish(_ context.Context, e events.Event) { b.published = append(b.published, e) }
func (b *capturingBus) PublishSync(_ context.Context, e events.Event) error {
	b.published = append(b.published, e)
	return nil
}
func (b *capturingBus) Subscribe(string, events.Handler) {}

var (
	fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	sentID     = uuid.MustParse("7d8e9fa0-1b2c-4d3e-8f40-5162738495a1")
	acceptedID = uuid.MustParse("7d8e9fa0-1b2c-4d3e-8f40-5162738495a2")
	expiredID  = uuid.MustParse("7d8e9fa0-1b2c-4d3e-8f40-5162738495a3")
)

func newTestWorker(quotes map[uuid.UUID]quotesdomain.Quote) (*Worker, *capturingBus) {
	bus := &capturingBus{}
	w := newHandlerSet(quoteReaderStub{quotes: quotes}, bus, logger.Discard())
	w.now = func() time.Time { return fixedNow }
	return w, bus
}

func reminderTask(t *testing.T, quoteID uuid.UUID) *asynq.Task {
	t.Helper()
	task, err := NewQuoteExpiryReminderTask(QuoteExpiryReminderPayload{QuoteID: quoteID})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	return task
}

func TestQuoteExpiryReminderPayload(t *testing.T) {
	task := reminderTask(t, sentID)
	if task.Type() != TaskQuoteExpiryReminder {
		t.Fatalf("unexpected task type %q", task.Type())
	}
	if want := `{"quoteId":"` + sentID.String() + `"}`; string(task.Payload()) != want {
		t.Fatalf("unexpected payload %s", task.Payload())
	}
	payload, err := ParseQuoteExpiryReminderPayload(task)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if payload.QuoteID != sentID {
		t.Fatalf("expected %s, got %s", sentID, payload.QuoteID)
	}
	if got := quoteReminderTaskID(sentID); got != "quote-expiry:"+sentID.String() {
		t.Fatalf("unexpected task id %q", got)
	}
}

func TestReminderPublishesForSentQuote(t *testing.T) {
	validUntil := fixedNow.Add(48 * time.Hour)
	q := quotesdomain.Quote{ID: sentID, Reference: "BRL-Q-0001", Status: quotesdomain.StatusSent}
	q.Validity.ValidUntil = validUntil
	w, bus := newTestWorker(map[uuid.UUID]quotesdomain.Quote{sentID: q})

	if err := w.handleQuoteExpiryReminder(context.Background(), reminderTask(t, sentID)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(bus.published) != 1 {
		t.Fatalf("expected one event, got %d", len(bus.published))
	}
	ev, ok := bus.published[0].(events.QuoteExpiring)
	if !ok {
		t.Fatalf("unexpected event %T", bus.published[0])
	}
	if ev.QuoteID != sentID || ev.Reference != "BRL-Q-0001" || !ev.ValidUntil.Equal(validUntil) {
		t.Fatalf("unexpected event payload %+v", ev)
	}
}

func TestReminderSkipsAnsweredAndExpiredQuotes(t *testing.T) {
	expired := quotesdomain.Quote{ID: expiredID, Status: quotesdomain.StatusSent}
	expired.Validity.ValidUntil = fixedNow.Add(-time.Hour)
	w, bus := newTestWorker(map[uuid.UUID]quotesdomain.Quote{
		acceptedID: {ID: acceptedID, Status: quotesdomain.StatusAccepted},
		expiredID:  expired,
	})

	for _, id := range []uuid.UUID{acceptedID, expiredID} {
		if err := w.handleQuoteExpiryReminder(context.Background(), reminderTask(t, id)); err != nil {
			t.Fatalf("handle %s: %v", id, err)
		}
	}
	if len(bus.published) != 0 {
		t.Fatalf("expected no events, got %d", len(bus.published))
	}
}

func TestReminderForDeletedQuoteIsDropped(t *testing.T) {
	w, bus := newTestWorker(nil)
	if err := w.handleQuoteExpiryReminder(context.Background(), reminderTask(t, uuid.New())); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if len(bus.published) != 0 {
		t.Fatalf("expected no events")
	}
}

func TestMalformedPayloadSkipsRetry(t *testing.T) {
	w, _ := newTestWorker(nil)
	for _, payload := range []string{"{", `{"quoteId":"q-1"}`, `{}`} {
		err := w.handleQuoteExpiryReminder(context.Background(), asynq.NewTask(TaskQuoteExpiryReminder, []byte(payload)))
		if !errors.Is(err, asynq.SkipRetry) {
			t.Fatalf("payload %s: expected SkipRetry, got %v", payload, err)
		}
	}
}

func TestRedisClientOpt(t *testing.T) {
	opt, err := redisClientOpt("redis://:secret@cache.internal:6380/2", false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opt.Addr != "cache.internal:6380" || opt.Password != "secret" || opt.DB != 2 {
		t.Fatalf("unexpected options %+v", opt)
	}
	if opt.TLSConfig != nil {
		t.Fatalf("expected no TLS for redis://")
	}

	opt, err = redisClientOpt("rediss://cache.internal:6380", true)
	if err != nil {
		t.Fatalf("parse tls: %v", err)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatalf("expected insecure TLS config")
	}
}

func TestNilClientSchedulesNothing(t *testing.T) {
	var c *Client
	if err := c.ScheduleQuoteExpiryReminder(context.Background(), sentID, fixedNow); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
