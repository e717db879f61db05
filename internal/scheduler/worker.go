package scheduler

import (
	"context"
	"fmt"
	"time"

	"freight_backoffice/internal/events"
	quotesdomain "freight_backoffice/internal/quotes/domain"
	"freight_backoffice/platform/apperr"
	"freight_backoffice/platform/config"
	"freight_backoffice/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// QuoteReader loads the quote a reminder refers to.
type QuoteReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (quotesdomain.Quote, error)
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	quotes QuoteReader
	bus    events.Bus
	log    *logger.Logger
	now    func() time.Time
}

func NewWorker(cfg config.SchedulerConfig, quotes QuoteReader, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newHandlerSet(quotes, bus, log)
	w.server = server
	w.mux = asynq.NewServeMux()
	w.mux.HandleFunc(TaskQuoteExpiryReminder, w.handleQuoteExpiryReminder)
	return w, nil
}

func newHandlerSet(quotes QuoteReader, bus events.Bus, log *logger.Logger) *Worker {
	return &Worker{quotes: quotes, bus: bus, log: log, now: time.Now}
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleQuoteExpiryReminder announces that a sent quote is about to expire.
// Quotes that were answered in the meantime are skipped; the quote itself is
// never modified.
func (w *Worker) handleQuoteExpiryReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseQuoteExpiryReminderPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.QuoteID == uuid.Nil {
		return fmt.Errorf("%w: missing quote id", asynq.SkipRetry)
	}

	q, err := w.quotes.GetByID(ctx, payload.QuoteID)
	if apperr.Is(err, apperr.KindNotFound) {
		w.log.Info("expiry reminder for deleted quote", "quoteId", payload.QuoteID)
		return nil
	}
	if err != nil {
		return err
	}

	if q.EffectiveStatus(w.now()) != quotesdomain.StatusSent {
		w.log.Info("expiry reminder skipped", "quoteId", q.ID, "status", string(q.EffectiveStatus(w.now())))
		return nil
	}

	if w.bus == nil {
		return nil
	}
	return w.bus.PublishSync(ctx, events.QuoteExpiring{
		BaseEvent:  events.NewBaseEvent(w.now()),
		QuoteID:    q.ID,
		Reference:  q.Reference,
		ValidUntil: q.Validity.ValidUntil,
	})
}
