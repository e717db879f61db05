package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freight_backoffice/internal/adapters"
	"freight_backoffice/internal/adapters/storage"
	"freight_backoffice/internal/auth"
	"freight_backoffice/internal/email"
	"freight_backoffice/internal/events"
	apphttp "freight_backoffice/internal/http"
	"freight_backoffice/internal/http/router"
	"freight_backoffice/internal/masterdata"
	"freight_backoffice/internal/notification"
	"freight_backoffice/internal/quotes"
	"freight_backoffice/internal/scheduler"
	"freight_backoffice/internal/shipments"
	"freight_backoffice/platform/cache"
	"freight_backoffice/platform/config"
	"freight_backoffice/platform/db"
	"freight_backoffice/platform/docstore"
	"freight_backoffice/platform/logger"
	"freight_backoffice/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr, "store", cfg.StoreDriver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	store, closeStore := openStore(ctx, cfg, log)
	defer closeStore()

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	listCache, closeCache := initCache(ctx, cfg, log)
	if closeCache != nil {
		defer closeCache()
	}

	reminderScheduler, closeScheduler := initReminderScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(newSender(cfg, log), log)
	archiver := initQuoteArchiver(ctx, cfg, log)
	if archiver != nil {
		notificationModule.SetQuoteArchiver(archiver)
	}
	notificationModule.RegisterHandlers(eventBus)

	masterdataModule := masterdata.NewModule(store, listCache, val, log)

	authModule, err := auth.NewModule(store, cfg, val, log)
	if err != nil {
		log.Error("failed to initialize auth module", "error", err)
		panic("failed to initialize auth module: " + err.Error())
	}
	if err := authModule.Seed(ctx); err != nil {
		log.Error("failed to seed manager account", "error", err)
		panic("failed to seed manager account: " + err.Error())
	}

	// Anti-Corruption Layer: quotes and shipments read parties through adapters
	quotesModule, err := quotes.NewModule(store, adapters.NewQuotesDirectory(masterdataModule.Service()), eventBus, cfg, val, log)
	if err != nil {
		log.Error("failed to initialize quotes module", "error", err)
		panic("failed to initialize quotes module: " + err.Error())
	}
	if reminderScheduler != nil {
		quotesModule.SetReminderScheduler(reminderScheduler)
	}
	if archiver != nil {
		quotesModule.SetArchiveReader(archiver)
	}

	shipmentsModule, err := shipments.NewModule(store, adapters.NewShipmentsDirectory(masterdataModule.Service()), eventBus, val, log)
	if err != nil {
		log.Error("failed to initialize shipments module", "error", err)
		panic("failed to initialize shipments module: " + err.Error())
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   store,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			masterdataModule,
			quotesModule,
			shipmentsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// openStore selects the document store driver. Postgres is migrated before use.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (docstore.Store, func()) {
	if cfg.GetStoreDriver() == "memory" {
		log.Warn("using in-memory document store; data is lost on restart")
		return docstore.NewMemoryStore(), func() {}
	}

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, perr := db.NewPool(ctx, cfg)
		if perr != nil {
			return perr
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	log.Info("database connection established")

	if err := db.RunMigrations(ctx, pool, log); err != nil {
		pool.Close()
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	return docstore.NewPostgresStore(pool), pool.Close
}

func initCache(ctx context.Context, cfg config.CacheConfig, log *logger.Logger) (*cache.Cache, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; master data cache disabled")
		return nil, nil
	}

	client, err := cache.New(ctx, cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		log.Error("failed to connect to redis; master data cache disabled", "error", err)
		return nil, nil
	}

	return cache.NewCache(client, "freight", cfg.GetMasterDataCacheTTL()), func() {
		_ = client.Close()
	}
}

func initReminderScheduler(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; quote expiry reminders disabled")
		return nil, nil
	}

	reminderClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize reminder scheduler client", "error", err)
		return nil, nil
	}

	return reminderClient, func() {
		_ = reminderClient.Close()
	}
}

func newSender(cfg config.SMTPConfig, log *logger.Logger) email.Sender {
	if !cfg.IsSMTPEnabled() {
		log.Warn("SMTP_HOST not configured; notification email disabled")
		return email.NoopSender{}
	}
	return email.NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetSMTPFromEmail(),
		cfg.GetSMTPFromName(),
	)
}

// initQuoteArchiver returns nil when MinIO is not configured.
func initQuoteArchiver(ctx context.Context, cfg config.MinIOConfig, log *logger.Logger) *adapters.QuoteArchiver {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; accepted quotes are not archived")
		return nil
	}

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}

	bucket := cfg.GetMinioBucketQuoteArchive()
	if err := withRetry(ctx, log, "ensure quote-archive bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "quoteArchiveBucket", bucket)

	return adapters.NewQuoteArchiver(storageSvc, bucket)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
