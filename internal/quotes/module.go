// Package quotes provides the quotes bounded context: cost sheets, totals and
// the draft/sent/accepted/rejected workflow.
package quotes

import (
	"freight_backoffice/internal/events"
	apphttp "freight_backoffice/internal/http"
	"freight_backoffice/internal/quotes/handler"
	"freight_backoffice/internal/quotes/repository"
	"freight_backoffice/internal/quotes/service"
	"freight_backoffice/internal/quotes/transport"
	"freight_backoffice/platform/config"
	"freight_backoffice/platform/docstore"
	"freight_backoffice/platform/logger"
	"freight_backoffice/platform/validator"
)

// Module represents the quotes domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates a new quotes module with all dependencies wired
func NewModule(store docstore.Store, dir service.Directory, eventBus events.Bus, cfg config.QuoteConfig, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := transport.RegisterValidations(val); err != nil {
		return nil, err
	}

	repo := repository.New(store)
	svc := service.New(repo, dir, eventBus, service.Settings{
		ValidityDays:    cfg.GetQuoteValidityDays(),
		ReferencePrefix: cfg.GetQuoteReferencePrefix(),
		ReminderLead:    cfg.GetQuoteExpiryReminderLead(),
	}, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}, nil
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "quotes"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for adapters that read stored quotes.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// SetReminderScheduler wires the expiry reminder scheduler.
func (m *Module) SetReminderScheduler(r service.ReminderScheduler) {
	m.service.SetReminderScheduler(r)
}

// SetArchiveReader wires downloads of archived accepted quotes.
func (m *Module) SetArchiveReader(r service.ArchiveReader) {
	m.service.SetArchiveReader(r)
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/quotes"), ctx.Manager.Group("/quotes"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
