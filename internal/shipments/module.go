// Package shipments provides the shipments bounded context: ocean, air and
// truck shipments with their append-only tracking log.
package shipments

import (
	"freight_backoffice/internal/events"
	apphttp "freight_backoffice/internal/http"
	"freight_backoffice/internal/shipments/handler"
	"freight_backoffice/internal/shipments/repository"
	"freight_backoffice/internal/shipments/service"
	"freight_backoffice/internal/shipments/transport"
	"freight_backoffice/platform/docstore"
	"freight_backoffice/platform/logger"
	"freight_backoffice/platform/validator"
)

// Module represents the shipments domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new shipments module with all dependencies wired
func NewModule(store docstore.Store, dir service.Directory, eventBus events.Bus, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := transport.RegisterValidations(val); err != nil {
		return nil, err
	}
	svc := service.New(repository.New(store), dir, eventBus, log)
	return &Module{handler: handler.New(svc, val), service: svc}, nil
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "shipments"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/shipments"), ctx.Manager.Group("/shipments"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
