// Package masterdata provides the reference data bounded context: generic CRUD
// over the customers, carriers, ports and airports collections.
package masterdata

import (
	apphttp "freight_backoffice/internal/http"
	"freight_backoffice/internal/masterdata/handler"
	"freight_backoffice/internal/masterdata/repository"
	"freight_backoffice/internal/masterdata/service"
	"freight_backoffice/platform/cache"
	"freight_backoffice/platform/docstore"
	"freight_backoffice/platform/logger"
	"freight_backoffice/platform/validator"
)

// Module represents the master data domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the master data module. listCache may be nil.
func NewModule(store docstore.Store, listCache *cache.Cache, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(store), listCache, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "masterdata"
}

// Service returns the service layer for adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/masterdata"), ctx.Manager.Group("/masterdata"))
}

var _ apphttp.Module = (*Module)(nil)
