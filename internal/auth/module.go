// Package auth provides the authentication bounded context module.
// This file defines the module that encapsulates all auth setup and route registration.
package auth

import (
	"context"

	"freight_backoffice/internal/auth/handler"
	"freight_backoffice/internal/auth/repository"
	"freight_backoffice/internal/auth/service"
	"freight_backoffice/internal/auth/transport"
	apphttp "freight_backoffice/internal/http"
	"freight_backoffice/platform/config"
	"freight_backoffice/platform/docstore"
	"freight_backoffice/platform/logger"
	"freight_backoffice/platform/validator"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the auth module with all its dependencies.
func NewModule(store docstore.Store, cfg config.AuthServiceConfig, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := transport.RegisterValidations(val); err != nil {
		return nil, err
	}
	svc := service.New(repository.New(store), cfg, log)
	return &Module{handler: handler.New(svc, val), service: svc}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the auth service for use by adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// Seed creates the bootstrap manager account if one is configured.
func (m *Module) Seed(ctx context.Context) error {
	return m.service.EnsureSeedManager(ctx)
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public sign-in with stricter rate limiting
	authGroup := ctx.V1.Group("/auth")
	if ctx.SignInLimiter != nil {
		authGroup.Use(ctx.SignInLimiter.RateLimit())
	}
	m.handler.RegisterRoutes(authGroup)

	ctx.Protected.GET("/auth/me", m.handler.GetMe)
	ctx.Protected.PATCH("/auth/me", m.handler.UpdateMe)
	ctx.Manager.GET("/auth/users", m.handler.ListUsers)
	ctx.Manager.POST("/auth/users", m.handler.CreateUser)
}

// Compile-time checks
var (
	_ apphttp.Module = (*Module)(nil)
	_ UserProvider   = (*service.Service)(nil)
)
