package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apphttp "freight_backoffice/internal/http"
	"freight_backoffice/platform/config"
	"freight_backoffice/platform/httpkit"
	"freight_backoffice/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-test-secret"

type pingModule struct{}

func (pingModule) Name() string { return "ping" }

func (pingModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	ctx.Protected.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, httpkit.MustGetIdentity(c).Email())
	})
	ctx.Manager.GET("/admin", func(c *gin.Context) { c.Status(http.StatusNoContent) })
}

type healthStub struct{ err error }

func (h healthStub) Ping(context.Context) error { return h.err }

func newEngine(health apphttp.HealthChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return New(&apphttp.App{
		Config:  &config.Config{JWTAccessSecret: testSecret, CORSAllowAll: true},
		Logger:  logger.Discard(),
		Health:  health,
		Modules: []apphttp.Module{pingModule{}},
	})
}

func token(t *testing.T, role, tokenType string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   uuid.NewString(),
		"email": role + "@example.com",
		"roles": []string{role},
		"type":  tokenType,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func get(engine *gin.Engine, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestHealthReflectsStore(t *testing.T) {
	assert.Equal(t, http.StatusOK, get(newEngine(healthStub{}), "/api/health", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(newEngine(healthStub{err: errors.New("down")}), "/api/health", "").Code)
}

func TestModuleGroups(t *testing.T) {
	engine := newEngine(nil)

	w := get(engine, "/api/v1/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(httpkit.HeaderRequestID))

	assert.Equal(t, http.StatusUnauthorized, get(engine, "/api/v1/whoami", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(engine, "/api/v1/whoami", token(t, "customer", "refresh")).Code)

	w = get(engine, "/api/v1/whoami", token(t, "customer", "access"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "customer@example.com", w.Body.String())

	assert.Equal(t, http.StatusForbidden, get(engine, "/api/v1/admin", token(t, "customer", "access")).Code)
	assert.Equal(t, http.StatusNoContent, get(engine, "/api/v1/admin", token(t, "manager", "access")).Code)
}
