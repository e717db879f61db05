package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"freight_backoffice/internal/masterdata/repository"
	"freight_backoffice/internal/masterdata/service"
	"freight_backoffice/platform/docstore"
	"freight_backoffice/platform/logger"
	"freight_backoffice/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.New(repository.New(docstore.NewMemoryStore()), nil, logger.Discard())
	h := New(svc, validator.New())

	r := gin.New()
	g := r.Group("/api/v1/masterdata")
	h.RegisterRoutes(g, g)
	return r
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestEntityLifecycleKeepsAttributes(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/api/v1/masterdata/ports", map[string]any{
		"name":    "Santos",
		"country": "Brazil",
		"code":    "BRSSZ",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "BRSSZ", created["code"])
	assert.Equal(t, true, created["active"])
	id := created["id"].(string)

	w = do(r, http.MethodPut, "/api/v1/masterdata/ports/"+id, map[string]any{
		"name":    "Santos",
		"country": "Brazil",
		"code":    "BRSSZ",
		"active":  false,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, false, decode(t, w)["active"])

	w = do(r, http.MethodGet, "/api/v1/masterdata/ports?activeOnly=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, decode(t, w)["total"])

	w = do(r, http.MethodDelete, "/api/v1/masterdata/ports/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "/api/v1/masterdata/ports/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/v1/masterdata/ports/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownCollection(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodGet, "/api/v1/masterdata/vessels", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNameRequired(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/api/v1/masterdata/customers", map[string]any{"country": "Brazil"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["details"], "Name")
}
