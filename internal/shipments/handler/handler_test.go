package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"freight_backoffice/internal/events"
	"freight_backoffice/internal/shipments/domain"
	"freight_backoffice/internal/shipments/repository"
	"freight_backoffice/internal/shipments/service"
	"freight_backoffice/internal/shipments/transport"
	"freight_backoffice/platform/apperr"
	"freight_backoffice/platform/docstore"
	"freight_backoffice/platform/httpkit"
	"freight_backoffice/platform/logger"
	"freight_backoffice/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	managerID  = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	customerID = uuid.MustParse("00000000-0000-0000-0000-0000000000c1")
	strangerID = uuid.MustParse("00000000-0000-0000-0000-0000000000c2")
	missingID  = uuid.MustParse("00000000-0000-0000-0000-00000000dead")
)

type stubDirectory struct{}

func (stubDirectory) Customer(_ context.Context, id uuid.UUID) (domain.Party, error) {
	if id == missingID {
		return domain.Party{}, apperr.NotFound("customer not found")
	}
	login := customerID
	return domain.Party{ID: id, Name: "Customer " + id.String(), UserID: &login}, nil
}

func (stubDirectory) Forwarder(_ context.Context, id uuid.UUID) (domain.Party, error) {
	return domain.Party{ID: id, Name: "Forwarder " + id.String()}, nil
}

type nopBus struct{}

func (nopBus) Publish(context.Context, events.Event)           {}
func (nopBus) PublishSync(context.Context, events.Event) error { return nil }
func (nopBus) Subscribe(string, events.Handler)                {}

// newRouter authenticates every request as the user named in X-Test-User,
// with the manager role unless X-Test-Role says otherwise.
func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	val := validator.New()
	require.NoError(t, transport.RegisterValidations(val))
	svc := service.New(repository.New(docstore.NewMemoryStore()), stubDirectory{}, nopBus{}, logger.Discard())
	h := New(svc, val)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		uid := managerID
		if raw := c.GetHeader("X-Test-User"); raw != "" {
			uid = uuid.MustParse(raw)
		}
		role := httpkit.RoleManager
		if raw := c.GetHeader("X-Test-Role"); raw != "" {
			role = raw
		}
		c.Set(httpkit.ContextUserIDKey, uid)
		c.Set(httpkit.ContextEmailKey, "user@example.com")
		c.Set(httpkit.ContextRolesKey, []string{role})
		c.Next()
	})
	g := r.Group("/api/v1/shipments")
	h.RegisterRoutes(g, g)
	return r
}

func do(r *gin.Engine, method, path string, body any, as ...uuid.UUID) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if len(as) > 0 {
		req.Header.Set("X-Test-User", as[0].String())
		req.Header.Set("X-Test-Role", httpkit.RoleCustomer)
	}
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

func shipmentBody() map[string]any {
	return map[string]any{
		"shipper":   map[string]any{"id": uuid.NewString()},
		"consignee": map[string]any{"id": uuid.NewString()},
		"blNumber":  "mscu7654321",
		"containers": []map[string]any{
			{"type": "40HC", "number": "MSKU1234565"},
		},
	}
}

func TestShipmentLifecycleOverHTTP(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/api/v1/shipments/ocean", shipmentBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	id := created["id"].(string)
	assert.Equal(t, "MSCU7654321", created["trackingNumber"])
	assert.Equal(t, "booked", created["status"])

	w = do(r, http.MethodPost, "/api/v1/shipments/ocean/"+id+"/events", map[string]any{
		"status": "in-transit", "description": "Loaded on board", "location": "Santos",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, decode(t, w)["trackingHistory"], 2)

	w = do(r, http.MethodGet, "/api/v1/shipments/search?number=mscu7654321", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decode(t, w)["total"])

	w = do(r, http.MethodGet, "/api/v1/shipments?status=in-transit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decode(t, w)["total"])

	w = do(r, http.MethodDelete, "/api/v1/shipments/ocean/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/v1/shipments/ocean/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCustomerSeesOnlyOwnShipments(t *testing.T) {
	r := newRouter(t)
	w := do(r, http.MethodPost, "/api/v1/shipments/airfreight", shipmentBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["id"].(string)

	w = do(r, http.MethodGet, "/api/v1/shipments/air/"+id, nil, customerID)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/v1/shipments/air/"+id, nil, strangerID)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/v1/shipments", nil, customerID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decode(t, w)["total"])

	w = do(r, http.MethodGet, "/api/v1/shipments", nil, strangerID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, decode(t, w)["total"])
}

func TestShipmentRequestValidation(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodPost, "/api/v1/shipments/rail", shipmentBody())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := shipmentBody()
	body["status"] = "lost"
	w = do(r, http.MethodPost, "/api/v1/shipments/truck", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["details"], "Status")

	body = shipmentBody()
	body["costs"] = []map[string]any{{"category": "insurance", "amount": 5}}
	w = do(r, http.MethodPost, "/api/v1/shipments/truck", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["details"], "Costs[0].Category")

	body = shipmentBody()
	body["shipper"] = map[string]any{"id": missingID.String()}
	w = do(r, http.MethodPost, "/api/v1/shipments/truck", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "shipper not found", decode(t, w)["error"])

	w = do(r, http.MethodGet, "/api/v1/shipments/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/shipments/ocean/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
