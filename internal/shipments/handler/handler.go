package handler

import (
	"net/http"

	"freight_backoffice/internal/shipments/domain"
	"freight_backoffice/internal/shipments/service"
	"freight_backoffice/internal/shipments/transport"
	"freight_backoffice/platform/httpkit"
	"freight_backoffice/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest = "invalid request"
	msgUnknownType    = "unknown shipment type"
)

// Handler handles HTTP requests for shipments
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new shipments handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the shipment routes. Reads are open to any
// signed-in user and scoped by role; writes need a manager.
func (h *Handler) RegisterRoutes(authenticated, manager *gin.RouterGroup) {
	authenticated.GET("", h.List)
	authenticated.GET("/search", h.Search)
	authenticated.GET("/:type/:id", h.Get)

	manager.POST("/:type", h.Create)
	manager.PUT("/:type/:id", h.Update)
	manager.DELETE("/:type/:id", h.Delete)
	manager.POST("/:type/:id/events", h.RecordEvent)
}

// List handles GET /api/v1/shipments
func (h *Handler) List(c *gin.Context) {
	var req transport.ListShipmentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Check(req); httpkit.HandleError(c, err) {
		return
	}
	viewer, ok := viewerOf(c)
	if !ok {
		return
	}

	filter := service.ListFilter{Status: domain.Status(req.Status), Search: req.Search}
	if req.Type != "" {
		filter.Type, _ = domain.ParseType(req.Type)
	}
	result, err := h.svc.List(c.Request.Context(), viewer, filter)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Search handles GET /api/v1/shipments/search?number=
func (h *Handler) Search(c *gin.Context) {
	var req transport.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Check(req); httpkit.HandleError(c, err) {
		return
	}
	viewer, ok := viewerOf(c)
	if !ok {
		return
	}

	result, err := h.svc.SearchByNumber(c.Request.Context(), viewer, req.Number)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Get handles GET /api/v1/shipments/:type/:id
func (h *Handler) Get(c *gin.Context) {
	t, id, ok := pathParams(c)
	if !ok {
		return
	}
	viewer, ok := viewerOf(c)
	if !ok {
		return
	}

	result, err := h.svc.Get(c.Request.Context(), viewer, t, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Create handles POST /api/v1/shipments/:type
func (h *Handler) Create(c *gin.Context) {
	t, ok := typeParam(c)
	if !ok {
		return
	}
	var req transport.ShipmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	actor := domain.Manager{UID: identity.UserID(), Email: identity.Email()}
	result, err := h.svc.Create(c.Request.Context(), actor, t, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// Update handles PUT /api/v1/shipments/:type/:id
func (h *Handler) Update(c *gin.Context) {
	t, id, ok := pathParams(c)
	if !ok {
		return
	}
	var req transport.ShipmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Update(c.Request.Context(), t, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete handles DELETE /api/v1/shipments/:type/:id
func (h *Handler) Delete(c *gin.Context) {
	t, id, ok := pathParams(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), t, id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"message": "shipment deleted"})
}

// RecordEvent handles POST /api/v1/shipments/:type/:id/events
func (h *Handler) RecordEvent(c *gin.Context) {
	t, id, ok := pathParams(c)
	if !ok {
		return
	}
	var req transport.TrackingEventRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.RecordEvent(c.Request.Context(), t, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

func (h *Handler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.BindError(c, err)
		return false
	}
	if err := h.val.Check(req); httpkit.HandleError(c, err) {
		return false
	}
	return true
}

func viewerOf(c *gin.Context) (service.Viewer, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return service.Viewer{}, false
	}
	return service.Viewer{UserID: identity.UserID(), Manager: identity.IsManager()}, true
}

func typeParam(c *gin.Context) (domain.Type, bool) {
	t, ok := domain.ParseType(c.Param("type"))
	if !ok {
		httpkit.Error(c, http.StatusBadRequest, msgUnknownType, nil)
		return "", false
	}
	return t, true
}

func pathParams(c *gin.Context) (domain.Type, uuid.UUID, bool) {
	t, ok := typeParam(c)
	if !ok {
		return "", uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return "", uuid.Nil, false
	}
	return t, id, true
}
