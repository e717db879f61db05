package handler

import (
	"net/http"
	"time"

	"freight_backoffice/internal/masterdata/domain"
	"freight_backoffice/internal/masterdata/service"
	"freight_backoffice/internal/masterdata/transport"
	"freight_backoffice/platform/httpkit"
	"freight_backoffice/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest    = "invalid request"
	msgUnknownCollection = "unknown master data collection"
)

// Handler handles HTTP requests for master data.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new master data handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts read routes on read and write routes on write.
func (h *Handler) RegisterRoutes(read, write *gin.RouterGroup) {
	read.GET("/:collection", h.List)
	read.GET("/:collection/:id", h.Get)
	write.POST("/:collection", h.Create)
	write.PUT("/:collection/:id", h.Update)
	write.DELETE("/:collection/:id", h.Delete)
}

// List handles GET /api/v1/masterdata/:collection
func (h *Handler) List(c *gin.Context) {
	col, ok := collectionParam(c)
	if !ok {
		return
	}
	var req transport.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	items, err := h.svc.List(c.Request.Context(), col, service.ListFilter{Search: req.Search, ActiveOnly: req.ActiveOnly})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ListResponse{
		Collection: string(col),
		Items:      items,
		Total:      len(items),
		FetchedAt:  time.Now().UTC(),
	})
}

// Get handles GET /api/v1/masterdata/:collection/:id
func (h *Handler) Get(c *gin.Context) {
	col, ok := collectionParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	e, err := h.svc.Get(c.Request.Context(), col, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, e)
}

// Create handles POST /api/v1/masterdata/:collection
func (h *Handler) Create(c *gin.Context) {
	col, ok := collectionParam(c)
	if !ok {
		return
	}
	req, ok := h.bind(c)
	if !ok {
		return
	}

	e, err := h.svc.Create(c.Request.Context(), col, req.ToEntity())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, e)
}

// Update handles PUT /api/v1/masterdata/:collection/:id
func (h *Handler) Update(c *gin.Context) {
	col, ok := collectionParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	req, ok := h.bind(c)
	if !ok {
		return
	}

	e, err := h.svc.Update(c.Request.Context(), col, id, req.ToEntity())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, e)
}

// Delete handles DELETE /api/v1/masterdata/:collection/:id
func (h *Handler) Delete(c *gin.Context) {
	col, ok := collectionParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), col, id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) bind(c *gin.Context) (transport.EntityRequest, bool) {
	var req transport.EntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BindError(c, err)
		return req, false
	}
	if err := h.val.Check(req); httpkit.HandleError(c, err) {
		return req, false
	}
	return req, true
}

func collectionParam(c *gin.Context) (domain.Collection, bool) {
	col, ok := domain.ParseCollection(c.Param("collection"))
	if !ok {
		httpkit.Error(c, http.StatusNotFound, msgUnknownCollection, gin.H{"collection": c.Param("collection")})
		return "", false
	}
	return col, true
}

func idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}
