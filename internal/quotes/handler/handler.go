package handler

import (
	"context"
	"net/http"
	"strconv"

	"freight_backoffice/internal/quotes/domain"
	"freight_backoffice/internal/quotes/service"
	"freight_backoffice/internal/quotes/transport"
	"freight_backoffice/platform/httpkit"
	"freight_backoffice/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest = "invalid request"
	msgInvalidIndex   = "invalid cost line index"
)

// Handler handles HTTP requests for quotes
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new quotes handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the quote routes. Catalog and calculate are open
// to any signed-in user; everything else goes on the manager group.
func (h *Handler) RegisterRoutes(authenticated, manager *gin.RouterGroup) {
	authenticated.GET("/catalog", h.Catalog)
	authenticated.POST("/calculate", h.PreviewCalculation)

	manager.GET("", h.List)
	manager.POST("", h.Create)
	manager.GET("/:id", h.GetByID)
	manager.PUT("/:id", h.Update)
	manager.DELETE("/:id", h.Delete)
	manager.POST("/:id/costs", h.AddCost)
	manager.PUT("/:id/costs/:index", h.UpdateCost)
	manager.DELETE("/:id/costs/:index", h.RemoveCost)
	manager.PUT("/:id/tax-rate", h.SetTaxRate)
	manager.POST("/:id/send", h.Send)
	manager.POST("/:id/accept", h.Accept)
	manager.POST("/:id/reject", h.Reject)
	manager.GET("/:id/archive", h.DownloadArchive)
}

// Catalog handles GET /api/v1/quotes/catalog
func (h *Handler) Catalog(c *gin.Context) {
	httpkit.OK(c, h.svc.Catalog())
}

// PreviewCalculation handles POST /api/v1/quotes/calculate
// Returns calculated totals without persisting anything.
func (h *Handler) PreviewCalculation(c *gin.Context) {
	var req transport.CalculationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Calculate(req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// List handles GET /api/v1/quotes
func (h *Handler) List(c *gin.Context) {
	var req transport.ListQuotesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Check(req); httpkit.HandleError(c, err) {
		return
	}

	result, err := h.svc.List(c.Request.Context(), service.ListFilter{
		Status: domain.Status(req.Status),
		Type:   domain.QuoteType(req.Type),
		Search: req.Search,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Create handles POST /api/v1/quotes
func (h *Handler) Create(c *gin.Context) {
	var req transport.QuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	actor := domain.UserRef{ID: identity.UserID(), Email: identity.Email()}
	result, err := h.svc.Create(c.Request.Context(), actor, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// GetByID handles GET /api/v1/quotes/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Update handles PUT /api/v1/quotes/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req transport.QuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete handles DELETE /api/v1/quotes/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"message": "quote deleted"})
}

// AddCost handles POST /api/v1/quotes/:id/costs
func (h *Handler) AddCost(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req transport.AddCostRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.AddCost(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RemoveCost handles DELETE /api/v1/quotes/:id/costs/:index
func (h *Handler) RemoveCost(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	index, ok := indexParam(c)
	if !ok {
		return
	}

	result, err := h.svc.RemoveCost(c.Request.Context(), id, index)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateCost handles PUT /api/v1/quotes/:id/costs/:index
func (h *Handler) UpdateCost(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	index, ok := indexParam(c)
	if !ok {
		return
	}
	var req transport.CostLineRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.UpdateCost(c.Request.Context(), id, index, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SetTaxRate handles PUT /api/v1/quotes/:id/tax-rate
func (h *Handler) SetTaxRate(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req transport.TaxRateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.SetTaxRate(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Send handles POST /api/v1/quotes/:id/send
func (h *Handler) Send(c *gin.Context) {
	h.transition(c, h.svc.Send)
}

// Accept handles POST /api/v1/quotes/:id/accept
func (h *Handler) Accept(c *gin.Context) {
	h.transition(c, h.svc.Accept)
}

// Reject handles POST /api/v1/quotes/:id/reject
func (h *Handler) Reject(c *gin.Context) {
	h.transition(c, h.svc.Reject)
}

// DownloadArchive handles GET /api/v1/quotes/:id/archive
func (h *Handler) DownloadArchive(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	rc, filename, err := h.svc.OpenArchive(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.DataFromReader(http.StatusOK, -1, "application/json", rc, nil)
}

type transitionFunc func(ctx context.Context, id uuid.UUID) (transport.QuoteResponse, error)

func (h *Handler) transition(c *gin.Context, fn transitionFunc) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	result, err := fn(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
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

func idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}

func indexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidIndex, nil)
		return 0, false
	}
	return index, true
}
