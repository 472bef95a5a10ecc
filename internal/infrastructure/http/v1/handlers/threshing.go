package handlers

import (
	"github.com/gin-gonic/gin"

	"ricemill/internal/domain/threshing"
	"ricemill/internal/infrastructure/http/v1/dto"
)

// ThreshingHandler handles HTTP requests for threshing records.
type ThreshingHandler struct {
	*BaseHandler
	service *threshing.Service
}

// NewThreshingHandler creates a new threshing handler.
func NewThreshingHandler(base *BaseHandler, service *threshing.Service) *ThreshingHandler {
	return &ThreshingHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /threshings
func (h *ThreshingHandler) List(c *gin.Context) {
	items, err := h.service.ListThreshings(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(items))
}

// Create handles POST /threshings
func (h *ThreshingHandler) Create(c *gin.Context) {
	var req dto.ThreshingRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	rec, err := h.service.RecordThreshing(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, rec)
}

// Get handles GET /threshings/:id
func (h *ThreshingHandler) Get(c *gin.Context) {
	rec, err := h.service.GetThreshing(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}

// Delete handles DELETE /threshings/:id
func (h *ThreshingHandler) Delete(c *gin.Context) {
	var req dto.DeleteRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.service.DeleteThreshing(c.Request.Context(), c.Param("id"), req.ToDomain()); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
