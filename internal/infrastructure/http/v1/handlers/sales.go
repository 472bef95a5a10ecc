package handlers

import (
	"github.com/gin-gonic/gin"

	"ricemill/internal/domain/sales"
	"ricemill/internal/infrastructure/http/v1/dto"
)

// SalesHandler handles HTTP requests for sales.
type SalesHandler struct {
	*BaseHandler
	service *sales.Service
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(base *BaseHandler, service *sales.Service) *SalesHandler {
	return &SalesHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /sales?family=paddy
func (h *SalesHandler) List(c *gin.Context) {
	var req dto.SaleListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	family, ok := h.FamilyQuery(c, req.Family)
	if !ok {
		return
	}

	items, err := h.service.ListSales(c.Request.Context(), family)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(items))
}

// Create handles POST /sales
func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.SaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	sale, err := h.service.RecordSale(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, sale)
}

// Get handles GET /sales/:id
func (h *SalesHandler) Get(c *gin.Context) {
	sale, err := h.service.GetSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sale)
}

// Delete handles DELETE /sales/:id
func (h *SalesHandler) Delete(c *gin.Context) {
	var req dto.DeleteRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.service.DeleteSale(c.Request.Context(), c.Param("id"), req.ToDomain()); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
