package handlers

import (
	"github.com/gin-gonic/gin"

	"ricemill/internal/core/apperror"
	"ricemill/internal/domain/export"
	"ricemill/internal/domain/ledger"
	"ricemill/internal/domain/stock"
	"ricemill/internal/infrastructure/http/v1/dto"
)

// maxImportSize bounds uploaded stock spreadsheets.
const maxImportSize = 10 << 20

// StockHandler handles HTTP requests for rice and paddy lots.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /stocks?family=rice
func (h *StockHandler) List(c *gin.Context) {
	var req dto.StockListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	family, ok := h.FamilyQuery(c, req.Family)
	if !ok {
		return
	}

	items, err := h.service.ListStocks(c.Request.Context(), family)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(items))
}

// Create handles POST /stocks
func (h *StockHandler) Create(c *gin.Context) {
	var req dto.CreateStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	rec, err := h.service.AddStock(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, rec)
}

// Get handles GET /stocks/:id
func (h *StockHandler) Get(c *gin.Context) {
	rec, err := h.service.GetStock(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}

// Update handles PUT /stocks/:id
func (h *StockHandler) Update(c *gin.Context) {
	var req dto.UpdateStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		h.Error(c, err)
		return
	}

	rec, err := h.service.UpdateStock(c.Request.Context(), c.Param("id"), patch, req.Comment)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}

// Delete handles DELETE /stocks/:id with a reason and confirmation body.
func (h *StockHandler) Delete(c *gin.Context) {
	var req dto.DeleteRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.service.DeleteStock(c.Request.Context(), c.Param("id"), req.ToDomain()); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// LowStock handles GET /stocks/low
func (h *StockHandler) LowStock(c *gin.Context) {
	items, err := h.service.LowStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(items))
}

// Catalog handles GET /stocks/catalog
func (h *StockHandler) Catalog(c *gin.Context) {
	h.OK(c, h.service.Catalog())
}

// Import handles POST /stocks/import?family=paddy with an XLSX file field.
func (h *StockHandler) Import(c *gin.Context) {
	family, err := ledger.ParseFamily(c.Query("family"))
	if err != nil {
		h.Error(c, err)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		h.Error(c, apperror.NewFieldValidation("file", "an .xlsx file is required"))
		return
	}
	if header.Size > maxImportSize {
		h.Error(c, apperror.NewFieldValidation("file", "file is larger than 10 MB"))
		return
	}

	f, err := header.Open()
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	defer f.Close()

	parsed, err := export.ParseStockRows(f, family)
	if err != nil {
		h.Error(c, apperror.NewFieldValidation("file", err.Error()))
		return
	}

	res := export.ImportStocks(c.Request.Context(), h.service, parsed)
	h.Created(c, dto.FromImportResult(res))
}

// RegisterRoutes registers stock routes.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/low", h.LowStock)
	rg.GET("/catalog", h.Catalog)
	rg.POST("/import", h.Import)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}
