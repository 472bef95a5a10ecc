package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ricemill/internal/core/apperror"
	"ricemill/internal/domain/export"
	"ricemill/internal/domain/reports"
	"ricemill/internal/infrastructure/http/v1/dto"
)

var contentTypes = map[string]string{
	dto.FormatCSV:  "text/csv; charset=utf-8",
	dto.FormatHTML: "text/html; charset=utf-8",
	dto.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ReportsHandler handles HTTP requests for reports and the dashboard.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
	now     func() time.Time
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
		now:         time.Now,
	}
}

// Generate handles GET /reports?type=PADDY_SALE&fromDate=2024-01-01&toDate=2024-01-31
func (h *ReportsHandler) Generate(c *gin.Context) {
	var req dto.ReportRequest
	if !h.BindQuery(c, &req) {
		return
	}
	q, err := req.ToQuery()
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.Generate(c.Request.Context(), q)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// Chart handles GET /reports/chart
func (h *ReportsHandler) Chart(c *gin.Context) {
	var req dto.ReportRequest
	if !h.BindQuery(c, &req) {
		return
	}
	q, err := req.ToQuery()
	if err != nil {
		h.Error(c, err)
		return
	}

	points, err := h.service.ChartSeries(c.Request.Context(), q.Type, q.From, q.To)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ChartResponse{ReportType: q.Type, Points: points})
}

// Export handles GET /reports/export?format=csv|html|xlsx
func (h *ReportsHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if !h.BindQuery(c, &req) {
		return
	}
	format, err := req.NormalizedFormat()
	if err != nil {
		h.Error(c, err)
		return
	}
	q, err := req.ToQuery()
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.Generate(c.Request.Context(), q)
	if err != nil {
		h.Error(c, err)
		return
	}

	now := h.now()
	var buf bytes.Buffer
	switch format {
	case dto.FormatHTML:
		err = export.WriteHTML(&buf, report, now)
	case dto.FormatXLSX:
		err = export.WriteXLSX(&buf, report)
	default:
		err = export.WriteCSV(&buf, report)
	}
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	if format != dto.FormatHTML {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(q.Type, format, now)))
	}
	c.Data(http.StatusOK, contentTypes[format], buf.Bytes())
}

// Lookups handles GET /reports/lookups
func (h *ReportsHandler) Lookups(c *gin.Context) {
	l, err := h.service.Lookups(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, l)
}

// SystemData handles GET /reports/system-data
func (h *ReportsHandler) SystemData(c *gin.Context) {
	data, err := h.service.SystemData(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, data)
}

// Dashboard handles GET /dashboard
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	d, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, d)
}

// WarehouseStats handles GET /warehouses/stats
func (h *ReportsHandler) WarehouseStats(c *gin.Context) {
	stats, err := h.service.WarehouseStats(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(stats))
}

// RegisterRoutes registers report routes.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Generate)
	rg.GET("/chart", h.Chart)
	rg.GET("/export", h.Export)
	rg.GET("/lookups", h.Lookups)
	rg.GET("/system-data", h.SystemData)
}
