package handlers

import (
	"github.com/gin-gonic/gin"

	"ricemill/internal/domain/audit"
	"ricemill/internal/domain/ledger"
	"ricemill/internal/domain/store"
	"ricemill/internal/infrastructure/http/v1/dto"
)

const defaultAuditLimit = 100

// AuditHandler serves the edit and deletion trail.
type AuditHandler struct {
	*BaseHandler
	recorder *audit.Recorder
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, recorder *audit.Recorder) *AuditHandler {
	return &AuditHandler{
		BaseHandler: base,
		recorder:    recorder,
	}
}

// List handles GET /audit?collection=rice_stocks&recordId=...&limit=20
func (h *AuditHandler) List(c *gin.Context) {
	var req dto.AuditListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultAuditLimit
	}

	entries, err := h.recorder.List(c.Request.Context(), audit.Filter{
		Collection: store.Collection(req.Collection),
		RecordID:   req.RecordID,
		Action:     ledger.AuditAction(req.Action),
		Limit:      req.Limit,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		snapshot, err := h.recorder.Snapshot(e)
		if err != nil {
			h.Error(c, err)
			return
		}
		items = append(items, dto.AuditEntryResponse{
			ID:         e.ID,
			Action:     e.Action,
			Collection: e.Collection,
			RecordID:   e.RecordID,
			Comment:    e.Comment,
			At:         e.At,
			Changes:    e.Changes,
			Snapshot:   snapshot,
		})
	}
	h.OK(c, dto.NewListResponse(items))
}

// RegisterRoutes registers audit routes.
func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
}
