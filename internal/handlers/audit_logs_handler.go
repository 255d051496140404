package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	sink audit.Sink
}

func NewAuditLogsHandler(sink audit.Sink) *AuditLogsHandler {
	return &AuditLogsHandler{sink: sink}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	page := queryInt(c, "page", 1, 0)
	limit := queryInt(c, "limit", 50, 200)

	// --------------------------------------------------
	// Optional filters; unparseable dates are ignored
	// --------------------------------------------------
	filter := audit.Filter{
		Action: c.Query("action"),
		Entity: c.Query("entity"),
		From:   queryDay(c, "from", false),
		To:     queryDay(c, "to", true),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	logs, total, err := h.sink.ListAuditLogs(c.Request.Context(), filter)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Page(c, logs, page, limit, total)
}
