package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hrms-platform/internal/repository"
	"hrms-platform/internal/response"
)

// AuditHandler exposes the read side of the audit ledger
type AuditHandler struct {
	records repository.AuditRepositoryInterface
	logger  *logrus.Entry
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(records repository.AuditRepositoryInterface, logger *logrus.Logger) *AuditHandler {
	return &AuditHandler{
		records: records,
		logger:  logger.WithField("component", "audit_handler"),
	}
}

// List retrieves audit records filtered by actor, action, entity type and
// time window, newest first
func (h *AuditHandler) List(c *gin.Context) {
	var filter repository.AuditFilter

	if raw := c.Query("actor_id"); raw != "" {
		actorID, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid actor_id")
			return
		}
		filter.ActorID = &actorID
	}
	filter.Action = c.Query("action")
	filter.EntityType = c.Query("entity_type")

	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid from timestamp")
			return
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid to timestamp")
			return
		}
		filter.To = &to
	}

	page, pageSize, offset := response.Pagination(c)
	records, total, err := h.records.List(c.Request.Context(), filter, pageSize, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.List(c, records, len(records), total, page, pageSize)
}
