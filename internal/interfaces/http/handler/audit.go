package handler

import (
	"github.com/gin-gonic/gin"
	appshared "github.com/rentalcore/backend/internal/application/shared"
)

// AuditHandler exposes the audit trail of an entity
type AuditHandler struct {
	BaseHandler
	audit *appshared.AuditService
}

// NewAuditHandler creates an AuditHandler
func NewAuditHandler(audit *appshared.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// ListForEntity godoc
// @ID           listAuditEntries
// @Summary      Audit trail of an entity
// @Description  Entries in the order they were written, each with its rendered text
// @Tags         audit
// @Produce      json
// @Param        entityType path string true "Entity type" Enums(ITEM, INVENTORY_UNIT, STOCK_LEVEL, TRANSACTION, TRANSACTION_LINE, RENTAL_RETURN, RETURN_LINE, INSPECTION)
// @Param        entityId path string true "Entity ID" format(uuid)
// @Success      200 {object} APIResponse[[]appshared.AuditEntryResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /audit/{entityType}/{entityId} [get]
func (h *AuditHandler) ListForEntity(c *gin.Context) {
	id, ok := h.pathUUID(c, "entityId")
	if !ok {
		return
	}
	entries, err := h.audit.ListForEntity(c.Request.Context(), c.Param("entityType"), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}
