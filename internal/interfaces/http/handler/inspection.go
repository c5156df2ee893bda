package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	rentalapp "github.com/rentalcore/backend/internal/application/rental"
	"github.com/rentalcore/backend/internal/interfaces/http/dto"
)

// InspectionHandler serves inspection reports of returned units
type InspectionHandler struct {
	BaseHandler
	inspections *rentalapp.InspectionService
}

// NewInspectionHandler creates an InspectionHandler
func NewInspectionHandler(inspections *rentalapp.InspectionService) *InspectionHandler {
	return &InspectionHandler{inspections: inspections}
}

// Create godoc
// @ID           createInspection
// @Summary      Open an inspection
// @Tags         inspections
// @Accept       json
// @Produce      json
// @Param        request body rentalapp.CreateInspectionRequest true "Inspection"
// @Success      201 {object} APIResponse[rentalapp.InspectionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inspections [post]
func (h *InspectionHandler) Create(c *gin.Context) {
	var req rentalapp.CreateInspectionRequest
	if !bindJSON(c, &req) {
		return
	}
	report, err := h.inspections.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, report)
}

// GetByID godoc
// @ID           getInspectionById
// @Summary      Get inspection by ID
// @Tags         inspections
// @Produce      json
// @Param        id path string true "Inspection ID" format(uuid)
// @Success      200 {object} APIResponse[rentalapp.InspectionResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inspections/{id} [get]
func (h *InspectionHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	report, err := h.inspections.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// ListByReturn godoc
// @ID           listInspections
// @Summary      List the inspections of a return
// @Tags         inspections
// @Produce      json
// @Param        return_id query string true "Return" format(uuid)
// @Success      200 {object} APIResponse[[]rentalapp.InspectionResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inspections [get]
func (h *InspectionHandler) ListByReturn(c *gin.Context) {
	var returnID *uuid.UUID
	if !h.queryUUID(c, "return_id", &returnID) {
		return
	}
	if returnID == nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "return_id is required")
		return
	}
	reports, err := h.inspections.ListByReturn(c.Request.Context(), *returnID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reports)
}

// UpdateFindings godoc
// @ID           updateInspectionFindings
// @Summary      Record inspection findings
// @Tags         inspections
// @Accept       json
// @Produce      json
// @Param        id path string true "Inspection ID" format(uuid)
// @Param        request body rentalapp.FindingsRequest true "Findings"
// @Success      200 {object} APIResponse[rentalapp.InspectionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inspections/{id} [put]
func (h *InspectionHandler) UpdateFindings(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req rentalapp.FindingsRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context) (*rentalapp.InspectionResponse, error) {
		return h.inspections.UpdateFindings(ctx, id, req)
	})
}

// Start godoc
// @ID           startInspection
// @Summary      Start an inspection
// @Tags         inspections
// @Produce      json
// @Param        id path string true "Inspection ID" format(uuid)
// @Success      200 {object} APIResponse[rentalapp.InspectionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inspections/{id}/start [post]
func (h *InspectionHandler) Start(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	h.respond(c, func(ctx context.Context) (*rentalapp.InspectionResponse, error) {
		return h.inspections.Start(ctx, id)
	})
}

// Complete godoc
// @ID           completeInspection
// @Summary      Complete an inspection
// @Description  The findings are applied to the open return line of the inspected unit
// @Tags         inspections
// @Produce      json
// @Param        id path string true "Inspection ID" format(uuid)
// @Success      200 {object} APIResponse[rentalapp.InspectionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inspections/{id}/complete [post]
func (h *InspectionHandler) Complete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	h.respond(c, func(ctx context.Context) (*rentalapp.InspectionResponse, error) {
		return h.inspections.Complete(ctx, id)
	})
}

// Fail godoc
// @ID           failInspection
// @Summary      Fail an inspection
// @Tags         inspections
// @Accept       json
// @Produce      json
// @Param        id path string true "Inspection ID" format(uuid)
// @Param        request body rentalapp.FailInspectionRequest true "Reason"
// @Success      200 {object} APIResponse[rentalapp.InspectionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inspections/{id}/fail [post]
func (h *InspectionHandler) Fail(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req rentalapp.FailInspectionRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, func(ctx context.Context) (*rentalapp.InspectionResponse, error) {
		return h.inspections.Fail(ctx, id, req)
	})
}

// RequestEvidenceUpload godoc
// @ID           requestInspectionEvidenceUpload
// @Summary      Request an evidence upload URL
// @Description  Reserves an object key on the inspection and returns a presigned PUT URL
// @Tags         inspections
// @Accept       json
// @Produce      json
// @Param        id path string true "Inspection ID" format(uuid)
// @Param        request body rentalapp.EvidenceUploadRequest true "File"
// @Success      201 {object} APIResponse[rentalapp.EvidenceURLResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inspections/{id}/evidence [post]
func (h *InspectionHandler) RequestEvidenceUpload(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req rentalapp.EvidenceUploadRequest
	if !bindJSON(c, &req) {
		return
	}
	url, err := h.inspections.RequestEvidenceUpload(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, url)
}

// EvidenceURL godoc
// @ID           getInspectionEvidence
// @Summary      Get an evidence download URL
// @Tags         inspections
// @Produce      json
// @Param        id path string true "Inspection ID" format(uuid)
// @Param        key path string true "Evidence object key"
// @Success      200 {object} APIResponse[rentalapp.EvidenceURLResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inspections/{id}/evidence/{key} [get]
func (h *InspectionHandler) EvidenceURL(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	url, err := h.inspections.EvidenceURL(c.Request.Context(), id, c.Param("key"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, url)
}

func (h *InspectionHandler) respond(c *gin.Context, fn func(ctx context.Context) (*rentalapp.InspectionResponse, error)) {
	report, err := fn(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
