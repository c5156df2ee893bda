package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	printingapp "github.com/rentalcore/backend/internal/application/printing"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/infrastructure/logger"
	"github.com/rentalcore/backend/internal/infrastructure/printing"
	"github.com/rentalcore/backend/internal/interfaces/http/dto"
	"github.com/rentalcore/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// HandleError converts service errors to HTTP responses. Domain errors map
// by kind; everything unrecognised is logged and reported as a 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(dto.StatusForKind(domainErr.Kind), dto.NewDomainErrorResponse(domainErr, middleware.GetRequestID(c)))
		return
	}

	if errors.Is(err, printingapp.ErrPrintingDisabled) {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Document printing is disabled")
		return
	}

	var renderErr *printing.RenderError
	if errors.As(err, &renderErr) && renderErr.Code == printing.ErrCodeRenderTimeout {
		h.Error(c, http.StatusGatewayTimeout, dto.ErrCodeRenderTimeout, renderErr.Message)
		return
	}

	_ = c.Error(err)
	logger.GetGinLogger(c).Error("request failed", zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// bindJSON binds and validates the request body, answering 400 on failure
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindQuery binds and validates query parameters, answering 400 on failure
func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// pathUUID parses a UUID path parameter, answering 400 when malformed
func (h *BaseHandler) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidID, "Invalid "+name+": must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// lineParams parses the :id and :lineId path parameters
func (h *BaseHandler) lineParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	lineID, ok := h.pathUUID(c, "lineId")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return id, lineID, true
}

// queryUUID reads an optional UUID query parameter into *dst
func (h *BaseHandler) queryUUID(c *gin.Context, name string, dst **uuid.UUID) bool {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidID, "Invalid "+name+": must be a UUID")
		return false
	}
	*dst = &id
	return true
}

// pageDefaults fills missing pagination values
func pageDefaults(page, pageSize *int) {
	if *page <= 0 {
		*page = 1
	}
	if *pageSize <= 0 {
		*pageSize = dto.DefaultPageSize
	}
	if *pageSize > dto.MaxPageSize {
		*pageSize = dto.MaxPageSize
	}
}

// bindOptionalJSON binds a body only when one was sent
func bindOptionalJSON(c *gin.Context, req any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(c, req)
}
