package dto

import (
	"net/http"

	"github.com/rentalcore/backend/internal/domain/shared"
)

// Transport error codes. Domain errors keep their own codes.
const (
	ErrCodeInternal       = "INTERNAL_ERROR"
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeInvalidJSON    = "INVALID_JSON"
	ErrCodeInvalidID      = "INVALID_ID"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeForbidden      = "FORBIDDEN"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeRateLimited    = "RATE_LIMIT_EXCEEDED"
	ErrCodeTooLarge       = "REQUEST_TOO_LARGE"
	ErrCodeUnavailable    = "SERVICE_UNAVAILABLE"
	ErrCodeRenderTimeout  = "RENDER_TIMEOUT"
	ErrCodeIdempotencyKey = "INVALID_IDEMPOTENCY_KEY"
)

// KindHTTPStatus maps domain error kinds to HTTP status codes
var KindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindNotFound:            http.StatusNotFound,
	shared.KindValidation:          http.StatusUnprocessableEntity,
	shared.KindConflict:            http.StatusConflict,
	shared.KindInvalidTransition:   http.StatusUnprocessableEntity,
	shared.KindConcurrencyConflict: http.StatusConflict,
}

// StatusForKind returns the HTTP status for a domain error kind, or 500
// when the kind is unknown
func StatusForKind(kind shared.ErrorKind) int {
	if status, ok := KindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NewDomainErrorResponse renders a domain error, carrying the state pair of
// transition violations
func NewDomainErrorResponse(err *shared.DomainError, requestID string) Response {
	resp := NewErrorResponseWithRequestID(err.Code, err.Message, requestID)
	resp.Error.Current = err.Current
	resp.Error.Target = err.Target
	return resp
}
