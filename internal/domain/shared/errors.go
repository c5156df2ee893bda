package shared

import "fmt"

// ErrorKind classifies a domain error so boundaries can translate it
// without inspecting codes.
type ErrorKind string

const (
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindValidation          ErrorKind = "VALIDATION"
	KindConflict            ErrorKind = "CONFLICT"
	KindInvalidTransition   ErrorKind = "INVALID_TRANSITION"
	KindConcurrencyConflict ErrorKind = "CONCURRENCY_CONFLICT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	// Current and Target are set for state-machine violations.
	Current string `json:"current,omitempty"`
	Target  string `json:"target,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches by kind so callers can write errors.Is(err, shared.ErrNotFound).
// An invalid transition is a specialization of a validation failure.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	if t.Code != "" && t.Code != string(t.Kind) {
		return e.Kind == t.Kind && e.Code == t.Code
	}
	if e.Kind == t.Kind {
		return true
	}
	return e.Kind == KindInvalidTransition && t.Kind == KindValidation
}

// IsInvalidTransition reports whether the error carries state context.
func (e *DomainError) IsInvalidTransition() bool {
	return e.Kind == KindInvalidTransition
}

// NewDomainError creates a new domain error of the given kind
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a business-rule violation
func NewValidationError(code, message string) *DomainError {
	return NewDomainError(KindValidation, code, message)
}

// NewNotFoundError creates an error for a missing referenced entity
func NewNotFoundError(entity string, id any) *DomainError {
	return NewDomainError(KindNotFound, entity+"_NOT_FOUND", fmt.Sprintf("%s %v not found", humanize(entity), id))
}

// NewConflictError creates a uniqueness violation
func NewConflictError(code, message string) *DomainError {
	return NewDomainError(KindConflict, code, message)
}

// NewInvalidTransitionError creates a state-machine violation carrying the
// current and requested states.
func NewInvalidTransitionError(entity, current, target string) *DomainError {
	return &DomainError{
		Kind:    KindInvalidTransition,
		Code:    "INVALID_" + entity + "_TRANSITION",
		Message: fmt.Sprintf("cannot transition %s from %s to %s", humanize(entity), current, target),
		Current: current,
		Target:  target,
	}
}

func humanize(entity string) string {
	out := []byte(entity)
	for i, c := range out {
		switch {
		case c == '_':
			out[i] = ' '
		case c >= 'A' && c <= 'Z':
			out[i] = c + ('a' - 'A')
		}
	}
	return string(out)
}

// Sentinels for errors.Is checks. They match any error of the same kind.
var (
	ErrNotFound            = NewDomainError(KindNotFound, string(KindNotFound), "Resource not found")
	ErrValidation          = NewDomainError(KindValidation, string(KindValidation), "Validation failed")
	ErrConflict            = NewDomainError(KindConflict, string(KindConflict), "Resource already exists")
	ErrInvalidTransition   = NewDomainError(KindInvalidTransition, string(KindInvalidTransition), "Invalid state transition")
	ErrConcurrencyConflict = NewDomainError(KindConcurrencyConflict, string(KindConcurrencyConflict), "Resource was modified by another process")
	ErrDuplicateRequest    = NewConflictError("DUPLICATE_REQUEST", "Request with this idempotency key was already processed")
)
