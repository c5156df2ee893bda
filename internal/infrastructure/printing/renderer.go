package printing

import (
	"bytes"
	"context"
	"time"

	"github.com/rentalcore/backend/internal/domain/printing"
)

// RenderRequest is one rendered page of HTML plus its paper setup
type RenderRequest struct {
	HTML        string
	PaperSize   printing.PaperSize
	Orientation printing.Orientation
	// Margins in millimeters
	Margins    printing.Margins
	Title      string
	HeaderHTML string
	FooterHTML string
	// Timeout overrides the renderer's default
	Timeout time.Duration
}

// RenderResult is the printed PDF
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer turns an HTML page into a PDF document
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// RenderError is returned by renderers and the printer. Code is one of
// the ErrCode constants; the HTTP layer maps RENDER_TIMEOUT to 504.
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
)

// NewRenderError builds a RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

// estimatePageCount counts page objects in the PDF body. Every page
// carries "/Type /Page"; the page tree root carries "/Type /Pages".
func estimatePageCount(pdfData []byte) int {
	count := bytes.Count(pdfData, []byte("/Type /Page")) - bytes.Count(pdfData, []byte("/Type /Pages"))
	return max(count, 1)
}
