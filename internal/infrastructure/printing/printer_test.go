package printing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rentalcore/backend/internal/domain/printing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	last   *RenderRequest
	err    error
	closed bool
}

func (f *fakeRenderer) Render(_ context.Context, req *RenderRequest) (*RenderResult, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &RenderResult{PDFData: []byte("%PDF-1.7"), PageCount: 1}, nil
}

func (f *fakeRenderer) Close() error {
	f.closed = true
	return nil
}

func newTestPrinter(t *testing.T) (*DocumentPrinter, *fakeRenderer) {
	t.Helper()
	engine, err := NewTemplateEngine()
	require.NoError(t, err)
	renderer := &fakeRenderer{}
	return NewDocumentPrinter(engine, renderer), renderer
}

func TestDocumentPrinter_PrintTransaction(t *testing.T) {
	p, renderer := newTestPrinter(t)
	f := newRentalFixture(t)

	result, err := p.PrintTransaction(context.Background(), NewTransactionDocument(f.header, f.labels, company, time.Now(), "clerk"))
	require.NoError(t, err)

	assert.Equal(t, []byte("%PDF-1.7"), result.PDFData)
	require.NotNil(t, renderer.last)
	assert.Equal(t, printing.PaperSizeA4, renderer.last.PaperSize)
	assert.Equal(t, printing.OrientationPortrait, renderer.last.Orientation)
	assert.Equal(t, printing.DefaultMargins(), renderer.last.Margins)
	assert.Equal(t, "Rental Agreement RNT-20260401-0007", renderer.last.Title)
	assert.Contains(t, renderer.last.HTML, "CAM-001")
	assert.Contains(t, renderer.last.FooterHTML, "pageNumber")
}

func TestDocumentPrinter_PrintReceipt(t *testing.T) {
	p, renderer := newTestPrinter(t)
	f := newRentalFixture(t)

	_, err := p.PrintReceipt(context.Background(), NewReturnReceipt(newReturn(f), f.header.Number, f.labels, company, time.Now(), "inspector"))
	require.NoError(t, err)
	assert.Equal(t, "Return Receipt RET-20260406-0001", renderer.last.Title)
}

func TestDocumentPrinter_RendererError(t *testing.T) {
	p, renderer := newTestPrinter(t)
	renderer.err = NewRenderError(ErrCodeRenderTimeout, "PDF rendering timed out", nil)
	f := newRentalFixture(t)

	_, err := p.PrintTransaction(context.Background(), NewTransactionDocument(f.header, f.labels, company, time.Now(), "clerk"))

	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, ErrCodeRenderTimeout, renderErr.Code)

	require.NoError(t, p.Close())
	assert.True(t, renderer.closed)
}
