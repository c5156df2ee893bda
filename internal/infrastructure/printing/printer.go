package printing

import (
	"context"

	"github.com/rentalcore/backend/internal/domain/printing"
	"github.com/rentalcore/backend/internal/infrastructure/telemetry"
)

// pageFooter is drawn by Chrome on every page
const pageFooter = `<div style="font-size:8px;width:100%;text-align:center;color:#888;">` +
	`<span class="pageNumber"></span> / <span class="totalPages"></span></div>`

// DocumentPrinter executes document templates and prints the HTML to PDF
type DocumentPrinter struct {
	engine   *TemplateEngine
	renderer PDFRenderer
}

// NewDocumentPrinter creates a DocumentPrinter
func NewDocumentPrinter(engine *TemplateEngine, renderer PDFRenderer) *DocumentPrinter {
	return &DocumentPrinter{engine: engine, renderer: renderer}
}

// PrintTransaction renders an agreement, invoice or statement on A4
func (p *DocumentPrinter) PrintTransaction(ctx context.Context, doc TransactionDocument) (*RenderResult, error) {
	html, err := p.engine.RenderTransaction(doc)
	if err != nil {
		return nil, err
	}
	return p.print(ctx, doc.Meta, html)
}

// PrintReceipt renders a return receipt on A4
func (p *DocumentPrinter) PrintReceipt(ctx context.Context, receipt ReturnReceipt) (*RenderResult, error) {
	html, err := p.engine.RenderReceipt(receipt)
	if err != nil {
		return nil, err
	}
	return p.print(ctx, receipt.Meta, html)
}

func (p *DocumentPrinter) print(ctx context.Context, meta DocumentMeta, html string) (*RenderResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "document.print",
		telemetry.WithAttribute(telemetry.SpanAttrDocumentKind, string(meta.Kind)),
		telemetry.WithAttribute("document_number", meta.Number),
	)
	defer span.End()

	result, err := p.renderer.Render(ctx, &RenderRequest{
		HTML:        html,
		PaperSize:   printing.PaperSizeA4,
		Orientation: printing.OrientationPortrait,
		Margins:     printing.DefaultMargins(),
		Title:       documentTitle(meta.Kind) + " " + meta.Number,
		FooterHTML:  pageFooter,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

// Close releases the renderer
func (p *DocumentPrinter) Close() error {
	return p.renderer.Close()
}
