package printing

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rentalcore/backend/internal/domain/printing"
	"github.com/rentalcore/backend/internal/infrastructure/config"
	"github.com/rentalcore/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second
	// roll paper is printed on one tall page and cut after the content
	receiptPageHeightMM = 3000
	headerFooterMinMM   = 10
)

// ChromedpRenderer renders HTML to PDF using Chrome DevTools Protocol.
// It either launches a local headless Chrome or attaches to a remote one
// (printing.remote_url), one browser tab per render.
type ChromedpRenderer struct {
	timeout     time.Duration
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer creates the browser allocator. Chrome itself starts
// lazily on the first render.
func NewChromedpRenderer(cfg config.PrintingConfig, logger *zap.Logger) *ChromedpRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &ChromedpRenderer{
		timeout: cfg.Timeout,
		logger:  logger.Named("printing"),
	}
	if r.timeout <= 0 {
		r.timeout = defaultChromeTimeout
	}

	if cfg.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return r
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return r
}

// Render converts req.HTML to PDF
func (r *ChromedpRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if req == nil || strings.TrimSpace(req.HTML) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}
	if !req.PaperSize.IsValid() {
		return nil, NewRenderError(ErrCodeInvalidPaperSize, "invalid paper size: "+string(req.PaperSize), nil)
	}

	ctx, span := telemetry.StartSpan(ctx, "pdf.render",
		telemetry.WithAttribute("paper_size", string(req.PaperSize)),
	)
	defer span.End()

	var (
		result *RenderResult
		err    error
	)
	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels("pdf.render", nil), func(ctx context.Context) {
		result, err = r.render(ctx, req)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBytes, len(result.PDFData),
		"pages", result.PageCount,
	)
	return result, nil
}

func (r *ChromedpRenderer) render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	start := time.Now()
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = r.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tabCtx, tabCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(r.logger.Sugar().Debugf),
	)
	defer tabCancel()
	// stop the tab when the caller gives up
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	document := completeHTML(req)
	params := printParamsFor(req)

	var pdf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, document).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := params.Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, NewRenderError(ErrCodeRenderTimeout, fmt.Sprintf("PDF rendering timed out after %v", timeout), err)
		case errors.Is(ctx.Err(), context.Canceled):
			return nil, NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", err)
		}
		r.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
	}
	if len(pdf) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	result := &RenderResult{
		PDFData:        pdf,
		PageCount:      estimatePageCount(pdf),
		RenderDuration: time.Since(start),
	}
	r.logger.Debug("PDF rendered",
		zap.Int("bytes", len(pdf)),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.RenderDuration),
	)
	return result, nil
}

// printParamsFor maps a request onto Chrome's print parameters, which are
// expressed in inches
func printParamsFor(req *RenderRequest) *page.PrintToPDFParams {
	width, height := req.PaperSize.Dimensions()
	if req.PaperSize.IsReceipt() {
		height = receiptPageHeightMM
	}
	margins := req.Margins
	withHeaderFooter := req.HeaderHTML != "" || req.FooterHTML != ""
	if req.HeaderHTML != "" {
		margins.Top = max(margins.Top, headerFooterMinMM)
	}
	if req.FooterHTML != "" {
		margins.Bottom = max(margins.Bottom, headerFooterMinMM)
	}

	params := page.PrintToPDF().
		WithPrintBackground(true).
		WithPaperWidth(mmToInches(width)).
		WithPaperHeight(mmToInches(height)).
		WithMarginTop(mmToInches(margins.Top)).
		WithMarginRight(mmToInches(margins.Right)).
		WithMarginBottom(mmToInches(margins.Bottom)).
		WithMarginLeft(mmToInches(margins.Left)).
		WithLandscape(req.Orientation == printing.OrientationLandscape).
		WithDisplayHeaderFooter(withHeaderFooter)
	if withHeaderFooter {
		// Chrome prints its own date/title header when a template is empty
		params = params.
			WithHeaderTemplate(orBlank(req.HeaderHTML)).
			WithFooterTemplate(orBlank(req.FooterHTML))
	}
	return params
}

func orBlank(fragment string) string {
	if fragment == "" {
		return "<span></span>"
	}
	return fragment
}

// completeHTML wraps a fragment in a full document; complete documents
// pass through untouched
func completeHTML(req *RenderRequest) string {
	lower := strings.ToLower(req.HTML)
	if strings.Contains(lower, "<!doctype") || strings.Contains(lower, "<html") {
		return req.HTML
	}
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8">`)
	if req.Title != "" {
		b.WriteString("<title>" + html.EscapeString(req.Title) + "</title>")
	}
	b.WriteString("</head><body>")
	b.WriteString(req.HTML)
	b.WriteString("</body></html>")
	return b.String()
}

// Close shuts down the browser allocator
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

func mmToInches(mm int) float64 {
	return float64(mm) / 25.4
}

var _ PDFRenderer = (*ChromedpRenderer)(nil)
