package printing

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/printing"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	transactionTemplate = "transaction.html"
	receiptTemplate     = "receipt.html"
)

// TemplateEngine executes the embedded document templates
type TemplateEngine struct {
	templates *template.Template
}

// NewTemplateEngine parses every embedded template once
func NewTemplateEngine() (*TemplateEngine, error) {
	t, err := template.New("documents").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "parse document templates", err)
	}
	return &TemplateEngine{templates: t}, nil
}

// RenderTransaction executes the transaction document template
func (e *TemplateEngine) RenderTransaction(doc TransactionDocument) (string, error) {
	return e.execute(transactionTemplate, doc)
}

// RenderReceipt executes the return receipt template
func (e *TemplateEngine) RenderReceipt(receipt ReturnReceipt) (string, error) {
	return e.execute(receiptTemplate, receipt)
}

func (e *TemplateEngine) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "execute template "+name, err)
	}
	return buf.String(), nil
}

// IsRental reports whether the document prints rental terms
func (d TransactionDocument) IsRental() bool {
	return d.Meta.Kind == printing.DocumentRentalAgreement
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money":    formatMoney,
		"date":     formatDate,
		"datetime": formatDateTime,
		"humanize": humanize,
		"title":    documentTitle,
		"shortID":  func(id uuid.UUID) string { return shortID(id) },
		"positive": func(d decimal.Decimal) bool { return d.IsPositive() },
	}
}

// formatMoney prints an amount with two decimals, thousands separators
// and the currency code in front. Example: 1234.5 -> "USD 1,234.50"
func formatMoney(currency string, d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	intPart, decPart, _ := strings.Cut(d.StringFixed(2), ".")

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	amount := sign + b.String() + "." + decPart
	if currency == "" {
		return amount
	}
	return currency + " " + amount
}

func formatDate(v any) string {
	return formatTimeValue(v, "2006-01-02")
}

func formatDateTime(v any) string {
	return formatTimeValue(v, "2006-01-02 15:04")
}

func formatTimeValue(v any, layout string) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(layout)
	case *time.Time:
		if t == nil || t.IsZero() {
			return ""
		}
		return t.Format(layout)
	default:
		return fmt.Sprint(v)
	}
}

// humanize turns an enum value into words: "IN_PROGRESS" -> "In Progress".
// A Caser keeps state, so each call builds its own.
func humanize(v any) string {
	s := strings.ReplaceAll(strings.ToLower(fmt.Sprint(v)), "_", " ")
	return cases.Title(language.English).String(s)
}

func documentTitle(kind printing.DocumentKind) string {
	return humanize(kind)
}
