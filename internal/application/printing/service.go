package printing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/rental"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/trade"
	infra "github.com/rentalcore/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// ErrPrintingDisabled is returned when no PDF printer is configured
var ErrPrintingDisabled = errors.New("document printing is disabled")

// Printer turns document views into PDFs. infra.DocumentPrinter
// implements it.
type Printer interface {
	PrintTransaction(ctx context.Context, doc infra.TransactionDocument) (*infra.RenderResult, error)
	PrintReceipt(ctx context.Context, receipt infra.ReturnReceipt) (*infra.RenderResult, error)
}

// DocumentService prints transaction documents and return receipts on
// demand. Nothing is stored; every call renders from current state.
type DocumentService struct {
	transactions trade.TransactionRepository
	returns      rental.RentalReturnRepository
	items        inventory.ItemRepository
	units        inventory.InventoryUnitRepository
	printer      Printer
	company      infra.CompanyInfo
	options
}

// NewDocumentService creates a DocumentService. A nil printer leaves the
// service answering ErrPrintingDisabled.
func NewDocumentService(
	transactions trade.TransactionRepository,
	returns rental.RentalReturnRepository,
	items inventory.ItemRepository,
	units inventory.InventoryUnitRepository,
	printer Printer,
	company infra.CompanyInfo,
	opts ...Option,
) *DocumentService {
	return &DocumentService{
		transactions: transactions,
		returns:      returns,
		items:        items,
		units:        units,
		printer:      printer,
		company:      company,
		options:      buildOptions(opts),
	}
}

// Enabled reports whether documents can be printed
func (s *DocumentService) Enabled() bool {
	return s.printer != nil
}

// TransactionDocument prints the agreement, invoice or statement of a
// transaction
func (s *DocumentService) TransactionDocument(ctx context.Context, id uuid.UUID) (*DocumentResponse, error) {
	if !s.Enabled() {
		return nil, ErrPrintingDisabled
	}
	h, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var itemIDs, unitIDs []uuid.UUID
	for i := range h.Lines {
		if h.Lines[i].ItemID != nil {
			itemIDs = append(itemIDs, *h.Lines[i].ItemID)
		}
		if h.Lines[i].InventoryUnitID != nil {
			unitIDs = append(unitIDs, *h.Lines[i].InventoryUnitID)
		}
	}
	labels, err := s.labels(ctx, itemIDs, unitIDs)
	if err != nil {
		return nil, err
	}

	doc := infra.NewTransactionDocument(h, labels, s.company, s.clock.Now(), shared.ActorFromContext(ctx))
	result, err := s.printer.PrintTransaction(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("print transaction %s: %w", h.Number, err)
	}
	s.logger.Info("Transaction document printed",
		zap.String("transaction_number", h.Number),
		zap.String("document_kind", string(doc.Meta.Kind)),
		zap.Int("pages", result.PageCount),
	)
	return newResponse(doc.Meta, result), nil
}

// ReturnReceipt prints the receipt of a return
func (s *DocumentService) ReturnReceipt(ctx context.Context, id uuid.UUID) (*DocumentResponse, error) {
	if !s.Enabled() {
		return nil, ErrPrintingDisabled
	}
	r, err := s.returns.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	h, err := s.transactions.FindByID(ctx, r.TransactionID)
	if err != nil {
		return nil, err
	}

	itemIDs := make([]uuid.UUID, 0, len(r.Lines))
	unitIDs := make([]uuid.UUID, 0, len(r.Lines))
	for i := range r.Lines {
		itemIDs = append(itemIDs, r.Lines[i].ItemID)
		unitIDs = append(unitIDs, r.Lines[i].InventoryUnitID)
	}
	labels, err := s.labels(ctx, itemIDs, unitIDs)
	if err != nil {
		return nil, err
	}

	receipt := infra.NewReturnReceipt(r, h.Number, labels, s.company, s.clock.Now(), shared.ActorFromContext(ctx))
	result, err := s.printer.PrintReceipt(ctx, receipt)
	if err != nil {
		return nil, fmt.Errorf("print return receipt %s: %w", r.Number, err)
	}
	s.logger.Info("Return receipt printed",
		zap.String("return_number", r.Number),
		zap.Int("pages", result.PageCount),
	)
	return newResponse(receipt.Meta, result), nil
}

func (s *DocumentService) labels(ctx context.Context, itemIDs, unitIDs []uuid.UUID) (infra.Labels, error) {
	labels := infra.Labels{
		Items: make(map[uuid.UUID]inventory.Item, len(itemIDs)),
		Units: make(map[uuid.UUID]inventory.InventoryUnit, len(unitIDs)),
	}
	if len(itemIDs) > 0 {
		items, err := s.items.FindByIDs(ctx, itemIDs)
		if err != nil {
			return labels, fmt.Errorf("load document items: %w", err)
		}
		for _, item := range items {
			labels.Items[item.ID] = item
		}
	}
	if len(unitIDs) > 0 {
		units, err := s.units.FindByIDs(ctx, unitIDs)
		if err != nil {
			return labels, fmt.Errorf("load document units: %w", err)
		}
		for _, unit := range units {
			labels.Units[unit.ID] = unit
		}
	}
	return labels, nil
}

func newResponse(meta infra.DocumentMeta, result *infra.RenderResult) *DocumentResponse {
	return &DocumentResponse{
		Filename:    meta.Kind.FilePrefix() + "-" + meta.Number + ".pdf",
		ContentType: ContentTypePDF,
		Content:     result.PDFData,
		PageCount:   result.PageCount,
	}
}
