package printing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/rental"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
	"github.com/rentalcore/backend/internal/domain/trade"
	infra "github.com/rentalcore/backend/internal/infrastructure/printing"
	"github.com/rentalcore/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPrinter is a mock implementation of Printer
type MockPrinter struct {
	mock.Mock
}

func (m *MockPrinter) PrintTransaction(ctx context.Context, doc infra.TransactionDocument) (*infra.RenderResult, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.RenderResult), args.Error(1)
}

func (m *MockPrinter) PrintReceipt(ctx context.Context, receipt infra.ReturnReceipt) (*infra.RenderResult, error) {
	args := m.Called(ctx, receipt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.RenderResult), args.Error(1)
}

var (
	now     = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	company = infra.CompanyInfo{Name: "Acme Rentals", Currency: "USD"}
	pdf     = &infra.RenderResult{PDFData: []byte("%PDF-1.7"), PageCount: 2}
)

type fixture struct {
	ctx     context.Context
	store   *testutil.MemoryStore
	printer *MockPrinter
	service *DocumentService
	header  *trade.TransactionHeader
	item    inventory.Item
	unit    inventory.InventoryUnit
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := testutil.ActorContext("clerk")
	store := testutil.NewMemoryStore(func() time.Time { return now })
	repos := store.Repositories()
	stamp := shared.StampAt("clerk", now)

	item := inventory.Item{Code: "TENT-4P", Name: "Four person tent"}
	item.ID = uuid.New()
	require.NoError(t, repos.ItemRepo.Save(ctx, &item))
	unit := inventory.InventoryUnit{Code: "TENT-4P-01", ItemID: item.ID}
	unit.ID = uuid.New()
	require.NoError(t, repos.UnitRepo.Save(ctx, &unit))

	start := testutil.Day(2024, 5, 2)
	end := testutil.Day(2024, 5, 5)
	h, err := trade.NewTransaction(trade.NewTransactionInput{
		Number:          "RNT-20240501-0001",
		Type:            trade.TransactionTypeRental,
		CustomerID:      testutil.TestCustomerID(),
		LocationID:      testutil.TestLocationID(),
		RentalStartDate: &start,
		RentalEndDate:   &end,
	}, stamp)
	require.NoError(t, err)
	_, err = h.AddLine(trade.LineInput{
		Type:            trade.LineTypeProduct,
		ItemID:          &item.ID,
		InventoryUnitID: &unit.ID,
		Quantity:        1,
		UnitPrice:       valueobject.MustMoney("45"),
		RentalStartDate: &start,
		RentalEndDate:   &end,
	}, stamp)
	require.NoError(t, err)
	require.NoError(t, repos.TransactionRepo.Save(ctx, h))

	printer := new(MockPrinter)
	service := NewDocumentService(repos.TransactionRepo, repos.ReturnRepo, repos.ItemRepo, repos.UnitRepo,
		printer, company, WithClock(shared.FixedClock{At: now}))

	return &fixture{ctx: ctx, store: store, printer: printer, service: service, header: h, item: item, unit: unit}
}

func TestDocumentService_TransactionDocument(t *testing.T) {
	f := newFixture(t)
	f.printer.On("PrintTransaction", mock.Anything, mock.MatchedBy(func(doc infra.TransactionDocument) bool {
		return doc.Meta.Number == "RNT-20240501-0001" &&
			doc.Meta.PrintedBy == "clerk" &&
			doc.Meta.PrintedAt.Equal(now) &&
			doc.Company == company &&
			len(doc.Lines) == 1 &&
			doc.Lines[0].ItemCode == "TENT-4P" &&
			doc.Lines[0].UnitCode == "TENT-4P-01"
	})).Return(pdf, nil).Once()

	resp, err := f.service.TransactionDocument(f.ctx, f.header.ID)
	require.NoError(t, err)

	assert.Equal(t, "agreement-RNT-20240501-0001.pdf", resp.Filename)
	assert.Equal(t, ContentTypePDF, resp.ContentType)
	assert.Equal(t, pdf.PDFData, resp.Content)
	assert.Equal(t, 2, resp.PageCount)
	f.printer.AssertExpectations(t)
}

func TestDocumentService_TransactionDocument_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.TransactionDocument(f.ctx, uuid.New())

	assert.ErrorIs(t, err, shared.ErrNotFound)
	f.printer.AssertNotCalled(t, "PrintTransaction", mock.Anything, mock.Anything)
}

func TestDocumentService_RenderFailure(t *testing.T) {
	f := newFixture(t)
	renderErr := infra.NewRenderError(infra.ErrCodeRenderTimeout, "PDF rendering timed out", nil)
	f.printer.On("PrintTransaction", mock.Anything, mock.Anything).Return(nil, renderErr).Once()

	_, err := f.service.TransactionDocument(f.ctx, f.header.ID)

	var target *infra.RenderError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, infra.ErrCodeRenderTimeout, target.Code)
	assert.Contains(t, err.Error(), "RNT-20240501-0001")
}

func TestDocumentService_ReturnReceipt(t *testing.T) {
	f := newFixture(t)
	ret := &rental.RentalReturn{
		Number:             "RET-20240506-0001",
		TransactionID:      f.header.ID,
		CustomerID:         f.header.CustomerID,
		LocationID:         f.header.LocationID,
		ReturnDate:         testutil.Day(2024, 5, 6),
		ExpectedReturnDate: testutil.Day(2024, 5, 5),
		Type:               rental.ReturnTypeFull,
		Status:             rental.ReturnCompleted,
		Lines: []rental.ReturnLine{{
			LineNumber:       1,
			InventoryUnitID:  f.unit.ID,
			ItemID:           f.item.ID,
			ReturnedQuantity: valueobject.MustQuantity(1),
			DamageLevel:      rental.DamageNone,
			Status:           rental.LineProcessed,
		}},
	}
	ret.ID = uuid.New()
	require.NoError(t, f.store.Repositories().ReturnRepo.Save(f.ctx, ret))

	f.printer.On("PrintReceipt", mock.Anything, mock.MatchedBy(func(r infra.ReturnReceipt) bool {
		return r.TransactionNumber == "RNT-20240501-0001" &&
			r.DaysLate == 1 &&
			len(r.Lines) == 1 &&
			r.Lines[0].ItemName == "Four person tent"
	})).Return(pdf, nil).Once()

	resp, err := f.service.ReturnReceipt(f.ctx, ret.ID)
	require.NoError(t, err)
	assert.Equal(t, "receipt-RET-20240506-0001.pdf", resp.Filename)
	f.printer.AssertExpectations(t)
}

func TestDocumentService_Disabled(t *testing.T) {
	store := testutil.NewMemoryStore(nil)
	repos := store.Repositories()
	service := NewDocumentService(repos.TransactionRepo, repos.ReturnRepo, repos.ItemRepo, repos.UnitRepo, nil, company)

	assert.False(t, service.Enabled())
	_, err := service.TransactionDocument(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrPrintingDisabled)
	_, err = service.ReturnReceipt(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrPrintingDisabled)
}
