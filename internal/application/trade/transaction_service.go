package trade

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	appshared "github.com/rentalcore/backend/internal/application/shared"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// OpApplyPayment names payment requests for idempotency
const OpApplyPayment = "transaction.payment"

// TransactionService handles transaction headers and their lines
type TransactionService struct {
	scope   appshared.TransactionScope
	txnRepo trade.TransactionRepository
	options
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(scope appshared.TransactionScope, txnRepo trade.TransactionRepository, opts ...Option) *TransactionService {
	return &TransactionService{
		scope:   scope,
		txnRepo: txnRepo,
		options: buildOptions(opts),
	}
}

// Create opens a DRAFT transaction with an allocated number
func (s *TransactionService) Create(ctx context.Context, req CreateTransactionRequest) (*TransactionResponse, error) {
	if err := s.requireCustomer(ctx, req.CustomerID); err != nil {
		return nil, err
	}
	stamp := shared.NewStamp(ctx, s.clock)
	var header *trade.TransactionHeader
	err := appshared.Run(ctx, s.scope, s.publisher, func(repos appshared.TransactionalRepositories, t *appshared.Tracker) error {
		txnType := trade.TransactionType(req.Type)
		number, err := repos.Numbers().Next(ctx, txnType.NumberPrefix())
		if err != nil {
			return err
		}
		in := trade.NewTransactionInput{
			Number:                 number,
			Type:                   txnType,
			CustomerID:             req.CustomerID,
			LocationID:             req.LocationID,
			SalesPersonID:          req.SalesPersonID,
			ReferenceTransactionID: req.ReferenceTransactionID,
			RentalStartDate:        req.RentalStartDate,
			RentalEndDate:          req.RentalEndDate,
		}
		in.TaxRate = s.taxRateOr(req.TaxRate)
		header, err = trade.NewTransaction(in, stamp)
		if err != nil {
			return err
		}
		for _, l := range req.Lines {
			if _, err := header.AddLine(l.toInput(), stamp); err != nil {
				return err
			}
		}
		if err := repos.Transactions().Save(ctx, header); err != nil {
			return err
		}
		t.Track(header)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("transaction created",
		zap.String("transaction_id", header.ID.String()),
		zap.String("number", header.Number),
		zap.String("type", string(header.Type)),
	)
	resp := ToTransactionResponse(header)
	return &resp, nil
}

// GetByID retrieves a transaction with its lines
func (s *TransactionService) GetByID(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	h, err := s.txnRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToTransactionResponse(h)
	return &resp, nil
}

// GetByNumber retrieves a transaction by its business number
func (s *TransactionService) GetByNumber(ctx context.Context, number string) (*TransactionResponse, error) {
	h, err := s.txnRepo.FindByNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		return nil, err
	}
	resp := ToTransactionResponse(h)
	return &resp, nil
}

// List returns a page of transactions
func (s *TransactionService) List(ctx context.Context, filter TransactionListFilter) ([]TransactionResponse, int64, error) {
	f := trade.TransactionFilter{
		Filter:     appshared.PageFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, ""),
		CustomerID: filter.CustomerID,
		LocationID:    filter.LocationID,
		SalesPersonID: filter.SalesPersonID,
		From:          filter.DateFrom,
		To:            filter.DateTo,
		MinAmount:     filter.MinAmount,
		MaxAmount:     filter.MaxAmount,
	}
	if filter.Type != "" {
		v := trade.TransactionType(filter.Type)
		f.Type = &v
	}
	if filter.Status != "" {
		v := trade.TransactionStatus(filter.Status)
		f.Status = &v
	}
	if filter.PaymentStatus != "" {
		v := trade.PaymentStatus(filter.PaymentStatus)
		f.PaymentStatus = &v
	}
	headers, total, err := s.txnRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToTransactionResponses(headers), total, nil
}

// ListOverdue returns in-progress rentals past their end date
func (s *TransactionService) ListOverdue(ctx context.Context, filter OverdueFilter) ([]TransactionResponse, int64, error) {
	asOf := s.clock.Now()
	if filter.AsOf != nil {
		asOf = *filter.AsOf
	}
	f := appshared.PageFilter(filter.Page, filter.PageSize, "rental_end_date", "asc", "")
	headers, total, err := s.txnRepo.FindOverdueRentals(ctx, shared.Day(asOf), f)
	if err != nil {
		return nil, 0, err
	}
	return ToTransactionResponses(headers), total, nil
}

// Update edits header details
func (s *TransactionService) Update(ctx context.Context, id uuid.UUID, req UpdateTransactionRequest) (*TransactionResponse, error) {
	return s.mutate(ctx, id, func(w stockWork, h *trade.TransactionHeader) error {
		return h.UpdateDetails(trade.DetailsUpdate{
			SalesPersonID:          req.SalesPersonID,
			ReferenceTransactionID: req.ReferenceTransactionID,
			RentalStartDate:        req.RentalStartDate,
			RentalEndDate:          req.RentalEndDate,
			Remark:                 req.Notes,
		}, w.stamp)
	})
}

// ChangeStatus moves a transaction through its status table. Cancellation
// goes through Cancel so held stock is released.
func (s *TransactionService) ChangeStatus(ctx context.Context, id uuid.UUID, req ChangeStatusRequest) (*TransactionResponse, error) {
	target := trade.TransactionStatus(req.Status)
	if target == trade.StatusCancelled {
		return s.Cancel(ctx, id, CancelRequest{})
	}
	if target == trade.StatusRefunded {
		return nil, shared.NewValidationError("USE_REFUND", "Refunds must be processed with an amount")
	}
	return s.mutate(ctx, id, func(w stockWork, h *trade.TransactionHeader) error {
		return h.TransitionTo(target, w.stamp)
	})
}

// Submit moves a DRAFT transaction to PENDING
func (s *TransactionService) Submit(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	return s.mutate(ctx, id, func(w stockWork, h *trade.TransactionHeader) error {
		if h.Status != trade.StatusDraft {
			return shared.NewInvalidTransitionError("TRANSACTION", string(h.Status), string(trade.StatusPending))
		}
		return h.TransitionTo(trade.StatusPending, w.stamp)
	})
}

// ApplyPayment records a payment. A repeated idempotency key is rejected.
func (s *TransactionService) ApplyPayment(ctx context.Context, id uuid.UUID, req PaymentRequest, idempotencyKey string) (*TransactionResponse, error) {
	var resp *TransactionResponse
	err := s.guard.Run(ctx, OpApplyPayment, id.String(), idempotencyKey, func() error {
		var err error
		resp, err = s.mutate(ctx, id, func(w stockWork, h *trade.TransactionHeader) error {
			return h.ApplyPayment(req.Amount, trade.PaymentMethod(req.Method), req.Reference, w.stamp)
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("payment applied",
		zap.String("transaction_id", id.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("method", req.Method),
	)
	return resp, nil
}

// Refund refunds part of a completed transaction
func (s *TransactionService) Refund(ctx context.Context, id uuid.UUID, req RefundRequest) (*TransactionResponse, error) {
	return s.mutate(ctx, id, func(w stockWork, h *trade.TransactionHeader) error {
		return h.ProcessRefund(req.Amount, req.Reason, w.stamp)
	})
}

// Cancel cancels a transaction. Stock still held by its lines is released
// and units out on an in-progress rental come back AVAILABLE.
func (s *TransactionService) Cancel(ctx context.Context, id uuid.UUID, req CancelRequest) (*TransactionResponse, error) {
	resp, err := s.mutate(ctx, id, func(w stockWork, h *trade.TransactionHeader) error {
		return cancelTransaction(w, h, req.Reason)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("transaction cancelled", zap.String("transaction_id", id.String()), zap.String("reason", req.Reason))
	return resp, nil
}

func cancelTransaction(w stockWork, h *trade.TransactionHeader, reason string) error {
	if h.Status == trade.StatusCompleted || h.Status == trade.StatusCancelled {
		return h.Cancel(reason, w.stamp)
	}
	for _, line := range h.ReservedLines() {
		if err := w.releaseLine(h, line); err != nil {
			return err
		}
	}
	if h.IsRental() && h.Status == trade.StatusInProgress {
		for _, line := range h.RentalProductLines() {
			if line.InventoryUnitID == nil || line.RemainingQuantity() == 0 {
				continue
			}
			_, err := w.unit(*line.InventoryUnitID, func(u *inventory.InventoryUnit) error {
				if u.Status != inventory.UnitStatusRented {
					return nil
				}
				return u.ReturnFromRent(nil, w.stamp)
			})
			if err != nil {
				return err
			}
		}
	}
	return h.Cancel(reason, w.stamp)
}

// MarkOverdue flags an unpaid transaction as overdue
func (s *TransactionService) MarkOverdue(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	return s.mutate(ctx, id, func(w stockWork, h *trade.TransactionHeader) error {
		return h.MarkAsOverdue(w.stamp)
	})
}

// CompleteRentalReturn closes an in-progress rental once every product
// line has come back.
func (s *TransactionService) CompleteRentalReturn(ctx context.Context, id uuid.UUID, req CompleteRentalReturnRequest) (*TransactionResponse, error) {
	return s.mutate(ctx, id, func(w stockWork, h *trade.TransactionHeader) error {
		if !h.AllProductLinesReturned() {
			return shared.NewValidationError("ITEMS_OUTSTANDING", "Every rented item must be returned before the rental is completed")
		}
		return h.CompleteRentalReturn(dateOrNow(req.ActualReturnDate, w.stamp.At), w.stamp)
	})
}

// AddLine appends a line. Lines added here hold no stock reservation.
func (s *TransactionService) AddLine(ctx context.Context, id uuid.UUID, req LineRequest) (*TransactionResponse, error) {
	return s.mutate(ctx, id, func(w stockWork, h *trade.TransactionHeader) error {
		_, err := h.AddLine(req.toInput(), w.stamp)
		return err
	})
}

// UpdateLine replaces the editable fields of a line. A line holding a
// reservation keeps its item, unit and quantity.
func (s *TransactionService) UpdateLine(ctx context.Context, id, lineID uuid.UUID, req LineRequest) (*TransactionResponse, error) {
	return s.mutate(ctx, id, func(w stockWork, h *trade.TransactionHeader) error {
		line, err := h.Line(lineID)
		if err != nil {
			return err
		}
		if line.Reserved && (req.Quantity != line.Quantity.Int64() ||
			!sameID(req.ItemID, line.ItemID) || !sameID(req.InventoryUnitID, line.InventoryUnitID)) {
			return shared.NewValidationError("LINE_RESERVED", "Item, unit and quantity of a reserved line cannot change")
		}
		_, err = h.UpdateLine(lineID, req.toInput(), w.stamp)
		return err
	})
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// RemoveLine deletes a line, releasing any stock it holds
func (s *TransactionService) RemoveLine(ctx context.Context, id, lineID uuid.UUID) (*TransactionResponse, error) {
	return s.mutate(ctx, id, func(w stockWork, h *trade.TransactionHeader) error {
		line, err := h.Line(lineID)
		if err != nil {
			return err
		}
		if err := h.RemoveLine(lineID, w.stamp); err != nil {
			return err
		}
		if line.Reserved && line.ItemID != nil {
			return w.release(*line.ItemID, h.LocationID, line.Quantity.Int64())
		}
		return nil
	})
}

// ApplyLineDiscount discounts one line
func (s *TransactionService) ApplyLineDiscount(ctx context.Context, id, lineID uuid.UUID, req LineDiscountRequest) (*TransactionResponse, error) {
	return s.mutate(ctx, id, func(w stockWork, h *trade.TransactionHeader) error {
		_, err := h.ApplyLineDiscount(lineID, req.Percentage, req.Amount, w.stamp)
		return err
	})
}

// ProcessLineReturn records returned quantity on a line
func (s *TransactionService) ProcessLineReturn(ctx context.Context, id, lineID uuid.UUID, req LineReturnRequest) (*TransactionResponse, error) {
	return s.mutate(ctx, id, func(w stockWork, h *trade.TransactionHeader) error {
		_, err := h.ProcessLineReturn(lineID, req.Quantity, dateOrNow(req.ReturnDate, w.stamp.At), req.Reason, w.stamp)
		return err
	})
}

// UpdateLineRentalPeriod moves one line's rental end date
func (s *TransactionService) UpdateLineRentalPeriod(ctx context.Context, id, lineID uuid.UUID, req RentalPeriodRequest) (*TransactionResponse, error) {
	return s.mutate(ctx, id, func(w stockWork, h *trade.TransactionHeader) error {
		_, err := h.UpdateLineRentalPeriod(lineID, req.RentalEndDate, w.stamp)
		return err
	})
}

func (s *TransactionService) mutate(ctx context.Context, id uuid.UUID, fn func(stockWork, *trade.TransactionHeader) error) (*TransactionResponse, error) {
	h, err := mutateTransaction(ctx, s.scope, s.publisher, s.clock, id, fn)
	if err != nil {
		return nil, err
	}
	resp := ToTransactionResponse(h)
	return &resp, nil
}

// mutateTransaction loads a header under lock, applies fn and saves it
// with every aggregate fn touched in one unit of work.
func mutateTransaction(
	ctx context.Context,
	scope appshared.TransactionScope,
	publisher shared.EventPublisher,
	clock shared.Clock,
	id uuid.UUID,
	fn func(stockWork, *trade.TransactionHeader) error,
) (*trade.TransactionHeader, error) {
	stamp := shared.NewStamp(ctx, clock)
	var header *trade.TransactionHeader
	err := appshared.Run(ctx, scope, publisher, func(repos appshared.TransactionalRepositories, t *appshared.Tracker) error {
		h, err := repos.Transactions().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		w := stockWork{ctx: ctx, repos: repos, t: t, stamp: stamp}
		if err := fn(w, h); err != nil {
			return err
		}
		if err := repos.Transactions().SaveWithLock(ctx, h); err != nil {
			return err
		}
		t.Track(h)
		header = h
		return nil
	})
	return header, err
}

func dateOrNow(d *time.Time, now time.Time) time.Time {
	if d != nil {
		return *d
	}
	return now
}
