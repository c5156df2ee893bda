package trade

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	appshared "github.com/rentalcore/backend/internal/application/shared"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
	"github.com/rentalcore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Idempotency operation names of the rental workflow
const (
	OpCheckout      = "rental.checkout"
	OpRentalPayment = "rental.payment"
)

// RentalService runs the rental booking workflow: booking, checkout,
// pickup, extension and cancellation.
type RentalService struct {
	scope appshared.TransactionScope
	options
}

// NewRentalService creates a new RentalService
func NewRentalService(scope appshared.TransactionScope, opts ...Option) *RentalService {
	return &RentalService{
		scope:   scope,
		options: buildOptions(opts),
	}
}

// CreateBooking books units for a rental period. Stock is reserved per
// (item, location) and concrete units are assigned to PRODUCT lines.
func (s *RentalService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*TransactionResponse, error) {
	if err := s.requireCustomer(ctx, req.CustomerID); err != nil {
		return nil, err
	}
	stamp := shared.NewStamp(ctx, s.clock)
	var header *trade.TransactionHeader
	err := appshared.Run(ctx, s.scope, s.publisher, func(repos appshared.TransactionalRepositories, t *appshared.Tracker) error {
		number, err := repos.Numbers().Next(ctx, trade.TransactionTypeRental.NumberPrefix())
		if err != nil {
			return err
		}
		in := trade.NewTransactionInput{
			Number:          number,
			Type:            trade.TransactionTypeRental,
			CustomerID:      req.CustomerID,
			LocationID:      req.LocationID,
			SalesPersonID:   req.SalesPersonID,
			RentalStartDate: &req.RentalStartDate,
			RentalEndDate:   &req.RentalEndDate,
		}
		in.TaxRate = s.taxRateOr(req.TaxRate)
		h, err := trade.NewTransaction(in, stamp)
		if err != nil {
			return err
		}
		w := stockWork{ctx: ctx, repos: repos, t: t, stamp: stamp}
		taken := make(map[uuid.UUID]bool)
		for _, bi := range req.Items {
			if err := s.bookItem(w, h, bi, req.WaiveDeposit, taken); err != nil {
				return err
			}
		}
		if err := addTaxLine(h, h.Subtotal.Sub(h.DiscountAmount), "Tax", stamp); err != nil {
			return err
		}
		if err := repos.Transactions().Save(ctx, h); err != nil {
			return err
		}
		t.Track(h)
		header = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("rental booked",
		zap.String("transaction_id", header.ID.String()),
		zap.String("number", header.Number),
		zap.Int("units", len(header.RentalProductLines())),
	)
	resp := ToTransactionResponse(header)
	return &resp, nil
}

func (s *RentalService) bookItem(w stockWork, h *trade.TransactionHeader, bi BookingItem, waiveDeposit bool, taken map[uuid.UUID]bool) error {
	item, err := w.repos.Items().FindByID(w.ctx, bi.ItemID)
	if err != nil {
		return err
	}
	if !item.IsRentable() {
		return shared.NewValidationError("ITEM_NOT_RENTABLE", "Item "+item.Code+" cannot be rented")
	}
	days := h.RentalDays()
	if err := item.AllowsRentalDays(days); err != nil {
		return err
	}
	qty, err := requestedQuantity(bi.Quantity, bi.UnitIDs)
	if err != nil {
		return err
	}
	rate := item.DailyRate()
	if bi.CustomDailyRate != nil {
		rate = *bi.CustomDailyRate
	}
	if !rate.IsPositive() {
		return shared.NewValidationError("NO_RENTAL_RATE", "Item "+item.Code+" has no daily rental rate")
	}

	if err := w.reserve(item.ID, h.LocationID, qty); err != nil {
		return err
	}
	units, err := w.assignUnits(item.ID, h.LocationID, qty, bi.UnitIDs, taken)
	if err != nil {
		return err
	}
	if int64(len(units)) < qty {
		return shared.NewConflictError("INSUFFICIENT_UNITS",
			fmt.Sprintf("Only %d of %d units of %s can be booked", len(units), qty, item.Code))
	}

	day := trade.PeriodDay
	for i := range units {
		unitID := units[i].ID
		in := trade.LineInput{
			Type:              trade.LineTypeProduct,
			ItemID:            &item.ID,
			InventoryUnitID:   &unitID,
			Reserved:          true,
			Description:       item.Name + " (" + units[i].Code + ")",
			Quantity:          1,
			UnitPrice:         rate.MulInt(int64(days)),
			RentalPeriodValue: &days,
			RentalPeriodUnit:  &day,
			RentalStartDate:   h.RentalStartDate,
			RentalEndDate:     h.RentalEndDate,
		}
		if bi.DiscountPercentage != nil {
			in.DiscountPercentage = *bi.DiscountPercentage
		}
		if _, err := h.AddLine(in, w.stamp); err != nil {
			return err
		}
	}

	if waiveDeposit || !item.Pricing.SecurityDeposit.IsPositive() {
		return nil
	}
	_, err = h.AddLine(trade.LineInput{
		Type:        trade.LineTypeDeposit,
		ItemID:      &item.ID,
		Description: "Security deposit " + item.Name,
		Quantity:    qty,
		UnitPrice:   item.Pricing.SecurityDeposit,
	}, w.stamp)
	return err
}

// requestedQuantity reconciles a quantity with an explicit unit list
func requestedQuantity(qty int64, unitIDs []uuid.UUID) (int64, error) {
	if len(unitIDs) == 0 {
		if qty <= 0 {
			return 0, shared.NewValidationError("INVALID_QUANTITY", "Quantity must be positive")
		}
		return qty, nil
	}
	if !uniqueIDs(unitIDs) {
		return 0, shared.NewValidationError("DUPLICATE_UNIT", "A unit can only be requested once")
	}
	if qty != 0 && qty != int64(len(unitIDs)) {
		return 0, shared.NewValidationError("INVALID_QUANTITY", "Quantity does not match the number of units")
	}
	return int64(len(unitIDs)), nil
}

// addTaxLine adds a TAX line on base at the header's tax rate
func addTaxLine(h *trade.TransactionHeader, base valueobject.Money, label string, s shared.Stamp) error {
	if !h.TaxRate.IsPositive() || !base.IsPositive() {
		return nil
	}
	_, err := h.AddLine(trade.LineInput{
		Type:        trade.LineTypeTax,
		Description: fmt.Sprintf("%s %s%%", label, h.TaxRate.String()),
		Quantity:    1,
		UnitPrice:   base.Percent(h.TaxRate),
	}, s)
	return err
}

// Submit moves a DRAFT booking to PENDING
func (s *RentalService) Submit(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	return s.mutate(ctx, id, func(w stockWork, h *trade.TransactionHeader) error {
		if h.Status != trade.StatusDraft {
			return shared.NewInvalidTransitionError("TRANSACTION", string(h.Status), string(trade.StatusPending))
		}
		return h.TransitionTo(trade.StatusPending, w.stamp)
	})
}

// Checkout takes the payment that confirms a PENDING booking. After it the
// paid amount must cover the deposit, capped at the total.
func (s *RentalService) Checkout(ctx context.Context, id uuid.UUID, req PaymentRequest, idempotencyKey string) (*TransactionResponse, error) {
	var resp *TransactionResponse
	err := s.guard.Run(ctx, OpCheckout, id.String(), idempotencyKey, func() error {
		var err error
		resp, err = s.mutate(ctx, id, func(w stockWork, h *trade.TransactionHeader) error {
			if !h.IsRental() {
				return shared.NewValidationError("NOT_A_RENTAL", "Only rentals can be checked out")
			}
			if h.Status != trade.StatusPending {
				return shared.NewInvalidTransitionError("TRANSACTION", string(h.Status), string(trade.StatusConfirmed))
			}
			required := h.DepositAmount.Min(h.TotalAmount)
			if h.PaidAmount.Add(req.Amount).LessThan(required) {
				return shared.NewValidationError("PAYMENT_BELOW_DEPOSIT",
					fmt.Sprintf("Checkout requires at least %s paid", required))
			}
			if err := h.ApplyPayment(req.Amount, trade.PaymentMethod(req.Method), req.Reference, w.stamp); err != nil {
				return err
			}
			return h.TransitionTo(trade.StatusConfirmed, w.stamp)
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("rental checked out", zap.String("transaction_id", id.String()), zap.String("amount", req.Amount.String()))
	return resp, nil
}

// Pickup hands the booked units to the customer: each reservation is
// released and the unit rented out, then the rental is IN_PROGRESS.
func (s *RentalService) Pickup(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	resp, err := s.mutate(ctx, id, func(w stockWork, h *trade.TransactionHeader) error {
		if !h.IsRental() {
			return shared.NewValidationError("NOT_A_RENTAL", "Only rentals can be picked up")
		}
		if h.Status != trade.StatusConfirmed {
			return shared.NewInvalidTransitionError("TRANSACTION", string(h.Status), string(trade.StatusInProgress))
		}
		for _, line := range h.ReservedLines() {
			if err := w.releaseLine(h, line); err != nil {
				return err
			}
			if line.InventoryUnitID == nil {
				continue
			}
			if _, err := w.unit(*line.InventoryUnitID, func(u *inventory.InventoryUnit) error {
				return u.RentOut(w.stamp)
			}); err != nil {
				return err
			}
		}
		return h.TransitionTo(trade.StatusInProgress, w.stamp)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("rental picked up", zap.String("transaction_id", id.String()))
	return resp, nil
}

// CancelBooking cancels a rental at any open stage
func (s *RentalService) CancelBooking(ctx context.Context, id uuid.UUID, req CancelRequest) (*TransactionResponse, error) {
	resp, err := s.mutate(ctx, id, func(w stockWork, h *trade.TransactionHeader) error {
		if !h.IsRental() {
			return shared.NewValidationError("NOT_A_RENTAL", "Only rentals can be cancelled as bookings")
		}
		return cancelTransaction(w, h, req.Reason)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("booking cancelled", zap.String("transaction_id", id.String()), zap.String("reason", req.Reason))
	return resp, nil
}

// Extend moves the end of an in-progress rental. Each rented line is
// repriced at its booked daily rate for the longer period and tax is added
// on the increase. An optional payment is collected against the new balance.
func (s *RentalService) Extend(ctx context.Context, id uuid.UUID, req ExtendRentalRequest) (*TransactionResponse, error) {
	resp, err := s.mutate(ctx, id, func(w stockWork, h *trade.TransactionHeader) error {
		oldDays := make(map[uuid.UUID]int)
		for _, l := range h.RentalProductLines() {
			if d := l.RentalDays(); d > 0 {
				oldDays[l.ID] = d
			}
		}
		before := h.Subtotal.Sub(h.DiscountAmount)
		if err := h.ExtendRental(req.NewEndDate, w.stamp); err != nil {
			return err
		}
		for _, l := range h.RentalProductLines() {
			days, ok := oldDays[l.ID]
			if !ok {
				continue
			}
			in := lineInputOf(l)
			in.UnitPrice = valueobject.NewMoney(l.UnitPrice.Decimal().
				Mul(decimal.NewFromInt(int64(l.RentalDays()))).
				Div(decimal.NewFromInt(int64(days))))
			if _, err := h.UpdateLine(l.ID, in, w.stamp); err != nil {
				return err
			}
		}
		increase := h.Subtotal.Sub(h.DiscountAmount).Sub(before)
		if err := addTaxLine(h, increase, "Extension tax", w.stamp); err != nil {
			return err
		}
		if p := req.Payment; p != nil {
			return h.CollectRentalBalance(p.Amount, trade.PaymentMethod(p.Method), p.Reference, w.stamp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("rental extended",
		zap.String("transaction_id", id.String()),
		zap.Time("new_end_date", req.NewEndDate),
		zap.String("balance_due", resp.BalanceDue.String()),
	)
	return resp, nil
}

// CollectPayment takes a payment on an in-progress rental, such as the
// balance left by an extension. A repeated idempotency key is rejected.
func (s *RentalService) CollectPayment(ctx context.Context, id uuid.UUID, req PaymentRequest, idempotencyKey string) (*TransactionResponse, error) {
	var resp *TransactionResponse
	err := s.guard.Run(ctx, OpRentalPayment, id.String(), idempotencyKey, func() error {
		var err error
		resp, err = s.mutate(ctx, id, func(w stockWork, h *trade.TransactionHeader) error {
			return h.CollectRentalBalance(req.Amount, trade.PaymentMethod(req.Method), req.Reference, w.stamp)
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("rental payment collected",
		zap.String("transaction_id", id.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("method", req.Method),
	)
	return resp, nil
}

// lineInputOf copies the editable fields of a line
func lineInputOf(l *trade.TransactionLine) trade.LineInput {
	in := trade.LineInput{
		Type:               l.Type,
		ItemID:             l.ItemID,
		InventoryUnitID:    l.InventoryUnitID,
		Reserved:           l.Reserved,
		Description:        l.Description,
		Quantity:           l.Quantity.Int64(),
		UnitPrice:          l.UnitPrice,
		DiscountPercentage: l.DiscountPercentage,
		DiscountAmount:     l.DiscountAmount,
		TaxRate:            l.TaxRate,
		RentalPeriodValue:  l.RentalPeriodValue,
		RentalPeriodUnit:   l.RentalPeriodUnit,
		RentalStartDate:    l.RentalStartDate,
		RentalEndDate:      l.RentalEndDate,
		Notes:              l.Notes,
	}
	// a percentage discount derives its amount
	if l.DiscountPercentage.IsPositive() {
		in.DiscountAmount = valueobject.Zero()
	}
	return in
}

func (s *RentalService) mutate(ctx context.Context, id uuid.UUID, fn func(stockWork, *trade.TransactionHeader) error) (*TransactionResponse, error) {
	h, err := mutateTransaction(ctx, s.scope, s.publisher, s.clock, id, fn)
	if err != nil {
		return nil, err
	}
	resp := ToTransactionResponse(h)
	return &resp, nil
}
