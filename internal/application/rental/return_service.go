package rental

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	appshared "github.com/rentalcore/backend/internal/application/shared"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/rental"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
	"github.com/rentalcore/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// ReturnNumberPrefix prefixes rental return numbers
const ReturnNumberPrefix = "RET"

// ReturnService reconciles rental transactions through rental returns
type ReturnService struct {
	scope      appshared.TransactionScope
	returnRepo rental.RentalReturnRepository
	txnRepo    trade.TransactionRepository
	itemRepo   inventory.ItemRepository
	options
}

// NewReturnService creates a new ReturnService
func NewReturnService(
	scope appshared.TransactionScope,
	returnRepo rental.RentalReturnRepository,
	txnRepo trade.TransactionRepository,
	itemRepo inventory.ItemRepository,
	opts ...Option,
) *ReturnService {
	return &ReturnService{
		scope:      scope,
		returnRepo: returnRepo,
		txnRepo:    txnRepo,
		itemRepo:   itemRepo,
		options:    buildOptions(opts),
	}
}

// Open starts a return for units of an in-progress rental. Only one open
// return may exist per transaction.
func (s *ReturnService) Open(ctx context.Context, req CreateReturnRequest) (*ReturnResponse, error) {
	stamp := shared.NewStamp(ctx, s.clock)
	var ret *rental.RentalReturn
	err := appshared.Run(ctx, s.scope, s.publisher, func(repos appshared.TransactionalRepositories, t *appshared.Tracker) error {
		h, err := repos.Transactions().FindByIDForUpdate(ctx, req.TransactionID)
		if err != nil {
			return err
		}
		if !h.IsRental() {
			return shared.NewValidationError("NOT_A_RENTAL", "Returns can only be opened for rental transactions")
		}
		if h.Status != trade.StatusInProgress {
			return shared.NewValidationError("RENTAL_NOT_ACTIVE", "Returns can only be opened for in-progress rentals")
		}
		active, err := repos.Returns().HasActiveReturn(ctx, h.ID, nil)
		if err != nil {
			return err
		}
		if active {
			return shared.NewConflictError("ACTIVE_RETURN_EXISTS", "Transaction "+h.Number+" already has an open return")
		}

		rates := newDailyRates(ctx, repos.Items())
		lines := make([]rental.ReturnLineInput, 0, len(req.Units))
		for _, u := range req.Units {
			in, err := returnLineInput(h, u, rates)
			if err != nil {
				return err
			}
			lines = append(lines, in)
		}
		var outstanding int64
		for _, l := range h.RentalProductLines() {
			outstanding += l.RemainingQuantity()
		}
		deposit, err := remainingDeposit(ctx, repos.Returns(), h)
		if err != nil {
			return err
		}
		number, err := repos.Numbers().Next(ctx, ReturnNumberPrefix)
		if err != nil {
			return err
		}
		location := h.LocationID
		if req.LocationID != nil {
			location = *req.LocationID
		}
		in := rental.NewRentalReturnInput{
			Number:              number,
			TransactionID:       h.ID,
			CustomerID:          h.CustomerID,
			LocationID:          location,
			ReturnDate:          dateOrNow(req.ReturnDate, stamp.At),
			DepositAmount:       deposit,
			OutstandingQuantity: outstanding,
			Lines:               lines,
		}
		if h.RentalEndDate != nil {
			in.ExpectedReturnDate = *h.RentalEndDate
		}
		ret, err = rental.NewRentalReturn(in, stamp)
		if err != nil {
			return err
		}
		if err := repos.Returns().Save(ctx, ret); err != nil {
			return err
		}
		t.Track(ret)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("rental return opened",
		zap.String("return_id", ret.ID.String()),
		zap.String("number", ret.Number),
		zap.String("transaction_id", ret.TransactionID.String()),
		zap.String("type", string(ret.Type)),
		zap.Int("days_late", ret.DaysLate()),
	)
	resp := ToReturnResponse(ret)
	return &resp, nil
}

// GetByID retrieves a return with its lines
func (s *ReturnService) GetByID(ctx context.Context, id uuid.UUID) (*ReturnResponse, error) {
	r, err := s.returnRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToReturnResponse(r)
	return &resp, nil
}

// GetByNumber retrieves a return by its business number
func (s *ReturnService) GetByNumber(ctx context.Context, number string) (*ReturnResponse, error) {
	r, err := s.returnRepo.FindByNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		return nil, err
	}
	resp := ToReturnResponse(r)
	return &resp, nil
}

// List returns a page of returns
func (s *ReturnService) List(ctx context.Context, filter ReturnListFilter) ([]ReturnResponse, int64, error) {
	f := rental.ReturnFilter{
		Filter:        appshared.PageFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, ""),
		TransactionID: filter.TransactionID,
		CustomerID:    filter.CustomerID,
		LocationID:    filter.LocationID,
		DamagedOnly:   filter.DamagedOnly,
	}
	if filter.Status != "" {
		v := rental.ReturnStatus(filter.Status)
		f.Status = &v
	}
	returns, total, err := s.returnRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToReturnResponses(returns), total, nil
}

// ListDamaged returns returns with at least one damaged line
func (s *ReturnService) ListDamaged(ctx context.Context, filter ReturnListFilter) ([]ReturnResponse, int64, error) {
	filter.DamagedOnly = true
	return s.List(ctx, filter)
}

// ListByTransaction returns every return of a transaction
func (s *ReturnService) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]ReturnResponse, error) {
	returns, err := s.returnRepo.FindByTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	return ToReturnResponses(returns), nil
}

// ListPendingLines returns lines of open returns that still need processing
func (s *ReturnService) ListPendingLines(ctx context.Context, page, pageSize int) ([]PendingLineResponse, int64, error) {
	lines, total, err := s.returnRepo.FindPendingLines(ctx, appshared.PageFilter(page, pageSize, "", "", ""))
	if err != nil {
		return nil, 0, err
	}
	out := make([]PendingLineResponse, len(lines))
	for i := range lines {
		out[i] = PendingLineResponse{
			ReturnID:     lines[i].ReturnID,
			ReturnNumber: lines[i].ReturnNumber,
			Line:         ToReturnLineResponse(&lines[i].Line),
		}
	}
	return out, total, nil
}

// Update edits the return date or location of an open return
func (s *ReturnService) Update(ctx context.Context, id uuid.UUID, req UpdateReturnRequest) (*ReturnResponse, error) {
	return s.mutate(ctx, id, func(w work, r *rental.RentalReturn) error {
		return r.UpdateDetails(rental.ReturnUpdate{
			ReturnDate: req.ReturnDate,
			LocationID: req.LocationID,
			Remark:     req.Notes,
		}, w.stamp)
	})
}

// ChangeStatus moves a return through its status table. COMPLETED goes
// through Finalize and CANCELLED through Cancel.
func (s *ReturnService) ChangeStatus(ctx context.Context, id uuid.UUID, req ChangeReturnStatusRequest) (*ReturnResponse, error) {
	switch target := rental.ReturnStatus(req.Status); target {
	case rental.ReturnCompleted:
		return s.Finalize(ctx, id)
	case rental.ReturnCancelled:
		return s.Cancel(ctx, id, CancelReturnRequest{})
	default:
		return s.mutate(ctx, id, func(w work, r *rental.RentalReturn) error {
			return r.TransitionTo(target, w.stamp)
		})
	}
}

// Finalize completes a return whose lines are all processed. When every
// rented unit is back the rental transaction is completed as well.
func (s *ReturnService) Finalize(ctx context.Context, id uuid.UUID) (*ReturnResponse, error) {
	closed := false
	resp, err := s.mutate(ctx, id, func(w work, r *rental.RentalReturn) error {
		if err := r.Finalize(w.stamp); err != nil {
			return err
		}
		h, err := w.header(r.TransactionID)
		if err != nil {
			return err
		}
		if h.Status != trade.StatusInProgress || !h.AllProductLinesReturned() {
			return nil
		}
		if err := h.CompleteRentalReturn(r.ReturnDate, w.stamp); err != nil {
			return err
		}
		closed = true
		return w.saveHeader(h)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("rental return finalized",
		zap.String("return_id", id.String()),
		zap.String("number", resp.Number),
		zap.String("refund", resp.TotalRefundAmount.String()),
		zap.Bool("rental_completed", closed),
	)
	return resp, nil
}

// Cancel abandons an open return. Lines already processed keep their
// effect on units and the transaction.
func (s *ReturnService) Cancel(ctx context.Context, id uuid.UUID, req CancelReturnRequest) (*ReturnResponse, error) {
	return s.mutate(ctx, id, func(w work, r *rental.RentalReturn) error {
		return r.Cancel(req.Reason, w.stamp)
	})
}

// ReleaseDeposit settles the deposit of a completed return. The refund and
// the withheld amount are recorded on the return; the rent paid on the
// transaction is left alone.
func (s *ReturnService) ReleaseDeposit(ctx context.Context, id uuid.UUID, req ReleaseDepositRequest) (*ReturnResponse, error) {
	resp, err := s.mutate(ctx, id, func(w work, r *rental.RentalReturn) error {
		_, err := r.ReleaseDeposit(req.Amount, w.stamp)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("deposit released",
		zap.String("return_id", id.String()),
		zap.String("transaction_id", resp.TransactionID.String()),
		zap.String("refund", resp.TotalRefundAmount.String()),
		zap.String("withheld", resp.DepositWithheld.String()),
	)
	return resp, nil
}

// remainingDeposit is the rental deposit not yet claimed by earlier
// returns. Cancelled returns give their share back.
func remainingDeposit(ctx context.Context, returns rental.RentalReturnRepository, h *trade.TransactionHeader) (valueobject.Money, error) {
	prior, err := returns.FindByTransaction(ctx, h.ID)
	if err != nil {
		return valueobject.Zero(), err
	}
	remaining := h.DepositAmount
	for i := range prior {
		if prior[i].Status == rental.ReturnCancelled {
			continue
		}
		remaining = remaining.Sub(prior[i].DepositRelease)
	}
	return remaining.ClampZero(), nil
}

// AddLine adds another unit of the rental to an open return
func (s *ReturnService) AddLine(ctx context.Context, id uuid.UUID, req ReturnUnitRequest) (*ReturnResponse, error) {
	return s.mutate(ctx, id, func(w work, r *rental.RentalReturn) error {
		h, err := w.repos.Transactions().FindByID(w.ctx, r.TransactionID)
		if err != nil {
			return err
		}
		in, err := returnLineInput(h, req, newDailyRates(w.ctx, w.repos.Items()))
		if err != nil {
			return err
		}
		_, err = r.AddLine(in, w.stamp)
		return err
	})
}

// UpdateLine edits quantities, waivers and extra fees of a line
func (s *ReturnService) UpdateLine(ctx context.Context, id, lineID uuid.UUID, req UpdateReturnLineRequest) (*ReturnResponse, error) {
	return s.mutate(ctx, id, func(w work, r *rental.RentalReturn) error {
		_, err := r.UpdateLine(lineID, rental.ReturnLineUpdate{
			ReturnedQuantity: req.ReturnedQuantity,
			LateFeeWaived:    req.LateFeeWaived,
			ReplacementFee:   req.ReplacementFee,
			CleaningFee:      req.CleaningFee,
			Remark:           req.Notes,
		}, w.stamp)
		return err
	})
}

// RemoveLine drops an unprocessed line
func (s *ReturnService) RemoveLine(ctx context.Context, id, lineID uuid.UUID) (*ReturnResponse, error) {
	return s.mutate(ctx, id, func(w work, r *rental.RentalReturn) error {
		return r.RemoveLine(lineID, w.stamp)
	})
}

// UpdateLineStatus moves a line through its status table
func (s *ReturnService) UpdateLineStatus(ctx context.Context, id, lineID uuid.UUID, req ReturnLineStatusRequest) (*ReturnResponse, error) {
	return s.mutate(ctx, id, func(w work, r *rental.RentalReturn) error {
		_, err := r.UpdateLineStatus(lineID, rental.LineStatus(req.Status), req.Reason, w.stamp)
		return err
	})
}

// AssessDamage records damage on a line and prices it
func (s *ReturnService) AssessDamage(ctx context.Context, id, lineID uuid.UUID, req DamageAssessmentRequest) (*ReturnResponse, error) {
	return s.mutate(ctx, id, func(w work, r *rental.RentalReturn) error {
		_, err := r.AssessDamage(lineID, req.toAssessment(), w.stamp)
		return err
	})
}

// CalculateLateFee recomputes one line's late fee
func (s *ReturnService) CalculateLateFee(ctx context.Context, id, lineID uuid.UUID) (*ReturnResponse, error) {
	return s.mutate(ctx, id, func(w work, r *rental.RentalReturn) error {
		_, err := r.CalculateLineLateFee(lineID, w.stamp)
		return err
	})
}

// ProcessLine settles one line: the rental line records the returned
// quantity and the unit moves by damage level.
func (s *ReturnService) ProcessLine(ctx context.Context, id, lineID uuid.UUID) (*ReturnResponse, error) {
	return s.mutate(ctx, id, func(w work, r *rental.RentalReturn) error {
		line, err := r.ProcessLine(lineID, w.stamp)
		if err != nil {
			return err
		}
		return settleLine(w, r, line)
	})
}

func settleLine(w work, r *rental.RentalReturn, line *rental.ReturnLine) error {
	h, err := w.header(r.TransactionID)
	if err != nil {
		return err
	}
	var tl *trade.TransactionLine
	if line.TransactionLineID != nil {
		tl, err = h.Line(*line.TransactionLineID)
	} else {
		tl, err = h.LineForUnit(line.InventoryUnitID)
	}
	if err != nil {
		return err
	}
	if _, err := h.ProcessLineReturn(tl.ID, line.ReturnedQuantity.Int64(), r.ReturnDate, "return "+r.Number, w.stamp); err != nil {
		return err
	}
	if err := w.saveHeader(h); err != nil {
		return err
	}

	reason := "return " + r.Number
	if line.DamageDescription != "" {
		reason += ": " + line.DamageDescription
	}
	_, err = w.unit(line.InventoryUnitID, func(u *inventory.InventoryUnit) error {
		switch line.UnitOutcome() {
		case inventory.UnitStatusDamaged:
			return u.MarkAsDamaged(reason, w.stamp)
		case inventory.UnitStatusRetired:
			if err := u.MarkAsDamaged(reason, w.stamp); err != nil {
				return err
			}
			return u.Retire(reason, w.stamp)
		}
		if err := u.ReturnFromRent(line.Condition, w.stamp); err != nil {
			return err
		}
		if u.LocationID != r.LocationID {
			return u.MoveLocation(r.LocationID, w.stamp)
		}
		return nil
	})
	return err
}

// EstimateReturnCosts previews late fees, damage fees and the refund for
// returning a rental on a date. Nothing is written.
func (s *ReturnService) EstimateReturnCosts(ctx context.Context, req EstimateRequest) (*EstimateResponse, error) {
	h, err := s.txnRepo.FindByID(ctx, req.TransactionID)
	if err != nil {
		return nil, err
	}
	if !h.IsRental() || h.RentalEndDate == nil {
		return nil, shared.NewValidationError("NOT_A_RENTAL", "Costs can only be estimated for rental transactions")
	}
	returnDate := shared.Day(dateOrNow(req.ReturnDate, s.clock.Now()))
	daysLate := 0
	if returnDate.After(*h.RentalEndDate) {
		daysLate = shared.DaysBetween(*h.RentalEndDate, returnDate)
	}

	units := req.Units
	if len(units) == 0 {
		for _, l := range h.RentalProductLines() {
			if l.InventoryUnitID != nil && l.RemainingQuantity() > 0 {
				units = append(units, EstimateUnit{InventoryUnitID: *l.InventoryUnitID})
			}
		}
	}
	rates := newDailyRates(ctx, s.itemRepo)
	resp := &EstimateResponse{
		TransactionID:      h.ID,
		ReturnDate:         returnDate,
		ExpectedReturnDate: *h.RentalEndDate,
		DaysLate:           daysLate,
		TotalLateFee:       valueobject.Zero(),
		TotalDamageFee:     valueobject.Zero(),
		DepositAmount:      h.DepositAmount,
		Lines:              make([]EstimateLine, 0, len(units)),
	}
	for _, u := range units {
		tl, err := h.LineForUnit(u.InventoryUnitID)
		if err != nil {
			return nil, err
		}
		if tl.ItemID == nil {
			return nil, shared.NewValidationError("NOT_A_RENTAL_LINE", "Unit is not on a rental line")
		}
		item, err := rates.item(*tl.ItemID)
		if err != nil {
			return nil, err
		}
		level := rental.DamageLevel(u.DamageLevel)
		if level == "" {
			level = rental.DamageNone
		}
		line := EstimateLine{
			InventoryUnitID: u.InventoryUnitID,
			Quantity:        tl.RemainingQuantity(),
			DailyRate:       item.DailyRate(),
			DamageLevel:     string(level),
			LateFee:         rental.CalculateLateFee(tl.RemainingQuantity(), item.DailyRate(), daysLate, false),
			DamageFee:       rental.SuggestDamageFee(level, u.RepairEstimate, u.ReplacementEstimate),
		}
		resp.TotalLateFee = resp.TotalLateFee.Add(line.LateFee)
		resp.TotalDamageFee = resp.TotalDamageFee.Add(line.DamageFee)
		resp.Lines = append(resp.Lines, line)
	}
	resp.EstimatedRefund = rental.RefundFor(h.DepositAmount, resp.TotalLateFee, resp.TotalDamageFee)
	return resp, nil
}

// BulkUpdateStatus changes the status of several returns, one unit of
// work per return.
func (s *ReturnService) BulkUpdateStatus(ctx context.Context, req BulkStatusRequest) *BulkResponse {
	out := &BulkResponse{Results: make([]BulkResult, 0, len(req.ReturnIDs))}
	for _, id := range req.ReturnIDs {
		_, err := s.ChangeStatus(ctx, id, ChangeReturnStatusRequest{Status: req.Status})
		out.add(BulkResult{ReturnID: id}, err)
	}
	return out
}

// BulkProcessLines processes several return lines, one unit of work per line
func (s *ReturnService) BulkProcessLines(ctx context.Context, req BulkProcessRequest) *BulkResponse {
	out := &BulkResponse{Results: make([]BulkResult, 0, len(req.Lines))}
	for _, ref := range req.Lines {
		lineID := ref.LineID
		_, err := s.ProcessLine(ctx, ref.ReturnID, lineID)
		out.add(BulkResult{ReturnID: ref.ReturnID, LineID: &lineID}, err)
	}
	return out
}

func (b *BulkResponse) add(r BulkResult, err error) {
	if err == nil {
		r.Success = true
		b.Succeeded++
		b.Results = append(b.Results, r)
		return
	}
	b.Failed++
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		r.Code = domainErr.Code
		r.Message = domainErr.Message
	} else {
		r.Code = "INTERNAL_ERROR"
		r.Message = err.Error()
	}
	b.Results = append(b.Results, r)
}

func (s *ReturnService) mutate(ctx context.Context, id uuid.UUID, fn func(work, *rental.RentalReturn) error) (*ReturnResponse, error) {
	stamp := shared.NewStamp(ctx, s.clock)
	var ret *rental.RentalReturn
	err := appshared.Run(ctx, s.scope, s.publisher, func(repos appshared.TransactionalRepositories, t *appshared.Tracker) error {
		r, err := repos.Returns().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(work{ctx: ctx, repos: repos, t: t, stamp: stamp}, r); err != nil {
			return err
		}
		if err := repos.Returns().SaveWithLock(ctx, r); err != nil {
			return err
		}
		t.Track(r)
		ret = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToReturnResponse(ret)
	return &resp, nil
}

func dateOrNow(d *time.Time, now time.Time) time.Time {
	if d != nil {
		return *d
	}
	return now
}
