package rental

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
)

// AuditEntityReturn names rental returns in the audit log
const AuditEntityReturn = "RENTAL_RETURN"

// RentalReturn reconciles a rental transaction: it collects the units that
// came back, their fees and the deposit outcome.
type RentalReturn struct {
	shared.BaseAggregateRoot
	Number             string
	TransactionID      uuid.UUID
	CustomerID         uuid.UUID
	LocationID         uuid.UUID
	ReturnDate         time.Time
	ExpectedReturnDate time.Time
	Type               ReturnType
	Status             ReturnStatus
	ProcessedBy        *string
	TotalLateFee       valueobject.Money
	TotalDamageFee     valueobject.Money
	DepositAmount      valueobject.Money
	DepositRelease     valueobject.Money
	DepositWithheld    valueobject.Money
	TotalRefundAmount  valueobject.Money
	DepositReleasedAt  *time.Time
	Lines              []ReturnLine
}

// NewRentalReturnInput carries what is needed to open a return
type NewRentalReturnInput struct {
	Number             string
	TransactionID      uuid.UUID
	CustomerID         uuid.UUID
	LocationID         uuid.UUID
	ReturnDate         time.Time
	ExpectedReturnDate time.Time
	DepositAmount      valueobject.Money
	// OutstandingQuantity is what is still out on the rental; returning
	// all of it makes the return FULL.
	OutstandingQuantity int64
	Lines               []ReturnLineInput
}

// NewRentalReturn opens an INITIATED return with its lines
func NewRentalReturn(in NewRentalReturnInput, s shared.Stamp) (*RentalReturn, error) {
	number := strings.TrimSpace(in.Number)
	if number == "" {
		return nil, shared.NewValidationError("INVALID_RETURN_NUMBER", "Return number cannot be empty")
	}
	if in.TransactionID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_TRANSACTION", "Transaction ID cannot be empty")
	}
	if in.LocationID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_LOCATION", "Return location cannot be empty")
	}
	if in.DepositAmount.IsNegative() {
		return nil, shared.NewValidationError("INVALID_DEPOSIT", "Deposit amount cannot be negative")
	}
	if len(in.Lines) == 0 {
		return nil, shared.NewValidationError("NO_RETURN_LINES", "A return needs at least one line")
	}

	r := &RentalReturn{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(s),
		Number:             number,
		TransactionID:      in.TransactionID,
		CustomerID:         in.CustomerID,
		LocationID:         in.LocationID,
		ReturnDate:         shared.Day(in.ReturnDate),
		ExpectedReturnDate: shared.Day(in.ExpectedReturnDate),
		Status:             ReturnInitiated,
		DepositAmount:      in.DepositAmount,
		DepositRelease:     in.DepositAmount,
		Lines:              make([]ReturnLine, 0, len(in.Lines)),
	}
	seen := make(map[uuid.UUID]bool, len(in.Lines))
	var returned int64
	for _, li := range in.Lines {
		if seen[li.InventoryUnitID] {
			return nil, shared.NewValidationError("DUPLICATE_UNIT", fmt.Sprintf("Unit %s appears twice on the return", li.InventoryUnitID))
		}
		seen[li.InventoryUnitID] = true
		line, err := newReturnLine(r.ID, len(r.Lines)+1, li, s)
		if err != nil {
			return nil, err
		}
		line.calculateLateFee(r.DaysLate())
		r.Lines = append(r.Lines, *line)
		returned += line.ReturnedQuantity.Int64()
	}
	r.Type = ReturnTypePartial
	if returned >= in.OutstandingQuantity {
		r.Type = ReturnTypeFull
	}
	r.CalculateTotals()
	r.RecordAudit(AuditEntityReturn, "OPENED", fmt.Sprintf("%s %d line(s)", r.Type, len(r.Lines)), s)
	r.AddDomainEvent(NewReturnOpenedEvent(r, s))
	return r, nil
}

// IsLate reports return_date > expected_return_date
func (r *RentalReturn) IsLate() bool {
	return r.ReturnDate.After(r.ExpectedReturnDate)
}

// DaysLate is the day difference when late, 0 otherwise
func (r *RentalReturn) DaysLate() int {
	if !r.IsLate() {
		return 0
	}
	return shared.DaysBetween(r.ExpectedReturnDate, r.ReturnDate)
}

// CalculateTotals sums the line fees and derives the refund:
// refund = max(deposit_release - late - damage, 0).
func (r *RentalReturn) CalculateTotals() {
	late, damage := valueobject.Zero(), valueobject.Zero()
	for i := range r.Lines {
		late = late.Add(r.Lines[i].LateFee)
		damage = damage.Add(r.Lines[i].DamageCharges())
	}
	r.TotalLateFee = late
	r.TotalDamageFee = damage
	r.TotalRefundAmount = RefundFor(r.DepositRelease, late, damage)
	r.DepositWithheld = r.DepositRelease.Sub(r.TotalRefundAmount)
}

// HasDamage reports whether any line recorded damage
func (r *RentalReturn) HasDamage() bool {
	for _, l := range r.Lines {
		if l.DamageLevel.IsDamaged() {
			return true
		}
	}
	return false
}

// UnprocessedLines returns the lines not yet PROCESSED
func (r *RentalReturn) UnprocessedLines() []*ReturnLine {
	out := make([]*ReturnLine, 0)
	for i := range r.Lines {
		if r.Lines[i].Status != LineProcessed {
			out = append(out, &r.Lines[i])
		}
	}
	return out
}

// Line returns the line with the given id
func (r *RentalReturn) Line(lineID uuid.UUID) (*ReturnLine, error) {
	for i := range r.Lines {
		if r.Lines[i].ID == lineID {
			return &r.Lines[i], nil
		}
	}
	return nil, shared.NewNotFoundError("RETURN_LINE", lineID)
}

// LineForUnit finds the line carrying a unit
func (r *RentalReturn) LineForUnit(unitID uuid.UUID) (*ReturnLine, error) {
	for i := range r.Lines {
		if r.Lines[i].InventoryUnitID == unitID {
			return &r.Lines[i], nil
		}
	}
	return nil, shared.NewNotFoundError("RETURN_LINE", unitID)
}

func (r *RentalReturn) ensureOpen() error {
	if r.Status.IsTerminal() {
		return shared.NewValidationError("RETURN_CLOSED", fmt.Sprintf("Return %s is %s", r.Number, r.Status))
	}
	return nil
}

func (r *RentalReturn) editableLine(lineID uuid.UUID) (*ReturnLine, error) {
	if err := r.ensureOpen(); err != nil {
		return nil, err
	}
	line, err := r.Line(lineID)
	if err != nil {
		return nil, err
	}
	if line.Status == LineProcessed {
		return nil, shared.NewValidationError("LINE_PROCESSED", fmt.Sprintf("Return line %d is already processed", line.LineNumber))
	}
	return line, nil
}

func (r *RentalReturn) lineChanged(line *ReturnLine, event, detail string, s shared.Stamp) {
	line.Touch(s)
	line.appendNote(r.RecordChildAudit(AuditEntityReturnLine, line.ID, event, detail, s))
	r.CalculateTotals()
	r.Mutated(AuditEntityReturn, "", "", s)
}

// AddLine appends a line for another unit
func (r *RentalReturn) AddLine(in ReturnLineInput, s shared.Stamp) (*ReturnLine, error) {
	if err := r.ensureOpen(); err != nil {
		return nil, err
	}
	if _, err := r.LineForUnit(in.InventoryUnitID); err == nil {
		return nil, shared.NewValidationError("DUPLICATE_UNIT", fmt.Sprintf("Unit %s is already on the return", in.InventoryUnitID))
	}
	next := 1
	for _, l := range r.Lines {
		if l.LineNumber >= next {
			next = l.LineNumber + 1
		}
	}
	line, err := newReturnLine(r.ID, next, in, s)
	if err != nil {
		return nil, err
	}
	line.calculateLateFee(r.DaysLate())
	r.Lines = append(r.Lines, *line)
	added := &r.Lines[len(r.Lines)-1]
	r.lineChanged(added, "LINE_ADDED", fmt.Sprintf("#%d unit %s", added.LineNumber, added.InventoryUnitID), s)
	return added, nil
}

// ReturnLineUpdate holds the editable fields of an unprocessed line
type ReturnLineUpdate struct {
	ReturnedQuantity *int64
	LateFeeWaived    *bool
	ReplacementFee   *valueobject.Money
	CleaningFee      *valueobject.Money
	Remark           string
}

// UpdateLine edits quantities, waivers and extra fees of an unprocessed line
func (r *RentalReturn) UpdateLine(lineID uuid.UUID, u ReturnLineUpdate, s shared.Stamp) (*ReturnLine, error) {
	line, err := r.editableLine(lineID)
	if err != nil {
		return nil, err
	}
	if u.ReturnedQuantity != nil {
		q, err := valueobject.NewQuantity(*u.ReturnedQuantity)
		if err != nil || q.IsZero() || q.Int64() > line.OriginalQuantity.Int64() {
			return nil, shared.NewValidationError("INVALID_QUANTITY", "Returned quantity must be between 1 and the original quantity")
		}
		line.ReturnedQuantity = q
	}
	for _, fee := range []*valueobject.Money{u.ReplacementFee, u.CleaningFee} {
		if fee != nil {
			if err := nonNegative("INVALID_FEE", *fee); err != nil {
				return nil, err
			}
		}
	}
	if u.ReplacementFee != nil {
		line.ReplacementFee = *u.ReplacementFee
	}
	if u.CleaningFee != nil {
		line.CleaningFee = *u.CleaningFee
	}
	if u.LateFeeWaived != nil {
		line.LateFeeWaived = *u.LateFeeWaived
	}
	line.calculateLateFee(r.DaysLate())
	r.lineChanged(line, "LINE_UPDATED", u.Remark, s)
	return line, nil
}

// RemoveLine drops an unprocessed line; the last line cannot be removed
func (r *RentalReturn) RemoveLine(lineID uuid.UUID, s shared.Stamp) error {
	line, err := r.editableLine(lineID)
	if err != nil {
		return err
	}
	if len(r.Lines) == 1 {
		return shared.NewValidationError("NO_RETURN_LINES", "A return needs at least one line")
	}
	removed := *line
	kept := make([]ReturnLine, 0, len(r.Lines)-1)
	for _, l := range r.Lines {
		if l.ID != lineID {
			kept = append(kept, l)
		}
	}
	r.Lines = kept
	r.RecordChildAudit(AuditEntityReturnLine, removed.ID, "LINE_REMOVED", fmt.Sprintf("#%d", removed.LineNumber), s)
	r.CalculateTotals()
	r.Mutated(AuditEntityReturn, "", "", s)
	return nil
}

// UpdateLineStatus moves a line through its status table. PROCESSED is
// reached only through ProcessLine.
func (r *RentalReturn) UpdateLineStatus(lineID uuid.UUID, target LineStatus, reason string, s shared.Stamp) (*ReturnLine, error) {
	line, err := r.editableLine(lineID)
	if err != nil {
		return nil, err
	}
	if target == LineProcessed {
		return nil, shared.NewValidationError("USE_PROCESS_LINE", "Lines are marked processed by processing them")
	}
	old := line.Status
	if err := line.transition(target); err != nil {
		return nil, err
	}
	detail := string(old) + " -> " + string(target)
	if reason != "" {
		detail += " - " + reason
	}
	r.lineChanged(line, "LINE_STATUS_CHANGED", detail, s)
	return line, nil
}

// AssessDamage records inspection findings on a line and prices the damage
// from the tier table. A PENDING line becomes INSPECTED.
func (r *RentalReturn) AssessDamage(lineID uuid.UUID, a DamageAssessment, s shared.Stamp) (*ReturnLine, error) {
	line, err := r.editableLine(lineID)
	if err != nil {
		return nil, err
	}
	snapshot := *line
	if err := line.assessDamage(a); err != nil {
		*line = snapshot
		return nil, err
	}
	if line.Status == LinePending {
		if err := line.transition(LineInspected); err != nil {
			*line = snapshot
			return nil, err
		}
	}
	r.lineChanged(line, "DAMAGE_ASSESSED", fmt.Sprintf("%s fee %s", line.DamageLevel, line.DamageFee), s)
	return line, nil
}

// CalculateLineLateFee recomputes one line's late fee from the return dates
func (r *RentalReturn) CalculateLineLateFee(lineID uuid.UUID, s shared.Stamp) (*ReturnLine, error) {
	line, err := r.editableLine(lineID)
	if err != nil {
		return nil, err
	}
	line.calculateLateFee(r.DaysLate())
	r.lineChanged(line, "LATE_FEE_CALCULATED", fmt.Sprintf("%d day(s) late, fee %s", r.DaysLate(), line.LateFee), s)
	return line, nil
}

// ProcessLine marks a line PROCESSED with its final fees and advances the
// return: INITIATED moves to IN_INSPECTION, and the return sits in
// PARTIALLY_COMPLETED while other lines are still open.
func (r *RentalReturn) ProcessLine(lineID uuid.UUID, s shared.Stamp) (*ReturnLine, error) {
	line, err := r.editableLine(lineID)
	if err != nil {
		return nil, err
	}
	if !line.CanProcess() {
		return nil, shared.NewInvalidTransitionError("RETURN_LINE", string(line.Status), string(LineProcessed))
	}
	if line.Status == LinePending {
		line.Status = LineInspected
	}
	line.calculateLateFee(r.DaysLate())
	if err := line.transition(LineProcessed); err != nil {
		return nil, err
	}
	at := s.At
	actor := s.Actor
	line.IsProcessed = true
	line.ProcessedAt = &at
	line.ProcessedBy = &actor
	r.lineChanged(line, "LINE_PROCESSED", fmt.Sprintf("%s charges %s", line.DamageLevel, line.TotalCharges()), s)

	if r.Status == ReturnInitiated {
		if err := r.TransitionTo(ReturnInInspection, s); err != nil {
			return nil, err
		}
	}
	if r.Status == ReturnInInspection && len(r.UnprocessedLines()) > 0 {
		if err := r.TransitionTo(ReturnPartiallyCompleted, s); err != nil {
			return nil, err
		}
	}
	r.AddDomainEvent(NewReturnLineProcessedEvent(r, line, s))
	return line, nil
}

// TransitionTo moves the return through its status table. COMPLETED is
// reached only through Finalize.
func (r *RentalReturn) TransitionTo(target ReturnStatus, s shared.Stamp) error {
	if !target.IsValid() {
		return shared.NewValidationError("INVALID_RETURN_STATUS", "Unknown return status: "+string(target))
	}
	if target == ReturnCompleted {
		return r.Finalize(s)
	}
	return r.transition(target, s)
}

func (r *RentalReturn) transition(target ReturnStatus, s shared.Stamp) error {
	next, err := ReturnTransitions.Transition("RENTAL_RETURN", r.Status, target)
	if err != nil {
		return err
	}
	old := r.Status
	r.Status = next
	r.Mutated(AuditEntityReturn, "STATUS_CHANGED", string(old)+" -> "+string(next), s)
	r.AddDomainEvent(NewReturnStatusChangedEvent(r, old, s))
	return nil
}

// Finalize completes the return once every line is PROCESSED
func (r *RentalReturn) Finalize(s shared.Stamp) error {
	if pending := r.UnprocessedLines(); len(pending) > 0 {
		return shared.NewValidationError("LINES_NOT_PROCESSED",
			fmt.Sprintf("%d return line(s) are not processed", len(pending)))
	}
	if err := r.transition(ReturnCompleted, s); err != nil {
		return err
	}
	r.CalculateTotals()
	actor := s.Actor
	r.ProcessedBy = &actor
	r.AddDomainEvent(NewReturnFinalizedEvent(r, s))
	return nil
}

// Cancel abandons the return
func (r *RentalReturn) Cancel(reason string, s shared.Stamp) error {
	if r.Status == ReturnCompleted {
		return shared.NewInvalidTransitionError("RENTAL_RETURN", string(r.Status), string(ReturnCancelled))
	}
	if err := r.transition(ReturnCancelled, s); err != nil {
		return err
	}
	r.RecordAudit(AuditEntityReturn, "CANCELLED", reason, s)
	return nil
}

// SetDepositRelease overrides how much of the deposit is released before
// fees are deducted.
func (r *RentalReturn) SetDepositRelease(amount valueobject.Money, s shared.Stamp) error {
	if amount.IsNegative() || amount.GreaterThan(r.DepositAmount) {
		return shared.NewValidationError("INVALID_DEPOSIT_RELEASE",
			fmt.Sprintf("Deposit release must be between 0 and %s", r.DepositAmount))
	}
	r.DepositRelease = amount
	r.CalculateTotals()
	r.Mutated(AuditEntityReturn, "DEPOSIT_RELEASE_SET", amount.String(), s)
	return nil
}

// ReleaseDeposit settles the deposit of a completed return and returns the
// refund owed to the customer.
func (r *RentalReturn) ReleaseDeposit(override *valueobject.Money, s shared.Stamp) (valueobject.Money, error) {
	if r.Status != ReturnCompleted {
		return valueobject.Zero(), shared.NewValidationError("RETURN_NOT_COMPLETED", "Deposit can only be released for a completed return")
	}
	if r.DepositReleasedAt != nil {
		return valueobject.Zero(), shared.NewValidationError("DEPOSIT_ALREADY_RELEASED", "Deposit was already released")
	}
	if override != nil {
		if err := r.SetDepositRelease(*override, s); err != nil {
			return valueobject.Zero(), err
		}
	}
	r.CalculateTotals()
	at := s.At
	r.DepositReleasedAt = &at
	r.Mutated(AuditEntityReturn, "DEPOSIT_RELEASED",
		fmt.Sprintf("refund %s, withheld %s", r.TotalRefundAmount, r.DepositWithheld), s)
	r.AddDomainEvent(NewDepositReleasedEvent(r, s))
	return r.TotalRefundAmount, nil
}

// ReturnUpdate holds header fields editable while the return is open
type ReturnUpdate struct {
	ReturnDate *time.Time
	LocationID *uuid.UUID
	Remark     string
}

// UpdateDetails edits the return date or location; late fees of open lines
// follow the new date.
func (r *RentalReturn) UpdateDetails(u ReturnUpdate, s shared.Stamp) error {
	if err := r.ensureOpen(); err != nil {
		return err
	}
	if u.LocationID != nil {
		if *u.LocationID == uuid.Nil {
			return shared.NewValidationError("INVALID_LOCATION", "Return location cannot be empty")
		}
		r.LocationID = *u.LocationID
	}
	if u.ReturnDate != nil {
		r.ReturnDate = shared.Day(*u.ReturnDate)
		for i := range r.Lines {
			if r.Lines[i].Status != LineProcessed {
				r.Lines[i].calculateLateFee(r.DaysLate())
			}
		}
	}
	r.CalculateTotals()
	r.Mutated(AuditEntityReturn, "UPDATED", u.Remark, s)
	return nil
}
