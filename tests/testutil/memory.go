package testutil

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	appshared "github.com/rentalcore/backend/internal/application/shared"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/rental"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/trade"
)

// MemoryStore is an in-memory implementation of every repository. Loads
// return copies and optimistic saves compare versions, so services see the
// same conflicts they would against a database.
type MemoryStore struct {
	mu           sync.Mutex
	items        map[uuid.UUID]inventory.Item
	units        map[uuid.UUID]inventory.InventoryUnit
	levels       map[uuid.UUID]inventory.StockLevel
	transactions map[uuid.UUID]trade.TransactionHeader
	returns      map[uuid.UUID]rental.RentalReturn
	inspections  map[uuid.UUID]rental.InspectionReport
	audit        []shared.AuditEntry
	sequences    map[string]int
	day          func() time.Time
}

// NewMemoryStore creates an empty store. Business numbers use the date of now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		items:        make(map[uuid.UUID]inventory.Item),
		units:        make(map[uuid.UUID]inventory.InventoryUnit),
		levels:       make(map[uuid.UUID]inventory.StockLevel),
		transactions: make(map[uuid.UUID]trade.TransactionHeader),
		returns:      make(map[uuid.UUID]rental.RentalReturn),
		inspections:  make(map[uuid.UUID]rental.InspectionReport),
		sequences:    make(map[string]int),
		day:          now,
	}
}

// Repositories bundles the store behind the application repository set
func (m *MemoryStore) Repositories() *appshared.Repositories {
	return &appshared.Repositories{
		ItemRepo:        memItems{m},
		UnitRepo:        memUnits{m},
		StockRepo:       memLevels{m},
		TransactionRepo: memTransactions{m},
		ReturnRepo:      memReturns{m},
		InspectionRepo:  memInspections{m},
		AuditRepo:       memAudit{m},
		NumberGen:       memNumbers{m},
	}
}

// Scope returns a unit of work running directly against the store
func (m *MemoryStore) Scope() *appshared.NoOpTransactionScope {
	return appshared.NewNoOpTransactionScope(m.Repositories())
}

// AuditEntries returns every audit entry written so far
func (m *MemoryStore) AuditEntries() []shared.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.audit)
}

type aggregate interface {
	GetVersion() int
	PersistedVersion() int
	MarkPersisted()
	ClearDomainEvents()
	ClearPendingAudit()
}

func put[T any, P interface {
	*T
	aggregate
}](mu *sync.Mutex, store map[uuid.UUID]T, id uuid.UUID, v P, clone func(T) T, checkVersion bool, entity string) error {
	mu.Lock()
	defer mu.Unlock()
	if checkVersion {
		cur, ok := store[id]
		if !ok {
			return shared.NewNotFoundError(entity, id)
		}
		if P(&cur).GetVersion() != v.PersistedVersion() {
			return shared.ErrConcurrencyConflict
		}
	}
	v.MarkPersisted()
	c := clone(*v)
	P(&c).ClearDomainEvents()
	P(&c).ClearPendingAudit()
	store[id] = c
	return nil
}

func get[T any](mu *sync.Mutex, store map[uuid.UUID]T, id uuid.UUID, clone func(T) T, entity string) (*T, error) {
	mu.Lock()
	defer mu.Unlock()
	cur, ok := store[id]
	if !ok {
		return nil, shared.NewNotFoundError(entity, id)
	}
	c := clone(cur)
	return &c, nil
}

func find[T any](mu *sync.Mutex, store map[uuid.UUID]T, clone func(T) T, match func(*T) bool, less func(a, b *T) int) []T {
	mu.Lock()
	defer mu.Unlock()
	out := make([]T, 0)
	for _, v := range store {
		if match(&v) {
			out = append(out, clone(v))
		}
	}
	slices.SortFunc(out, func(a, b T) int { return less(&a, &b) })
	return out
}

func page[T any](all []T, f shared.Filter) ([]T, int64) {
	total := int64(len(all))
	size := f.PageSize
	if size <= 0 {
		size = len(all)
	}
	start := (max(f.Page, 1) - 1) * size
	if start >= len(all) {
		return []T{}, total
	}
	end := min(start+size, len(all))
	return all[start:end], total
}

func same[T any](v T) T { return v }

func byCreated(a, b shared.BaseEntity) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID.String(), b.ID.String())
}

func filterMatches(f shared.Filter, key string, value any) bool {
	want, ok := f.Filters[key]
	if !ok {
		return true
	}
	return fmt.Sprint(want) == fmt.Sprint(value)
}

type memItems struct{ m *MemoryStore }

func (r memItems) FindByID(_ context.Context, id uuid.UUID) (*inventory.Item, error) {
	return get(&r.m.mu, r.m.items, id, same[inventory.Item], "ITEM")
}

func (r memItems) FindByCode(_ context.Context, code string) (*inventory.Item, error) {
	found := find(&r.m.mu, r.m.items, same[inventory.Item],
		func(i *inventory.Item) bool { return i.Code == code },
		func(a, b *inventory.Item) int { return byCreated(a.BaseEntity, b.BaseEntity) })
	if len(found) == 0 {
		return nil, shared.NewNotFoundError("ITEM", code)
	}
	return &found[0], nil
}

func (r memItems) FindByIDs(_ context.Context, ids []uuid.UUID) ([]inventory.Item, error) {
	return find(&r.m.mu, r.m.items, same[inventory.Item],
		func(i *inventory.Item) bool { return slices.Contains(ids, i.ID) },
		func(a, b *inventory.Item) int { return strings.Compare(a.Code, b.Code) }), nil
}

func (r memItems) FindAll(_ context.Context, f shared.Filter) ([]inventory.Item, int64, error) {
	all := find(&r.m.mu, r.m.items, same[inventory.Item], func(i *inventory.Item) bool {
		return filterMatches(f, "item_type", i.Type) &&
			filterMatches(f, "status", i.Status) &&
			filterMatches(f, "category", i.Category) &&
			filterMatches(f, "brand", i.Brand) &&
			filterMatches(f, "is_active", i.IsActive) &&
			(f.Search == "" || strings.Contains(strings.ToLower(i.Name+" "+i.Code), strings.ToLower(f.Search)))
	}, func(a, b *inventory.Item) int { return strings.Compare(a.Code, b.Code) })
	items, total := page(all, f)
	return items, total, nil
}

func (r memItems) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, err := r.FindByCode(ctx, code)
	return err == nil, nil
}

func (r memItems) Save(_ context.Context, item *inventory.Item) error {
	return put(&r.m.mu, r.m.items, item.ID, item, same[inventory.Item], false, "ITEM")
}

type memUnits struct{ m *MemoryStore }

func (r memUnits) FindByID(_ context.Context, id uuid.UUID) (*inventory.InventoryUnit, error) {
	return get(&r.m.mu, r.m.units, id, same[inventory.InventoryUnit], "UNIT")
}

func (r memUnits) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.InventoryUnit, error) {
	return r.FindByID(ctx, id)
}

func (r memUnits) FindByIDs(_ context.Context, ids []uuid.UUID) ([]inventory.InventoryUnit, error) {
	return find(&r.m.mu, r.m.units, same[inventory.InventoryUnit],
		func(u *inventory.InventoryUnit) bool { return slices.Contains(ids, u.ID) },
		func(a, b *inventory.InventoryUnit) int { return strings.Compare(a.Code, b.Code) }), nil
}

func (r memUnits) FindByCode(_ context.Context, code string) (*inventory.InventoryUnit, error) {
	found := find(&r.m.mu, r.m.units, same[inventory.InventoryUnit],
		func(u *inventory.InventoryUnit) bool { return u.Code == code },
		func(a, b *inventory.InventoryUnit) int { return strings.Compare(a.Code, b.Code) })
	if len(found) == 0 {
		return nil, shared.NewNotFoundError("UNIT", code)
	}
	return &found[0], nil
}

func (r memUnits) FindAll(_ context.Context, f shared.Filter) ([]inventory.InventoryUnit, int64, error) {
	all := find(&r.m.mu, r.m.units, same[inventory.InventoryUnit], func(u *inventory.InventoryUnit) bool {
		return filterMatches(f, "item_id", u.ItemID) &&
			filterMatches(f, "location_id", u.LocationID) &&
			filterMatches(f, "status", u.Status) &&
			filterMatches(f, "condition", u.Condition) &&
			filterMatches(f, "is_active", u.IsActive)
	}, func(a, b *inventory.InventoryUnit) int { return strings.Compare(a.Code, b.Code) })
	units, total := page(all, f)
	return units, total, nil
}

func (r memUnits) FindAvailable(_ context.Context, itemID, locationID uuid.UUID, exclude []uuid.UUID, limit int) ([]inventory.InventoryUnit, error) {
	all := find(&r.m.mu, r.m.units, same[inventory.InventoryUnit], func(u *inventory.InventoryUnit) bool {
		return u.ItemID == itemID && u.LocationID == locationID && u.IsActive &&
			u.Status == inventory.UnitStatusAvailable && !slices.Contains(exclude, u.ID)
	}, func(a, b *inventory.InventoryUnit) int { return strings.Compare(a.Code, b.Code) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r memUnits) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, err := r.FindByCode(ctx, code)
	return err == nil, nil
}

func (r memUnits) ExistsBySerial(_ context.Context, serial string) (bool, error) {
	found := find(&r.m.mu, r.m.units, same[inventory.InventoryUnit],
		func(u *inventory.InventoryUnit) bool { return u.SerialNumber != nil && *u.SerialNumber == serial },
		func(a, b *inventory.InventoryUnit) int { return 0 })
	return len(found) > 0, nil
}

func (r memUnits) Save(_ context.Context, unit *inventory.InventoryUnit) error {
	return put(&r.m.mu, r.m.units, unit.ID, unit, same[inventory.InventoryUnit], false, "UNIT")
}

func (r memUnits) SaveWithLock(_ context.Context, unit *inventory.InventoryUnit) error {
	return put(&r.m.mu, r.m.units, unit.ID, unit, same[inventory.InventoryUnit], true, "UNIT")
}

type memLevels struct{ m *MemoryStore }

func (r memLevels) FindByID(_ context.Context, id uuid.UUID) (*inventory.StockLevel, error) {
	return get(&r.m.mu, r.m.levels, id, same[inventory.StockLevel], "STOCK_LEVEL")
}

func (r memLevels) FindByItemAndLocation(_ context.Context, itemID, locationID uuid.UUID) (*inventory.StockLevel, error) {
	found := find(&r.m.mu, r.m.levels, same[inventory.StockLevel],
		func(l *inventory.StockLevel) bool { return l.ItemID == itemID && l.LocationID == locationID },
		func(a, b *inventory.StockLevel) int { return 0 })
	if len(found) == 0 {
		return nil, shared.NewNotFoundError("STOCK_LEVEL", itemID.String()+"@"+locationID.String())
	}
	return &found[0], nil
}

func (r memLevels) FindByItemAndLocationForUpdate(ctx context.Context, itemID, locationID uuid.UUID) (*inventory.StockLevel, error) {
	return r.FindByItemAndLocation(ctx, itemID, locationID)
}

func (r memLevels) FindByItem(_ context.Context, itemID uuid.UUID) ([]inventory.StockLevel, error) {
	return find(&r.m.mu, r.m.levels, same[inventory.StockLevel],
		func(l *inventory.StockLevel) bool { return l.ItemID == itemID },
		func(a, b *inventory.StockLevel) int { return byCreated(a.BaseEntity, b.BaseEntity) }), nil
}

func (r memLevels) FindBelowReorderPoint(_ context.Context, f shared.Filter) ([]inventory.StockLevel, int64, error) {
	all := find(&r.m.mu, r.m.levels, same[inventory.StockLevel], func(l *inventory.StockLevel) bool {
		return l.IsActive && (l.NeedsReorder() || l.IsBelowMinimum()) && filterMatches(f, "location_id", l.LocationID)
	}, func(a, b *inventory.StockLevel) int { return byCreated(a.BaseEntity, b.BaseEntity) })
	levels, total := page(all, f)
	return levels, total, nil
}

func (r memLevels) Save(_ context.Context, level *inventory.StockLevel) error {
	return put(&r.m.mu, r.m.levels, level.ID, level, same[inventory.StockLevel], false, "STOCK_LEVEL")
}

func (r memLevels) SaveWithLock(_ context.Context, level *inventory.StockLevel) error {
	return put(&r.m.mu, r.m.levels, level.ID, level, same[inventory.StockLevel], true, "STOCK_LEVEL")
}

type memTransactions struct{ m *MemoryStore }

func cloneHeader(h trade.TransactionHeader) trade.TransactionHeader {
	h.Lines = slices.Clone(h.Lines)
	return h
}

func (r memTransactions) FindByID(_ context.Context, id uuid.UUID) (*trade.TransactionHeader, error) {
	return get(&r.m.mu, r.m.transactions, id, cloneHeader, "TRANSACTION")
}

func (r memTransactions) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.TransactionHeader, error) {
	return r.FindByID(ctx, id)
}

func (r memTransactions) FindByNumber(_ context.Context, number string) (*trade.TransactionHeader, error) {
	found := find(&r.m.mu, r.m.transactions, cloneHeader,
		func(h *trade.TransactionHeader) bool { return h.Number == number },
		func(a, b *trade.TransactionHeader) int { return 0 })
	if len(found) == 0 {
		return nil, shared.NewNotFoundError("TRANSACTION", number)
	}
	return &found[0], nil
}

func (r memTransactions) FindAll(_ context.Context, f trade.TransactionFilter) ([]trade.TransactionHeader, int64, error) {
	all := find(&r.m.mu, r.m.transactions, cloneHeader, func(h *trade.TransactionHeader) bool {
		switch {
		case f.Type != nil && h.Type != *f.Type,
			f.Status != nil && h.Status != *f.Status,
			f.PaymentStatus != nil && h.PaymentStatus != *f.PaymentStatus,
			f.CustomerID != nil && h.CustomerID != *f.CustomerID,
			f.LocationID != nil && h.LocationID != *f.LocationID,
			f.SalesPersonID != nil && (h.SalesPersonID == nil || *h.SalesPersonID != *f.SalesPersonID),
			f.From != nil && h.TransactionDate.Before(*f.From),
			f.To != nil && h.TransactionDate.After(*f.To),
			f.MinAmount != nil && h.TotalAmount.LessThan(*f.MinAmount),
			f.MaxAmount != nil && f.MaxAmount.LessThan(h.TotalAmount):
			return false
		}
		return true
	}, func(a, b *trade.TransactionHeader) int { return strings.Compare(a.Number, b.Number) })
	headers, total := page(all, f.Filter)
	return headers, total, nil
}

func (r memTransactions) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	_, err := r.FindByNumber(ctx, number)
	return err == nil, nil
}

func (r memTransactions) FindOpenUnitAssignments(_ context.Context, itemID uuid.UUID) ([]uuid.UUID, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	ids := make([]uuid.UUID, 0)
	for _, h := range r.m.transactions {
		if h.Status != trade.StatusDraft && h.Status != trade.StatusPending && h.Status != trade.StatusConfirmed {
			continue
		}
		for _, l := range h.Lines {
			if l.ItemID != nil && *l.ItemID == itemID && l.InventoryUnitID != nil {
				ids = append(ids, *l.InventoryUnitID)
			}
		}
	}
	return ids, nil
}

func (r memTransactions) FindOverdueRentals(_ context.Context, asOf time.Time, f shared.Filter) ([]trade.TransactionHeader, int64, error) {
	all := find(&r.m.mu, r.m.transactions, cloneHeader, func(h *trade.TransactionHeader) bool {
		return h.IsRental() && h.IsOverdueOn(asOf)
	}, func(a, b *trade.TransactionHeader) int { return strings.Compare(a.Number, b.Number) })
	headers, total := page(all, f)
	return headers, total, nil
}

func (r memTransactions) Save(_ context.Context, h *trade.TransactionHeader) error {
	return put(&r.m.mu, r.m.transactions, h.ID, h, cloneHeader, false, "TRANSACTION")
}

func (r memTransactions) SaveWithLock(_ context.Context, h *trade.TransactionHeader) error {
	return put(&r.m.mu, r.m.transactions, h.ID, h, cloneHeader, true, "TRANSACTION")
}

type memReturns struct{ m *MemoryStore }

func cloneReturn(r rental.RentalReturn) rental.RentalReturn {
	r.Lines = slices.Clone(r.Lines)
	return r
}

func (r memReturns) FindByID(_ context.Context, id uuid.UUID) (*rental.RentalReturn, error) {
	return get(&r.m.mu, r.m.returns, id, cloneReturn, "RETURN")
}

func (r memReturns) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*rental.RentalReturn, error) {
	return r.FindByID(ctx, id)
}

func (r memReturns) FindByNumber(_ context.Context, number string) (*rental.RentalReturn, error) {
	found := find(&r.m.mu, r.m.returns, cloneReturn,
		func(ret *rental.RentalReturn) bool { return ret.Number == number },
		func(a, b *rental.RentalReturn) int { return 0 })
	if len(found) == 0 {
		return nil, shared.NewNotFoundError("RETURN", number)
	}
	return &found[0], nil
}

func (r memReturns) FindAll(_ context.Context, f rental.ReturnFilter) ([]rental.RentalReturn, int64, error) {
	all := find(&r.m.mu, r.m.returns, cloneReturn, func(ret *rental.RentalReturn) bool {
		switch {
		case f.Status != nil && ret.Status != *f.Status,
			f.TransactionID != nil && ret.TransactionID != *f.TransactionID,
			f.CustomerID != nil && ret.CustomerID != *f.CustomerID,
			f.LocationID != nil && ret.LocationID != *f.LocationID,
			f.DamagedOnly && !ret.HasDamage():
			return false
		}
		return true
	}, func(a, b *rental.RentalReturn) int { return strings.Compare(a.Number, b.Number) })
	returns, total := page(all, f.Filter)
	return returns, total, nil
}

func (r memReturns) FindByTransaction(_ context.Context, transactionID uuid.UUID) ([]rental.RentalReturn, error) {
	return find(&r.m.mu, r.m.returns, cloneReturn,
		func(ret *rental.RentalReturn) bool { return ret.TransactionID == transactionID },
		func(a, b *rental.RentalReturn) int { return strings.Compare(a.Number, b.Number) }), nil
}

func (r memReturns) HasActiveReturn(_ context.Context, transactionID uuid.UUID, excludeID *uuid.UUID) (bool, error) {
	found := find(&r.m.mu, r.m.returns, cloneReturn, func(ret *rental.RentalReturn) bool {
		return ret.TransactionID == transactionID && !ret.Status.IsTerminal() &&
			(excludeID == nil || ret.ID != *excludeID)
	}, func(a, b *rental.RentalReturn) int { return 0 })
	return len(found) > 0, nil
}

func (r memReturns) FindPendingLines(_ context.Context, f shared.Filter) ([]rental.PendingLine, int64, error) {
	returns := find(&r.m.mu, r.m.returns, cloneReturn,
		func(ret *rental.RentalReturn) bool { return !ret.Status.IsTerminal() },
		func(a, b *rental.RentalReturn) int { return strings.Compare(a.Number, b.Number) })
	all := make([]rental.PendingLine, 0)
	for _, ret := range returns {
		for _, l := range ret.Lines {
			if l.Status != rental.LineProcessed {
				all = append(all, rental.PendingLine{ReturnID: ret.ID, ReturnNumber: ret.Number, Line: l})
			}
		}
	}
	lines, total := page(all, f)
	return lines, total, nil
}

func (r memReturns) Save(_ context.Context, ret *rental.RentalReturn) error {
	return put(&r.m.mu, r.m.returns, ret.ID, ret, cloneReturn, false, "RETURN")
}

func (r memReturns) SaveWithLock(_ context.Context, ret *rental.RentalReturn) error {
	return put(&r.m.mu, r.m.returns, ret.ID, ret, cloneReturn, true, "RETURN")
}

type memInspections struct{ m *MemoryStore }

func cloneInspection(i rental.InspectionReport) rental.InspectionReport {
	i.EvidenceKeys = slices.Clone(i.EvidenceKeys)
	return i
}

func (r memInspections) FindByID(_ context.Context, id uuid.UUID) (*rental.InspectionReport, error) {
	return get(&r.m.mu, r.m.inspections, id, cloneInspection, "INSPECTION")
}

func (r memInspections) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*rental.InspectionReport, error) {
	return r.FindByID(ctx, id)
}

func (r memInspections) FindByReturn(_ context.Context, returnID uuid.UUID) ([]rental.InspectionReport, error) {
	return find(&r.m.mu, r.m.inspections, cloneInspection,
		func(i *rental.InspectionReport) bool { return i.ReturnID == returnID },
		func(a, b *rental.InspectionReport) int { return byCreated(a.BaseEntity, b.BaseEntity) }), nil
}

func (r memInspections) Save(_ context.Context, i *rental.InspectionReport) error {
	return put(&r.m.mu, r.m.inspections, i.ID, i, cloneInspection, false, "INSPECTION")
}

func (r memInspections) SaveWithLock(_ context.Context, i *rental.InspectionReport) error {
	return put(&r.m.mu, r.m.inspections, i.ID, i, cloneInspection, true, "INSPECTION")
}

type memAudit struct{ m *MemoryStore }

func (r memAudit) Append(_ context.Context, entries ...shared.AuditEntry) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.audit = append(r.m.audit, entries...)
	return nil
}

func (r memAudit) FindByEntity(_ context.Context, entityType string, entityID uuid.UUID) ([]shared.AuditEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]shared.AuditEntry, 0)
	for _, e := range r.m.audit {
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memNumbers struct{ m *MemoryStore }

func (r memNumbers) Next(_ context.Context, prefix string) (string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	key := prefix + "-" + r.m.day().Format("20060102")
	r.m.sequences[key]++
	return fmt.Sprintf("%s-%04d", key, r.m.sequences[key]), nil
}

var _ shared.AuditRepository = memAudit{}
