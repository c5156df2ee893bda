package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	appshared "github.com/rentalcore/backend/internal/application/shared"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UnitService manages individually tracked inventory units. Every status
// change keeps the unit's stock level in step within the same unit of work.
type UnitService struct {
	scope     appshared.TransactionScope
	unitRepo  inventory.InventoryUnitRepository
	locations inventory.LocationDirectory
	options
}

// NewUnitService creates a new UnitService
func NewUnitService(
	scope appshared.TransactionScope,
	unitRepo inventory.InventoryUnitRepository,
	locations inventory.LocationDirectory,
	opts ...Option,
) *UnitService {
	return &UnitService{
		scope:     scope,
		unitRepo:  unitRepo,
		locations: locations,
		options:   buildOptions(opts),
	}
}

func (s *UnitService) requireLocation(ctx context.Context, id uuid.UUID) error {
	if s.locations == nil {
		return nil
	}
	ok, err := s.locations.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return shared.NewNotFoundError("LOCATION", id)
	}
	return nil
}

// Receive puts a new AVAILABLE unit into stock at a location
func (s *UnitService) Receive(ctx context.Context, req ReceiveUnitRequest) (*UnitResponse, error) {
	if err := s.requireLocation(ctx, req.LocationID); err != nil {
		return nil, err
	}
	stamp := shared.NewStamp(ctx, s.clock)
	var unit *inventory.InventoryUnit
	err := appshared.Run(ctx, s.scope, s.publisher, func(repos appshared.TransactionalRepositories, t *appshared.Tracker) error {
		item, err := repos.Items().FindByID(ctx, req.ItemID)
		if err != nil {
			return err
		}
		if !item.IsActive {
			return shared.NewValidationError("ITEM_INACTIVE", "Item "+item.Code+" is deactivated")
		}
		code := strings.ToUpper(strings.TrimSpace(req.Code))
		exists, err := repos.Units().ExistsByCode(ctx, code)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewConflictError("DUPLICATE_UNIT_CODE", "Unit code "+code+" already exists")
		}
		serial := strings.TrimSpace(req.SerialNumber)
		if serial == "" && item.SerialNumberRequired {
			return shared.NewValidationError("SERIAL_REQUIRED", "Item "+item.Code+" requires a serial number")
		}
		if serial != "" {
			exists, err := repos.Units().ExistsBySerial(ctx, serial)
			if err != nil {
				return err
			}
			if exists {
				return shared.NewConflictError("DUPLICATE_SERIAL", "Serial number "+serial+" already exists")
			}
		}
		unit, err = inventory.NewInventoryUnit(inventory.NewInventoryUnitInput{
			Code:           code,
			SerialNumber:   serial,
			ItemID:         item.ID,
			LocationID:     req.LocationID,
			Condition:      inventory.UnitCondition(req.Condition),
			PurchasePrice:  req.PurchasePrice,
			PurchaseDate:   req.PurchaseDate,
			WarrantyExpiry: req.WarrantyExpiry,
		}, stamp)
		if err != nil {
			return err
		}
		if err := repos.Units().Save(ctx, unit); err != nil {
			return err
		}
		level, err := appshared.ApplyUnitStatusChange(ctx, repos, unit, "", stamp)
		if err != nil {
			return err
		}
		t.Track(unit)
		if level != nil {
			t.Track(level)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("unit received",
		zap.String("unit_id", unit.ID.String()),
		zap.String("code", unit.Code),
		zap.String("location_id", unit.LocationID.String()),
	)
	resp := ToUnitResponse(unit)
	return &resp, nil
}

// GetByID retrieves a unit
func (s *UnitService) GetByID(ctx context.Context, id uuid.UUID) (*UnitResponse, error) {
	unit, err := s.unitRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUnitResponse(unit)
	return &resp, nil
}

// List returns a page of units
func (s *UnitService) List(ctx context.Context, filter UnitListFilter) ([]UnitResponse, int64, error) {
	f := appshared.PageFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)
	if filter.ItemID != nil {
		f.Filters["item_id"] = *filter.ItemID
	}
	if filter.LocationID != nil {
		f.Filters["location_id"] = *filter.LocationID
	}
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	if filter.Condition != "" {
		f.Filters["condition"] = filter.Condition
	}
	if filter.IsActive != nil {
		f.Filters["is_active"] = *filter.IsActive
	}
	units, total, err := s.unitRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToUnitResponses(units), total, nil
}

func conditionOf(req UnitActionRequest) *inventory.UnitCondition {
	if req.Condition == "" {
		return nil
	}
	c := inventory.UnitCondition(req.Condition)
	return &c
}

// RentOut marks an AVAILABLE unit as RENTED
func (s *UnitService) RentOut(ctx context.Context, id uuid.UUID) (*UnitResponse, error) {
	return s.mutate(ctx, id, func(u *inventory.InventoryUnit, stamp shared.Stamp) error {
		return u.RentOut(stamp)
	})
}

// Return brings a RENTED unit back to AVAILABLE
func (s *UnitService) Return(ctx context.Context, id uuid.UUID, req UnitActionRequest) (*UnitResponse, error) {
	return s.mutate(ctx, id, func(u *inventory.InventoryUnit, stamp shared.Stamp) error {
		return u.ReturnFromRent(conditionOf(req), stamp)
	})
}

// Sell marks an AVAILABLE unit as SOLD
func (s *UnitService) Sell(ctx context.Context, id uuid.UUID) (*UnitResponse, error) {
	return s.mutate(ctx, id, func(u *inventory.InventoryUnit, stamp shared.Stamp) error {
		return u.MarkAsSold(stamp)
	})
}

// SendForMaintenance moves the unit to MAINTENANCE
func (s *UnitService) SendForMaintenance(ctx context.Context, id uuid.UUID, req UnitActionRequest) (*UnitResponse, error) {
	return s.mutate(ctx, id, func(u *inventory.InventoryUnit, stamp shared.Stamp) error {
		return u.SendForMaintenance(req.Reason, stamp)
	})
}

// CompleteMaintenance returns a MAINTENANCE unit to AVAILABLE
func (s *UnitService) CompleteMaintenance(ctx context.Context, id uuid.UUID, req UnitActionRequest) (*UnitResponse, error) {
	return s.mutate(ctx, id, func(u *inventory.InventoryUnit, stamp shared.Stamp) error {
		return u.ReturnFromMaintenance(conditionOf(req), req.NextMaintenanceDate, stamp)
	})
}

// MarkAsDamaged records damage on the unit
func (s *UnitService) MarkAsDamaged(ctx context.Context, id uuid.UUID, req UnitActionRequest) (*UnitResponse, error) {
	return s.mutate(ctx, id, func(u *inventory.InventoryUnit, stamp shared.Stamp) error {
		return u.MarkAsDamaged(req.Reason, stamp)
	})
}

// Retire takes the unit out of service
func (s *UnitService) Retire(ctx context.Context, id uuid.UUID, req UnitActionRequest) (*UnitResponse, error) {
	return s.mutate(ctx, id, func(u *inventory.InventoryUnit, stamp shared.Stamp) error {
		return u.Retire(req.Reason, stamp)
	})
}

// ChangeCondition regrades the unit without a status change
func (s *UnitService) ChangeCondition(ctx context.Context, id uuid.UUID, req UnitActionRequest) (*UnitResponse, error) {
	if req.Condition == "" {
		return nil, shared.NewValidationError("INVALID_CONDITION", "Condition is required")
	}
	return s.mutate(ctx, id, func(u *inventory.InventoryUnit, stamp shared.Stamp) error {
		return u.ChangeCondition(inventory.UnitCondition(req.Condition), stamp)
	})
}

// Move relocates the unit. An AVAILABLE unit carries one on-hand count
// from the old location's stock level to the new one.
func (s *UnitService) Move(ctx context.Context, id uuid.UUID, req UnitActionRequest) (*UnitResponse, error) {
	if req.LocationID == nil {
		return nil, shared.NewValidationError("INVALID_LOCATION", "Location ID is required")
	}
	if err := s.requireLocation(ctx, *req.LocationID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(u *inventory.InventoryUnit, stamp shared.Stamp) error {
		return u.MoveLocation(*req.LocationID, stamp)
	})
}

// Deactivate soft-deletes a sold or retired unit
func (s *UnitService) Deactivate(ctx context.Context, id uuid.UUID) error {
	_, err := s.mutate(ctx, id, func(u *inventory.InventoryUnit, stamp shared.Stamp) error {
		return u.Deactivate(stamp)
	})
	return err
}

// mutate locks the unit, applies fn and moves stock for the resulting
// status or location change.
func (s *UnitService) mutate(ctx context.Context, id uuid.UUID, fn func(*inventory.InventoryUnit, shared.Stamp) error) (*UnitResponse, error) {
	stamp := shared.NewStamp(ctx, s.clock)
	var unit *inventory.InventoryUnit
	err := appshared.Run(ctx, s.scope, s.publisher, func(repos appshared.TransactionalRepositories, t *appshared.Tracker) error {
		var err error
		unit, err = repos.Units().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		fromStatus, fromLocation := unit.Status, unit.LocationID
		if err := fn(unit, stamp); err != nil {
			return err
		}
		if err := repos.Units().SaveWithLock(ctx, unit); err != nil {
			return err
		}
		t.Track(unit)
		level, err := appshared.ApplyUnitStatusChange(ctx, repos, unit, fromStatus, stamp)
		if err != nil {
			return err
		}
		if level != nil {
			t.Track(level)
		}
		moved, err := appshared.ApplyUnitMove(ctx, repos, unit, fromLocation, stamp)
		if err != nil {
			return err
		}
		for _, l := range moved {
			t.Track(l)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToUnitResponse(unit)
	return &resp, nil
}
