package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/shared"
)

// ItemRepository defines the interface for item persistence
type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	FindByCode(ctx context.Context, code string) (*Item, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Item, error)
	// FindAll supports filters: type, status, category, brand, is_active
	FindAll(ctx context.Context, filter shared.Filter) ([]Item, int64, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Save(ctx context.Context, item *Item) error
}

// InventoryUnitRepository defines the interface for inventory unit persistence
type InventoryUnitRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryUnit, error)
	// FindByIDForUpdate loads the unit holding a row lock until the
	// surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*InventoryUnit, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]InventoryUnit, error)
	FindByCode(ctx context.Context, code string) (*InventoryUnit, error)
	// FindAll supports filters: item_id, location_id, status, condition, is_active
	FindAll(ctx context.Context, filter shared.Filter) ([]InventoryUnit, int64, error)
	// FindAvailable returns up to limit AVAILABLE units of an item at a
	// location, skipping the excluded ids.
	FindAvailable(ctx context.Context, itemID, locationID uuid.UUID, exclude []uuid.UUID, limit int) ([]InventoryUnit, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	ExistsBySerial(ctx context.Context, serial string) (bool, error)
	Save(ctx context.Context, unit *InventoryUnit) error
	// SaveWithLock persists with an optimistic version check and returns
	// shared.ErrConcurrencyConflict when the row changed.
	SaveWithLock(ctx context.Context, unit *InventoryUnit) error
}

// StockLevelRepository defines the interface for stock level persistence
type StockLevelRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockLevel, error)
	FindByItemAndLocation(ctx context.Context, itemID, locationID uuid.UUID) (*StockLevel, error)
	// FindByItemAndLocationForUpdate serializes mutations per (item, location).
	FindByItemAndLocationForUpdate(ctx context.Context, itemID, locationID uuid.UUID) (*StockLevel, error)
	FindByItem(ctx context.Context, itemID uuid.UUID) ([]StockLevel, error)
	// FindBelowReorderPoint lists active levels that need replenishment
	FindBelowReorderPoint(ctx context.Context, filter shared.Filter) ([]StockLevel, int64, error)
	Save(ctx context.Context, level *StockLevel) error
	SaveWithLock(ctx context.Context, level *StockLevel) error
}

// LocationDirectory is the collaborator that answers location existence.
// Location master data is managed outside this service.
type LocationDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
