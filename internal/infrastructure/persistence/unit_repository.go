package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInventoryUnitRepository implements InventoryUnitRepository using GORM
type GormInventoryUnitRepository struct {
	db *gorm.DB
}

// NewGormInventoryUnitRepository creates a new GormInventoryUnitRepository
func NewGormInventoryUnitRepository(db *gorm.DB) *GormInventoryUnitRepository {
	return &GormInventoryUnitRepository{db: db}
}

// FindByID finds a unit by its ID
func (r *GormInventoryUnitRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryUnit, error) {
	var model models.InventoryUnitModel
	if err := findOne(r.db.WithContext(ctx).Where("id = ?", id), &model, "UNIT", id); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a unit and locks its row for the rest of the transaction
func (r *GormInventoryUnitRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.InventoryUnit, error) {
	var model models.InventoryUnitModel
	query := r.db.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id)
	if err := findOne(query, &model, "UNIT", id); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple units by their IDs
func (r *GormInventoryUnitRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.InventoryUnit, error) {
	if len(ids) == 0 {
		return []inventory.InventoryUnit{}, nil
	}
	var rows []models.InventoryUnitModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return unitsToDomain(rows), nil
}

// FindByCode finds a unit by its normalized code
func (r *GormInventoryUnitRepository) FindByCode(ctx context.Context, code string) (*inventory.InventoryUnit, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var model models.InventoryUnitModel
	if err := findOne(r.db.WithContext(ctx).Where("code = ?", code), &model, "UNIT", code); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

var unitFilterColumns = map[string]string{
	"item_id":     "item_id",
	"location_id": "location_id",
	"status":      "status",
	"condition":   "condition",
	"is_active":   "is_active",
}

// FindAll finds units matching the filter
func (r *GormInventoryUnitRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.InventoryUnit, int64, error) {
	query := applyEquals(r.db.WithContext(ctx).Model(&models.InventoryUnitModel{}), filter, unitFilterColumns)
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("(LOWER(code) LIKE ? OR LOWER(serial_number) LIKE ?)", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.InventoryUnitModel
	if err := paginate(query, filter, UnitSortFields, "code").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return unitsToDomain(rows), total, nil
}

// FindAvailable finds up to limit AVAILABLE units of an item at a location
func (r *GormInventoryUnitRepository) FindAvailable(ctx context.Context, itemID, locationID uuid.UUID, exclude []uuid.UUID, limit int) ([]inventory.InventoryUnit, error) {
	query := r.db.WithContext(ctx).
		Where("item_id = ? AND location_id = ? AND status = ? AND is_active = ?",
			itemID, locationID, string(inventory.UnitStatusAvailable), true)
	if len(exclude) > 0 {
		query = query.Where("id NOT IN ?", exclude)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.InventoryUnitModel
	if err := query.Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return unitsToDomain(rows), nil
}

// ExistsByCode checks if a unit code is taken
func (r *GormInventoryUnitRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return exists(ctx, r.db, &models.InventoryUnitModel{}, "code = ?", strings.ToUpper(strings.TrimSpace(code)))
}

// ExistsBySerial checks if a serial number is taken
func (r *GormInventoryUnitRepository) ExistsBySerial(ctx context.Context, serial string) (bool, error) {
	return exists(ctx, r.db, &models.InventoryUnitModel{}, "serial_number = ?", strings.TrimSpace(serial))
}

// Save creates or updates a unit
func (r *GormInventoryUnitRepository) Save(ctx context.Context, unit *inventory.InventoryUnit) error {
	if err := upsert(ctx, r.db, models.InventoryUnitModelFromDomain(unit)); err != nil {
		return err
	}
	unit.MarkPersisted()
	return nil
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormInventoryUnitRepository) SaveWithLock(ctx context.Context, unit *inventory.InventoryUnit) error {
	if err := updateVersioned(ctx, r.db, models.InventoryUnitModelFromDomain(unit), unit.PersistedVersion()); err != nil {
		return err
	}
	unit.MarkPersisted()
	return nil
}

func unitsToDomain(rows []models.InventoryUnitModel) []inventory.InventoryUnit {
	units := make([]inventory.InventoryUnit, len(rows))
	for i := range rows {
		units[i] = *rows[i].ToDomain()
	}
	return units
}

var _ inventory.InventoryUnitRepository = (*GormInventoryUnitRepository)(nil)
