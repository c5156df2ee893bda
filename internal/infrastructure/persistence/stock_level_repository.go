package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStockLevelRepository implements StockLevelRepository using GORM
type GormStockLevelRepository struct {
	db *gorm.DB
}

// NewGormStockLevelRepository creates a new GormStockLevelRepository
func NewGormStockLevelRepository(db *gorm.DB) *GormStockLevelRepository {
	return &GormStockLevelRepository{db: db}
}

// FindByID finds a stock level by its ID
func (r *GormStockLevelRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockLevel, error) {
	var model models.StockLevelModel
	if err := findOne(r.db.WithContext(ctx).Where("id = ?", id), &model, "STOCK_LEVEL", id); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByItemAndLocation finds the level of an item at a location
func (r *GormStockLevelRepository) FindByItemAndLocation(ctx context.Context, itemID, locationID uuid.UUID) (*inventory.StockLevel, error) {
	return r.findByKey(r.db.WithContext(ctx), itemID, locationID)
}

// FindByItemAndLocationForUpdate finds the level and locks its row, which
// serializes reserve, release and adjust on the same (item, location).
func (r *GormStockLevelRepository) FindByItemAndLocationForUpdate(ctx context.Context, itemID, locationID uuid.UUID) (*inventory.StockLevel, error) {
	return r.findByKey(r.db.WithContext(ctx).Clauses(forUpdate), itemID, locationID)
}

func (r *GormStockLevelRepository) findByKey(db *gorm.DB, itemID, locationID uuid.UUID) (*inventory.StockLevel, error) {
	var model models.StockLevelModel
	query := db.Where("item_id = ? AND location_id = ?", itemID, locationID)
	if err := findOne(query, &model, "STOCK_LEVEL", itemID.String()+"@"+locationID.String()); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByItem finds the levels of an item across locations
func (r *GormStockLevelRepository) FindByItem(ctx context.Context, itemID uuid.UUID) ([]inventory.StockLevel, error) {
	var rows []models.StockLevelModel
	if err := r.db.WithContext(ctx).Where("item_id = ?", itemID).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return levelsToDomain(rows), nil
}

// FindBelowReorderPoint finds active levels at or under their reorder point
// or below their minimum
func (r *GormStockLevelRepository) FindBelowReorderPoint(ctx context.Context, filter shared.Filter) ([]inventory.StockLevel, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StockLevelModel{}).
		Where("is_active = ?", true).
		Where("((reorder_point > 0 AND quantity_on_hand <= reorder_point) OR quantity_on_hand < minimum_level)")
	query = applyEquals(query, filter, map[string]string{"location_id": "location_id", "item_id": "item_id"})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.StockLevelModel
	if err := paginate(query, filter, StockLevelSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return levelsToDomain(rows), total, nil
}

// Save creates or updates a stock level
func (r *GormStockLevelRepository) Save(ctx context.Context, level *inventory.StockLevel) error {
	if err := upsert(ctx, r.db, models.StockLevelModelFromDomain(level)); err != nil {
		return err
	}
	level.MarkPersisted()
	return nil
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormStockLevelRepository) SaveWithLock(ctx context.Context, level *inventory.StockLevel) error {
	if err := updateVersioned(ctx, r.db, models.StockLevelModelFromDomain(level), level.PersistedVersion()); err != nil {
		return err
	}
	level.MarkPersisted()
	return nil
}

func levelsToDomain(rows []models.StockLevelModel) []inventory.StockLevel {
	levels := make([]inventory.StockLevel, len(rows))
	for i := range rows {
		levels[i] = *rows[i].ToDomain()
	}
	return levels
}

var _ inventory.StockLevelRepository = (*GormStockLevelRepository)(nil)
