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

// GormItemRepository implements ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item by its ID
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Item, error) {
	var model models.ItemModel
	if err := findOne(r.db.WithContext(ctx).Where("id = ?", id), &model, "ITEM", id); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds an item by its normalized code
func (r *GormItemRepository) FindByCode(ctx context.Context, code string) (*inventory.Item, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var model models.ItemModel
	if err := findOne(r.db.WithContext(ctx).Where("code = ?", code), &model, "ITEM", code); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple items by their IDs
func (r *GormItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.Item, error) {
	if len(ids) == 0 {
		return []inventory.Item{}, nil
	}
	var rows []models.ItemModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return itemsToDomain(rows), nil
}

var itemFilterColumns = map[string]string{
	"item_type": "type",
	"status":    "status",
	"category":  "category",
	"brand":     "brand",
	"is_active": "is_active",
}

// FindAll finds items matching the filter
func (r *GormItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Item, int64, error) {
	query := applyEquals(r.db.WithContext(ctx).Model(&models.ItemModel{}), filter, itemFilterColumns)
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(code) LIKE ?)", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ItemModel
	if err := paginate(query, filter, ItemSortFields, "code").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return itemsToDomain(rows), total, nil
}

// ExistsByCode checks if an item code is taken
func (r *GormItemRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return exists(ctx, r.db, &models.ItemModel{}, "code = ?", strings.ToUpper(strings.TrimSpace(code)))
}

// Save creates or updates an item
func (r *GormItemRepository) Save(ctx context.Context, item *inventory.Item) error {
	if err := upsert(ctx, r.db, models.ItemModelFromDomain(item)); err != nil {
		return err
	}
	item.MarkPersisted()
	return nil
}

func itemsToDomain(rows []models.ItemModel) []inventory.Item {
	items := make([]inventory.Item, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items
}

var _ inventory.ItemRepository = (*GormItemRepository)(nil)
