package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/trade"
	"github.com/rentalcore/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTransactionRepository implements TransactionRepository using GORM.
// Headers are always loaded together with their lines.
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

func (r *GormTransactionRepository) withLines(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Lines", orderByLineNumber)
}

// FindByID finds a transaction by its ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.TransactionHeader, error) {
	var model models.TransactionHeaderModel
	if err := findOne(r.withLines(ctx).Where("id = ?", id), &model, "TRANSACTION", id); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a transaction and locks its header row
func (r *GormTransactionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.TransactionHeader, error) {
	var model models.TransactionHeaderModel
	query := r.withLines(ctx).Clauses(forUpdate).Where("id = ?", id)
	if err := findOne(query, &model, "TRANSACTION", id); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a transaction by its business number
func (r *GormTransactionRepository) FindByNumber(ctx context.Context, number string) (*trade.TransactionHeader, error) {
	var model models.TransactionHeaderModel
	if err := findOne(r.withLines(ctx).Where("number = ?", number), &model, "TRANSACTION", number); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds transactions matching the filter
func (r *GormTransactionRepository) FindAll(ctx context.Context, filter trade.TransactionFilter) ([]trade.TransactionHeader, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TransactionHeaderModel{})
	if filter.Type != nil {
		query = query.Where("type = ?", string(*filter.Type))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", string(*filter.PaymentStatus))
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.LocationID != nil {
		query = query.Where("location_id = ?", *filter.LocationID)
	}
	if filter.SalesPersonID != nil {
		query = query.Where("sales_person_id = ?", *filter.SalesPersonID)
	}
	if filter.From != nil {
		query = query.Where("transaction_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("transaction_date <= ?", *filter.To)
	}
	if filter.MinAmount != nil {
		query = query.Where("total_amount >= ?", filter.MinAmount.Decimal())
	}
	if filter.MaxAmount != nil {
		query = query.Where("total_amount <= ?", filter.MaxAmount.Decimal())
	}
	if filter.Search != "" {
		query = query.Where("LOWER(number) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	return r.page(ctx, query, filter.Filter)
}

// ExistsByNumber checks if a transaction number is taken
func (r *GormTransactionRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	return exists(ctx, r.db, &models.TransactionHeaderModel{}, "number = ?", number)
}

// FindOpenUnitAssignments lists units booked on transactions that have not
// been picked up or fulfilled yet
func (r *GormTransactionRepository) FindOpenUnitAssignments(ctx context.Context, itemID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.TransactionLineModel{}).
		Joins("JOIN transaction_headers ON transaction_headers.id = transaction_lines.transaction_id").
		Where("transaction_lines.item_id = ? AND transaction_lines.inventory_unit_id IS NOT NULL", itemID).
		Where("transaction_headers.status IN ?", []string{
			string(trade.StatusDraft), string(trade.StatusPending), string(trade.StatusConfirmed),
		}).
		Pluck("transaction_lines.inventory_unit_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// FindOverdueRentals lists in-progress rentals whose end date is before the day of asOf
func (r *GormTransactionRepository) FindOverdueRentals(ctx context.Context, asOf time.Time, filter shared.Filter) ([]trade.TransactionHeader, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TransactionHeaderModel{}).
		Where("type = ? AND status = ?", string(trade.TransactionTypeRental), string(trade.StatusInProgress)).
		Where("rental_end_date IS NOT NULL AND rental_end_date < ?", shared.Day(asOf))
	query = applyEquals(query, filter, map[string]string{
		"customer_id": "customer_id",
		"location_id": "location_id",
	})
	if filter.OrderBy == "" {
		filter.OrderBy = "rental_end_date"
		filter.OrderDir = "asc"
	}
	return r.page(ctx, query, filter)
}

func (r *GormTransactionRepository) page(ctx context.Context, query *gorm.DB, filter shared.Filter) ([]trade.TransactionHeader, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.TransactionHeaderModel
	err := paginate(query, filter, TransactionSortFields, "number").
		Preload("Lines", orderByLineNumber).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	headers := make([]trade.TransactionHeader, len(rows))
	for i := range rows {
		headers[i] = *rows[i].ToDomain()
	}
	return headers, total, nil
}

// Save writes the header and replaces its line set
func (r *GormTransactionRepository) Save(ctx context.Context, h *trade.TransactionHeader) error {
	return r.save(ctx, h, false)
}

// SaveWithLock writes the header with an optimistic version check and
// replaces its line set
func (r *GormTransactionRepository) SaveWithLock(ctx context.Context, h *trade.TransactionHeader) error {
	return r.save(ctx, h, true)
}

func (r *GormTransactionRepository) save(ctx context.Context, h *trade.TransactionHeader, versioned bool) error {
	model := models.TransactionHeaderModelFromDomain(h)
	keep := make([]uuid.UUID, len(model.Lines))
	for i := range model.Lines {
		keep[i] = model.Lines[i].ID
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if versioned {
			if err := updateVersioned(ctx, tx, model, h.PersistedVersion()); err != nil {
				return err
			}
		} else if err := upsert(ctx, tx, model); err != nil {
			return err
		}
		return replaceChildren(ctx, tx, "transaction_id", h.ID, keep, model.Lines)
	})
	if err != nil {
		return err
	}
	h.MarkPersisted()
	return nil
}

var _ trade.TransactionRepository = (*GormTransactionRepository)(nil)
