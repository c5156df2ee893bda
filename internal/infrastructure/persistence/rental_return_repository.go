package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/rental"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

var terminalReturnStatuses = []string{string(rental.ReturnCompleted), string(rental.ReturnCancelled)}

// GormRentalReturnRepository implements RentalReturnRepository using GORM.
// Returns are always loaded together with their lines.
type GormRentalReturnRepository struct {
	db *gorm.DB
}

// NewGormRentalReturnRepository creates a new GormRentalReturnRepository
func NewGormRentalReturnRepository(db *gorm.DB) *GormRentalReturnRepository {
	return &GormRentalReturnRepository{db: db}
}

func (r *GormRentalReturnRepository) withLines(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Lines", orderByLineNumber)
}

// FindByID finds a return by its ID
func (r *GormRentalReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.RentalReturn, error) {
	var model models.RentalReturnModel
	if err := findOne(r.withLines(ctx).Where("id = ?", id), &model, "RETURN", id); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a return and locks its row
func (r *GormRentalReturnRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*rental.RentalReturn, error) {
	var model models.RentalReturnModel
	if err := findOne(r.withLines(ctx).Clauses(forUpdate).Where("id = ?", id), &model, "RETURN", id); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a return by its business number
func (r *GormRentalReturnRepository) FindByNumber(ctx context.Context, number string) (*rental.RentalReturn, error) {
	var model models.RentalReturnModel
	if err := findOne(r.withLines(ctx).Where("number = ?", number), &model, "RETURN", number); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds returns matching the filter
func (r *GormRentalReturnRepository) FindAll(ctx context.Context, filter rental.ReturnFilter) ([]rental.RentalReturn, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.RentalReturnModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.TransactionID != nil {
		query = query.Where("transaction_id = ?", *filter.TransactionID)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.LocationID != nil {
		query = query.Where("location_id = ?", *filter.LocationID)
	}
	if filter.DamagedOnly {
		query = query.Where(`EXISTS (SELECT 1 FROM rental_return_lines l
			WHERE l.return_id = rental_returns.id AND l.damage_level NOT IN ?)`,
			[]string{string(rental.DamageNone), ""})
	}
	if filter.Search != "" {
		query = query.Where("LOWER(number) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.RentalReturnModel
	err := paginate(query, filter.Filter, ReturnSortFields, "number").
		Preload("Lines", orderByLineNumber).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return returnsToDomain(rows), total, nil
}

// FindByTransaction finds every return opened against a transaction
func (r *GormRentalReturnRepository) FindByTransaction(ctx context.Context, transactionID uuid.UUID) ([]rental.RentalReturn, error) {
	var rows []models.RentalReturnModel
	err := r.withLines(ctx).
		Where("transaction_id = ?", transactionID).
		Order("number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return returnsToDomain(rows), nil
}

// HasActiveReturn reports a non-terminal return on the transaction
func (r *GormRentalReturnRepository) HasActiveReturn(ctx context.Context, transactionID uuid.UUID, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.RentalReturnModel{}).
		Where("transaction_id = ? AND status NOT IN ?", transactionID, terminalReturnStatuses)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

type pendingLineRow struct {
	models.ReturnLineModel
	ReturnNumber string
}

// FindPendingLines lists lines not yet PROCESSED on open returns
func (r *GormRentalReturnRepository) FindPendingLines(ctx context.Context, filter shared.Filter) ([]rental.PendingLine, int64, error) {
	query := r.db.WithContext(ctx).
		Table("rental_return_lines").
		Joins("JOIN rental_returns ON rental_returns.id = rental_return_lines.return_id").
		Where("rental_returns.status NOT IN ?", terminalReturnStatuses).
		Where("rental_return_lines.status <> ?", string(rental.LineProcessed))
	query = applyEquals(query, filter, map[string]string{
		"location_id": "rental_returns.location_id",
		"item_id":     "rental_return_lines.item_id",
	})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Select("rental_return_lines.*, rental_returns.number AS return_number").
		Order("rental_returns.number ASC, rental_return_lines.line_number ASC")
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	var rows []pendingLineRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	lines := make([]rental.PendingLine, len(rows))
	for i := range rows {
		lines[i] = rental.PendingLine{
			ReturnID:     rows[i].ReturnID,
			ReturnNumber: rows[i].ReturnNumber,
			Line:         *rows[i].ToDomain(),
		}
	}
	return lines, total, nil
}

// Save writes the return and replaces its line set
func (r *GormRentalReturnRepository) Save(ctx context.Context, ret *rental.RentalReturn) error {
	return r.save(ctx, ret, false)
}

// SaveWithLock writes the return with an optimistic version check and
// replaces its line set
func (r *GormRentalReturnRepository) SaveWithLock(ctx context.Context, ret *rental.RentalReturn) error {
	return r.save(ctx, ret, true)
}

func (r *GormRentalReturnRepository) save(ctx context.Context, ret *rental.RentalReturn, versioned bool) error {
	model := models.RentalReturnModelFromDomain(ret)
	keep := make([]uuid.UUID, len(model.Lines))
	for i := range model.Lines {
		keep[i] = model.Lines[i].ID
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if versioned {
			if err := updateVersioned(ctx, tx, model, ret.PersistedVersion()); err != nil {
				return err
			}
		} else if err := upsert(ctx, tx, model); err != nil {
			return err
		}
		return replaceChildren(ctx, tx, "return_id", ret.ID, keep, model.Lines)
	})
	if err != nil {
		return err
	}
	ret.MarkPersisted()
	return nil
}

func returnsToDomain(rows []models.RentalReturnModel) []rental.RentalReturn {
	returns := make([]rental.RentalReturn, len(rows))
	for i := range rows {
		returns[i] = *rows[i].ToDomain()
	}
	return returns
}

var _ rental.RentalReturnRepository = (*GormRentalReturnRepository)(nil)
