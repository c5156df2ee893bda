package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate takes a row lock held until the surrounding transaction ends.
// SQLite has no row locks and ignores the clause.
var forUpdate = clause.Locking{Strength: "UPDATE"}

// findOne loads a single row into dest and maps a missing row to a
// NotFound domain error for entity.
func findOne(query *gorm.DB, dest any, entity string, key any) error {
	if err := query.First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.NewNotFoundError(entity, key)
		}
		return err
	}
	return nil
}

// exists reports whether any row of model matches the condition
func exists(ctx context.Context, db *gorm.DB, model any, query string, args ...any) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(model).Where(query, args...).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// upsert writes the aggregate row without a version check
func upsert(ctx context.Context, db *gorm.DB, model any) error {
	return db.WithContext(ctx).Omit(clause.Associations).Save(model).Error
}

// updateVersioned writes every column of the aggregate row when the stored
// version still equals persisted. A stale version is a ConcurrencyConflict.
func updateVersioned(ctx context.Context, db *gorm.DB, model any, persisted int) error {
	result := db.WithContext(ctx).
		Model(model).
		Where("version = ?", persisted).
		Select("*").
		Omit(clause.Associations).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// replaceChildren makes the stored children of parentID exactly children:
// rows that are gone are deleted, the rest are inserted or overwritten.
func replaceChildren[T any](ctx context.Context, db *gorm.DB, parentColumn string, parentID uuid.UUID, keep []uuid.UUID, children []T) error {
	var zero T
	del := db.WithContext(ctx).Where(parentColumn+" = ?", parentID)
	if len(keep) > 0 {
		del = del.Where("id NOT IN ?", keep)
	}
	if err := del.Delete(&zero).Error; err != nil {
		return err
	}
	if len(children) == 0 {
		return nil
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&children).Error
}

func orderByLineNumber(db *gorm.DB) *gorm.DB {
	return db.Order("line_number ASC")
}
