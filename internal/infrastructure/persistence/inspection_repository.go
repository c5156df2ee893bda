package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/rental"
	"github.com/rentalcore/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInspectionRepository implements InspectionRepository using GORM
type GormInspectionRepository struct {
	db *gorm.DB
}

// NewGormInspectionRepository creates a new GormInspectionRepository
func NewGormInspectionRepository(db *gorm.DB) *GormInspectionRepository {
	return &GormInspectionRepository{db: db}
}

// FindByID finds an inspection by its ID
func (r *GormInspectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.InspectionReport, error) {
	var model models.InspectionReportModel
	if err := findOne(r.db.WithContext(ctx).Where("id = ?", id), &model, "INSPECTION", id); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an inspection and locks its row
func (r *GormInspectionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*rental.InspectionReport, error) {
	var model models.InspectionReportModel
	if err := findOne(r.db.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id), &model, "INSPECTION", id); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByReturn finds the inspections of a return, oldest first
func (r *GormInspectionRepository) FindByReturn(ctx context.Context, returnID uuid.UUID) ([]rental.InspectionReport, error) {
	var rows []models.InspectionReportModel
	if err := r.db.WithContext(ctx).Where("return_id = ?", returnID).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	reports := make([]rental.InspectionReport, len(rows))
	for i := range rows {
		reports[i] = *rows[i].ToDomain()
	}
	return reports, nil
}

// Save creates or updates an inspection
func (r *GormInspectionRepository) Save(ctx context.Context, report *rental.InspectionReport) error {
	if err := upsert(ctx, r.db, models.InspectionReportModelFromDomain(report)); err != nil {
		return err
	}
	report.MarkPersisted()
	return nil
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormInspectionRepository) SaveWithLock(ctx context.Context, report *rental.InspectionReport) error {
	if err := updateVersioned(ctx, r.db, models.InspectionReportModelFromDomain(report), report.PersistedVersion()); err != nil {
		return err
	}
	report.MarkPersisted()
	return nil
}

var _ rental.InspectionRepository = (*GormInspectionRepository)(nil)
