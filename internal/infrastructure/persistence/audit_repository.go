package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAuditRepository implements the append-only audit log using GORM
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Append inserts entries in the order given
func (r *GormAuditRepository) Append(ctx context.Context, entries ...shared.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]*models.AuditEntryModel, len(entries))
	for i, e := range entries {
		rows[i] = models.AuditEntryModelFromDomain(e)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// FindByEntity returns the entries of one entity in insertion order
func (r *GormAuditRepository) FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]shared.AuditEntry, error) {
	var rows []models.AuditEntryModel
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("seq ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	entries := make([]shared.AuditEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

var _ shared.AuditRepository = (*GormAuditRepository)(nil)
