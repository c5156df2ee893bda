package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/shared"
)

// AuditEntryModel is one row of the append-only audit log.
type AuditEntryModel struct {
	Seq        int64     `gorm:"primaryKey;autoIncrement"`
	ID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	EntityType string    `gorm:"type:varchar(50);not null;index:idx_audit_entity,priority:1"`
	EntityID   uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_entity,priority:2"`
	Actor      string    `gorm:"type:varchar(100);not null"`
	Event      string    `gorm:"type:varchar(100);not null"`
	Detail     string    `gorm:"type:text"`
	OccurredAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AuditEntryModel) TableName() string {
	return "audit_entries"
}

// ToDomain converts the persistence model to a domain AuditEntry.
func (m *AuditEntryModel) ToDomain() shared.AuditEntry {
	return shared.AuditEntry{
		ID:         m.ID,
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		Actor:      m.Actor,
		Event:      m.Event,
		Detail:     m.Detail,
		OccurredAt: m.OccurredAt,
	}
}

// AuditEntryModelFromDomain creates a new persistence model from a domain AuditEntry.
func AuditEntryModelFromDomain(e shared.AuditEntry) *AuditEntryModel {
	return &AuditEntryModel{
		ID:         e.ID,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Actor:      e.Actor,
		Event:      e.Event,
		Detail:     e.Detail,
		OccurredAt: e.OccurredAt,
	}
}

// NumberSequenceModel holds the last issued sequence per prefix and day.
type NumberSequenceModel struct {
	Prefix    string    `gorm:"type:varchar(10);primaryKey"`
	Day       string    `gorm:"type:char(8);primaryKey"`
	LastValue int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
}

// TableName returns the table name for GORM
func (NumberSequenceModel) TableName() string {
	return "number_sequences"
}
