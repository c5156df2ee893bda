package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity provides common fields for all entities
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
	UpdatedBy string
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// GetCreatedAt returns the creation timestamp
func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (e *BaseEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// Touch records who modified the entity and when.
func (e *BaseEntity) Touch(s Stamp) {
	e.UpdatedAt = s.At
	e.UpdatedBy = s.Actor
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity(s Stamp) BaseEntity {
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: s.At,
		UpdatedAt: s.At,
		CreatedBy: s.Actor,
		UpdatedBy: s.Actor,
	}
}
