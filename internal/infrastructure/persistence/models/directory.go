package models

import (
	"time"

	"github.com/google/uuid"
)

// CustomerRefModel is the local projection of a customer owned by the
// customer master-data service. Only the trading standing is kept.
type CustomerRefModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	Name          string    `gorm:"type:varchar(200)"`
	IsActive      bool      `gorm:"not null"`
	IsBlacklisted bool      `gorm:"not null;default:false"`
	SyncedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerRefModel) TableName() string {
	return "customer_refs"
}

// LocationRefModel is the local projection of a stocking location.
type LocationRefModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	Code     string    `gorm:"type:varchar(50)"`
	Name     string    `gorm:"type:varchar(200)"`
	IsActive bool      `gorm:"not null"`
	SyncedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LocationRefModel) TableName() string {
	return "location_refs"
}
