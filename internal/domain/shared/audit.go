package shared

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditEntry is one row of the append-only audit log.
type AuditEntry struct {
	ID         uuid.UUID `json:"id"`
	EntityType string    `json:"entity_type"`
	EntityID   uuid.UUID `json:"entity_id"`
	Actor      string    `json:"actor"`
	Event      string    `json:"event"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewAuditEntry creates an audit entry stamped with the operation context
func NewAuditEntry(entityType string, entityID uuid.UUID, event, detail string, s Stamp) AuditEntry {
	return AuditEntry{
		ID:         uuid.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Actor:      s.Actor,
		Event:      event,
		Detail:     detail,
		OccurredAt: s.At,
	}
}

// Render formats the entry as a single notes line.
func (e AuditEntry) Render() string {
	line := fmt.Sprintf("[%s %s] %s", e.OccurredAt.UTC().Format(time.RFC3339), e.Actor, e.Event)
	if e.Detail != "" {
		line += ": " + e.Detail
	}
	return line
}
