package shared

import (
	"strings"

	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
	PendingAudit() []AuditEntry
	ClearPendingAudit()
}

// BaseAggregateRoot provides common fields for aggregate roots
type BaseAggregateRoot struct {
	BaseEntity
	Version int
	// Notes is the rendered projection of the audit trail.
	Notes        string
	domainEvents []DomainEvent
	pendingAudit []AuditEntry
	// persistedVersion is the version last read from or written to storage.
	persistedVersion int
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// PersistedVersion is the version the stored row carries; optimistic
// saves match on it.
func (a *BaseAggregateRoot) PersistedVersion() int {
	return a.persistedVersion
}

// MarkPersisted records that storage now holds the current version
func (a *BaseAggregateRoot) MarkPersisted() {
	a.persistedVersion = a.Version
}

// AddDomainEvent adds a domain event to be published
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents clears the pending domain events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// RecordAudit appends an audit entry for this aggregate and re-renders it
// into Notes.
func (a *BaseAggregateRoot) RecordAudit(entityType, event, detail string, s Stamp) {
	entry := NewAuditEntry(entityType, a.ID, event, detail, s)
	a.pendingAudit = append(a.pendingAudit, entry)
	line := entry.Render()
	if a.Notes == "" {
		a.Notes = line
		return
	}
	a.Notes = strings.Join([]string{a.Notes, line}, "\n")
}

// RecordChildAudit appends an audit entry for an entity owned by this
// aggregate (a line) and returns it so the child can render its own notes.
func (a *BaseAggregateRoot) RecordChildAudit(entityType string, entityID uuid.UUID, event, detail string, s Stamp) AuditEntry {
	entry := NewAuditEntry(entityType, entityID, event, detail, s)
	a.pendingAudit = append(a.pendingAudit, entry)
	return entry
}

// PendingAudit returns audit entries not yet persisted
func (a *BaseAggregateRoot) PendingAudit() []AuditEntry {
	return a.pendingAudit
}

// ClearPendingAudit drops persisted audit entries
func (a *BaseAggregateRoot) ClearPendingAudit() {
	a.pendingAudit = nil
}

// Mutated stamps a successful change: timestamps, version and an audit line.
func (a *BaseAggregateRoot) Mutated(entityType, event, detail string, s Stamp) {
	a.Touch(s)
	a.IncrementVersion()
	if event != "" {
		a.RecordAudit(entityType, event, detail, s)
	}
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot(s Stamp) BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity:   NewBaseEntity(s),
		Version:      1,
		domainEvents: make([]DomainEvent, 0),
	}
}
