package shared

import (
	"context"
	"fmt"

	domain "github.com/rentalcore/backend/internal/domain/shared"
)

// Tracker collects the aggregates changed inside a unit of work. Their audit
// entries are written in the same transaction; their events are published
// only after the unit commits.
type Tracker struct {
	aggregates []domain.AggregateRoot
	events     []domain.DomainEvent
}

// Track registers changed aggregates
func (t *Tracker) Track(aggregates ...domain.AggregateRoot) {
	for _, a := range aggregates {
		if a == nil {
			continue
		}
		dup := false
		for _, existing := range t.aggregates {
			if existing == a {
				dup = true
				break
			}
		}
		if !dup {
			t.aggregates = append(t.aggregates, a)
		}
	}
}

// FlushAudit appends the pending audit entries of every tracked aggregate
// and collects their events.
func (t *Tracker) FlushAudit(ctx context.Context, repo domain.AuditRepository) error {
	entries := make([]domain.AuditEntry, 0)
	for _, a := range t.aggregates {
		entries = append(entries, a.PendingAudit()...)
	}
	if len(entries) > 0 && repo != nil {
		if err := repo.Append(ctx, entries...); err != nil {
			return fmt.Errorf("append audit log: %w", err)
		}
	}
	for _, a := range t.aggregates {
		a.ClearPendingAudit()
		t.events = append(t.events, a.GetDomainEvents()...)
		a.ClearDomainEvents()
	}
	t.aggregates = nil
	return nil
}

// Publish sends the collected events. Publication errors are handled by
// the bus and never fail the committed operation.
func (t *Tracker) Publish(ctx context.Context, publisher domain.EventPublisher) {
	if publisher == nil || len(t.events) == 0 {
		return
	}
	_ = publisher.Publish(ctx, t.events...)
	t.events = nil
}

// Events returns the events collected so far
func (t *Tracker) Events() []domain.DomainEvent {
	return t.events
}

// Run executes fn in one unit of work. The audit entries of every aggregate
// fn tracks are written before commit; their events are published after it.
func Run(ctx context.Context, scope TransactionScope, publisher domain.EventPublisher, fn func(repos TransactionalRepositories, t *Tracker) error) error {
	var tracker Tracker
	err := scope.Execute(ctx, func(repos TransactionalRepositories) error {
		tracker = Tracker{}
		if err := fn(repos, &tracker); err != nil {
			return err
		}
		return tracker.FlushAudit(ctx, repos.Audit())
	})
	if err != nil {
		return err
	}
	tracker.Publish(ctx, publisher)
	return nil
}
