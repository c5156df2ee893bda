package shared

import (
	"context"
	"time"
)

// Clock abstracts the current time so operations can run with fixed clocks.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always returns the same instant.
type FixedClock struct {
	At time.Time
}

// Now returns the fixed instant
func (c FixedClock) Now() time.Time {
	return c.At
}

// SystemActor is used when no caller identity is attached to the context.
const SystemActor = "system"

type actorKey struct{}

// WithActor attaches the calling actor's identifier to ctx.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor stored in ctx, or SystemActor.
func ActorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return SystemActor
}

// Stamp is the explicit operation context every mutating domain method
// receives: who is acting and at what instant.
type Stamp struct {
	Actor string
	At    time.Time
}

// NewStamp builds a Stamp from the context actor and the clock.
func NewStamp(ctx context.Context, clock Clock) Stamp {
	if clock == nil {
		clock = SystemClock{}
	}
	return Stamp{Actor: ActorFromContext(ctx), At: clock.Now()}
}

// StampAt is a convenience for tests and batch jobs.
func StampAt(actor string, at time.Time) Stamp {
	return Stamp{Actor: actor, At: at}
}
