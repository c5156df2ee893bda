package inventory

import (
	appshared "github.com/rentalcore/backend/internal/application/shared"
	"github.com/rentalcore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

type options struct {
	logger    *zap.Logger
	clock     shared.Clock
	publisher shared.EventPublisher
	guard     *appshared.IdempotencyGuard
}

// Option configures the inventory services
type Option func(*options)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock sets the clock used to stamp changes
func WithClock(clock shared.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithEventPublisher sets the publisher that receives domain events after commit
func WithEventPublisher(publisher shared.EventPublisher) Option {
	return func(o *options) {
		o.publisher = publisher
	}
}

// WithIdempotency guards quantity adjustments and reservations
func WithIdempotency(guard *appshared.IdempotencyGuard) Option {
	return func(o *options) {
		o.guard = guard
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger: zap.NewNop(),
		clock:  shared.SystemClock{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
