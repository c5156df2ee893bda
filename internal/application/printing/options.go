package printing

import (
	"github.com/rentalcore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

type options struct {
	logger *zap.Logger
	clock  shared.Clock
}

// Option configures the DocumentService
type Option func(*options)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock sets the clock printed on documents
func WithClock(clock shared.Clock) Option {
	return func(o *options) {
		o.clock = clock
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
