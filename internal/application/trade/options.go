package trade

import (
	"context"

	"github.com/google/uuid"
	appshared "github.com/rentalcore/backend/internal/application/shared"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type options struct {
	logger    *zap.Logger
	clock     shared.Clock
	publisher shared.EventPublisher
	guard     *appshared.IdempotencyGuard
	customers trade.CustomerDirectory
	taxRate   decimal.Decimal
}

// Option configures the trade services
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

// WithIdempotency guards payments and checkouts
func WithIdempotency(guard *appshared.IdempotencyGuard) Option {
	return func(o *options) {
		o.guard = guard
	}
}

// WithCustomerDirectory enables customer standing checks on new business
func WithCustomerDirectory(customers trade.CustomerDirectory) Option {
	return func(o *options) {
		o.customers = customers
	}
}

// WithDefaultTaxRate sets the tax rate used when a request carries none
func WithDefaultTaxRate(rate decimal.Decimal) Option {
	return func(o *options) {
		o.taxRate = rate
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

// requireCustomer runs outside the unit of work. Without a directory every
// customer is accepted.
func (o *options) requireCustomer(ctx context.Context, id uuid.UUID) error {
	if o.customers == nil {
		return nil
	}
	status, err := o.customers.Lookup(ctx, id)
	if err != nil {
		return err
	}
	return status.CanTrade()
}

func (o *options) taxRateOr(requested *decimal.Decimal) decimal.Decimal {
	if requested != nil {
		return *requested
	}
	return o.taxRate
}
