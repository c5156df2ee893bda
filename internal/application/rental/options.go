package rental

import (
	"context"
	"time"

	"github.com/rentalcore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// EvidenceStorage hands out presigned URLs for inspection evidence.
// The S3 object storage implements it.
type EvidenceStorage interface {
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

type options struct {
	logger      *zap.Logger
	clock       shared.Clock
	publisher   shared.EventPublisher
	evidence    EvidenceStorage
	evidenceTTL time.Duration
}

// Option configures the rental services
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

// WithEvidenceStorage enables photo evidence on inspections. ttl bounds the
// presigned URLs; zero keeps the default of 15 minutes.
func WithEvidenceStorage(storage EvidenceStorage, ttl time.Duration) Option {
	return func(o *options) {
		o.evidence = storage
		if ttl > 0 {
			o.evidenceTTL = ttl
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:      zap.NewNop(),
		clock:       shared.SystemClock{},
		evidenceTTL: 15 * time.Minute,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
