package logger

import (
	"context"

	"github.com/rentalcore/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

// Request context keys set by the HTTP stack
const (
	LoggerKey         contextKey = "logger"
	RequestIDKey      contextKey = "request_id"
	IdempotencyKeyKey contextKey = "idempotency_key"
)

// WithContext attaches a request logger to ctx
func WithContext(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, log)
}

// FromContext returns the request logger, or a no-op logger outside a
// request
func FromContext(ctx context.Context) *zap.Logger {
	if log, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return log
	}
	return zap.NewNop()
}

// WithActor records who is acting both for the audit stamp on domain
// changes and as a field on the request logger
func WithActor(ctx context.Context, log *zap.Logger, actor string) (context.Context, *zap.Logger) {
	ctx = shared.WithActor(ctx, actor)
	log = log.With(zap.String("actor", actor))
	return WithContext(ctx, log), log
}

// WithIdempotencyKey stores the client's Idempotency-Key
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, IdempotencyKeyKey, key)
}

// GetRequestID returns the request id, or ""
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// GetIdempotencyKey returns the Idempotency-Key, or ""
func GetIdempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(IdempotencyKeyKey).(string)
	return key
}

// CorrelationFields returns the trace, span and request ids found in ctx
// so log lines written outside the request logger can be joined to the
// request and its trace.
func CorrelationFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	return fields
}
