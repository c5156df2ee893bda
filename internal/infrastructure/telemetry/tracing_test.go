package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTestTracer installs an in-memory span recorder as the global
// tracer provider for the duration of the test
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrMap(kvs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[string(kv.Key)] = kv.Value
	}
	return m
}

func TestStartSpan(t *testing.T) {
	sr := setupTestTracer(t)
	id := uuid.New()

	ctx, span := telemetry.StartSpan(context.Background(), "document.render",
		telemetry.WithAttribute(telemetry.SpanAttrTransactionID, id),
		telemetry.WithAttribute(telemetry.SpanAttrDocumentKind, "invoice"),
		telemetry.WithSpanKind(trace.SpanKindClient),
	)
	assert.NotEmpty(t, telemetry.TraceID(ctx))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "document.render", spans[0].Name())
	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind())
	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, id.String(), attrs[telemetry.SpanAttrTransactionID].AsString())
	assert.Equal(t, "invoice", attrs[telemetry.SpanAttrDocumentKind].AsString())
}

func TestSetAttributes(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "return.finalize")
	telemetry.SetAttributes(span,
		telemetry.SpanAttrReturnNumber, "RET-0001",
		telemetry.SpanAttrBytes, 2048,
		42, "skipped",
		"ratio", 0.5,
		"late", true,
		"dangling",
	)
	span.End()

	attrs := attrMap(sr.Ended()[0].Attributes())
	assert.Equal(t, "RET-0001", attrs[telemetry.SpanAttrReturnNumber].AsString())
	assert.Equal(t, int64(2048), attrs[telemetry.SpanAttrBytes].AsInt64())
	assert.Equal(t, 0.5, attrs["ratio"].AsFloat64())
	assert.True(t, attrs["late"].AsBool())
	assert.NotContains(t, attrs, "dangling")
	assert.Len(t, attrs, 4)
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "evidence.presign")
	telemetry.RecordError(span, nil)
	telemetry.RecordError(span, errors.New("bucket unreachable"))
	span.End()

	got := sr.Ended()[0]
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Equal(t, "bucket unreachable", got.Status().Description)
	require.Len(t, got.Events(), 1)
	assert.Equal(t, "exception", got.Events()[0].Name)
}

func TestTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, telemetry.TraceID(context.Background()))
}
