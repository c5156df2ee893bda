package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rentalcore/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestOperationOf(t *testing.T) {
	tests := []struct {
		processor, sql, want string
	}{
		{"create", "", "INSERT"},
		{"query", "", "SELECT"},
		{"update", "", "UPDATE"},
		{"delete", "", "DELETE"},
		{"raw", "  select 1", "SELECT"},
		{"raw", "WITH due AS (SELECT 1) SELECT * FROM due", "SELECT"},
		{"row", "update stock_levels set x = 1", "UPDATE"},
		{"raw", "PRAGMA foreign_keys = ON", "OTHER"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, operationOf(tt.processor, tt.sql), tt.sql)
	}
}

func newRecordingTracer(t *testing.T) *tracetest.SpanRecorder {
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

func TestAnnotateQuerySpan(t *testing.T) {
	sr := newRecordingTracer(t)
	ctx, span := otel.Tracer("test").Start(context.Background(), "gorm.Query")
	ctx = context.WithValue(ctx, queryStartKey{}, time.Now().Add(-time.Second))

	db := &gorm.DB{
		Config:    &gorm.Config{},
		Statement: &gorm.Statement{Context: ctx, Table: "inventory_units", DB: &gorm.DB{RowsAffected: 3}},
	}
	db.Error = errors.New("disk I/O error")
	annotateQuerySpan(db, 100*time.Millisecond)
	span.End()

	got := sr.Ended()[0]
	attrs := map[string]any{}
	for _, kv := range got.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, int64(3), attrs["db.rows_affected"])
	assert.Equal(t, "inventory_units", attrs["db.sql.table"])
	assert.Equal(t, true, attrs["db.slow_query"])
	assert.Equal(t, codes.Error, got.Status().Code)

	var names []string
	for _, e := range got.Events() {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "slow_query")
	assert.Contains(t, names, "exception")
}

func TestAnnotateQuerySpan_NotFoundIsNotAnError(t *testing.T) {
	sr := newRecordingTracer(t)
	ctx, span := otel.Tracer("test").Start(context.Background(), "gorm.Query")

	db := &gorm.DB{Config: &gorm.Config{}, Statement: &gorm.Statement{Context: ctx}}
	db.Error = gorm.ErrRecordNotFound
	annotateQuerySpan(db, time.Second)
	span.End()

	got := sr.Ended()[0]
	assert.Equal(t, codes.Unset, got.Status().Code)
	assert.Empty(t, got.Events())
}

func TestRegisterDBTracing(t *testing.T) {
	sr := newRecordingTracer(t)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := config.TelemetryConfig{Enabled: true, DBTraceEnabled: true}
	require.NoError(t, RegisterDBTracing(db, cfg, zaptest.NewLogger(t)))
	require.NoError(t, db.WithContext(context.Background()).Exec("CREATE TABLE probes (id INTEGER)").Error)

	assert.NotEmpty(t, sr.Ended(), "otelgorm should record a span per statement")
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, RegisterDBTracing(db, config.TelemetryConfig{Enabled: true}, zaptest.NewLogger(t)))
	assert.Empty(t, db.Plugins)
}
