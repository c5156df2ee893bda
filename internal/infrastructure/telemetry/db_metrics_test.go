package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/rentalcore/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// sumOf adds up every int64 data point of name whose attributes include attrs
func sumOf(t *testing.T, reader *sdkmetric.ManualReader, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			var points []metricdata.DataPoint[int64]
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				points = data.DataPoints
			case metricdata.Gauge[int64]:
				points = data.DataPoints
			}
		next:
			for _, dp := range points {
				for _, kv := range attrs {
					if v, ok := dp.Attributes.Value(kv.Key); !ok || v != kv.Value {
						continue next
					}
				}
				total += dp.Value
			}
		}
	}
	return total
}

func TestDBMetrics_RecordQuery(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewDBMetrics(provider.Meter("test"), nil, 50*time.Millisecond)
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordQuery(ctx, "SELECT", "stock_levels", 10*time.Millisecond, false)
	m.RecordQuery(ctx, "SELECT", "stock_levels", 80*time.Millisecond, false)
	m.RecordQuery(ctx, "UPDATE", "", 5*time.Millisecond, true)

	selectOp := AttrDBOperation.String("SELECT")
	assert.Equal(t, int64(2), sumOf(t, reader, "db_query_total", selectOp))
	assert.Equal(t, int64(1), sumOf(t, reader, "db_slow_query_total", selectOp, AttrDBTable.String("stock_levels")))
	assert.Equal(t, int64(1), sumOf(t, reader, "db_query_errors_total",
		AttrDBOperation.String("UPDATE"), AttrDBTable.String("unknown")))
	assert.NoError(t, m.Stop())
}

func TestRegisterDBMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := &MeterProvider{
		provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
		logger:   zaptest.NewLogger(t),
	}
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := RegisterDBMetrics(db, mp, config.TelemetryConfig{DBSlowQueryThresh: time.Hour}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, m)
	t.Cleanup(func() { _ = m.Stop() })

	require.NoError(t, db.Exec("CREATE TABLE probes (id INTEGER)").Error)
	require.NoError(t, db.Exec("INSERT INTO probes (id) VALUES (1)").Error)
	require.Error(t, db.Exec("INSERT INTO missing (id) VALUES (1)").Error)

	assert.Equal(t, int64(2), sumOf(t, reader, "db_query_total", AttrDBOperation.String("INSERT")))
	assert.Equal(t, int64(1), sumOf(t, reader, "db_query_errors_total", AttrDBOperation.String("INSERT")))
	assert.Equal(t, int64(1), sumOf(t, reader, "db_pool_connections_max"))
	assert.Zero(t, sumOf(t, reader, "db_slow_query_total"))
}

func TestRegisterDBMetrics_Disabled(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	m, err := RegisterDBMetrics(db, &MeterProvider{}, config.TelemetryConfig{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Nil(t, m)
}
