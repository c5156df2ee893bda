package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/rentalcore/backend/internal/infrastructure/config"
	"github.com/rentalcore/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

// newTestMeter returns a meter backed by a manual reader
func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader, mp
}

// collect returns the metric with the given name from one collection
func collect(t *testing.T, reader *sdkmetric.ManualReader, name string) (metricdata.Metrics, bool) {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func int64Sum(t *testing.T, reader *sdkmetric.ManualReader, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	m, ok := collect(t, reader, name)
	require.True(t, ok, "metric %s not collected", name)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is %T", name, m.Data)
	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	for _, cfg := range []config.TelemetryConfig{
		{Enabled: false, MetricsEnabled: true},
		{Enabled: true, MetricsEnabled: false},
	} {
		mp, err := telemetry.NewMeterProvider(ctx, cfg, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.False(t, mp.IsEnabled())
		assert.NotNil(t, mp.Meter("test"))
		assert.NoError(t, mp.Shutdown(ctx))
	}
}

func TestCounter(t *testing.T) {
	reader, mp := newTestMeter(t)
	ctx := context.Background()

	c, err := telemetry.NewCounter(mp.Meter("test"), "requests_total", "Requests", "{request}")
	require.NoError(t, err)
	c.Inc(ctx, telemetry.AttrHTTPMethod.String("GET"))
	c.Add(ctx, 4, telemetry.AttrHTTPMethod.String("GET"))
	c.Inc(ctx, telemetry.AttrHTTPMethod.String("POST"))

	assert.Equal(t, int64(5), int64Sum(t, reader, "requests_total", telemetry.AttrHTTPMethod.String("GET")))
	assert.Equal(t, int64(1), int64Sum(t, reader, "requests_total", telemetry.AttrHTTPMethod.String("POST")))
}

func TestFloatCounter_IgnoresNegative(t *testing.T) {
	reader, mp := newTestMeter(t)
	ctx := context.Background()

	c, err := telemetry.NewFloatCounter(mp.Meter("test"), "amount_total", "Amount", "{currency}")
	require.NoError(t, err)
	c.Add(ctx, 12.5)
	c.Add(ctx, -3)
	c.Add(ctx, 0.5)

	m, ok := collect(t, reader, "amount_total")
	require.True(t, ok)
	sum := m.Data.(metricdata.Sum[float64])
	require.Len(t, sum.DataPoints, 1)
	assert.InDelta(t, 13.0, sum.DataPoints[0].Value, 1e-9)
}

func TestHistogram(t *testing.T) {
	reader, mp := newTestMeter(t)
	ctx := context.Background()

	h, err := telemetry.NewHistogram(mp.Meter("test"), telemetry.HistogramOpts{
		Name:       "latency_seconds",
		Unit:       "s",
		Boundaries: telemetry.HTTPDurationBuckets,
	})
	require.NoError(t, err)
	h.Record(ctx, 0.02)
	h.RecordDuration(ctx, 300*time.Millisecond)

	m, ok := collect(t, reader, "latency_seconds")
	require.True(t, ok)
	hist := m.Data.(metricdata.Histogram[float64])
	require.Len(t, hist.DataPoints, 1)
	dp := hist.DataPoints[0]
	assert.Equal(t, uint64(2), dp.Count)
	assert.InDelta(t, 0.32, dp.Sum, 1e-9)
	assert.Equal(t, telemetry.HTTPDurationBuckets, dp.Bounds)
}
