package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupTestMeter(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
	})
	return mp, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetricByName(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func newMeteredRouter(t *testing.T) (*gin.Engine, *sdkmetric.ManualReader) {
	mp, reader := setupTestMeter(t)
	router := gin.New()
	router.Use(HTTPMetricsWithMeter(mp.Meter("test"), nil))
	router.GET("/api/v1/items/:id", func(c *gin.Context) {
		c.String(http.StatusOK, "item")
	})
	router.POST("/api/v1/items", func(c *gin.Context) {
		c.String(http.StatusUnprocessableEntity, "bad")
	})
	return router, reader
}

func TestHTTPMetrics_NilProviderPassesThrough(t *testing.T) {
	router := newTestRouter(HTTPMetrics(nil, nil))
	w := serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPMetricsWithMeter_CountsByRouteAndStatus(t *testing.T) {
	router, reader := newMeteredRouter(t)

	serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/items/1", nil))
	serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/items/2", nil))
	serve(router, httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader(`{"code":"X"}`)))
	serve(router, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	rm := collectMetrics(t, reader)
	total := findMetricByName(rm, "http_server_request_total")
	require.NotNil(t, total)
	sum, ok := total.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	counts := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		route, _ := dp.Attributes.Value(attribute.Key("http.route"))
		method, _ := dp.Attributes.Value(attribute.Key("http.method"))
		counts[method.AsString()+" "+route.AsString()] += dp.Value
	}
	assert.Equal(t, int64(2), counts["GET /api/v1/items/:id"])
	assert.Equal(t, int64(1), counts["POST /api/v1/items"])
	assert.Equal(t, int64(1), counts["GET unmatched"])
}

func TestHTTPMetricsWithMeter_DurationAndSizes(t *testing.T) {
	router, reader := newMeteredRouter(t)

	serve(router, httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader(`{"code":"X"}`)))

	rm := collectMetrics(t, reader)
	for _, name := range []string{
		"http_server_request_duration_seconds",
		"http_server_request_size_bytes",
		"http_server_response_size_bytes",
	} {
		m := findMetricByName(rm, name)
		require.NotNil(t, m, name)
		hist, ok := m.Data.(metricdata.Histogram[float64])
		require.True(t, ok, name)
		require.Len(t, hist.DataPoints, 1, name)
		assert.Equal(t, uint64(1), hist.DataPoints[0].Count, name)
	}

	active := findMetricByName(rm, "http_server_active_requests")
	require.NotNil(t, active)
	sum, ok := active.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Zero(t, sum.DataPoints[0].Value)
}

func TestRoutePattern(t *testing.T) {
	router := gin.New()
	var got string
	router.GET("/api/v1/returns/:id", func(c *gin.Context) { got = routePattern(c) })

	serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/returns/abc", nil))
	assert.Equal(t, "/api/v1/returns/:id", got)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/raw", nil)
	assert.Equal(t, "unmatched", routePattern(c))
}
