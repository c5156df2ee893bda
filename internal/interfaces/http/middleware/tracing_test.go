package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return sr
}

func newTracedRouter(cfg TracingConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), Tracing(cfg), ActorAuth(DefaultAuthConfig(nil, nil)), IdempotencyKey(), SpanAttributes())
	router.GET("/api/v1/units/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/v1/fail", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.Status(http.StatusInternalServerError)
	})
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/swagger/index.html", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTracing_Disabled(t *testing.T) {
	sr := setupTestTracer(t)
	router := newTracedRouter(TracingConfig{Enabled: false})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/units/42", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_RecordsRouteAndCaller(t *testing.T) {
	sr := setupTestTracer(t)
	router := newTracedRouter(TracingConfig{ServiceName: "rental-api", Enabled: true})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/units/42", nil)
	req.Header.Set(HeaderRequestID, "rid-7")
	req.Header.Set(HeaderActor, "clerk-3")
	req.Header.Set(HeaderIdempotencyKey, "k-1")
	serve(router, req)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Contains(t, span.Name(), "/api/v1/units/:id")

	attrs := spanAttrs(span)
	assert.Equal(t, "rid-7", attrs["request_id"].AsString())
	assert.Equal(t, "clerk-3", attrs["actor"].AsString())
	assert.True(t, attrs["idempotent"].AsBool())
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestTracing_ServerErrorMarksSpan(t *testing.T) {
	sr := setupTestTracer(t)
	router := newTracedRouter(TracingConfig{Enabled: true})

	serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/fail", nil))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spanAttrs(spans[0])["errors"].AsStringSlice(), assert.AnError.Error())
}

func TestTracing_SkipsHealthAndPrefixes(t *testing.T) {
	sr := setupTestTracer(t)
	router := newTracedRouter(TracingConfig{Enabled: true, SkipPathPrefixes: []string{"/swagger"}})

	serve(router, httptest.NewRequest(http.MethodGet, "/health", nil))
	serve(router, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))

	assert.Empty(t, sr.Ended())
}
