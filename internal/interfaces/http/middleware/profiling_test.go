package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rentalcore/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
)

func labelsOf(ctx context.Context) map[string]string {
	out := make(map[string]string)
	pprof.ForLabels(ctx, func(key, value string) bool {
		out[key] = value
		return true
	})
	return out
}

func TestProfiling(t *testing.T) {
	var labels map[string]string
	capture := func(c *gin.Context) {
		labels = labelsOf(c.Request.Context())
		c.Status(http.StatusOK)
	}

	newRouter := func(enabled bool) *gin.Engine {
		router := gin.New()
		router.Use(Profiling(enabled))
		router.POST("/api/v1/units/:id/rent-out", capture)
		router.GET("/health", capture)
		return router
	}

	t.Run("labels requests by route and resource", func(t *testing.T) {
		w := serve(newRouter(true), httptest.NewRequest(http.MethodPost, "/api/v1/units/9/rent-out", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "/api/v1/units/:id/rent-out", labels[telemetry.ProfilingLabelRoute])
		assert.Equal(t, http.MethodPost, labels[telemetry.ProfilingLabelMethod])
		assert.Equal(t, "units", labels[ProfilingLabelResource])
	})

	t.Run("health is not labelled", func(t *testing.T) {
		serve(newRouter(true), httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Empty(t, labels)
	})

	t.Run("disabled", func(t *testing.T) {
		serve(newRouter(false), httptest.NewRequest(http.MethodPost, "/api/v1/units/9/rent-out", nil))
		assert.Empty(t, labels)
	})
}

func TestResourceFromRoute(t *testing.T) {
	tests := map[string]string{
		"/api/v1/units/:id/rent-out":      "units",
		"/api/v2/transactions/number/:no": "transactions",
		"/api/v1/stock/low":               "stock",
		"/api/v1/:id":                     "",
		"/":                               "",
		"/vacation":                       "vacation",
	}
	for route, want := range tests {
		assert.Equal(t, want, resourceFromRoute(route), route)
	}
}

func TestIsVersionSegment(t *testing.T) {
	assert.True(t, isVersionSegment("v1"))
	assert.True(t, isVersionSegment("V12"))
	assert.False(t, isVersionSegment("v"))
	assert.False(t, isVersionSegment("vx"))
	assert.False(t, isVersionSegment("items"))
}
