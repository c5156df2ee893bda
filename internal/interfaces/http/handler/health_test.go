package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rentalcore/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
)

func healthRouter(h *HealthHandler) *gin.Engine {
	r := gin.New()
	r.GET("/health", h.Check)
	return r
}

func TestHealthHandler_Check(t *testing.T) {
	t.Run("no checks", func(t *testing.T) {
		rec := testutil.RunHTTPTestCase(t, healthRouter(NewHealthHandler("1.2.3")), testutil.HTTPTestCase{
			Path:           "/health",
			ExpectedStatus: http.StatusOK,
		})
		data := testutil.JSONData[HealthData](t, rec)
		assert.Equal(t, "ok", data.Status)
		assert.Equal(t, "1.2.3", data.Version)
		assert.Empty(t, data.Checks)
		assert.NotEmpty(t, data.Duration)
	})

	t.Run("all dependencies healthy", func(t *testing.T) {
		h := NewHealthHandler("dev").
			WithCheck("database", func(context.Context) error { return nil }).
			WithCheck("idempotency", func(context.Context) error { return nil })

		rec := testutil.RunHTTPTestCase(t, healthRouter(h), testutil.HTTPTestCase{
			Path:           "/health",
			ExpectedStatus: http.StatusOK,
		})
		data := testutil.JSONData[HealthData](t, rec)
		assert.Equal(t, map[string]string{"database": "ok", "idempotency": "ok"}, data.Checks)
	})

	t.Run("a failing dependency degrades the service", func(t *testing.T) {
		h := NewHealthHandler("dev").
			WithCheck("database", func(context.Context) error { return errors.New("connection refused") }).
			WithCheck("idempotency", func(context.Context) error { return nil })

		rec := testutil.RunHTTPTestCase(t, healthRouter(h), testutil.HTTPTestCase{
			Path:           "/health",
			ExpectedStatus: http.StatusServiceUnavailable,
			Validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				data := testutil.JSONResponse(t, rec)["data"].(map[string]any)
				assert.Equal(t, "degraded", data["status"])
			},
		})
		assert.Contains(t, rec.Body.String(), "error: connection refused")
	})

	t.Run("checks are bounded by the timeout", func(t *testing.T) {
		h := NewHealthHandler("dev").
			WithTimeout(20 * time.Millisecond).
			WithCheck("slow", func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			})

		start := time.Now()
		testutil.RunHTTPTestCase(t, healthRouter(h), testutil.HTTPTestCase{
			Path:           "/health",
			ExpectedStatus: http.StatusServiceUnavailable,
		})
		assert.Less(t, time.Since(start), time.Second)
	})
}
