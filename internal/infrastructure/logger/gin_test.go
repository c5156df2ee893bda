package logger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedRouter(t *testing.T, level zapcore.Level) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(level)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(GinRequestIDKey, "req-123")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	return router, recorded
}

func httpLogEntry(t *testing.T, recorded *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	entries := recorded.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	return entries[0]
}

func TestGinMiddleware(t *testing.T) {
	router, recorded := newObservedRouter(t, zapcore.InfoLevel)
	router.GET("/api/v1/items/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/items/42?expand=units", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	entry := httpLogEntry(t, recorded)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/api/v1/items/42", fields["path"])
	assert.Equal(t, "/api/v1/items/:id", fields["route"])
	assert.Equal(t, "expand=units", fields["query"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.NotContains(t, fields, "actor")
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		want   zapcore.Level
	}{
		{http.StatusCreated, zapcore.InfoLevel},
		{http.StatusConflict, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			router, recorded := newObservedRouter(t, zapcore.DebugLevel)
			router.POST("/x", func(c *gin.Context) {
				if tt.status >= 500 {
					_ = c.Error(assert.AnError)
				}
				c.Status(tt.status)
			})

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/x", nil))
			entry := httpLogEntry(t, recorded)
			assert.Equal(t, tt.want, entry.Level)
			if tt.status >= 500 {
				assert.Contains(t, entry.ContextMap(), "errors")
			}
		})
	}
}

func TestGinMiddleware_PropagatesLoggerToRequestContext(t *testing.T) {
	router, recorded := newObservedRouter(t, zapcore.InfoLevel)
	router.Use(func(c *gin.Context) {
		ctx := shared.WithActor(c.Request.Context(), "clerk-9")
		ctx = WithIdempotencyKey(ctx, "idem-1")
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	router.GET("/x", func(c *gin.Context) {
		ctx := c.Request.Context()
		assert.Equal(t, "req-123", GetRequestID(ctx))
		FromContext(ctx).Info("inside handler")
		c.Status(http.StatusNoContent)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	inner := recorded.FilterMessage("inside handler").All()
	require.Len(t, inner, 1)
	assert.Equal(t, "req-123", inner[0].ContextMap()["request_id"])

	fields := httpLogEntry(t, recorded).ContextMap()
	assert.Equal(t, "clerk-9", fields["actor"])
	assert.Equal(t, "idem-1", fields["idempotency_key"])
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(GinRequestIDKey, "req-panic")
		c.Next()
	})
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code      string `json:"code"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.Equal(t, "req-panic", body.Error.RequestID)

	logs := recorded.FilterMessage("Panic recovered").All()
	require.Len(t, logs, 1)
	assert.Equal(t, "test panic", logs[0].ContextMap()["error"])
}

func TestGetGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))

	custom := zap.NewExample()
	c.Set(GinLoggerKey, custom)
	assert.Same(t, custom, GetGinLogger(c))

	c.Set(GinLoggerKey, "not a logger")
	assert.NotNil(t, GetGinLogger(c))
}
