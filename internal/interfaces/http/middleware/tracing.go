package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// SkipPathPrefixes are not traced
	SkipPathPrefixes []string
}

// Tracing wraps otelgin. Spans are named "METHOD /route/:param" and carry
// the request id; server errors mark the span as failed.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	skip := cfg.SkipPathPrefixes
	return otelgin.Middleware(cfg.ServiceName,
		otelgin.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health" && !skipped(r.URL.Path, nil, skip)
		}),
	)
}

// SpanAttributes enriches the request span once the actor is known and
// records the outcome after the handler ran. Place it after ActorAuth.
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		if id := GetRequestID(c); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}
		if actor := GetActor(c); actor != "" {
			span.SetAttributes(attribute.String("actor", actor))
		}
		if key := GetIdempotencyKey(c); key != "" {
			span.SetAttributes(attribute.Bool("idempotent", true))
		}

		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		if len(c.Errors) > 0 {
			span.SetAttributes(attribute.StringSlice("errors", c.Errors.Errors()))
		}
	}
}
