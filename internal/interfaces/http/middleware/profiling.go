package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rentalcore/backend/internal/infrastructure/telemetry"
)

// ProfilingLabelResource names the API resource in profiling labels
const ProfilingLabelResource = "resource"

// Profiling runs each request under pprof labels (route, method and
// resource) so Pyroscope can slice CPU profiles by endpoint
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || route == "/health" || strings.HasPrefix(route, "/swagger") {
			c.Next()
			return
		}

		labels := telemetry.HTTPRequestLabels(route, c.Request.Method)
		if resource := resourceFromRoute(route); resource != "" {
			labels[ProfilingLabelResource] = resource
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// resourceFromRoute returns the first static segment after the API
// version: "/api/v1/units/:id/rent-out" -> "units"
func resourceFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		if part == "" || part == "api" || isVersionSegment(part) {
			continue
		}
		if strings.HasPrefix(part, ":") || strings.HasPrefix(part, "*") {
			return ""
		}
		return part
	}
	return ""
}

func isVersionSegment(segment string) bool {
	if len(segment) < 2 || (segment[0] != 'v' && segment[0] != 'V') {
		return false
	}
	for i := 1; i < len(segment); i++ {
		if segment[i] < '0' || segment[i] > '9' {
			return false
		}
	}
	return true
}
