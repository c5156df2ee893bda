package handler

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rentalcore/backend/internal/interfaces/http/dto"
)

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

// HealthHandler reports service liveness plus the state of its dependencies
type HealthHandler struct {
	BaseHandler
	version string
	timeout time.Duration
	checks  map[string]HealthCheck
}

// NewHealthHandler creates a HealthHandler with no dependency checks
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version: version,
		timeout: 2 * time.Second,
		checks:  make(map[string]HealthCheck),
	}
}

// WithCheck registers a named dependency check
func (h *HealthHandler) WithCheck(name string, check HealthCheck) *HealthHandler {
	h.checks[name] = check
	return h
}

// WithTimeout bounds the time all checks may take together
func (h *HealthHandler) WithTimeout(d time.Duration) *HealthHandler {
	if d > 0 {
		h.timeout = d
	}
	return h
}

// Check godoc
// @ID           getHealth
// @Summary      Health check
// @Description  Reports service health and the result of every dependency check
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[HealthData]
// @Failure      503 {object} APIResponse[HealthData]
// @Router       /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]string, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, check HealthCheck) {
			defer wg.Done()
			if err := check(ctx); err != nil {
				results[i] = "error: " + err.Error()
				return
			}
			results[i] = "ok"
		}(i, h.checks[name])
	}
	wg.Wait()

	data := HealthData{
		Status:  "ok",
		Version: h.version,
	}
	if len(names) > 0 {
		data.Checks = make(map[string]string, len(names))
	}
	for i, name := range names {
		data.Checks[name] = results[i]
		if results[i] != "ok" {
			data.Status = "degraded"
		}
	}
	data.Duration = time.Since(start).Round(time.Microsecond).String()

	status := http.StatusOK
	if data.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, dto.NewSuccessResponse(data))
}
