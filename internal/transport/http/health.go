package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	env     string
	checks  map[string]HealthCheck
	timeout time.Duration
}

func NewHealthHandler(env string, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{env: env, checks: checks, timeout: 5 * time.Second}
}

type checkResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type healthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]checkResult `json:"checks"`
}

// CheckHealth returns 200 when every dependency answers, 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	resp := healthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: h.env,
		Checks:      make(map[string]checkResult, len(h.checks)),
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		start := time.Now()
		result := checkResult{Status: "healthy"}
		if err := h.checks[name](ctx); err != nil {
			result.Status = "unhealthy"
			result.Error = err.Error()
			resp.Status = "unhealthy"
			GetLogger(c).Error().Err(err).Str("check", name).Msg("health check failed")
		}
		result.ResponseTime = time.Since(start).String()
		resp.Checks[name] = result
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, resp)
}
