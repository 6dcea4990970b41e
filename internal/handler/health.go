package handler

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/deppfellow/adboard/internal/middleware"
	"github.com/deppfellow/adboard/internal/server"
	"github.com/labstack/echo/v4"
)

const (
	healthStatusHealthy   = "healthy"
	healthStatusUnhealthy = "unhealthy"

	checkDatabase = "database"
)

// HealthResponse is the body of GET /status.
type HealthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]CheckResult `json:"checks"`
}

// CheckResult reports a single dependency check.
type CheckResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// HealthHandler exposes the endpoint load balancers and uptime monitors poll.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth pings the database and returns 200 when it answers, 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := HealthResponse{
		Status:      healthStatusHealthy,
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      make(map[string]CheckResult),
	}

	if h.checkEnabled(checkDatabase) {
		timeout := h.server.Config.Observability.HealthChecks.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
		defer cancel()

		dbStart := time.Now()
		if err := h.server.DB.Ping(ctx); err != nil {
			response.Checks[checkDatabase] = CheckResult{
				Status:       healthStatusUnhealthy,
				ResponseTime: time.Since(dbStart).String(),
				Error:        err.Error(),
			}
			response.Status = healthStatusUnhealthy

			logger.Error().
				Err(err).
				Dur("response_time", time.Since(dbStart)).
				Msg("database health check failed")

			if app := h.server.LoggerService.GetApplication(); app != nil {
				app.RecordCustomEvent("HealthCheckError", map[string]any{
					"check_type":       checkDatabase,
					"operation":        "health_check",
					"error_type":       "database_unhealthy",
					"response_time_ms": time.Since(dbStart).Milliseconds(),
					"error_message":    err.Error(),
				})
			}
		} else {
			response.Checks[checkDatabase] = CheckResult{
				Status:       healthStatusHealthy,
				ResponseTime: time.Since(dbStart).String(),
			}
		}
	}

	if response.Status != healthStatusHealthy {
		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}
	return nil
}

// checkEnabled reports whether name is among the configured checks.
// Disabled health checks or an empty list run the database check only.
func (h *HealthHandler) checkEnabled(name string) bool {
	cfg := h.server.Config.Observability.HealthChecks
	if !cfg.Enabled || len(cfg.Checks) == 0 {
		return name == checkDatabase
	}
	return slices.Contains(cfg.Checks, name)
}
