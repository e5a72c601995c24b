package handler

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/deppfellow/querybuilder/internal/middleware"
	"github.com/deppfellow/querybuilder/internal/server"
	"github.com/labstack/echo/v4"
)

// HealthHandler serves the status endpoint used by load balancers and
// uptime monitors.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth runs the configured dependency checks. It returns 200 when
// every check passes and 503 otherwise. With health checks disabled only
// liveness is reported.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := make(map[string]any)
	response := map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	isHealthy := true
	healthChecks := h.server.Config.Observability.HealthChecks

	if healthChecks.Enabled && slices.Contains(healthChecks.Checks, "store") {
		timeout := healthChecks.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
		defer cancel()

		storeStart := time.Now()

		if err := h.server.Store.Ping(ctx); err != nil {
			checks["store"] = map[string]any{
				"status":        "unhealthy",
				"driver":        h.server.Store.Name(),
				"response_time": time.Since(storeStart).String(),
				"error":         err.Error(),
			}

			isHealthy = false

			logger.Error().
				Err(err).
				Str("driver", h.server.Store.Name()).
				Dur("response_time", time.Since(storeStart)).
				Msg("store health check failed")

			h.recordHealthCheckError(map[string]any{
				"check_type":       "store",
				"operation":        "health_check",
				"error_type":       "store_unhealthy",
				"driver":           h.server.Store.Name(),
				"response_time_ms": time.Since(storeStart).Milliseconds(),
				"error_message":    err.Error(),
			})
		} else {
			checks["store"] = map[string]any{
				"status":        "healthy",
				"driver":        h.server.Store.Name(),
				"response_time": time.Since(storeStart).String(),
			}

			logger.Debug().
				Dur("response_time", time.Since(storeStart)).
				Msg("store health check passed")
		}
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordHealthCheckError(map[string]any{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	if err := c.JSON(http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON response")
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

// recordHealthCheckError sends a New Relic custom event when APM is on.
func (h *HealthHandler) recordHealthCheckError(attributes map[string]any) {
	if app := h.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("HealthCheckError", attributes)
	}
}
