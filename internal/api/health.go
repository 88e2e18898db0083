package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 2 * time.Second

type healthResponse struct {
	Status string            `json:"status"`
	Failed map[string]string `json:"failed,omitempty"`
}

// healthHandler reports 200 when every dependency answers and 503 otherwise.
func healthHandler(checks map[string]func(context.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				slog.Warn("api: health check failed", "component", name, "error", err)
				if resp.Failed == nil {
					resp.Failed = make(map[string]string)
				}
				resp.Failed[name] = err.Error()
			}
		}
		if len(resp.Failed) > 0 {
			resp.Status = "degraded"
			return c.JSON(http.StatusServiceUnavailable, resp)
		}
		return c.JSON(http.StatusOK, resp)
	}
}
