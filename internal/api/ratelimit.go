package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/victorivanov/parley/internal/redis"
)

// RateLimitMiddleware creates per-IP (unauthenticated) or per-user (authenticated)
// rate limiting using Redis. Sets standard rate limit response headers.
func RateLimitMiddleware(redisClient *redis.Client, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var key string
			if uid, ok := c.Get("user_id").(int64); ok {
				key = fmt.Sprintf("rl:user:%d:%s", uid, c.Path())
			} else {
				key = fmt.Sprintf("rl:ip:%s:%s", c.RealIP(), c.Path())
			}

			rl, err := redisClient.CheckRateLimit(c.Request().Context(), key, limit, window)
			if err != nil {
				// Fail open.
				slog.Warn("api: rate limit check failed", "key", key, "error", err)
				return next(c)
			}

			remaining := max(int64(limit)-rl.Count, 0)
			resetAt := time.Now().Add(rl.ResetIn).Unix()

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			c.Response().Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))

			if !rl.Allowed {
				retryAfter := int64((rl.ResetIn + time.Second - 1) / time.Second)
				c.Response().Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
				return Error(c, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests, please try again later")
			}

			return next(c)
		}
	}
}
