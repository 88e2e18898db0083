package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const userIDKey = "user_id"

// Middleware rejects requests without a valid "Bearer <token>" Authorization
// header and stores the caller's user id in the Echo context.
func (ts *TokenService) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims, err := ts.ValidateAccessToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			SetUserID(c, claims.UserID)
			return next(c)
		}
	}
}

func SetUserID(c echo.Context, userID int64) {
	c.Set(userIDKey, userID)
}

// GetUserID returns the authenticated user id, or 0 outside Middleware.
func GetUserID(c echo.Context) int64 {
	id, _ := c.Get(userIDKey).(int64)
	return id
}
