package api

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// idParam parses a snowflake path parameter.
func idParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// optionalID parses a snowflake query value. An empty value is nil.
func optionalID(raw string) (*int64, bool) {
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, false
	}
	return &id, true
}
