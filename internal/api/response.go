package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/victorivanov/parley/internal/service"
)

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message. Fields is set for
// validation failures and maps request fields to what is wrong with them.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Error sends a JSON error response.
func Error(c echo.Context, status int, code, message string) error {
	return c.JSON(status, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message},
	})
}

// successJSON sends a JSON success response with a data envelope. A nil
// data value renders as null: reads the caller may not see look empty.
func successJSON(c echo.Context, status int, data any) error {
	return c.JSON(status, map[string]any{"data": data})
}

var statusBySentinel = []struct {
	err    error
	status int
}{
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{service.ErrBadRequest, http.StatusBadRequest},
	{service.ErrConflict, http.StatusConflict},
	{service.ErrValidation, http.StatusUnprocessableEntity},
}

// mapServiceError writes the error envelope for an error returned by a service.
func mapServiceError(c echo.Context, err error) error {
	var svcErr *service.ServiceError
	if !errors.As(err, &svcErr) {
		slog.Error("api: unhandled error", "path", c.Path(), "error", err)
		return Error(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}

	status := http.StatusInternalServerError
	for _, s := range statusBySentinel {
		if errors.Is(svcErr, s.err) {
			status = s.status
			break
		}
	}
	return c.JSON(status, ErrorResponse{Error: ErrorDetail{
		Code:    svcErr.Code,
		Message: svcErr.Message,
		Fields:  svcErr.Fields,
	}})
}

// HTTPErrorHandler renders errors that escape handlers, such as routing
// misses and middleware rejections, in the standard envelope.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		_ = mapServiceError(c, err)
		return
	}
	message := http.StatusText(he.Code)
	if m, ok := he.Message.(string); ok {
		message = m
	}
	code := "HTTP_ERROR"
	switch he.Code {
	case http.StatusNotFound:
		code = "NOT_FOUND"
	case http.StatusUnauthorized:
		code = "UNAUTHORIZED"
	case http.StatusMethodNotAllowed:
		code = "METHOD_NOT_ALLOWED"
	case http.StatusInternalServerError:
		code = "INTERNAL"
	}
	_ = Error(c, he.Code, code, message)
}
