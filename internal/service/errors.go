package service

import (
	"errors"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal")
	ErrValidation   = errors.New("validation")
)

// ServiceError wraps a sentinel error with a specific code and message for the handler to use.
type ServiceError struct {
	Err     error
	Code    string
	Message string
	// Fields maps request field names to what is wrong with them.
	Fields map[string]string
}

func (e *ServiceError) Error() string { return e.Message }
func (e *ServiceError) Unwrap() error { return e.Err }

func NewError(sentinel error, code, message string) *ServiceError {
	return &ServiceError{Err: sentinel, Code: code, Message: message}
}

func NotFound(code, message string) *ServiceError {
	return NewError(ErrNotFound, code, message)
}

func Forbidden(code, message string) *ServiceError {
	return NewError(ErrForbidden, code, message)
}

func BadRequest(code, message string) *ServiceError {
	return NewError(ErrBadRequest, code, message)
}

func Conflict(code, message string) *ServiceError {
	return NewError(ErrConflict, code, message)
}

func Unauthorized(code, message string) *ServiceError {
	return NewError(ErrUnauthorized, code, message)
}

func Internal(code, message string) *ServiceError {
	return NewError(ErrInternal, code, message)
}

// internalError logs the underlying failure and hides it from the caller.
func internalError(op string, err error) *ServiceError {
	slog.Error("service: "+op, "error", err)
	return Internal("INTERNAL", "internal server error")
}

// Validation converts ozzo-validation errors into a ServiceError with
// per-field messages. Errors of any other kind become Internal.
func Validation(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		var internal validation.InternalError
		if errors.As(err, &internal) {
			return internalError("validate", err)
		}
		return &ServiceError{Err: ErrValidation, Code: "VALIDATION_FAILED", Message: err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for name, fe := range verrs {
		fields[name] = fe.Error()
	}
	return &ServiceError{
		Err:     ErrValidation,
		Code:    "VALIDATION_FAILED",
		Message: "request validation failed",
		Fields:  fields,
	}
}
