package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/connectfood/core/internal/domain"
)

type AppError struct {
	Code       string              `json:"code"`
	Message    string              `json:"message"`
	Details    []domain.FieldError `json:"details,omitempty"`
	StatusCode int                 `json:"-"`
	Err        error               `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func VersionConflict() *AppError {
	return &AppError{
		Code:       "VERSION_CONFLICT",
		Message:    "resource was modified concurrently, reload and retry",
		StatusCode: http.StatusConflict,
	}
}

func Validation(fields []domain.FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    "validation failed",
		Details:    fields,
		StatusCode: http.StatusBadRequest,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "an internal error occurred",
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// FromDomain translates a service-layer error into the AppError reported to
// clients. Errors that already are AppErrors pass through unchanged and
// anything unrecognised becomes an internal error.
func FromDomain(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return Validation(ve.Fields)
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return NotFound("user")
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return &AppError{Code: "EMAIL_EXISTS", Message: domain.ErrEmailAlreadyExists.Error(), StatusCode: http.StatusConflict, Err: err}
	case errors.Is(err, domain.ErrLoginAlreadyExists):
		return &AppError{Code: "LOGIN_EXISTS", Message: domain.ErrLoginAlreadyExists.Error(), StatusCode: http.StatusConflict, Err: err}
	case errors.Is(err, domain.ErrVersionConflict):
		return VersionConflict()
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrTokenInvalid):
		return Unauthorized("authentication required")
	case errors.Is(err, domain.ErrForbidden):
		return Forbidden("access denied")
	case errors.Is(err, domain.ErrEmptyRoles), errors.Is(err, domain.ErrUnknownRole):
		return Validation([]domain.FieldError{{Field: "roles", Message: err.Error()}})
	default:
		return Internal(err)
	}
}
