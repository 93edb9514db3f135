package apperrors

import (
	"fmt"
	"net/http"

	"github.com/arbdesk/arbgate/internal/validate"
)

type ErrorType string

const (
	ErrValidation    ErrorType = "VALIDATION_FAILED"
	ErrAuthFailed    ErrorType = "AUTH_FAILED"
	ErrRateLimited   ErrorType = "RATE_LIMITED"
	ErrTradingHalted ErrorType = "TRADING_HALTED"
	ErrNotFound      ErrorType = "NOT_FOUND"
	ErrInternal      ErrorType = "INTERNAL_ERROR"
)

// FieldError is a single field-level validation violation.
type FieldError = validate.FieldError

// AppError is the standard error struct for the application
type AppError struct {
	Type       ErrorType    `json:"code"`
	Message    string       `json:"message"`
	Details    []FieldError `json:"details,omitempty"`
	HTTPStatus int          `json:"-"`
	Cause      error        `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    msg,
		Cause:      cause,
		HTTPStatus: mapTypeToStatus(errType),
	}
}

// NewValidation carries the complete violation list so the caller can fix
// everything in one round trip.
func NewValidation(details []FieldError) *AppError {
	e := New(ErrValidation, "validation failed", nil)
	e.Details = details
	return e
}

func NewAuthFailed(msg string) *AppError {
	return New(ErrAuthFailed, msg, nil)
}

func NewTradingHalted(reason string) *AppError {
	msg := "trading halted by kill switch"
	if reason != "" {
		msg = msg + ": " + reason
	}
	return New(ErrTradingHalted, msg, nil)
}

func NewNotFound(msg string) *AppError {
	return New(ErrNotFound, msg, nil)
}

func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return New(ErrInternal, err.Error(), err)
}

func mapTypeToStatus(t ErrorType) int {
	switch t {
	case ErrValidation:
		return http.StatusBadRequest
	case ErrAuthFailed:
		return http.StatusUnauthorized
	case ErrRateLimited:
		return http.StatusTooManyRequests
	case ErrTradingHalted:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
