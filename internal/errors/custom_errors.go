package errors

import (
	stderrors "errors"
	"fmt"
)

// Sentinel kinds. Services wrap them with fmt.Errorf("...: %w", ...) and
// MapError picks the HTTP response with errors.Is.
var (
	ErrNotFound            = stderrors.New("not found")
	ErrForbidden           = stderrors.New("forbidden")
	ErrConflict            = stderrors.New("conflict")
	ErrUpstreamUnavailable = stderrors.New("upstream unavailable")
	ErrInvalidInput        = stderrors.New("invalid input")
	ErrUnauthorized        = stderrors.New("unauthorized")

	ErrAlreadyFavorited = fmt.Errorf("listing already favorited: %w", ErrConflict)
	ErrNotFavorited     = fmt.Errorf("listing not in favorites: %w", ErrConflict)
	ErrEmailTaken       = fmt.Errorf("email already registered: %w", ErrConflict)
)

// AppError represents a structured application error with user-friendly and technical details.
type AppError struct {
	TechnicalMessage string
	UserMessage      string
	Code             string
	HTTPStatus       int
	OriginalError    error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %v", e.UserMessage, e.OriginalError)
}

// Unwrap returns the original error for error chaining.
func (e *AppError) Unwrap() error {
	return e.OriginalError
}

func NewAppError(technicalMessage, userMessage, code string, status int, originalErr error) *AppError {
	return &AppError{
		TechnicalMessage: technicalMessage,
		UserMessage:      userMessage,
		Code:             code,
		HTTPStatus:       status,
		OriginalError:    originalErr,
	}
}

// InvalidInput wraps a validation failure message in ErrInvalidInput.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}

// Upstream wraps a store failure in ErrUpstreamUnavailable.
func Upstream(operation string, err error) error {
	return fmt.Errorf("%s: %v: %w", operation, err, ErrUpstreamUnavailable)
}

// Common error codes
const (
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeListingNotFound    = "LISTING_NOT_FOUND"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeAlreadyFavorited   = "ALREADY_FAVORITED"
	ErrCodeNotFavorited       = "NOT_FAVORITED"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeInvalidParameters  = "INVALID_PARAMETERS"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)
