package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Request errors
	ErrorTypeValidation ErrorType = "VALIDATION"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeRateLimit  ErrorType = "RATE_LIMIT"

	// Application errors
	ErrorTypeInternal    ErrorType = "INTERNAL"
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"

	// Upstream errors
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// Error codes carried by AppError.Code.
const (
	CodeUserNotFound     = "USER_NOT_FOUND"
	CodeInvalidUsername  = "INVALID_USERNAME"
	CodeSourcesExhausted = "SOURCES_EXHAUSTED"
	CodeIdentityCheck    = "IDENTITY_CHECK_FAILED"
	CodeCacheUnavailable = "CACHE_UNAVAILABLE"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return b.String()
}

func newAppError(t ErrorType, status int, message string) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		HTTPStatus: status,
		StackTrace: captureStackTrace(),
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, fmt.Sprintf("%s not found", resource))
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message)
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(limit int, window string) *AppError {
	return newAppError(ErrorTypeRateLimit, http.StatusTooManyRequests,
		fmt.Sprintf("rate limit exceeded: %d requests per %s", limit, window))
}

// NewUnavailableError creates a service unavailable error
func NewUnavailableError(service string) *AppError {
	return newAppError(ErrorTypeUnavailable, http.StatusServiceUnavailable,
		fmt.Sprintf("service '%s' is unavailable", service))
}

// NewUserNotFoundError reports a GitHub user that does not exist.
func NewUserNotFoundError(username string) *AppError {
	return NewNotFoundError(fmt.Sprintf("GitHub user '%s'", username)).WithCode(CodeUserNotFound)
}

// NewInvalidUsernameError reports a missing or malformed username parameter.
func NewInvalidUsernameError(message string) *AppError {
	return NewValidationError(message).WithCode(CodeInvalidUsername)
}

// NewSourcesExhaustedError reports that no acquisition source produced data.
// It surfaces as a server error.
func NewSourcesExhaustedError(cause error) *AppError {
	return NewInternalError("unable to fetch GitHub contributions").
		WithCode(CodeSourcesExhausted).
		WithCause(cause)
}

// NewIdentityCheckError reports a user lookup that failed for a reason other
// than the user not existing.
func NewIdentityCheckError(cause error) *AppError {
	return NewInternalError("unable to verify GitHub user").
		WithCode(CodeIdentityCheck).
		WithCause(cause)
}

// NewCacheUnavailableError reports a failed cache read or write. It is never
// returned to clients; callers log it and carry on without the cache.
func NewCacheUnavailableError(operation string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeUnavailable,
		Message:    fmt.Sprintf("response cache %s failed", operation),
		Code:       CodeCacheUnavailable,
		Cause:      cause,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// Helper functions

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsInternal checks if an error is an internal error
func IsInternal(err error) bool {
	return IsType(err, ErrorTypeInternal)
}

// HasCode checks if an error carries the given code
func HasCode(err error, code string) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}
