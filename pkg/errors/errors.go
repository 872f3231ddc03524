package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the broad category of an error
type ErrorType string

const (
	// Domain errors
	ErrorTypeValidation   ErrorType = "VALIDATION"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"

	// Application errors
	ErrorTypeInternal  ErrorType = "INTERNAL"
	ErrorTypeRateLimit ErrorType = "RATE_LIMIT"

	// Infrastructure errors
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// Wire-contract error codes for the exploration engine.
// These codes are part of the public API and must stay stable.
const (
	CodeResourceNotFound        = "RESOURCE_NOT_FOUND"
	CodeDepthUnauthorized       = "DEPTH_UNAUTHORIZED"
	CodeRateLimitExceeded       = "RATE_LIMIT_EXCEEDED"
	CodePathfindingUnauthorized = "PATHFINDING_UNAUTHORIZED"
	CodeNoPathExists            = "NO_PATH_EXISTS"
	CodeQueryTooExpensive       = "QUERY_TOO_EXPENSIVE"
	CodeInvalidQuery            = "INVALID_QUERY"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
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

// Constructor functions for the engine's error codes

// NewResourceNotFoundError reports a node id absent from the graph snapshot
func NewResourceNotFoundError(resource, id string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       CodeResourceNotFound,
		Message:    fmt.Sprintf("%s '%s' not found in graph", resource, id),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewDepthUnauthorizedError reports a requested depth above the agent's tier
func NewDepthUnauthorizedError(reason string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       CodeDepthUnauthorized,
		Message:    reason,
		Details:    details,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewRateLimitExceededError reports an exhausted per-agent quota window
func NewRateLimitExceededError(message string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimit,
		Code:       CodeRateLimitExceeded,
		Message:    message,
		Details:    details,
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// NewPathfindingUnauthorizedError reports an agent tier without pathfinding access
func NewPathfindingUnauthorizedError(tier string) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       CodePathfindingUnauthorized,
		Message:    fmt.Sprintf("tier '%s' is not authorized for pathfinding", tier),
		Details:    map[string]interface{}{"tier": tier},
		HTTPStatus: http.StatusForbidden,
	}
}

// NewNoPathExistsError reports that Dijkstra terminated without reaching the target
func NewNoPathExistsError(from, to string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       CodeNoPathExists,
		Message:    fmt.Sprintf("no path exists from '%s' to '%s'", from, to),
		Details:    map[string]interface{}{"from": from, "to": to},
		HTTPStatus: http.StatusNotFound,
	}
}

// NewQueryTooExpensiveError reports a cost-vetoed query
func NewQueryTooExpensiveError(reason string) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       CodeQueryTooExpensive,
		Message:    reason,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewInvalidQueryError reports a malformed query or an unusable graph snapshot
func NewInvalidQueryError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       CodeInvalidQuery,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL",
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewExternalError creates an external collaborator error
func NewExternalError(service string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       "EXTERNAL",
		Message:    fmt.Sprintf("external service '%s' error", service),
		Cause:      err,
		HTTPStatus: http.StatusBadGateway,
	}
}

// Helper functions

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// HasCode checks if an error carries a specific wire code
func HasCode(err error, code string) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeNotFound
}

// IsRateLimit checks if an error is a rate limit error
func IsRateLimit(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeRateLimit
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, add context to message
	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}

	return NewInternalError(message).WithCause(err)
}
