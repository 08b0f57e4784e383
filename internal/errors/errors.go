package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	// CategoryAuthorization represents 401/403 responses; the session must be cleared
	CategoryAuthorization ErrorCategory = "authorization"
	// CategoryValidation represents rejected input (400/422 or a missing field)
	CategoryValidation ErrorCategory = "validation"
	// CategoryNetwork represents an unreachable or timed-out backend
	CategoryNetwork ErrorCategory = "network"
	// CategoryConflict represents conflict errors
	CategoryConflict ErrorCategory = "conflict"
	// CategoryNotFound represents not found errors
	CategoryNotFound ErrorCategory = "not_found"
	// CategoryRateLimit represents rate limit errors
	CategoryRateLimit ErrorCategory = "rate_limit"
	// CategorySystem represents server-side failures (5xx) and anything unexpected
	CategorySystem ErrorCategory = "system"
)

// CategorizedError represents an error with category and HTTP status code
type CategorizedError struct {
	Category   ErrorCategory
	StatusCode int
	Code       string
	Message    string
	Details    map[string]interface{}
	Cause      error
}

// Error implements the error interface
func (e *CategorizedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *CategorizedError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field string, reason string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryValidation,
		StatusCode: http.StatusUnprocessableEntity,
		Code:       "VALIDATION_ERROR",
		Message:    reason,
		Details: map[string]interface{}{
			"field": field,
		},
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryAuthorization,
		StatusCode: http.StatusUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    message,
	}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryAuthorization,
		StatusCode: http.StatusForbidden,
		Code:       "FORBIDDEN",
		Message:    message,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string, id string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryNotFound,
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found: %s", resource, id),
		Details: map[string]interface{}{
			"resource": resource,
			"id":       id,
		},
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryConflict,
		StatusCode: http.StatusConflict,
		Code:       "CONFLICT",
		Message:    message,
	}
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(retryAfter int) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryRateLimit,
		StatusCode: http.StatusTooManyRequests,
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "rate limit exceeded",
		Details: map[string]interface{}{
			"retryAfter": retryAfter,
		},
	}
}

// NewNetworkError wraps a transport failure. StatusCode stays 0: no response was received.
func NewNetworkError(operation string, cause error) *CategorizedError {
	return &CategorizedError{
		Category: CategoryNetwork,
		Code:     "NETWORK_ERROR",
		Message:  fmt.Sprintf("backend unreachable during %s", operation),
		Cause:    cause,
		Details: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategorySystem,
		StatusCode: http.StatusInternalServerError,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		Cause:      cause,
	}
}

// NewUnreadableResponseError reports a request the server completed with a
// 2xx status whose body the client cannot use
func NewUnreadableResponseError(status int, message string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategorySystem,
		StatusCode: status,
		Code:       "UNREADABLE_RESPONSE",
		Message:    message,
		Cause:      cause,
	}
}

// NewStorageError creates an error for a failed local persistence operation
func NewStorageError(operation string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategorySystem,
		StatusCode: http.StatusInternalServerError,
		Code:       "STORAGE_ERROR",
		Message:    fmt.Sprintf("storage error during %s", operation),
		Cause:      cause,
		Details: map[string]interface{}{
			"operation": operation,
		},
	}
}

// apiErrorBody covers the error shapes the backend is known to emit:
// FastAPI {"detail": "..."} or {"detail": [{"msg": "..."}]}, and the
// envelope {"success": false, "message"|"error": "..."}.
type apiErrorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// FromResponse converts a non-2xx API response into a categorized error
func FromResponse(status int, body []byte) *CategorizedError {
	msg := extractMessage(body)
	if msg == "" {
		msg = http.StatusText(status)
	}

	e := &CategorizedError{StatusCode: status, Message: msg}
	switch {
	case status == http.StatusUnauthorized:
		e.Category, e.Code = CategoryAuthorization, "UNAUTHORIZED"
	case status == http.StatusForbidden:
		e.Category, e.Code = CategoryAuthorization, "FORBIDDEN"
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		e.Category, e.Code = CategoryValidation, "VALIDATION_ERROR"
	case status == http.StatusNotFound:
		e.Category, e.Code = CategoryNotFound, "NOT_FOUND"
	case status == http.StatusConflict:
		e.Category, e.Code = CategoryConflict, "CONFLICT"
	case status == http.StatusTooManyRequests:
		e.Category, e.Code = CategoryRateLimit, "RATE_LIMIT_EXCEEDED"
	case status >= 500:
		e.Category, e.Code = CategorySystem, "SERVER_ERROR"
	default:
		e.Category, e.Code = CategorySystem, fmt.Sprintf("HTTP_%d", status)
	}
	return e
}

func extractMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}

	if len(parsed.Detail) > 0 {
		var s string
		if err := json.Unmarshal(parsed.Detail, &s); err == nil {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(parsed.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			return strings.Join(msgs, ", ")
		}
	}
	if parsed.Message != "" {
		return parsed.Message
	}
	return parsed.Error
}

// Categorize categorizes an existing error
func Categorize(err error) *CategorizedError {
	if err == nil {
		return nil
	}

	var catErr *CategorizedError
	if stderrors.As(err, &catErr) {
		return catErr
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return NewNetworkError("request", err)
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return NewNetworkError("request", err)
	}

	return NewInternalError("unexpected error", err)
}

func categoryOf(err error) ErrorCategory {
	if c := Categorize(err); c != nil {
		return c.Category
	}
	return ""
}

// IsAuthorization reports whether err must force a logout
func IsAuthorization(err error) bool {
	return categoryOf(err) == CategoryAuthorization
}

// IsValidation reports whether err is a rejected input
func IsValidation(err error) bool {
	return categoryOf(err) == CategoryValidation
}

// IsConflict reports whether err is a 409 conflict
func IsConflict(err error) bool {
	return categoryOf(err) == CategoryConflict
}

// IsNotFound reports whether err is a 404
func IsNotFound(err error) bool {
	return categoryOf(err) == CategoryNotFound
}

// IsTransient reports whether the backend may succeed if asked again.
// Local fallbacks (local-only writes, cached sessions) apply to these errors only.
func IsTransient(err error) bool {
	catErr := Categorize(err)
	if catErr == nil {
		return false
	}

	switch catErr.Category {
	case CategoryNetwork, CategoryRateLimit:
		return true
	case CategorySystem:
		return catErr.StatusCode >= 500
	default:
		return false
	}
}

// IsAccepted reports whether err describes a request the server completed
// (2xx) even though the client could not use the answer. Such writes must not
// be repeated.
func IsAccepted(err error) bool {
	catErr := Categorize(err)
	return catErr != nil && catErr.StatusCode >= 200 && catErr.StatusCode < 300
}

// IsRetryable reports whether an idempotent request may be repeated
func IsRetryable(err error) bool {
	if stderrors.Is(err, context.Canceled) {
		return false
	}
	catErr := Categorize(err)
	if catErr == nil {
		return false
	}
	switch catErr.Category {
	case CategoryNetwork, CategoryRateLimit:
		return true
	case CategorySystem:
		return catErr.StatusCode == http.StatusBadGateway ||
			catErr.StatusCode == http.StatusServiceUnavailable ||
			catErr.StatusCode == http.StatusGatewayTimeout
	default:
		return false
	}
}

// IsUserError determines if an error is a user error (4xx)
func IsUserError(err error) bool {
	catErr := Categorize(err)
	if catErr == nil {
		return false
	}

	return catErr.StatusCode >= 400 && catErr.StatusCode < 500
}

// UserMessage returns the text shown to the user for err
func UserMessage(err error) string {
	catErr := Categorize(err)
	if catErr == nil {
		return ""
	}
	switch catErr.Category {
	case CategoryAuthorization:
		if catErr.StatusCode == http.StatusForbidden {
			return "You do not have permission to do that"
		}
		return "Session expired. Please log in again."
	case CategoryNetwork:
		return "Cannot reach the CarbonTrack server"
	case CategorySystem:
		if catErr.StatusCode >= 500 {
			return "The CarbonTrack server reported an error"
		}
	}
	return catErr.Message
}
