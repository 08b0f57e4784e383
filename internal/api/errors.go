package api

import (
	"encoding/json"
	"net/http"

	"github.com/carbontrack/internal/errors"
	"github.com/carbontrack/internal/notify"
)

// ErrorBody is the error payload
type ErrorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error         ErrorBody             `json:"error"`
	Notifications []notify.Notification `json:"notifications,omitempty"`
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, statusCode int, code, message string, details map[string]interface{}) {
	respondJSON(w, statusCode, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// parseJSONBody parses JSON request body.
func parseJSONBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// Common error codes
const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// mapServiceError maps controller errors to HTTP status codes.
func mapServiceError(err error) (int, string, string) {
	catErr := errors.Categorize(err)
	if catErr == nil {
		return http.StatusInternalServerError, ErrCodeInternalError, "An internal error occurred"
	}
	msg := errors.UserMessage(err)

	switch catErr.Category {
	case errors.CategoryAuthorization:
		if catErr.StatusCode == http.StatusForbidden {
			return http.StatusForbidden, ErrCodeForbidden, msg
		}
		return http.StatusUnauthorized, ErrCodeUnauthorized, msg
	case errors.CategoryValidation:
		if catErr.StatusCode == http.StatusForbidden {
			return http.StatusForbidden, ErrCodeForbidden, msg
		}
		return http.StatusUnprocessableEntity, ErrCodeInvalidInput, msg
	case errors.CategoryNotFound:
		return http.StatusNotFound, ErrCodeNotFound, msg
	case errors.CategoryConflict:
		return http.StatusConflict, ErrCodeConflict, msg
	case errors.CategoryRateLimit:
		return http.StatusTooManyRequests, ErrCodeRateLimited, msg
	case errors.CategoryNetwork:
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable, msg
	default:
		return http.StatusInternalServerError, ErrCodeInternalError, "An internal error occurred"
	}
}
