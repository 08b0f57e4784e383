package errors

import (
	"context"
	"fmt"
	"net/http"
	"testing"
)

func TestFromResponse(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantCategory ErrorCategory
		wantMessage  string
	}{
		{
			name:         "401 is authorization",
			status:       http.StatusUnauthorized,
			body:         `{"detail":"Could not validate credentials"}`,
			wantCategory: CategoryAuthorization,
			wantMessage:  "Could not validate credentials",
		},
		{
			name:         "403 is authorization",
			status:       http.StatusForbidden,
			body:         ``,
			wantCategory: CategoryAuthorization,
			wantMessage:  "Forbidden",
		},
		{
			name:         "422 joins detail messages",
			status:       http.StatusUnprocessableEntity,
			body:         `{"detail":[{"msg":"field required"},{"msg":"value is not a valid float"}]}`,
			wantCategory: CategoryValidation,
			wantMessage:  "field required, value is not a valid float",
		},
		{
			name:         "409 is conflict",
			status:       http.StatusConflict,
			body:         `{"success":false,"message":"Email already registered"}`,
			wantCategory: CategoryConflict,
			wantMessage:  "Email already registered",
		},
		{
			name:         "404 is not found",
			status:       http.StatusNotFound,
			body:         `{"error":"user not found"}`,
			wantCategory: CategoryNotFound,
			wantMessage:  "user not found",
		},
		{
			name:         "500 is system",
			status:       http.StatusInternalServerError,
			body:         `not json`,
			wantCategory: CategorySystem,
			wantMessage:  "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromResponse(tt.status, []byte(tt.body))
			if got.Category != tt.wantCategory {
				t.Errorf("Category = %v, want %v", got.Category, tt.wantCategory)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMessage)
			}
			if got.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", got.StatusCode, tt.status)
			}
		})
	}
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("load emissions: %w", NewUnauthorizedError("token expired"))
	if !IsAuthorization(wrapped) {
		t.Error("IsAuthorization should unwrap")
	}
	if IsTransient(wrapped) {
		t.Error("authorization errors are not transient")
	}

	conflict := fmt.Errorf("register: %w", FromResponse(http.StatusConflict, nil))
	if !IsConflict(conflict) {
		t.Error("IsConflict should unwrap")
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"network", NewNetworkError("login", fmt.Errorf("dial tcp: refused")), true},
		{"deadline", context.DeadlineExceeded, true},
		{"server error", FromResponse(http.StatusBadGateway, nil), true},
		{"validation", NewValidationError("amount", "amount is required"), false},
		{"conflict", NewConflictError("exists"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsAccepted(t *testing.T) {
	if !IsAccepted(NewUnreadableResponseError(http.StatusCreated, "created entry has no id", nil)) {
		t.Error("201 with unreadable body should count as accepted")
	}
	if IsAccepted(FromResponse(http.StatusServiceUnavailable, nil)) {
		t.Error("503 is not accepted")
	}
	if IsAccepted(NewNetworkError("create", fmt.Errorf("reset"))) {
		t.Error("network failures are not accepted")
	}
	if IsAccepted(nil) {
		t.Error("nil is not accepted")
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(context.Canceled) {
		t.Error("cancelled requests must not be retried")
	}
	if IsRetryable(FromResponse(http.StatusInternalServerError, nil)) {
		t.Error("plain 500 is not retried")
	}
	if !IsRetryable(FromResponse(http.StatusServiceUnavailable, nil)) {
		t.Error("503 should be retried")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(NewUnauthorizedError("x")); got != "Session expired. Please log in again." {
		t.Errorf("UserMessage(401) = %q", got)
	}
	if got := UserMessage(NewValidationError("amount", "Amount must be a number")); got != "Amount must be a number" {
		t.Errorf("UserMessage(validation) = %q", got)
	}
	if got := UserMessage(nil); got != "" {
		t.Errorf("UserMessage(nil) = %q", got)
	}
}
