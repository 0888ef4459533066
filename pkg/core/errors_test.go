package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExecutionError_Error(t *testing.T) {
	err := &ExecutionError{
		Category: ErrCategoryAssertion,
		Code:     "test_error",
		Message:  "test message",
	}

	if got := err.Error(); got != "test message" {
		t.Errorf("Error() = %q, want %q", got, "test message")
	}
}

func TestExecutionError_ErrorWithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrSessionNotCreated.WithMessage("Could not connect to http://localhost:4724/").WithCause(cause)

	got := err.Error()
	if !strings.Contains(got, "http://localhost:4724/") {
		t.Errorf("Error() = %q, should contain the proxy URL", got)
	}
	if !strings.Contains(got, "connection refused") {
		t.Errorf("Error() = %q, should contain 'connection refused'", got)
	}
}

func TestExecutionError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ExecutionError{
		Message: "wrapper",
		Cause:   cause,
	}

	if got := err.Unwrap(); got != cause {
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}
}

func TestExecutionError_WithCause(t *testing.T) {
	original := ErrSessionNotCreated
	cause := errors.New("custom cause")

	newErr := original.WithCause(cause)

	if newErr.Cause != cause {
		t.Error("WithCause() did not set cause")
	}
	if newErr.Code != original.Code {
		t.Error("WithCause() changed code")
	}
	if original.Cause != nil {
		t.Error("WithCause() modified original error")
	}
}

func TestExecutionError_WithMessage(t *testing.T) {
	original := ErrProxyRequest
	newErr := original.WithMessage("Internal Server Error")

	if newErr.Message != "Internal Server Error" {
		t.Errorf("Message = %q, want 'Internal Server Error'", newErr.Message)
	}
	if newErr.Code != original.Code {
		t.Error("WithMessage() changed code")
	}
	if original.Message == "Internal Server Error" {
		t.Error("WithMessage() modified original error")
	}
}

func TestExecutionError_WithDetails(t *testing.T) {
	original := &ExecutionError{
		Code:    "test",
		Message: "test",
		Details: map[string]interface{}{"existing": "value"},
	}

	newErr := original.WithDetails(map[string]interface{}{
		"path":   "getText/e1",
		"status": 500,
	})

	if newErr.Details["path"] != "getText/e1" {
		t.Error("WithDetails() did not add new details")
	}
	if newErr.Details["existing"] != "value" {
		t.Error("WithDetails() did not preserve existing details")
	}
	if _, ok := original.Details["path"]; ok {
		t.Error("WithDetails() modified original error")
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err      *ExecutionError
		category ErrorCategory
		code     string
	}{
		{ErrNoSuchElement, ErrCategoryAssertion, "no_such_element"},
		{ErrSessionNotCreated, ErrCategoryConnection, "session_not_created"},
		{ErrUnsupportedOperation, ErrCategoryProxy, "unsupported_operation"},
		{ErrProxyRequest, ErrCategoryProxy, "proxy_request_error"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Category != tt.category {
				t.Errorf("Category = %s, want %s", tt.err.Category, tt.category)
			}
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.Message == "" {
				t.Error("Message should not be empty")
			}
		})
	}
}

func TestNewExecutionError(t *testing.T) {
	err := NewExecutionError(ErrCategoryConfig, "custom_error", "custom message")

	if err.Category != ErrCategoryConfig {
		t.Errorf("Category = %s, want %s", err.Category, ErrCategoryConfig)
	}
	if err.Code != "custom_error" {
		t.Errorf("Code = %s, want 'custom_error'", err.Code)
	}
	if err.Message != "custom message" {
		t.Errorf("Message = %s, want 'custom message'", err.Message)
	}
}

func TestExecutionError_ErrorsIs(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrSessionNotCreated.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is() should find the cause")
	}
	if !errors.Is(err, ErrSessionNotCreated) {
		t.Error("errors.Is() should match the predefined kind")
	}
	if errors.Is(err, ErrProxyRequest) {
		t.Error("errors.Is() should not match a different kind")
	}
}

func TestExecutionError_ErrorsIsThroughWrap(t *testing.T) {
	err := fmt.Errorf("find element: %w", ErrNoSuchElement.WithMessage("no element matches submit"))

	if !errors.Is(err, ErrNoSuchElement) {
		t.Error("errors.Is() should match through fmt.Errorf wrapping")
	}

	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatal("errors.As() should find the ExecutionError")
	}
	if execErr.Message != "no element matches submit" {
		t.Errorf("Message = %q", execErr.Message)
	}
}
