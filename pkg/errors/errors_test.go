package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, wrapped.Code)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "booking not found",
			},
			expected: "NOT_FOUND: booking not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped", http.StatusInternalServerError)

	unwrapped := errors.Unwrap(appErr)
	if unwrapped != originalErr {
		t.Errorf("Unwrap() should return original error")
	}
}

func TestDomainConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{
			name:       "insufficient capacity",
			err:        InsufficientCapacity("not enough seats", map[string]any{"remaining": 2}),
			wantCode:   CodeInsufficientCapacity,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "invalid transition",
			err:        InvalidTransition("completed", "pending"),
			wantCode:   CodeInvalidTransition,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "cancellation window closed",
			err:        CancellationWindowClosed("too late to cancel", nil),
			wantCode:   CodeCancellationWindowClosed,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "resource unavailable",
			err:        ResourceUnavailable("res-1"),
			wantCode:   CodeResourceUnavailable,
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, tt.err.Code)
			}
			if tt.err.HTTPStatus != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, tt.err.HTTPStatus)
			}
		})
	}
}

func TestInvalidTransition_Details(t *testing.T) {
	err := InvalidTransition("cancelled", "confirmed")

	if err.Details["from"] != "cancelled" {
		t.Errorf("expected from detail 'cancelled', got %v", err.Details["from"])
	}
	if err.Details["to"] != "confirmed" {
		t.Errorf("expected to detail 'confirmed', got %v", err.Details["to"])
	}
}

func TestIsCode(t *testing.T) {
	err := InsufficientCapacity("full", nil)

	if !IsCode(err, CodeInsufficientCapacity) {
		t.Error("IsCode should match the error's own code")
	}
	if IsCode(err, CodeInvalidTransition) {
		t.Error("IsCode should not match a different code")
	}
	if IsCode(errors.New("plain error"), CodeInternal) {
		t.Error("IsCode should be false for non-AppError errors")
	}
}

func TestAsAppError(t *testing.T) {
	plain := errors.New("boom")
	appErr := AsAppError(plain)

	if appErr.Code != CodeInternal {
		t.Errorf("expected plain errors to map to %s, got %s", CodeInternal, appErr.Code)
	}
	if appErr.Err != plain {
		t.Error("expected the original error to be preserved")
	}

	original := Conflict("already booked")
	if AsAppError(original) != original {
		t.Error("expected AppError to be returned unchanged")
	}
}
