package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_MessageIncludesCause(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed: users.email")
	err := NewAppError(CodeAlreadyExists, "user with this email already exists", cause)

	want := "user with this email already exists: UNIQUE constraint failed: users.email"
	if err.Error() != want {
		t.Errorf("Error() = %q; want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the driver error")
	}
	if NewFieldError("name", "required").Unwrap() != nil {
		t.Error("field errors carry no cause")
	}
}

func TestHTTPStatusCode_UserErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing user", ErrNotFound, http.StatusNotFound},
		{"missing user wrapped by service", fmt.Errorf("get user 7: %w", ErrNotFound), http.StatusNotFound},
		{"duplicate email", NewAppError(CodeAlreadyExists, "user with this email already exists", nil), http.StatusConflict},
		{"bad password", NewFieldError("password", "must be at least 8 bytes"), http.StatusBadRequest},
		{"database failure", NewAppError(CodeInternal, "database error", errors.New("disk I/O error")), http.StatusInternalServerError},
		{"unknown code", NewAppError(999, "unknown", nil), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"nil", nil, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusCode(tt.err); got != tt.want {
				t.Errorf("HTTPStatusCode() = %d; want %d", got, tt.want)
			}
		})
	}
}

func TestCategoryHelpers_MatchByCode(t *testing.T) {
	notFound := NewAppError(CodeNotFound, "user not found", nil)
	if !IsNotFound(notFound) {
		t.Error("IsNotFound should match a fresh AppError, not only the sentinel")
	}
	if IsAlreadyExists(notFound) || IsValidation(notFound) {
		t.Error("a not-found error matched another category")
	}

	plain := errors.New("record not found")
	if IsNotFound(plain) || IsAlreadyExists(plain) || IsValidation(plain) {
		t.Error("plain errors belong to no category")
	}
}

func TestNewFieldError(t *testing.T) {
	err := NewFieldError("email", "already registered")

	if !IsValidation(err) {
		t.Fatal("field error should be a validation error")
	}
	if err.Message != "email already registered" {
		t.Errorf("Message = %q", err.Message)
	}
	if got := err.Fields["email"]; got != "already registered" {
		t.Errorf("Fields[email] = %q", got)
	}
}
