package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      ValidationError
		contains []string
	}{
		{
			name:     "with field and message",
			err:      ValidationError{Field: "itemId", Message: "must be numeric"},
			contains: []string{"validation error", "itemId", "must be numeric"},
		},
		{
			name:     "only message",
			err:      ValidationError{Message: "bad input"},
			contains: []string{"validation error", "bad input"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.err.Error()
			for _, want := range tt.contains {
				if !strings.Contains(result, want) {
					t.Errorf("ValidationError.Error() = %q, want to contain %q", result, want)
				}
			}
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "BaseURL", Message: "cannot be empty"}
	if got := err.Error(); got != "config error in field BaseURL: cannot be empty" {
		t.Errorf("ConfigError.Error() = %q", got)
	}

	err = &ConfigError{Message: "config cannot be nil"}
	if got := err.Error(); got != "config error: config cannot be nil" {
		t.Errorf("ConfigError.Error() = %q", got)
	}
}

func TestStateError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  StateError
		want string
	}{
		{
			name: "with operation",
			err:  StateError{Operation: "username", Message: "user has no password"},
			want: "state error during username: user has no password",
		},
		{
			name: "without operation",
			err:  StateError{Message: "not ready"},
			want: "state error: not ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("StateError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestError_Error(t *testing.T) {
	inner := errors.New("connection refused")
	tests := []struct {
		name string
		err  RequestError
		want string
	}{
		{
			name: "operation and url",
			err:  RequestError{Operation: "comments", URL: "http://x/api", Err: inner},
			want: "request error during comments to http://x/api: connection refused",
		},
		{
			name: "operation only with message",
			err:  RequestError{Operation: "count", Message: "rate limit wait"},
			want: "request error during count: rate limit wait",
		},
		{
			name: "bare",
			err:  RequestError{Err: inner},
			want: "request error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("RequestError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseError_Unwrap(t *testing.T) {
	inner := errors.New("unexpected end of JSON input")
	err := &ParseError{Operation: "comment", Err: inner}
	if unwrapped := err.Unwrap(); unwrapped != inner {
		t.Errorf("ParseError.Unwrap() = %v, want %v", unwrapped, inner)
	}
	if !strings.Contains(err.Error(), "parse error during comment") {
		t.Errorf("ParseError.Error() = %q", err.Error())
	}

	nilErr := &ParseError{Message: "missing id"}
	if unwrapped := nilErr.Unwrap(); unwrapped != nil {
		t.Errorf("ParseError.Unwrap() with nil Err = %v, want nil", unwrapped)
	}
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{Operation: "username", StatusCode: 500, Message: "Internal Server Error"}
	want := "API request username failed with status 500: Internal Server Error"
	if got := err.Error(); got != want {
		t.Errorf("APIError.Error() = %q, want %q", got, want)
	}
}

func TestErrorTypeAssertion(t *testing.T) {
	t.Run("APIError through RequestError", func(t *testing.T) {
		err := fmt.Errorf("fetch page: %w", &RequestError{Operation: "comments", Err: &APIError{StatusCode: 404}})
		var target *APIError
		if !errors.As(err, &target) {
			t.Fatal("errors.As should find APIError")
		}
		if target.StatusCode != 404 {
			t.Errorf("StatusCode = %d, want 404", target.StatusCode)
		}
	})

	t.Run("SessionError", func(t *testing.T) {
		inner := errors.New("disk full")
		err := fmt.Errorf("persist: %w", &SessionError{Operation: "set", Err: inner})
		var target *SessionError
		if !errors.As(err, &target) {
			t.Fatal("errors.As should find SessionError")
		}
		if !errors.Is(err, inner) {
			t.Error("errors.Is should reach the store error")
		}
	})

	t.Run("ErrDone", func(t *testing.T) {
		err := fmt.Errorf("next page: %w", ErrDone)
		if !errors.Is(err, ErrDone) {
			t.Error("errors.Is should find ErrDone")
		}
	})
}
