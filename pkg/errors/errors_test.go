package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewFormatsCodeAndMessage(t *testing.T) {
	err := New(ErrCodeInvalidSnapshot, "edge source index %d out of range (%d nodes)", 7, 3)

	if err.Code != ErrCodeInvalidSnapshot {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidSnapshot)
	}
	want := "INVALID_SNAPSHOT: edge source index 7 out of range (3 nodes)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if err.Cause != nil {
		t.Errorf("Cause = %v, want nil", err.Cause)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "fetch inspection")

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	want := "NETWORK_ERROR: fetch inspection: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestCodeSurvivesWrapping(t *testing.T) {
	inner := New(ErrCodeUnimplemented, "edges from graph inputs are not supported")
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{name: "direct", err: inner, code: ErrCodeUnimplemented, want: true},
		{name: "fmt wrapped", err: fmt.Errorf("frame 12: %w", inner), code: ErrCodeUnimplemented, want: true},
		{name: "outer code wins", err: Wrap(ErrCodeInvalidConfig, inner, "load"), code: ErrCodeInvalidConfig, want: true},
		{name: "other code", err: inner, code: ErrCodeInvalidSnapshot, want: false},
		{name: "plain error", err: errors.New("plain"), code: ErrCodeUnimplemented, want: false},
		{name: "nil", err: nil, code: ErrCodeUnimplemented, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{name: "coded", err: New(ErrCodeTimeout, "waiting for snapshot"), want: ErrCodeTimeout},
		{name: "fmt wrapped", err: fmt.Errorf("export: %w", New(ErrCodeInvalidFormat, "png")), want: ErrCodeInvalidFormat},
		{name: "plain", err: errors.New("plain"), want: ""},
		{name: "nil", err: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidConfig, "window size must be positive")); got != "window size must be positive" {
		t.Errorf("UserMessage(coded) = %q", got)
	}
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StatusError
		wantText string
		wantCode Code
	}{
		{
			name:     "not found",
			err:      &StatusError{StatusCode: 404, URL: "http://engine/inspection"},
			wantText: "unexpected status 404 from http://engine/inspection",
			wantCode: ErrCodeNotFound,
		},
		{
			name:     "unavailable",
			err:      &StatusError{StatusCode: 503},
			wantText: "unexpected status 503",
			wantCode: ErrCodeNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.wantText {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.wantText)
			}
			if got := tt.err.Code(); got != tt.wantCode {
				t.Errorf("Code() = %v, want %v", got, tt.wantCode)
			}

			// Callers wrap the status error under its own code.
			wrapped := Wrap(tt.err.Code(), tt.err, "fetch inspection")
			var se *StatusError
			if !errors.As(wrapped, &se) || se.StatusCode != tt.err.StatusCode {
				t.Errorf("errors.As did not recover the status error from %v", wrapped)
			}
			if !Is(wrapped, tt.wantCode) {
				t.Errorf("Is(wrapped, %v) = false", tt.wantCode)
			}
		})
	}
}

func ExampleIs() {
	err := fmt.Errorf("frame 3: %w", New(ErrCodeUnimplemented, "edges from graph inputs are not supported"))
	fmt.Println(Is(err, ErrCodeUnimplemented))
	fmt.Println(UserMessage(err))
	// Output:
	// true
	// edges from graph inputs are not supported
}
