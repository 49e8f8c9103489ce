package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	cause := errors.New("quota exceeded")
	tests := []struct {
		err  *Error
		want string
	}{
		{New(ErrCodeInvalidFilter, "unknown operator %q", "=~"), `INVALID_FILTER: unknown operator "=~"`},
		{Wrap(ErrCodeStorage, cause, "append snapshot to %s", "karate"), "STORAGE: append snapshot to karate: quota exceeded"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := Wrap(ErrCodeStorage, cause, "append snapshot")
	if errors.Unwrap(err) != cause || !errors.Is(err, cause) {
		t.Errorf("cause lost: %v", err)
	}
	if err.Message != "append snapshot" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidSession, "test"),
			code:     ErrCodeInvalidSession,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidSession, "test"),
			code:     ErrCodeStorage,
			expected: false,
		},
		{
			name:     "outer code",
			err:      Wrap(ErrCodeStorage, New(ErrCodeSessionNotFound, "inner"), "outer"),
			code:     ErrCodeStorage,
			expected: true,
		},
		{
			name:     "inner code",
			err:      Wrap(ErrCodeStorage, New(ErrCodeSessionNotFound, "inner"), "outer"),
			code:     ErrCodeSessionNotFound,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("load: %w", New(ErrCodeFileNotFound, "x.json")),
			code:     ErrCodeFileNotFound,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeSnapshotNotFound, "3")); got != ErrCodeSnapshotNotFound {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeSnapshotNotFound)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeStorage, "storage unavailable")); got != "storage unavailable" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestStdlibIs(t *testing.T) {
	err := fmt.Errorf("render: %w", New(ErrCodeInvalidFormat, "bmp"))
	if !errors.Is(err, &Error{Code: ErrCodeInvalidFormat}) {
		t.Error("errors.Is should match a code-only target")
	}
	if errors.Is(err, &Error{Code: ErrCodeInvalidFilter}) {
		t.Error("errors.Is matched a different code")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"cancelled", fmt.Errorf("converge: %w", context.Canceled), ExitInterrupted},
		{"input", New(ErrCodeInvalidFilter, "bad"), ExitUsage},
		{"not found", fmt.Errorf("open: %w", New(ErrCodeSessionNotFound, "karate")), ExitNotFound},
		{"storage", Wrap(ErrCodeStorage, errors.New("eof"), "get"), ExitUnavailable},
		{"outer code wins", Wrap(ErrCodeStorage, New(ErrCodeSessionNotFound, "x"), "get"), ExitUnavailable},
		{"internal", New(ErrCodeInternal, "boom"), ExitFailure},
		{"plain", errors.New("plain"), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
