package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeParse, cause, "failed to decode")

	if err.Code != ErrCodeParse {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeParse)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
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
			err:      New(ErrCodeUnsupportedEngine, "test"),
			code:     ErrCodeUnsupportedEngine,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeUnsupportedEngine, "test"),
			code:     ErrCodeMissingDependency,
			expected: false,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			code:     ErrCodeInternal,
			expected: false,
		},
		{
			name:     "wrapped structured error",
			err:      Wrap(ErrCodeEncoding, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeEncoding,
			expected: true,
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
	if code := GetCode(New(ErrCodeParse, "x")); code != ErrCodeParse {
		t.Errorf("GetCode = %v, want %v", code, ErrCodeParse)
	}
	if code := GetCode(errors.New("plain")); code != "" {
		t.Errorf("GetCode on plain error = %v, want empty", code)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeMissingDependency, "the orjson engine is not linked in")
	if msg := UserMessage(err); msg != "the orjson engine is not linked in" {
		t.Errorf("UserMessage = %q", msg)
	}

	plain := errors.New("boom")
	if msg := UserMessage(plain); msg != "boom" {
		t.Errorf("UserMessage on plain error = %q", msg)
	}
}
