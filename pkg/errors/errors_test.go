package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidRequest, "copies must be at least 1, got %d", 0)

	if err.Code != ErrCodeInvalidRequest {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidRequest)
	}

	if err.Message != "copies must be at least 1, got 0" {
		t.Errorf("Message = %v, want %v", err.Message, "copies must be at least 1, got 0")
	}

	expected := "INVALID_REQUEST: copies must be at least 1, got 0"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("image: unknown format")
	err := Wrap(ErrCodeDecodeFailure, cause, "decode logo.png")

	if err.Code != ErrCodeDecodeFailure {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeDecodeFailure)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

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
			err:      New(ErrCodeEmptyAsset, "test"),
			code:     ErrCodeEmptyAsset,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeEmptyAsset, "test"),
			code:     ErrCodeDecodeFailure,
			expected: false,
		},
		{
			name:     "wrapped by fmt",
			err:      fmt.Errorf("request 3: %w", New(ErrCodeInvalidRequest, "inner")),
			code:     ErrCodeInvalidRequest,
			expected: true,
		},
		{
			name:     "outer code wins",
			err:      Wrap(ErrCodeInternal, New(ErrCodeInvalidRequest, "inner"), "outer"),
			code:     ErrCodeInternal,
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
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeOversizedItem, "test"), ErrCodeOversizedItem},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Error type", New(ErrCodeInvalidInput, "friendly message"), "friendly message"},
		{"with cause", Wrap(ErrCodeDecodeFailure, errors.New("bad header"), "decode a.png"), "decode a.png: bad header"},
		{"plain error", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsPerRequest(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{ErrCodeInvalidRequest, true},
		{ErrCodeInvalidCategory, true},
		{ErrCodeEmptyAsset, true},
		{ErrCodeDecodeFailure, true},
		{ErrCodeAssetTooLarge, true},
		{ErrCodeInvalidConfig, false},
		{ErrCodeInternal, false},
		{ErrCodeOversizedItem, false},
	}

	for _, tt := range tests {
		if got := IsPerRequest(New(tt.code, "x")); got != tt.want {
			t.Errorf("IsPerRequest(%s) = %v, want %v", tt.code, got, tt.want)
		}
	}
	if IsPerRequest(errors.New("plain")) {
		t.Error("plain errors are not per-request")
	}
}
