package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Error(t *testing.T) {
	t.Run("without wrapped error", func(t *testing.T) {
		err := NewDomainError(ErrorTypeNotFound, "provider not found", nil)
		assert.Equal(t, "not_found: provider not found", err.Error())
	})

	t.Run("with wrapped error", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := NewDomainError(ErrorTypeExternal, "invocation failed", cause)
		assert.Contains(t, err.Error(), "external: invocation failed")
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewDomainError(ErrorTypeInternal, "wrapper", cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestDomainError_Is(t *testing.T) {
	t.Run("sentinel match through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("selecting provider: %w", ErrNoProviderAvailable)
		assert.True(t, errors.Is(wrapped, ErrNoProviderAvailable))
	})

	t.Run("different sentinels do not match", func(t *testing.T) {
		assert.False(t, errors.Is(ErrNoProviderAvailable, ErrNoProviderConfigured))
		assert.False(t, errors.Is(ErrProviderNotFound, ErrNoProviderConfigured))
	})

	t.Run("non domain error target", func(t *testing.T) {
		assert.False(t, errors.Is(ErrProviderNotFound, errors.New("provider not found")))
	})
}

func TestDomainError_WithDetail(t *testing.T) {
	err := NewDomainError(ErrorTypeRateLimit, "limited", nil).
		WithDetail("provider", "openai").
		WithDetail("limit", 60)

	details := GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, "openai", details["provider"])
	assert.Equal(t, 60, details["limit"])
}

func TestNewInvocationError(t *testing.T) {
	cause := errors.New("503 from upstream")
	err := NewInvocationError("anthropic", cause)

	assert.True(t, IsExternalError(err))
	assert.Equal(t, "anthropic", err.Details["provider"])
	assert.True(t, errors.Is(err, cause))
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		predicate func(error) bool
		want      bool
	}{
		{"not found", ErrProviderNotFound, IsNotFoundError, true},
		{"rate limit", ErrNoProviderAvailable, IsRateLimitError, true},
		{"unavailable", ErrNoProviderConfigured, IsUnavailableError, true},
		{"validation", ErrDuplicateProvider, IsValidationError, true},
		{"wrapped still matches", fmt.Errorf("ctx: %w", ErrNoProviderAvailable), IsRateLimitError, true},
		{"plain error is not typed", errors.New("plain"), IsRateLimitError, false},
		{"mismatched type", ErrProviderNotFound, IsRateLimitError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.predicate(tt.err))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorTypeNotFound, GetErrorType(ErrProviderNotFound))
	assert.Equal(t, ErrorTypeInternal, GetErrorType(errors.New("unknown")))
}
