package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeRateLimit    ErrorType = "rate_limit"
	ErrorTypeUnavailable  ErrorType = "unavailable"
	ErrorTypeExternal     ErrorType = "external"
	ErrorTypeInternal     ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && (t.Message == "" || e.Message == t.Message)
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables

var (
	// ErrProviderNotFound is returned when a provider name is not in the catalog
	ErrProviderNotFound = NewDomainError(ErrorTypeNotFound, "provider not found", nil)

	// ErrNoProviderConfigured is returned when the registry resolved zero
	// enabled providers at startup. Fatal to a facade call, never retried.
	ErrNoProviderConfigured = NewDomainError(ErrorTypeUnavailable, "no provider configured", nil)

	// ErrNoProviderAvailable is returned when selection found no eligible
	// provider for a specific request (all excluded, rate-limited, or
	// capability mismatch).
	ErrNoProviderAvailable = NewDomainError(ErrorTypeRateLimit, "no provider available", nil)

	// ErrDuplicateProvider is returned when the catalog declares the same
	// provider name twice
	ErrDuplicateProvider = NewDomainError(ErrorTypeValidation, "duplicate provider name", nil)
)

// NewInvocationError wraps an error reported by an external provider call.
// Invocation errors always trigger advancement to the next provider and are
// only surfaced when they are the final exhausting failure.
func NewInvocationError(provider string, err error) *DomainError {
	e := NewDomainError(ErrorTypeExternal, fmt.Sprintf("provider %s invocation failed", provider), err)
	e.Details["provider"] = provider
	return e
}

// GetErrorType returns the type of an error, or ErrorTypeInternal if unknown
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ErrorTypeInternal
}

// GetErrorDetails extracts details from a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// isType checks whether err carries the given domain error type
func isType(err error, t ErrorType) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == t
	}
	return false
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool { return isType(err, ErrorTypeNotFound) }

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool { return isType(err, ErrorTypeValidation) }

// IsUnauthorizedError checks if the error is an unauthorized error
func IsUnauthorizedError(err error) bool { return isType(err, ErrorTypeUnauthorized) }

// IsRateLimitError checks if the error is a rate limit error
func IsRateLimitError(err error) bool { return isType(err, ErrorTypeRateLimit) }

// IsUnavailableError checks if the error is an unavailable error
func IsUnavailableError(err error) bool { return isType(err, ErrorTypeUnavailable) }

// IsExternalError checks if the error is an external provider error
func IsExternalError(err error) bool { return isType(err, ErrorTypeExternal) }

// IsInternalError checks if the error is an internal error
func IsInternalError(err error) bool { return isType(err, ErrorTypeInternal) }
