package services

import (
	"errors"
	"fmt"

	"github.com/fsnd/coffee-shop/repositories"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeConflict    ErrorType = "conflict"
	ErrorTypeUnavailable ErrorType = "unavailable"
	ErrorTypeInternal    ErrorType = "internal"
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
	return e.Type == t.Type
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

var (
	ErrDrinkNotFound  = NewDomainError(ErrorTypeNotFound, "drink not found", nil)
	ErrInvalidInput   = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrDuplicateTitle = NewDomainError(ErrorTypeConflict, "a drink with this title already exists", nil)
	ErrUnavailable    = NewDomainError(ErrorTypeUnavailable, "database unavailable", nil)
)

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return GetErrorType(err) == ErrorTypeNotFound
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return GetErrorType(err) == ErrorTypeValidation
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return GetErrorType(err) == ErrorTypeConflict
}

// IsUnavailableError checks if an error is an unavailable error
func IsUnavailableError(err error) bool {
	return GetErrorType(err) == ErrorTypeUnavailable
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	return GetErrorType(err) == ErrorTypeInternal
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

// fromRepository translates a data-layer error kind into a domain error.
// Errors without a known kind become internal.
func fromRepository(message string, err error) error {
	switch {
	case err == nil:
		return nil
	case repositories.IsNotFound(err):
		return NewDomainError(ErrorTypeNotFound, ErrDrinkNotFound.Message, err)
	case repositories.IsDuplicate(err):
		return NewDomainError(ErrorTypeConflict, ErrDuplicateTitle.Message, err)
	case repositories.IsConstraint(err):
		return NewDomainError(ErrorTypeConflict, "drink violates a storage constraint", err)
	case repositories.IsUnavailable(err):
		return NewDomainError(ErrorTypeUnavailable, ErrUnavailable.Message, err)
	default:
		return WrapInternal(message, err)
	}
}

// asDomainError leaves domain errors untouched and classifies anything else,
// such as a transaction that failed to begin or commit.
func asDomainError(message string, err error) error {
	if GetErrorType(err) != "" {
		return err
	}
	return fromRepository(message, err)
}
