package errors

import (
	stderrors "errors"
	"fmt"
)

// Error method implementation for ValidationError
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is reports whether target is the sentinel this validation error stands for
func (e *ValidationError) Is(target error) bool {
	if e.Kind == nil {
		return target == ErrInvalidInput
	}
	return target == e.Kind
}

// Error method implementation for StorageError
func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Is makes every StorageError match ErrStoreUnavailable
func (e *StorageError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// Unwrap returns the driver error
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewKindError creates a ValidationError that matches a specific sentinel
func NewKindError(kind error, field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Kind:    kind,
	}
}

// NewStorageError creates a new StorageError
func NewStorageError(message string, cause error) *StorageError {
	return &StorageError{
		Message: message,
		Cause:   cause,
	}
}

// Is forwards to the standard library so callers need a single errors import
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As forwards to the standard library
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// IsRetryable reports whether the caller may offer the user a retry
func IsRetryable(err error) bool {
	return stderrors.Is(err, ErrStoreUnavailable)
}
