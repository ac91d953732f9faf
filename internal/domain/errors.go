package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrForbidden     = errors.New("forbidden")

	// Queue coordination errors. All of them are recoverable and are
	// reported to the caller as a user-facing message.
	ErrUnknownItem       = errors.New("unknown item")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrEmptySelection    = errors.New("empty selection")
	ErrItemNotInUniverse = errors.New("item not in selection universe")
	ErrNotRegistered     = errors.New("member not registered")
	ErrNoSession         = errors.New("no open selection session")
	ErrWrongChat         = errors.New("command not available in this chat")
)

// StoreError reports a failed call to the tabular store. It matches both
// ErrStoreUnavailable and the underlying cause via errors.Is.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error { return []error{ErrStoreUnavailable, e.Err} }

// NewStoreError wraps err as a StoreError for the given operation.
// It returns nil when err is nil.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}
