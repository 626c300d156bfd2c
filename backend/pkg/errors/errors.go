package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeNotFound represents a missing user, recipe or owned item
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeConflict represents a duplicate unique key
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeUnauthorized represents bad credentials or acting on another user's data
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	// ErrorTypeInvalidArgument represents a missing field or unknown enum value
	ErrorTypeInvalidArgument ErrorType = "invalid_argument"
	// ErrorTypeUpstream represents graph store, network or collaborator failures
	ErrorTypeUpstream ErrorType = "upstream"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// ErrNotFound is returned when a node addressed by a key does not exist
type ErrNotFound struct {
	*BaseError
	Kind string
	Key  string
}

func NewNotFound(kind, key string) *ErrNotFound {
	return &ErrNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("%s not found: %s", kind, key), nil),
		Kind:      kind,
		Key:       key,
	}
}

// ErrConflict is returned when a unique key is already taken
type ErrConflict struct {
	*BaseError
	Kind string
	Key  string
}

func NewConflict(kind, key string) *ErrConflict {
	return &ErrConflict{
		BaseError: NewBaseError(ErrorTypeConflict, fmt.Sprintf("%s already exists: %s", kind, key), nil),
		Kind:      kind,
		Key:       key,
	}
}

// ErrUnauthorized is returned for credential mismatches
type ErrUnauthorized struct {
	*BaseError
}

func NewUnauthorized(message string) *ErrUnauthorized {
	return &ErrUnauthorized{
		BaseError: NewBaseError(ErrorTypeUnauthorized, message, nil),
	}
}

// ErrInvalidArgument is returned when input fails validation
type ErrInvalidArgument struct {
	*BaseError
	Field string
}

func NewInvalidArgument(field, reason string) *ErrInvalidArgument {
	return &ErrInvalidArgument{
		BaseError: NewBaseError(ErrorTypeInvalidArgument, fmt.Sprintf("invalid %s: %s", field, reason), nil),
		Field:     field,
	}
}

// ErrUpstreamFailure wraps graph store and collaborator failures
type ErrUpstreamFailure struct {
	*BaseError
	Operation string
}

func NewUpstreamFailure(operation string, err error) *ErrUpstreamFailure {
	return &ErrUpstreamFailure{
		BaseError: NewBaseError(ErrorTypeUpstream, fmt.Sprintf("%s failed", operation), err),
		Operation: operation,
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// TypeOf returns the category of the first BaseError in the chain, or "" if none
func TypeOf(err error) ErrorType {
	var carrier interface{ base() *BaseError }
	if stderrors.As(err, &carrier) {
		return carrier.base().Type
	}
	return ""
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	return err != nil && TypeOf(err) == errType
}

func (e *BaseError) base() *BaseError { return e }
