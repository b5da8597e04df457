// Package errors provides custom error types for the mailrecon system.
// These errors enable programmatic error checking and keep failure
// semantics consistent across the reconciliation pipeline.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the mailrecon system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedStrategy indicates an unknown conflict resolution strategy
	ErrUnsupportedStrategy = errors.New("unsupported strategy")

	// ErrMissingManualChoice indicates the manual strategy was invoked
	// without a caller-supplied value
	ErrMissingManualChoice = errors.New("missing manual choice")

	// ErrUnparsableTimestamp indicates a timestamp could not be parsed
	// in any of the accepted formats
	ErrUnparsableTimestamp = errors.New("unparsable timestamp")

	// ErrCircuitOpen indicates the retry circuit breaker is open
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// StrategyError represents a conflict resolution strategy failure
type StrategyError struct {
	Strategy string
	Field    string
	Message  string
	Err      error
}

// Error implements the error interface
func (e *StrategyError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("strategy %s failed for field %s: %s", e.Strategy, e.Field, e.Message)
	}
	return fmt.Sprintf("strategy %s failed: %s", e.Strategy, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *StrategyError) Unwrap() error {
	return e.Err
}

// NewStrategyError creates a new StrategyError
func NewStrategyError(strategy, field, message string, err error) *StrategyError {
	return &StrategyError{
		Strategy: strategy,
		Field:    field,
		Message:  message,
		Err:      err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "timestamp", "yaml", "strategy", etc.
	Input   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("%s parse error for %q: %s", e.Format, e.Input, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, input, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		Input:   input,
		Message: message,
		Err:     err,
	}
}

// StoreError represents an error during sync-state persistence operations
type StoreError struct {
	Operation string // "put", "get", "list", "open", "close"
	ItemID    string
	Err       error
}

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.ItemID != "" {
		return fmt.Sprintf("state store %s failed for item %s: %v", e.Operation, e.ItemID, e.Err)
	}
	return fmt.Sprintf("state store %s failed: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError
func NewStoreError(operation, itemID string, err error) *StoreError {
	return &StoreError{Operation: operation, ItemID: itemID, Err: err}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnsupportedStrategy checks if an error is an unsupported strategy error
func IsUnsupportedStrategy(err error) bool {
	return errors.Is(err, ErrUnsupportedStrategy)
}

// IsMissingManualChoice checks if an error is a missing manual choice error
func IsMissingManualChoice(err error) bool {
	return errors.Is(err, ErrMissingManualChoice)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapStore wraps an error as a StoreError
func WrapStore(operation, itemID string, err error) error {
	if err == nil {
		return nil
	}
	return NewStoreError(operation, itemID, err)
}
