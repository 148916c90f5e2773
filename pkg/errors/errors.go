// Package errors provides custom error types for the docsync engine.
// These errors enable programmatic error checking with errors.Is/As
// and carry enough context to be logged without further wrapping.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// As is an alias for the standard library errors.As.
var As = errors.As

// Is is an alias for the standard library errors.Is.
var Is = errors.Is

// Common sentinel errors for the docsync engine
var (
	// ErrNotFound indicates that a requested record was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates that a write would duplicate an existing record
	ErrConflict = errors.New("conflict")

	// ErrTransport indicates that the remote store could not be reached
	// or answered with a non-success status
	ErrTransport = errors.New("transport failure")

	// ErrShape indicates that the remote store returned an unexpected payload
	ErrShape = errors.New("unexpected response shape")

	// ErrPersistence indicates that locally persisted state could not be used
	ErrPersistence = errors.New("persistence failure")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrAPIKeyRequired indicates that an API key is required but not provided
	ErrAPIKeyRequired = errors.New("API key required")
)

// NotFoundError represents an error when a record is not found
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
	Value   any
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
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConflictError reports that a candidate record collides with an existing
// record on one of the uniqueness axes.
type ConflictError struct {
	Axis     string // "title", "link", "slug"
	Value    string
	Existing string // identity key of the record already holding Value
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already used by record %s", e.Axis, e.Value, e.Existing)
}

// Is implements errors.Is support
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict || target == ErrInvalidInput
}

// NewConflictError creates a new ConflictError
func NewConflictError(axis, value, existing string) *ConflictError {
	return &ConflictError{Axis: axis, Value: value, Existing: existing}
}

// TransportError represents a failure talking to the remote store.
type TransportError struct {
	Operation  string // "fetch", "create", "update", "delete"
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote %s failed (status %d): %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote %s failed: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// NewTransportError creates a new TransportError
func NewTransportError(operation, endpoint string, statusCode int, err error) *TransportError {
	message := ""
	if err != nil {
		message = err.Error()
	} else if statusCode != 0 {
		message = fmt.Sprintf("unexpected status %d", statusCode)
	}
	return &TransportError{
		Operation:  operation,
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// ShapeError represents a remote payload that does not have the expected form.
type ShapeError struct {
	Expected string
	Got      string
	Err      error
}

// Error implements the error interface
func (e *ShapeError) Error() string {
	if e.Got != "" {
		return fmt.Sprintf("expected %s, got %s", e.Expected, e.Got)
	}
	return fmt.Sprintf("expected %s", e.Expected)
}

// Unwrap implements errors.Unwrap
func (e *ShapeError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}

// NewShapeError creates a new ShapeError
func NewShapeError(expected, got string, err error) *ShapeError {
	return &ShapeError{Expected: expected, Got: got, Err: err}
}

// PersistenceError represents a failure loading or saving local state.
type PersistenceError struct {
	Store   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error in %s: %s", e.Store, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// NewPersistenceError creates a new PersistenceError
func NewPersistenceError(store string, err error) *PersistenceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &PersistenceError{Store: store, Message: message, Err: err}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// TimeoutError represents an operation timeout
type TimeoutError struct {
	Operation string
	Duration  string
	Message   string
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	if e.Duration != "" {
		return fmt.Sprintf("operation %s timed out after %s: %s", e.Operation, e.Duration, e.Message)
	}
	return fmt.Sprintf("operation %s timed out: %s", e.Operation, e.Message)
}

// Is implements errors.Is support
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(operation, duration, message string) *TimeoutError {
	return &TimeoutError{
		Operation: operation,
		Duration:  duration,
		Message:   message,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", "csv"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "rename"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error.
// Conflicts count as validation failures.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConflict checks if an error is a duplicate-record conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsTransport checks if an error came from talking to the remote store
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsShape checks if an error is a malformed remote payload
func IsShape(err error) bool {
	return errors.Is(err, ErrShape)
}

// IsPersistence checks if an error came from local persisted state
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapTransport wraps an error as a TransportError
func WrapTransport(operation, endpoint string, err error) error {
	if err == nil {
		return nil
	}
	return NewTransportError(operation, endpoint, 0, err)
}

// WrapPersistence wraps an error as a PersistenceError
func WrapPersistence(store string, err error) error {
	if err == nil {
		return nil
	}
	return NewPersistenceError(store, err)
}
