// Package errors holds the error taxonomy shared by every stage of a
// conversion run.
//
// This file provides:
// - Sentinel errors for all error conditions
// - Error category checking functions
// - Error constructors that attach the offending entity
// - Error wrapping utilities
// - A collector for validation errors
package errors

import (
	"errors"
	"fmt"
)

// ============================================================================
// Sentinel errors
// ============================================================================

var (
	// ErrNotFound is returned when a required input file does not exist,
	// e.g. a chunk without a sidecar or archive.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous is returned when more than one candidate file matches
	// and strict file selection is enabled.
	ErrAmbiguous = errors.New("ambiguous match")

	// ErrFormat is returned when a name does not follow the expected
	// convention, e.g. a chunk directory without a numeric suffix.
	ErrFormat = errors.New("invalid format")

	// ErrLookup is returned when an image key or a field is missing from
	// the sidecar.
	ErrLookup = errors.New("lookup failed")

	// ErrWrite is returned when an output file cannot be created or written.
	ErrWrite = errors.New("write failed")

	// ErrValidation is returned for rejected configuration and arguments.
	ErrValidation = errors.New("validation failed")
)

// ============================================================================
// Helper functions for error checking
// ============================================================================

// Is is a convenience wrapper for errors.Is
var Is = errors.Is

// As is a convenience wrapper for errors.As
var As = errors.As

// Join is a convenience wrapper for errors.Join
var Join = errors.Join

// IsValidation returns true if err is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// ============================================================================
// Error wrapping utilities
// ============================================================================

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ============================================================================
// Error constructors with context
// ============================================================================

// NewNotFound creates a not-found error with context.
func NewNotFound(entityType, identifier string) error {
	return fmt.Errorf("%s '%s': %w", entityType, identifier, ErrNotFound)
}

// NewAmbiguous creates an ambiguous-match error listing the candidates.
func NewAmbiguous(entityType string, candidates []string) error {
	return fmt.Errorf("%s: %d candidates %v: %w", entityType, len(candidates), candidates, ErrAmbiguous)
}

// NewFormat creates a format error for a value that breaks a naming rule.
func NewFormat(entityType, value, reason string) error {
	return fmt.Errorf("%s '%s': %s: %w", entityType, value, reason, ErrFormat)
}

// NewLookup creates a lookup error for a key missing from a collection.
func NewLookup(collection, key string) error {
	return fmt.Errorf("key '%s' not in %s: %w", key, collection, ErrLookup)
}

// NewWrite wraps an I/O failure on an output path.
func NewWrite(path string, err error) error {
	return fmt.Errorf("%s: %w: %w", path, ErrWrite, err)
}

// NewValidation creates a validation error with context.
func NewValidation(field, reason string) error {
	return fmt.Errorf("invalid %s: %s: %w", field, reason, ErrValidation)
}

// NewInvalidValue creates an invalid value error.
func NewInvalidValue(field string, value interface{}, reason string) error {
	return fmt.Errorf("invalid %s '%v': %s: %w", field, value, reason, ErrValidation)
}

// ============================================================================
// Validation Errors Collection
// ============================================================================

// ValidationErrors collects multiple validation errors.
type ValidationErrors struct {
	Errors []error
}

// NewValidationErrors creates a new ValidationErrors collector.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

// Add adds an error to the collection.
func (v *ValidationErrors) Add(err error) {
	if err != nil {
		v.Errors = append(v.Errors, err)
	}
}

// AddField adds a field validation error.
func (v *ValidationErrors) AddField(field, reason string) {
	v.Errors = append(v.Errors, NewValidation(field, reason))
}

// HasErrors returns true if there are any errors.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface.
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}
	if len(v.Errors) == 1 {
		return v.Errors[0].Error()
	}

	msg := fmt.Sprintf("validation failed with %d errors:", len(v.Errors))
	for _, err := range v.Errors {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Err returns nil if no errors, otherwise returns the ValidationErrors.
func (v *ValidationErrors) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

// Unwrap returns the collected errors for errors.Is/As support.
func (v *ValidationErrors) Unwrap() []error {
	return v.Errors
}
