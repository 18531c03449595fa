/*
errors.go - Centralized error types for the attendance ledger

ERROR CATEGORIES:
  1. Validation errors - malformed input, nothing was read or written
  2. Store errors - the backing medium failed, request is aborted
  3. Record errors - persisted data cannot be reconciled

NOT ERRORS:
  - No store yet: LoadAll returns an empty set
  - Departure without arrival: record is written without a duration
  - Malformed rows: skipped by store readers

USAGE:
  if ledger.IsClientError(err) {
      // tell the user how to fix the input
  }
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the parent of every input validation failure.
	ErrValidation = errors.New("invalid input")

	ErrInvalidTime  = errors.New("time must be HH:MM or HH:MM:SS")
	ErrInvalidDay   = errors.New("day must be YYYY-MM-DD")
	ErrInvalidField = errors.New("kind must be arrival/in or departure/out")
	ErrEmptyUser    = errors.New("user id is required")

	// ErrStoreFailure is returned when the backing medium cannot be read or
	// written. Previously persisted data is left untouched.
	ErrStoreFailure = errors.New("store failure")

	// ErrMalformedRecord is returned when a stored boundary time cannot be
	// parsed while recomputing the worked duration.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrDuplicateRecord is returned by backends that refuse a second row
	// for the same (user, day).
	ErrDuplicateRecord = errors.New("duplicate record for user and day")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError describes a rejected input value.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// MalformedRecordError names the stored boundary time that could not be
// parsed.
type MalformedRecordError struct {
	Day   string
	Field Field
	Value string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%v: %s %q on %s", ErrMalformedRecord, e.Field, e.Value, e.Day)
}

// Is makes every MalformedRecordError match ErrMalformedRecord.
func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformedRecord }

// StoreError wraps a backend failure with the operation that failed.
type StoreError struct {
	Op  string // "load", "rewrite", "append"
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreFailure }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrMalformedRecord)
}

// IsStoreFailure returns true if the backing medium failed.
func IsStoreFailure(err error) bool {
	return errors.Is(err, ErrStoreFailure)
}
