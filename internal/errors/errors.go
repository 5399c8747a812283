// Package errors defines the stable error taxonomy for the load pipeline.
// Every record-level failure carries one of these codes so the run summary
// can classify skipped records without string matching.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all record-level failure modes
type ErrorCode string

const (
	// MissingKey indicates a required field (match_id) is absent from a record
	MissingKey ErrorCode = "MISSING_KEY"
	// DataIntegrity indicates a declared value disagrees with a computed one,
	// e.g. runs_total != runs_batter + runs_extras
	DataIntegrity ErrorCode = "DATA_INTEGRITY"
	// DuplicateMatch indicates re-ingestion of an already-loaded match_id
	// under the reject policy
	DuplicateMatch ErrorCode = "DUPLICATE_MATCH"
	// Storage indicates a transactional write failure; the in-flight match's
	// rows were rolled back
	Storage ErrorCode = "STORAGE"
	// BadRecord indicates a record that could not be decoded at all
	BadRecord ErrorCode = "BAD_RECORD"
)

// LoadError represents a record-level load failure with a stable code
type LoadError struct {
	Code    ErrorCode
	Message string
	cause   error
}

// New creates a LoadError with the given code and message
func New(code ErrorCode, message string) *LoadError {
	return &LoadError{Code: code, Message: message}
}

// Newf creates a LoadError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *LoadError {
	return &LoadError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a LoadError that wraps an underlying cause
func Wrap(code ErrorCode, message string, cause error) *LoadError {
	return &LoadError{Code: code, Message: message, cause: cause}
}

// Error implements the error interface
func (e *LoadError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *LoadError) Unwrap() error {
	return e.cause
}

// CodeOf returns the error code carried by err. Errors that did not
// originate in the parser or writer are classified as Storage.
func CodeOf(err error) ErrorCode {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return Storage
}

// HasCode reports whether err carries the given code
func HasCode(err error, code ErrorCode) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Code == code
}
