// Package models defines the data structures for the lifecycle intelligence engine.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	ErrEmptyTransactionID = errors.New("transaction_id cannot be empty")
	ErrEmptyCustomerID    = errors.New("customer_id cannot be empty")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInvalidDate        = errors.New("transaction_date is missing or unparseable")
)

// SchemaError reports required columns absent from an input table. It is
// surfaced unmodified to the caller; no stage recovers from it locally.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// NewSchemaError creates a SchemaError for the given missing columns.
func NewSchemaError(missing ...string) *SchemaError {
	return &SchemaError{Missing: missing}
}

// InvalidArgumentError reports a caller-supplied parameter that violates a
// precondition (negative window length, inverted date range, and so on).
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return "invalid argument: " + e.Reason
}

// NewInvalidArgumentError creates an InvalidArgumentError with the given reason.
func NewInvalidArgumentError(format string, args ...interface{}) *InvalidArgumentError {
	return &InvalidArgumentError{Reason: fmt.Sprintf(format, args...)}
}

// EmptyInputError reports that a snapshot date could not be inferred because
// the transaction set is empty and no explicit date was provided.
type EmptyInputError struct {
	Reason string
}

func (e *EmptyInputError) Error() string {
	return "empty input: " + e.Reason
}

// ConfigurationError reports a static weight or threshold table that failed an
// internal consistency check. It is fatal at package initialization and never
// recoverable per-call.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// IsSchemaError reports whether err is (or wraps) a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// IsInvalidArgument reports whether err is (or wraps) an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	var ie *InvalidArgumentError
	return errors.As(err, &ie)
}

// IsEmptyInput reports whether err is (or wraps) an EmptyInputError.
func IsEmptyInput(err error) bool {
	var ee *EmptyInputError
	return errors.As(err, &ee)
}
