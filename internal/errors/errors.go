// Package errors defines the error taxonomy of a reconciliation run.
// Every error here is handled locally by the stage that raises it; none of
// them aborts a run.
package errors

import (
	"errors"
	"fmt"
)

// New is errors.New, re-exported so callers need only one errors import.
var New = errors.New

// Sentinels for errors.Is checks.
var (
	// ErrMalformedRecord marks an input row that failed marshalling.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrInputUnavailable marks an input source that could not be opened or read.
	ErrInputUnavailable = errors.New("input unavailable")

	// ErrOutputUnavailable marks a carrier sink that could not be opened or written.
	ErrOutputUnavailable = errors.New("output unavailable")
)

// MalformedRecordError describes a rejected input row.
type MalformedRecordError struct {
	Line   int
	Row    string
	Reason string
	Err    error
}

// Error implements the error interface
func (e *MalformedRecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("bad record at line %d %q: %s", e.Line, e.Row, e.Reason)
	}
	return fmt.Sprintf("bad record %q: %s", e.Row, e.Reason)
}

// Unwrap implements errors.Unwrap
func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// NewMalformedRecordError creates a new MalformedRecordError
func NewMalformedRecordError(line int, row, reason string, err error) *MalformedRecordError {
	return &MalformedRecordError{Line: line, Row: row, Reason: reason, Err: err}
}

// InputUnavailableError is returned when the input source cannot be read.
type InputUnavailableError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *InputUnavailableError) Error() string {
	return fmt.Sprintf("input %s unavailable: %v", e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *InputUnavailableError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *InputUnavailableError) Is(target error) bool {
	return target == ErrInputUnavailable
}

// NewInputUnavailableError creates a new InputUnavailableError
func NewInputUnavailableError(path string, err error) *InputUnavailableError {
	return &InputUnavailableError{Path: path, Err: err}
}

// OutputUnavailableError is returned when one carrier's output cannot be written
// to a sink. Other carriers are unaffected.
type OutputUnavailableError struct {
	Sink    string
	Carrier string
	Err     error
}

// Error implements the error interface
func (e *OutputUnavailableError) Error() string {
	return fmt.Sprintf("%s output for carrier %q unavailable: %v", e.Sink, e.Carrier, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *OutputUnavailableError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *OutputUnavailableError) Is(target error) bool {
	return target == ErrOutputUnavailable
}

// NewOutputUnavailableError creates a new OutputUnavailableError
func NewOutputUnavailableError(sink, carrier string, err error) *OutputUnavailableError {
	return &OutputUnavailableError{Sink: sink, Carrier: carrier, Err: err}
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
