// Package domainerrors carries coded errors across service boundaries.
//
// Services return these (usually via New or Wrap) so transport layers can map a
// failure to a status code without inspecting message text. Stores should return
// pkg/platform/sentinel errors instead and let the service translate them.
package domainerrors

import (
	"errors"
)

// Code classifies an error for translation at the transport boundary.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_error"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInvalidTransition  Code = "invalid_transition"
	CodeIncrementViolation Code = "increment_violation"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeTimeout            Code = "timeout"
	CodeUnavailable        Code = "unavailable"
	CodeInternal           Code = "internal_error"
)

// Error is a coded domain error. Details, when set, is serialized to clients
// as-is (for example a list of field errors) and must not contain secrets.
type Error struct {
	Code    Code
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// NewWithDetails creates a coded error that carries client-visible details.
func NewWithDetails(code Code, message string, details any) error {
	return &Error{Code: code, Message: message, Details: details}
}

// Wrap annotates err with a code and message. Details of a wrapped coded error
// are kept so a validation list survives re-coding by an outer layer.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Details: DetailsOf(err), Err: err}
}

// HasCode reports whether the outermost coded error in err's chain has code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the outermost coded error, or CodeInternal when
// err carries no code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// DetailsOf returns the first non-nil Details found in err's chain.
func DetailsOf(err error) any {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return nil
		}
		if de.Details != nil {
			return de.Details
		}
		err = de.Err
	}
	return nil
}

// Is is errors.Is, re-exported so callers need a single import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
