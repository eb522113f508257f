// Package errs defines coded application errors for the state layer.
//
// The codes split into two families: InvariantViolation marks bugs in an
// upstream collaborator (duplicate survey id, spurious remove, store misuse)
// and must never be swallowed; NotFound and DecodeError are recoverable and
// callers degrade to empty values on them.
package errs

import "errors"

// Code is an application error code.
type Code string

const (
	InvalidArgument    Code = "invalid_argument"
	NotFound           Code = "not_found"
	DecodeError        Code = "decode_error"
	InvariantViolation Code = "invariant_violation"
	Unavailable        Code = "unavailable"
	Internal           Code = "internal"
)

// Error is a coded application error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
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
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a coded error with message.
func New(code Code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a coded error with message and cause.
func Wrap(code Code, message string, cause error) error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     cause,
	}
}

// CodeOf returns the error code, defaulting to internal.
func CodeOf(err error) Code {
	if err == nil {
		return Internal
	}
	var coded *Error
	if errors.As(err, &coded) {
		if coded.Code == "" {
			return Internal
		}
		return coded.Code
	}
	return Internal
}

// IsInvariantViolation reports whether err marks a non-recoverable logic bug.
func IsInvariantViolation(err error) bool {
	return err != nil && CodeOf(err) == InvariantViolation
}

// IsNotFound reports whether err is a recoverable not-found condition.
func IsNotFound(err error) bool {
	return err != nil && CodeOf(err) == NotFound
}

// IsDecodeError reports whether err came from unparsable persisted data.
// Callers are expected to substitute an empty collection on it.
func IsDecodeError(err error) bool {
	return err != nil && CodeOf(err) == DecodeError
}
