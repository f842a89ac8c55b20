// Package errors provides a structured error type with wrapping and metadata
package errors

// Always import the project errors package as perr (platform/errors)

import (
	"context"
	stderrs "errors"
	"fmt"
)

// ErrorCode classifies failures across the pipeline
// Values are stable; add sparingly
type ErrorCode uint16

const (
	// ErrorCodeUnknown is for unclassified errors
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodeInvalidArgument is for bad command arguments or option combinations
	ErrorCodeInvalidArgument

	// ErrorCodeValidation is for option structs that fail validation rules
	ErrorCodeValidation

	// ErrorCodeNotFound is for missing files and missing lookup entries
	ErrorCodeNotFound

	// ErrorCodeConfig is for unusable configuration (bad profile file, decoder window too small)
	ErrorCodeConfig

	// ErrorCodeDecode is for compressed streams that cannot be decoded
	ErrorCodeDecode

	// ErrorCodeIO is for read and write failures on local files
	ErrorCodeIO

	// ErrorCodeCanceled is for passes interrupted by context cancellation
	ErrorCodeCanceled
)

// String returns a short label used in logs
func (c ErrorCode) String() string {
	switch c {
	case ErrorCodeInvalidArgument:
		return "invalid_argument"
	case ErrorCodeValidation:
		return "validation"
	case ErrorCodeNotFound:
		return "not_found"
	case ErrorCodeConfig:
		return "config"
	case ErrorCodeDecode:
		return "decode"
	case ErrorCodeIO:
		return "io"
	case ErrorCodeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// ExitCodeOf turns an ErrorCode into a process exit status.
// 2 is reserved for usage errors, following the flag package
func ExitCodeOf(c ErrorCode) int {
	switch c {
	case ErrorCodeInvalidArgument, ErrorCodeValidation:
		return 2
	case ErrorCodeConfig:
		return 3
	case ErrorCodeNotFound:
		return 4
	case ErrorCodeDecode:
		return 5
	case ErrorCodeIO:
		return 6
	case ErrorCodeCanceled:
		return 130
	default:
		return 1
	}
}

// ErrNotFound is a sentinel not found error for convenience
var ErrNotFound = New(ErrorCodeNotFound, "not found")

// Error is the structured error type with wrapping and metadata
// msg is human/developer facing; code is machine facing
// field is optional (for validation); op is optional operation tag
// orig is the wrapped cause
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
	op    string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped error, if any
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Message returns the message without the wrapped cause
func (e *Error) Message() string { return e.msg }

// Field returns the offending field, if any
func (e *Error) Field() string { return e.field }

// Op returns the operation label, if set
func (e *Error) Op() string { return e.op }

// Root returns the deepest wrapped cause
func Root(err error) error {
	for err != nil {
		u := stderrs.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
	return nil
}

// CodeOf extracts an ErrorCode from any error, defaulting to Unknown.
// Bare context errors map to Canceled so callers need not wrap them
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return ErrorCodeCanceled
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err has the given code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// ExitCode returns the mapped process exit status for any error; 0 for nil
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return ExitCodeOf(CodeOf(err))
}

// As unwraps and returns (*Error, true) if err is one of ours
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Mutators (copy-on-write)

// WithField attaches a field to an *Error (copy-on-write). If err isn't *Error, returns err unchanged
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// WithOp attaches an operation label to an *Error (copy-on-write). If err isn't *Error, returns err unchanged
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		c := *e
		c.op = op
		return &c
	}
	return err
}

// WithFieldChain sets field on *Error or wraps a foreign error into an *Error with Unknown code (copy-on-write)
func WithFieldChain(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return &Error{code: ErrorCodeUnknown, msg: err.Error(), field: field, orig: err}
}

// Constructors

// New returns a new *Error with the given code and message
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf returns a new *Error with code and formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns a new *Error that wraps orig with code and message
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf returns a new *Error that wraps orig with code and formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// WrapIf wraps only when err != nil (helper for 1-liners)
func WrapIf(err error, code ErrorCode, msg string) error {
	if err == nil {
		return nil
	}
	return Wrap(err, code, msg)
}

// Sugar

// NotFoundf returns a not found error
func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }

// InvalidArgf returns an invalid argument error
func InvalidArgf(format string, a ...any) error { return Newf(ErrorCodeInvalidArgument, format, a...) }

// Validationf returns a validation error
func Validationf(format string, a ...any) error { return Newf(ErrorCodeValidation, format, a...) }

// Configf returns a configuration error
func Configf(format string, a ...any) error { return Newf(ErrorCodeConfig, format, a...) }

// Decodef returns a decode error
func Decodef(format string, a ...any) error { return Newf(ErrorCodeDecode, format, a...) }

// IOf returns a local file error
func IOf(format string, a ...any) error { return Newf(ErrorCodeIO, format, a...) }

// Internalf returns a generic internal error
func Internalf(format string, a ...any) error { return Newf(ErrorCodeUnknown, format, a...) }

// Canceled wraps a context error observed mid-pass; nil stays nil
func Canceled(err error, op string) error {
	if err == nil {
		return nil
	}
	return WithOp(Wrap(err, ErrorCodeCanceled, "pass interrupted"), op)
}
