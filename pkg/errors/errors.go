// Package errors provides the coded errors netview returns across package
// boundaries.
//
// An [Error] carries a [Code], a message for the user and an optional
// cause. Codes group into classes that decide how the CLI reports a failure
// and which exit status it uses:
//
//	err := errors.New(errors.ErrCodeInvalidFilter, "unknown operator %q", op)
//	errors.Is(err, errors.ErrCodeInvalidFilter) // true
//	errors.ExitCode(err)                       // 2
//
// The filter and visibility stages recover locally from bad input, so in
// practice only storage, network and argument errors reach the user.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Code identifies a failure.
type Code string

const (
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidSession Code = "INVALID_SESSION"
	ErrCodeInvalidFilter  Code = "INVALID_FILTER"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"

	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound  Code = "SESSION_NOT_FOUND"
	ErrCodeSnapshotNotFound Code = "SNAPSHOT_NOT_FOUND"

	ErrCodeStorage Code = "STORAGE"
	ErrCodeNetwork Code = "NETWORK_ERROR"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Class groups codes by who has to act on them.
type Class int

const (
	ClassInternal Class = iota
	ClassInput          // the caller passed something unusable
	ClassNotFound       // a referenced session, snapshot or file is missing
	ClassIO             // a store or remote server failed
)

var classes = map[Code]Class{
	ErrCodeInvalidInput:     ClassInput,
	ErrCodeInvalidSession:   ClassInput,
	ErrCodeInvalidFilter:    ClassInput,
	ErrCodeInvalidFormat:    ClassInput,
	ErrCodeFileNotFound:     ClassNotFound,
	ErrCodeSessionNotFound:  ClassNotFound,
	ErrCodeSnapshotNotFound: ClassNotFound,
	ErrCodeStorage:          ClassIO,
	ErrCodeNetwork:          ClassIO,
}

// Class returns the class of c. Unknown codes are internal.
func (c Code) Class() Class { return classes[c] }

// Error is a coded error.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same code, so a bare &Error{Code: c} works
// as a target for the standard errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is [New] with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Is reports whether any error in err's chain carries code.
func Is(err error, code Code) bool {
	return err != nil && errors.Is(err, &Error{Code: code})
}

// GetCode returns the outermost code in err's chain, or "".
func GetCode(err error) Code {
	if e := outermost(err); e != nil {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the outermost coded error without its
// code, or err.Error() for uncoded errors.
func UserMessage(err error) string {
	if e := outermost(err); e != nil {
		return e.Message
	}
	return err.Error()
}

func outermost(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// Exit statuses returned by [ExitCode].
const (
	ExitFailure     = 1
	ExitUsage       = 2
	ExitNotFound    = 3
	ExitUnavailable = 4
	ExitInterrupted = 130
)

// ExitCode maps err to a process exit status: 0 for nil, 130 when the
// context was cancelled, otherwise by the class of its outermost code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	}
	switch GetCode(err).Class() {
	case ClassInput:
		return ExitUsage
	case ClassNotFound:
		return ExitNotFound
	case ClassIO:
		return ExitUnavailable
	}
	return ExitFailure
}
