// Package errs defines the error taxonomy shared by the store, the
// repositories and the HTTP adapter.
package errs

import (
	"errors"
	"fmt"
)

type Code int

const (
	Unknown Code = iota
	// ValidationError means caller input violates a stated constraint.
	ValidationError
	// NotFound means a referenced id does not exist.
	NotFound
	// InvalidOperation means the operation does not apply to the entity's current state.
	InvalidOperation
	// StorageUnavailable means the durable medium could not be read or written.
	StorageUnavailable
	// CorruptState means the persisted artifact exists but cannot be trusted.
	CorruptState
	// CommitFailed means a mutation was computed but could not be persisted.
	CommitFailed
	// Forbidden means the caller may not act on the entity.
	Forbidden
)

func (c Code) String() string {
	switch c {
	case ValidationError:
		return "ValidationError"
	case NotFound:
		return "NotFound"
	case InvalidOperation:
		return "InvalidOperation"
	case StorageUnavailable:
		return "StorageUnavailable"
	case CorruptState:
		return "CorruptState"
	case CommitFailed:
		return "CommitFailed"
	case Forbidden:
		return "Forbidden"
	}
	return "Unknown"
}

// Client reports whether errors of this code are caused by the caller and
// may be shown to end users verbatim.
func (c Code) Client() bool {
	switch c {
	case ValidationError, NotFound, InvalidOperation, Forbidden:
		return true
	}
	return false
}

// Error carries a taxonomy code, a user-facing message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Code.String() + ": " + e.Err.Error()
	}
	return e.Code.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the bare sentinels below by code, so errors.Is(err, ErrNotFound)
// holds for any NotFound error regardless of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Message != "" || t.Err != nil {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrValidation         = &Error{Code: ValidationError}
	ErrNotFound           = &Error{Code: NotFound}
	ErrInvalidOperation   = &Error{Code: InvalidOperation}
	ErrStorageUnavailable = &Error{Code: StorageUnavailable}
	ErrCorruptState       = &Error{Code: CorruptState}
	ErrCommitFailed       = &Error{Code: CommitFailed}
	ErrForbidden          = &Error{Code: Forbidden}
)

func Validation(format string, args ...any) error {
	return &Error{Code: ValidationError, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &Error{Code: NotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidOperationf(format string, args ...any) error {
	return &Error{Code: InvalidOperation, Message: fmt.Sprintf(format, args...)}
}

func Forbiddenf(format string, args ...any) error {
	return &Error{Code: Forbidden, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to a lower level cause.
func Wrap(code Code, err error, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf returns the code of the outermost *Error in err's chain, or Unknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Unknown
}

// MessageOf returns the message of the outermost *Error in err's chain.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
