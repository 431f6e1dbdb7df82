// Package apperror defines the error kinds shared by every core operation so
// callers can tell guard failures, remote failures and local state problems
// apart without string matching.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindGuard           Kind = "guard"
	KindNotFound        Kind = "not_found"
	KindRemoteTransient Kind = "remote_transient"
	KindRemotePermanent Kind = "remote_permanent"
	KindJobNotReady     Kind = "job_not_ready"
	KindNoBackup        Kind = "no_backup_available"
	KindConflict        Kind = "conflict"
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
	KindInternal        Kind = "internal"
)

// Sentinels for errors.Is checks. Only the kind is compared.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrGuard           = &Error{Kind: KindGuard}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrRemoteTransient = &Error{Kind: KindRemoteTransient}
	ErrRemotePermanent = &Error{Kind: KindRemotePermanent}
	ErrJobNotReady     = &Error{Kind: KindJobNotReady}
	ErrNoBackup        = &Error{Kind: KindNoBackup}
	ErrConflict        = &Error{Kind: KindConflict}
)

// Error is the application error carried through use cases and adapters.
type Error struct {
	Kind       Kind
	Op         string
	Message    string
	Retryable  bool
	StatusCode int // remote HTTP status, 0 when not applicable
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New creates an Error of the given kind.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap creates an Error of the given kind around err.
func Wrap(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// Transient builds a retryable remote failure.
func Transient(op, message string, status int, err error) *Error {
	return &Error{Kind: KindRemoteTransient, Op: op, Message: message, Retryable: true, StatusCode: status, Err: err}
}

// Permanent builds a non-retryable remote failure.
func Permanent(op, message string, status int) *Error {
	return &Error{Kind: KindRemotePermanent, Op: op, Message: message, StatusCode: status}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsRetryable reports whether err is marked retryable.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// MessageOf returns the human readable message of err without the op prefix.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
