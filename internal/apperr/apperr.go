// Package apperr defines the error kinds reported by the order lifecycle.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so transports can map it to a status code.
type Kind string

const (
	KindInvalidReference Kind = "InvalidReference"
	KindInvalidState     Kind = "InvalidState"
	KindInvalidItem      Kind = "InvalidItem"
	KindEmptyOrder       Kind = "EmptyOrder"
	KindNoDroneAvailable Kind = "NoDroneAvailable"
	KindNotFound         Kind = "NotFound"
	KindPersistence      Kind = "PersistenceError"

	// Account kinds.
	KindInvalidInput Kind = "InvalidInput"
	KindConflict     Kind = "Conflict"
	KindUnauthorized Kind = "Unauthorized"
	KindForbidden    Kind = "Forbidden"
)

// Error is a classified failure of a lifecycle operation.
type Error struct {
	Kind Kind
	Op   string // operation name, e.g. "AssignDrone"
	Msg  string
	Err  error // underlying cause, usually a store error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrInvalidState)
// works regardless of op and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidReference = &Error{Kind: KindInvalidReference}
	ErrInvalidState     = &Error{Kind: KindInvalidState}
	ErrInvalidItem      = &Error{Kind: KindInvalidItem}
	ErrEmptyOrder       = &Error{Kind: KindEmptyOrder}
	ErrNoDroneAvailable = &Error{Kind: KindNoDroneAvailable}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrPersistence      = &Error{Kind: KindPersistence}
	ErrInvalidInput     = &Error{Kind: KindInvalidInput}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrUnauthorized     = &Error{Kind: KindUnauthorized}
	ErrForbidden        = &Error{Kind: KindForbidden}
)

// New builds an error of the given kind.
func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Persistence wraps a store failure. An error that is already classified is
// returned unchanged.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindPersistence, Op: op, Msg: "store failure", Err: err}
}

// KindOf returns the kind of err, or "" when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
