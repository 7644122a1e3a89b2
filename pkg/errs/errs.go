// Package errs classifies failures raised while handling a client event so
// that callers can react per kind instead of collapsing everything into one
// generic string.
package errs

import (
	"errors"
	"fmt"
)

// Kind is the failure category of an Error.
type Kind int

const (
	// KindInternal is any unexpected failure.
	KindInternal Kind = iota
	// KindUnauthenticated is a missing or invalid credential.
	KindUnauthenticated
	// KindAccessDenied is a non-member acting on a chat or message.
	KindAccessDenied
	// KindNotFound is an unknown entity id.
	KindNotFound
	// KindValidation is a malformed envelope or payload.
	KindValidation
	// KindDuplicate is a uniqueness conflict reported by the store.
	KindDuplicate
)

// Error carries a kind together with a human-readable message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

// Unwrap exposes the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an Error of the given kind around a cause.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Unauthenticated builds a KindUnauthenticated error.
func Unauthenticated(msg string) error { return New(KindUnauthenticated, msg) }

// AccessDenied builds a KindAccessDenied error.
func AccessDenied(msg string) error { return New(KindAccessDenied, msg) }

// NotFound builds a KindNotFound error.
func NotFound(msg string) error { return New(KindNotFound, msg) }

// Validation builds a KindValidation error.
func Validation(msg string) error { return New(KindValidation, msg) }

// KindOf reports the kind of err, KindInternal when unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
