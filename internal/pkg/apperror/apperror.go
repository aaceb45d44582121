// Package apperror defines the error taxonomy shared by services and the
// HTTP layer. Controllers never inspect error strings; they rely on Kind.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindValidation is malformed input detected before any mutation (400).
	KindValidation Kind = iota
	// KindAuth is a missing, invalid, or expired token (401).
	KindAuth
	// KindNotFound covers both "absent" and "not owned" so callers cannot
	// probe for the existence of other users' resources (404).
	KindNotFound
	// KindPermission is an ownership failure on a resource the caller could
	// legitimately name, e.g. a bulk blob delete with zero owned URLs (403).
	KindPermission
	// KindStorage is an external blob store failure (500).
	KindStorage
	// KindInternal is an unexpected database or infrastructure failure (500).
	KindInternal
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func Auth(message string) *Error {
	return New(KindAuth, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Permission(message string) *Error {
	return New(KindPermission, message)
}

func Storage(message string, err error) *Error {
	return Wrap(KindStorage, message, err)
}

func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// KindOf reports the taxonomy kind of err, defaulting to KindInternal for
// errors that did not originate in this package.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
