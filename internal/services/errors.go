package services

import (
	"errors"
)

// Kind classifies every error the directory service returns, so the HTTP
// layer can map each one to a stable status without inspecting messages.
type Kind int

const (
	// KindValidation: missing or malformed input, user-correctable.
	KindValidation Kind = iota
	// KindConflict: uniqueness violations (taken username, duplicate link,
	// existing category).
	KindConflict
	// KindAuth: missing/invalid/expired token or bad credentials. The same
	// shape covers "user not found" and "wrong password".
	KindAuth
	// KindForbidden: authenticated but insufficient privilege or ownership.
	KindForbidden
	// KindNotFound: referenced id or name absent.
	KindNotFound
	// KindStorage: engine-level failure. Logged; callers only see a generic
	// message.
	KindStorage
)

type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func conflictError(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func authError(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg}
}

func forbiddenError(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func notFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func storageError(cause error) *Error {
	return &Error{Kind: KindStorage, Message: "storage failure", cause: cause}
}

// KindOf extracts the Kind from any error returned by the service. Unknown
// errors count as storage failures.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindStorage
}
