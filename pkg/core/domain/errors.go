package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable category reported to callers.
type ErrorKind string

const (
	KindAuthentication ErrorKind = "authentication"
	KindNotFound       ErrorKind = "not_found"
	KindValidation     ErrorKind = "validation"
	KindStorage        ErrorKind = "storage"
)

// Error is the error type returned by services. Message is safe to show to
// clients; Err holds the underlying cause and is only logged.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Err     error     `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Invalid(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

// Storage wraps a persistence failure. The cause never reaches the client.
func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Message: "storage failure", Err: err}
}

// KindOf returns the kind of err, or KindStorage for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

func IsNotFound(err error) bool { return err != nil && KindOf(err) == KindNotFound }

func IsValidation(err error) bool { return err != nil && KindOf(err) == KindValidation }

// AsError converts any error into an *Error, wrapping foreign ones as storage.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Storage(err)
}
