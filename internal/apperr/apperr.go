// Package apperr defines the application error taxonomy.
//
// Every error that crosses a service boundary is one of these kinds so
// the HTTP layer can map it to a status code without inspecting
// message strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind categorizes an error for the transport layer.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindCapacity
	KindAuthentication
	KindAuthorization
)

// Error carries a kind plus a caller-facing message. The wrapped cause,
// if any, is reachable through errors.Unwrap.
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

// Validation reports a missing or invalid request field.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a record that is absent or not owned by the caller.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a write that would collide with existing state.
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Capacity reports a bounded collection that is already full.
func Capacity(format string, args ...any) error {
	return &Error{Kind: KindCapacity, Message: fmt.Sprintf(format, args...)}
}

// Authentication reports a missing, invalid, or expired credential.
func Authentication(format string, args ...any) error {
	return &Error{Kind: KindAuthentication, Message: fmt.Sprintf(format, args...)}
}

// Authorization reports an authenticated caller that is not allowed in.
func Authorization(format string, args ...any) error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure.
func Internal(err error, message string) error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf extracts the kind of err, or KindInternal for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf extracts the caller-facing message of err. Plain errors get
// a generic message so internals never leak to clients.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}
