// Package apperr defines the error taxonomy shared by all layers so handlers
// can map failures to HTTP statuses without inspecting store-specific errors.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport-level mapping.
type Kind int

const (
	// KindUnknown covers internal failures not worth exposing to callers.
	KindUnknown Kind = iota
	// KindValidation indicates malformed or missing caller input.
	KindValidation
	// KindAuth indicates a missing/invalid credential or an ownership violation.
	KindAuth
	// KindNotFound indicates a missing entity or an empty list result.
	KindNotFound
	// KindConflict indicates a uniqueness violation.
	KindConflict
	// KindUpload indicates an asset store failure during two-phase creation.
	KindUpload
	// KindPersistence indicates a database failure during two-phase creation.
	KindPersistence
)

// Error carries a classification plus a message safe to return to callers.
// The wrapped cause, if any, stays server-side.
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

func (e *Error) Unwrap() error { return e.Err }

// Is matches two apperr values by Kind so tests can assert classifications
// with errors.Is against the package-level prototypes below.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// Prototypes for errors.Is comparisons.
var (
	ErrValidation  = &Error{Kind: KindValidation, Msg: "validation failed"}
	ErrAuth        = &Error{Kind: KindAuth, Msg: "unauthorized"}
	ErrNotFound    = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrConflict    = &Error{Kind: KindConflict, Msg: "conflict"}
	ErrUpload      = &Error{Kind: KindUpload, Msg: "upload failed"}
	ErrPersistence = &Error{Kind: KindPersistence, Msg: "persistence failed"}
)

// New constructs a classified error with a caller-facing message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap constructs a classified error retaining the underlying cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Validation reports a caller-input failure.
func Validation(msg string) *Error { return New(KindValidation, msg) }

// Auth reports a credential or ownership failure.
func Auth(msg string) *Error { return New(KindAuth, msg) }

// NotFound reports a missing entity or empty result set.
func NotFound(msg string) *Error { return New(KindNotFound, msg) }

// Conflict reports a uniqueness violation.
func Conflict(msg string) *Error { return New(KindConflict, msg) }

// KindOf extracts the classification from any error chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the caller-safe message for an error chain, falling back to
// a generic string for unclassified errors.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal server error"
}
