package enrich

import (
	"errors"
	"net/http"
)

// Kind is a semantic failure category of an enrichment run.
type Kind interface {
	error
	isKind()
}

type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

var (
	// ErrInvalidInput means the request itself cannot be enriched.
	ErrInvalidInput Kind = kind{"INVALID_INPUT"}
	// ErrConfiguration means a required credential or option is missing.
	// No stage runs when it is returned.
	ErrConfiguration Kind = kind{"CONFIGURATION"}
	// ErrSourceUnavailable means no candidate URL yielded content.
	ErrSourceUnavailable Kind = kind{"SOURCE_UNAVAILABLE"}
	// ErrExtraction means the model returned empty or unparseable output.
	ErrExtraction Kind = kind{"EXTRACTION"}
	// ErrCanceled means the caller's context ended before the run finished.
	ErrCanceled Kind = kind{"CANCELED"}
)

// Error is a failed enrichment run. It matches its Kind and its cause with
// errors.Is and errors.As.
type Error struct {
	Kind      Kind
	ContactID string
	Msg       string
	Err       error
}

func newError(k Kind, contactID string, err error, msg string) *Error {
	return &Error{Kind: k, ContactID: contactID, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	case e.Kind != nil:
		return e.Kind.Error()
	default:
		return "unknown error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches either the kind sentinel or the wrapped cause.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return false
	}
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

// KindOf returns the kind of err, or nil when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}

// ContactIDOf returns the contact id carried by err, if any.
func ContactIDOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.ContactID
	}
	return ""
}

// Message is the human-readable text for an error response: the message of
// an *Error without its cause, or err.Error() otherwise.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// HTTPStatus maps err to the status code an API caller should see.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case ErrInvalidInput:
		return http.StatusBadRequest
	case ErrSourceUnavailable:
		return http.StatusNotFound
	case ErrCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
