// Package apperr classifies failures so handlers can map them to HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the class of a failure.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindStore      Kind = "store"
	KindStorage    Kind = "storage"
	KindUpstream   Kind = "upstream"
)

// Error carries the operation that failed and its kind.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, &Error{Kind: KindNotFound}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == ""
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Validation reports a missing or malformed input. The message is returned to the caller as is.
func Validation(op, msg string) *Error {
	return newError(KindValidation, op, errors.New(msg))
}

// NotFound reports a referenced resource that does not exist.
func NotFound(op, msg string) *Error {
	return newError(KindNotFound, op, errors.New(msg))
}

// Store wraps a database failure.
func Store(op string, err error) *Error {
	return newError(KindStore, op, err)
}

// Storage wraps an object storage failure.
func Storage(op string, err error) *Error {
	return newError(KindStorage, op, err)
}

// Upstream wraps a failure of an external service such as the training pipeline.
func Upstream(op string, err error) *Error {
	return newError(KindUpstream, op, err)
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Status maps err to an HTTP status code. Unclassified errors are 500.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text shown to API clients. Validation and not-found
// errors expose only their own message; other kinds keep the underlying cause.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	switch e.Kind {
	case KindValidation, KindNotFound:
		if e.Err != nil {
			return e.Err.Error()
		}
		return string(e.Kind)
	case KindStore:
		return "Database error: " + unwrapMessage(e)
	case KindStorage:
		return "S3 error: " + unwrapMessage(e)
	default:
		return unwrapMessage(e)
	}
}

func unwrapMessage(e *Error) string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}
