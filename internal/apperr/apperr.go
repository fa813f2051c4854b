// Package apperr classifies failures so the HTTP boundary can map them to a
// status code and a user-facing message in one place.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is the category of a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindMethod
	KindAuth
	KindAuthorization
	KindNotFound
	KindUpstreamFetch
	KindPayloadShape
	KindStorage
	KindConfiguration
)

var kindNames = map[Kind]string{
	KindUnknown:       "unknown",
	KindValidation:    "validation",
	KindMethod:        "method",
	KindAuth:          "auth",
	KindAuthorization: "authorization",
	KindNotFound:      "not_found",
	KindUpstreamFetch: "upstream_fetch",
	KindPayloadShape:  "payload_shape",
	KindStorage:       "storage",
	KindConfiguration: "configuration",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Status returns the HTTP status for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindMethod:
		return http.StatusMethodNotAllowed
	case KindAuth:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a kind, the message shown to the caller and the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of the given kind with no cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap attaches a kind and message to err.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusOf maps err to an HTTP status. Unclassified errors are 500.
func StatusOf(err error) int {
	return KindOf(err).Status()
}

// MessageOf returns the user-facing message for err. Unclassified errors get
// the generic fallback so internal details never leak.
func MessageOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
