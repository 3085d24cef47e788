package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a gateway failure.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindUnauthorized
	KindValidation
	KindServer
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Error is the typed failure returned by every gateway call.
type Error struct {
	Op      string
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status > 0 {
		return fmt.Sprintf("gateway %s: %s (status %d): %s", e.Op, e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("gateway %s: %s: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindForStatus maps an HTTP status to a failure kind. 2xx maps to KindUnknown.
func KindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusBadRequest, status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		return KindValidation
	case status >= 200 && status < 300:
		return KindUnknown
	default:
		return KindServer
	}
}

// KindOf returns the kind carried by err, or KindUnknown when err is not a
// gateway error.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return KindUnknown
}

// IsUnauthorized reports whether err is an auth rejection (401/403).
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}

// MessageOf returns the backend-supplied message of err, if any.
func MessageOf(err error) string {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Message
	}
	return ""
}

func networkError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindNetwork, Err: err}
}
