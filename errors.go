package goSession

import (
	"errors"

	"github.com/MrEthical07/goSession/gateway"
)

var (
	// ErrInvalidCredentials is returned when the backend rejects a login. The
	// joined error carries the backend message verbatim.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRegistrationInvalid is returned when the backend rejects a registration.
	ErrRegistrationInvalid = errors.New("invalid registration")
	// ErrInvalidSSOPayload is returned when an SSO payload cannot start a session.
	ErrInvalidSSOPayload = gateway.ErrInvalidSSOPayload
	// ErrUnauthorized is returned for a 401/403 from the backend outside login.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNetwork is returned when the backend could not be reached.
	ErrNetwork = errors.New("network failure")
	// ErrServer is returned for a backend failure that is neither an auth
	// rejection nor a validation error.
	ErrServer = errors.New("server failure")
	// ErrNoSession is returned by operations that need a signed-in session.
	ErrNoSession = errors.New("no session")
	// ErrNoRefreshToken is returned when a refresh is needed but none is held.
	ErrNoRefreshToken = errors.New("no refresh token")
	// ErrSessionExpired is returned when the stored access token has lapsed.
	ErrSessionExpired = errors.New("session expired")
	// ErrControllerClosed is returned by every operation after Close.
	ErrControllerClosed = errors.New("controller closed")
)

// ErrorKind is the failure taxonomy surfaced to callers.
type ErrorKind uint8

const (
	ErrorKindNone ErrorKind = iota
	// ErrorKindUnauthorized triggers a refresh attempt, not a logout.
	ErrorKindUnauthorized
	// ErrorKindNetwork degrades to the cached identity where available.
	ErrorKindNetwork
	// ErrorKindValidation is surfaced verbatim and never retried.
	ErrorKindValidation
	ErrorKindServer
	// ErrorKindStorage is never escalated; it exists for logging and metrics.
	ErrorKindStorage
	ErrorKindOther
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNone:
		return "none"
	case ErrorKindUnauthorized:
		return "unauthorized"
	case ErrorKindNetwork:
		return "network"
	case ErrorKindValidation:
		return "validation"
	case ErrorKindServer:
		return "server"
	case ErrorKindStorage:
		return "storage"
	default:
		return "other"
	}
}

// KindOf classifies err. Sentinels of this package win over the wrapped
// gateway error, so a login rejected with 401 is still a validation failure.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ErrorKindNone
	}
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrRegistrationInvalid), errors.Is(err, ErrInvalidSSOPayload):
		return ErrorKindValidation
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrNoRefreshToken), errors.Is(err, ErrSessionExpired):
		return ErrorKindUnauthorized
	case errors.Is(err, ErrNetwork):
		return ErrorKindNetwork
	case errors.Is(err, ErrServer):
		return ErrorKindServer
	}
	switch gateway.KindOf(err) {
	case gateway.KindUnauthorized:
		return ErrorKindUnauthorized
	case gateway.KindValidation:
		return ErrorKindValidation
	case gateway.KindNetwork:
		return ErrorKindNetwork
	case gateway.KindServer:
		return ErrorKindServer
	}
	return ErrorKindOther
}

// MessageOf returns the user-facing message of err: the backend's own text
// when it sent one, err.Error() otherwise.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	if msg := gateway.MessageOf(err); msg != "" {
		return msg
	}
	return err.Error()
}

// sentinelFor maps a gateway failure to this package's sentinel.
func sentinelFor(err error) error {
	switch gateway.KindOf(err) {
	case gateway.KindUnauthorized:
		return ErrUnauthorized
	case gateway.KindValidation:
		return ErrInvalidCredentials
	case gateway.KindNetwork:
		return ErrNetwork
	default:
		return ErrServer
	}
}
