package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goSession/gateway"
	"github.com/MrEthical07/goSession/identity"
)

var (
	errTokenExpired   = errors.New("access token expired")
	errNoRefreshToken = errors.New("no refresh token")
)

// RefreshFailureKind classifies refresh failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureNoSession
	RefreshFailureNoRefreshToken
	// RefreshFailureRejected: the backend refused the refresh token.
	RefreshFailureRejected
	RefreshFailureNetwork
	RefreshFailureServer
)

// Terminal reports whether retrying cannot succeed without a new login.
func (k RefreshFailureKind) Terminal() bool {
	switch k {
	case RefreshFailureNoSession, RefreshFailureNoRefreshToken, RefreshFailureRejected:
		return true
	}
	return false
}

// RefreshResult carries the replacement session or failure metadata.
type RefreshResult struct {
	Failure RefreshFailureKind
	Err     error
	Session identity.Session
}

// RefreshDeps captures refresh dependencies.
type RefreshDeps struct {
	Current   func() (identity.Session, bool)
	Refresh   func(ctx context.Context, refreshToken string) (*gateway.TokenPair, error)
	ExpiresAt func(token string) (time.Time, bool)
}

// RunRefresh exchanges the current refresh token for a new session. The
// result replaces the session wholesale; a backend that does not rotate
// keeps the old refresh token.
func RunRefresh(ctx context.Context, deps RefreshDeps) RefreshResult {
	cur, ok := deps.Current()
	if !ok || cur.AccessToken == "" {
		return RefreshResult{Failure: RefreshFailureNoSession, Err: errors.New("no session")}
	}
	if !cur.HasRefreshToken() {
		return RefreshResult{Failure: RefreshFailureNoRefreshToken, Err: errNoRefreshToken}
	}

	pair, err := deps.Refresh(ctx, cur.RefreshToken)
	if err != nil {
		out := RefreshResult{Err: err}
		switch gateway.KindOf(err) {
		case gateway.KindUnauthorized:
			out.Failure = RefreshFailureRejected
		case gateway.KindNetwork:
			out.Failure = RefreshFailureNetwork
		default:
			out.Failure = RefreshFailureServer
		}
		return out
	}

	next := identity.Session{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}
	if next.RefreshToken == "" {
		next.RefreshToken = cur.RefreshToken
	}
	if deps.ExpiresAt != nil {
		if exp, ok := deps.ExpiresAt(next.AccessToken); ok {
			next.ExpiresAt = exp
		}
	}
	return RefreshResult{Session: next}
}
