package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goSession/gateway"
	"github.com/MrEthical07/goSession/identity"
)

// BootstrapOutcome is how startup settled.
type BootstrapOutcome uint8

const (
	// BootstrapUnauthenticated: no stored access token.
	BootstrapUnauthenticated BootstrapOutcome = iota
	// BootstrapExpired: the stored token is past its expiry. State must be
	// cleared.
	BootstrapExpired
	// BootstrapVerified: the server identity was fetched and merged.
	BootstrapVerified
	// BootstrapDegraded: the fetch failed and the cached identity is kept.
	BootstrapDegraded
	// BootstrapCleared: the fetch failed with nothing cached. State must be
	// cleared.
	BootstrapCleared
)

func (o BootstrapOutcome) String() string {
	switch o {
	case BootstrapExpired:
		return "expired"
	case BootstrapVerified:
		return "verified"
	case BootstrapDegraded:
		return "degraded"
	case BootstrapCleared:
		return "cleared"
	default:
		return "unauthenticated"
	}
}

// Authenticated reports whether the outcome leaves a usable session.
func (o BootstrapOutcome) Authenticated() bool {
	return o == BootstrapVerified || o == BootstrapDegraded
}

// BootstrapResult carries the recovered session or the reason there is none.
type BootstrapResult struct {
	Outcome    BootstrapOutcome
	Err        error
	Session    identity.Session
	Identity   identity.Identity
	Resolution Resolution
	Redirect   string
	// Retried is set when an auth rejection was answered with a refresh and
	// a second fetch.
	Retried bool
}

// BootstrapDeps captures startup dependencies. Refresh is optional; it must
// go through the same guarded routine as every other refresh trigger and
// return the session it persisted.
type BootstrapDeps struct {
	LoadSession   func() (identity.Session, bool)
	LoadIdentity  func() (identity.Identity, bool)
	Now           func() time.Time
	FetchIdentity func(ctx context.Context, accessToken string) (*gateway.UserPayload, error)
	Refresh       func(ctx context.Context) (identity.Session, error)
	Verify        VerificationDeps
	Warn          func(string, ...any)
}

// RunBootstrap restores a session at startup: load cache, validate expiry,
// refresh identity, run the cascade.
func RunBootstrap(ctx context.Context, deps BootstrapDeps) BootstrapResult {
	sess, ok := deps.LoadSession()
	if !ok || sess.AccessToken == "" {
		return BootstrapResult{Outcome: BootstrapUnauthenticated}
	}
	if sess.Expired(deps.Now()) {
		return BootstrapResult{Outcome: BootstrapExpired, Err: errTokenExpired}
	}

	cached, hasCached := deps.LoadIdentity()

	user, err := deps.FetchIdentity(ctx, sess.AccessToken)
	retried := false
	if err != nil && gateway.IsUnauthorized(err) && deps.Refresh != nil && sess.HasRefreshToken() {
		renewed, rerr := deps.Refresh(ctx)
		if rerr == nil {
			sess = renewed
			retried = true
			user, err = deps.FetchIdentity(ctx, sess.AccessToken)
		} else if deps.Warn != nil {
			deps.Warn("goSession: bootstrap refresh failed", "error", rerr)
		}
	}

	if err != nil {
		if deps.Warn != nil {
			deps.Warn("goSession: identity fetch failed", "error", err, "cached", hasCached)
		}
		if !hasCached {
			return BootstrapResult{Outcome: BootstrapCleared, Err: err, Retried: retried}
		}
		return BootstrapResult{
			Outcome:  BootstrapDegraded,
			Err:      err,
			Session:  sess,
			Identity: cached,
			Redirect: RouteFor(cached, deps.Verify.Routes),
			Retried:  retried,
		}
	}

	merged := identity.Overlay(cached, user.ToIdentity())
	res := RunVerification(ctx, merged, sess.AccessToken, deps.Verify)
	merged = res.Apply(merged)

	return BootstrapResult{
		Outcome:    BootstrapVerified,
		Session:    sess,
		Identity:   merged,
		Resolution: res,
		Redirect:   res.Redirect,
		Retried:    retried,
	}
}
