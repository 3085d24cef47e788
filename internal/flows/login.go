package flows

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/goSession/gateway"
	"github.com/MrEthical07/goSession/identity"
)

// AuthFailureKind classifies login, SSO, and register failures for
// root-level mapping.
type AuthFailureKind int

const (
	AuthFailureNone AuthFailureKind = iota
	// AuthFailureRejected covers bad credentials and validation errors. The
	// backend message is surfaced verbatim.
	AuthFailureRejected
	AuthFailureNetwork
	AuthFailureServer
	// AuthFailureMalformed is a success response that cannot start a session.
	AuthFailureMalformed
)

// AuthResult carries either a started session or failure metadata.
type AuthResult struct {
	Failure    AuthFailureKind
	Err        error
	Message    string
	Session    identity.Session
	Identity   identity.Identity
	Resolution Resolution
	Redirect   string
	// SignedIn is false for a registration the backend accepted without
	// issuing tokens.
	SignedIn bool
}

// LoginDeps captures login, SSO, and register dependencies.
type LoginDeps struct {
	Login     func(ctx context.Context, email, password string) (*gateway.AuthResponse, error)
	Register  func(ctx context.Context, req gateway.RegisterRequest) (*gateway.AuthResponse, error)
	ExpiresAt func(token string) (time.Time, bool)
	Verify    VerificationDeps
}

var errMissingCredentials = errors.New("email and password are required")

// RunLogin exchanges credentials and completes the session.
func RunLogin(ctx context.Context, email, password string, deps LoginDeps) AuthResult {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return AuthResult{Failure: AuthFailureRejected, Err: errMissingCredentials, Message: errMissingCredentials.Error()}
	}

	resp, err := deps.Login(ctx, email, password)
	if err != nil {
		return failed(err)
	}
	return CompleteAuth(ctx, resp, deps)
}

// RunRegister creates an account. When the backend signs the user in, the
// session is completed exactly as for a login.
func RunRegister(ctx context.Context, req gateway.RegisterRequest, deps LoginDeps) AuthResult {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return AuthResult{Failure: AuthFailureRejected, Err: errMissingCredentials, Message: errMissingCredentials.Error()}
	}
	if req.Role != "" {
		if _, ok := identity.ParseRole(req.Role); !ok {
			err := errors.New("unknown role " + req.Role)
			return AuthResult{Failure: AuthFailureRejected, Err: err, Message: err.Error()}
		}
	}

	resp, err := deps.Register(ctx, req)
	if err != nil {
		return failed(err)
	}
	if resp.AccessToken == "" && resp.Token == "" {
		return AuthResult{Identity: resp.User.ToIdentity()}
	}
	return CompleteAuth(ctx, resp, deps)
}

// CompleteAuth turns an auth response into a session and resolved identity.
// SSO payloads enter here directly.
func CompleteAuth(ctx context.Context, resp *gateway.AuthResponse, deps LoginDeps) AuthResult {
	if err := gateway.ValidateAuthResponse(resp); err != nil {
		return AuthResult{Failure: AuthFailureMalformed, Err: err}
	}

	sess := identity.Session{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	if deps.ExpiresAt != nil {
		if exp, ok := deps.ExpiresAt(resp.AccessToken); ok {
			sess.ExpiresAt = exp
		}
	}

	id := resp.User.ToIdentity()
	res := RunVerification(ctx, id, sess.AccessToken, deps.Verify)
	id = res.Apply(id)

	return AuthResult{
		Session:    sess,
		Identity:   id,
		Resolution: res,
		Redirect:   res.Redirect,
		SignedIn:   true,
	}
}

func failed(err error) AuthResult {
	out := AuthResult{Err: err, Message: gateway.MessageOf(err)}
	switch gateway.KindOf(err) {
	case gateway.KindUnauthorized, gateway.KindValidation:
		out.Failure = AuthFailureRejected
	case gateway.KindNetwork:
		out.Failure = AuthFailureNetwork
	default:
		out.Failure = AuthFailureServer
	}
	if out.Message == "" {
		out.Message = err.Error()
	}
	return out
}
