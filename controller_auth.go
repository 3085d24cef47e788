package goSession

import (
	"context"
	"fmt"

	"github.com/MrEthical07/goSession/gateway"
	"github.com/MrEthical07/goSession/identity"
	"github.com/MrEthical07/goSession/internal/flows"
)

type authKind struct {
	event    string
	success  MetricID
	failure  MetricID
	rejected error
}

var (
	authLogin    = authKind{event: EventLogin, success: MetricLoginSuccess, failure: MetricLoginFailure, rejected: ErrInvalidCredentials}
	authSSO      = authKind{event: EventSSOLogin, success: MetricSSOLoginSuccess, failure: MetricSSOLoginFailure, rejected: ErrInvalidSSOPayload}
	authRegister = authKind{event: EventRegister, success: MetricRegisterSuccess, failure: MetricRegisterFailure, rejected: ErrRegistrationInvalid}
)

// Login exchanges credentials for a session, resolves the landing route and
// arms token renewal.
//
// A rejection wraps [ErrInvalidCredentials] and carries the backend message;
// use [MessageOf] to surface it. Transport failures wrap [ErrNetwork].
func (c *Controller) Login(ctx context.Context, email, password string) (Identity, error) {
	if c.isClosed() {
		return Identity{}, ErrControllerClosed
	}
	res := flows.RunLogin(ctx, email, password, c.flows.Login)
	return c.finishAuth(ctx, res, authLogin)
}

// LoginWithSSO starts a session from the payload of a completed external
// sign-in. The payload is the data; no login request is made.
func (c *Controller) LoginWithSSO(ctx context.Context, payload []byte) (Identity, error) {
	if c.isClosed() {
		return Identity{}, ErrControllerClosed
	}
	resp, err := gateway.ParseSSOPayload(payload)
	if err != nil {
		c.metricInc(authSSO.failure)
		c.emitAuthFailure(ctx, authSSO, err)
		return Identity{}, err
	}
	return c.LoginWithAuthResponse(ctx, resp)
}

// LoginWithAuthResponse is [Controller.LoginWithSSO] for a payload that was
// already decoded.
func (c *Controller) LoginWithAuthResponse(ctx context.Context, resp *gateway.AuthResponse) (Identity, error) {
	if c.isClosed() {
		return Identity{}, ErrControllerClosed
	}
	res := flows.CompleteAuth(ctx, resp, c.flows.Login)
	return c.finishAuth(ctx, res, authSSO)
}

// Register creates an account. If the backend signs the new user in, the
// session is started exactly as by [Controller.Login]; otherwise the returned
// identity is informational and the controller stays signed out.
func (c *Controller) Register(ctx context.Context, req RegisterRequest) (Identity, error) {
	if c.isClosed() {
		return Identity{}, ErrControllerClosed
	}
	res := flows.RunRegister(ctx, req, c.flows.Login)
	if res.Failure == flows.AuthFailureNone && !res.SignedIn {
		c.metricInc(authRegister.success)
		ev := c.identityEvent(EventRegister, res.Identity)
		ev.Metadata = map[string]string{"signed_in": "false"}
		c.emit(ctx, ev)
		return res.Identity, nil
	}
	return c.finishAuth(ctx, res, authRegister)
}

func (c *Controller) finishAuth(ctx context.Context, res flows.AuthResult, kind authKind) (Identity, error) {
	if res.Failure != flows.AuthFailureNone {
		err := authError(res, kind)
		c.metricInc(kind.failure)
		c.emitAuthFailure(ctx, kind, err)
		return Identity{}, err
	}

	id := res.Identity.WithDisplayName()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Identity{}, ErrControllerClosed
	}
	c.generation++
	c.session = res.Session
	c.identity = &id
	c.persistSessionLocked(res.Session)
	c.persistIdentityLocked(id)
	c.persistRedirectLocked(res.Redirect)
	c.scheduler.Disarm()
	c.armLocked(res.Session)
	c.mu.Unlock()

	c.metricInc(kind.success)
	c.recordVerification(ctx, id, res.Resolution)

	ev := c.identityEvent(kind.event, id)
	ev.Redirect = res.Redirect
	c.emit(ctx, ev)

	return id.Clone(), nil
}

func (c *Controller) emitAuthFailure(ctx context.Context, kind authKind, err error) {
	ev := c.newEvent(EventLoginFailed)
	ev.Error = MessageOf(err)
	ev.Metadata = map[string]string{"operation": kind.event, "kind": KindOf(err).String()}
	c.emit(ctx, ev)
}

func authError(res flows.AuthResult, kind authKind) error {
	switch res.Failure {
	case flows.AuthFailureRejected:
		return fmt.Errorf("%w: %w", kind.rejected, res.Err)
	case flows.AuthFailureNetwork:
		return fmt.Errorf("%w: %w", ErrNetwork, res.Err)
	case flows.AuthFailureMalformed:
		if kind.rejected == ErrInvalidSSOPayload {
			return res.Err
		}
		return fmt.Errorf("%w: %w", ErrServer, res.Err)
	default:
		return fmt.Errorf("%w: %w", ErrServer, res.Err)
	}
}

func (c *Controller) recordVerification(ctx context.Context, id identity.Identity, res flows.Resolution) {
	switch res.Outcome {
	case flows.OutcomeNone:
		return
	case flows.OutcomeExternalVerified:
		c.metricInc(MetricVerificationExternalVerified)
	case flows.OutcomeExternalIncomplete:
		c.metricInc(MetricVerificationExternalIncomplete)
	case flows.OutcomePlatformVerified:
		c.metricInc(MetricVerificationPlatformVerified)
	case flows.OutcomePlatformUnverified:
		c.metricInc(MetricVerificationPlatformUnverified)
	case flows.OutcomeCheckFailed:
		c.metricInc(MetricVerificationCheckFailed)
	}

	ev := c.identityEvent(EventVerificationResolved, id)
	ev.Redirect = res.Redirect
	ev.Metadata = map[string]string{"outcome": res.Outcome.String()}
	c.emit(ctx, ev)
}

// UpdateUser merges patch into the current identity and persists the result.
// Empty strings, nil flags and false values in patch never overwrite what is
// held. No network call is made and verification is not re-run.
func (c *Controller) UpdateUser(patch Identity) (Identity, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Identity{}, ErrControllerClosed
	}
	if c.identity == nil {
		c.mu.Unlock()
		return Identity{}, ErrNoSession
	}
	merged := identity.Strengthen(*c.identity, patch)
	c.identity = &merged
	c.persistIdentityLocked(merged)
	c.mu.Unlock()

	c.metricInc(MetricIdentityUpdated)
	c.emit(context.Background(), c.identityEvent(EventIdentityUpdated, merged))
	return merged.Clone(), nil
}
