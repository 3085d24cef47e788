package goSession

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MrEthical07/goSession/identity"
	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/refresh"
)

/*
====================================
BOOTSTRAP
====================================
*/

// Bootstrap restores the persisted session at startup. A known-expired token
// is cleared without any network call. Otherwise the identity is fetched
// from the backend and merged over the cached snapshot; if the fetch fails
// the cached identity is kept when there is one. Renewal is armed for every
// outcome that leaves a session.
//
// The returned error describes why a session was cleared or degraded; the
// controller state is usable either way. Loading turns false when Bootstrap
// returns.
func (c *Controller) Bootstrap(ctx context.Context) (BootstrapOutcome, error) {
	if c.isClosed() {
		return BootstrapUnauthenticated, ErrControllerClosed
	}

	res := flows.RunBootstrap(ctx, c.flows.Bootstrap)

	var err error
	switch res.Outcome {
	case flows.BootstrapUnauthenticated:
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
		c.metricInc(MetricBootstrapUnauthenticated)

	case flows.BootstrapExpired, flows.BootstrapCleared:
		c.scheduler.Disarm()
		c.mu.Lock()
		c.clearSessionKeysLocked()
		c.clearMemoryLocked()
		c.loading = false
		c.mu.Unlock()
		if res.Outcome == flows.BootstrapExpired {
			c.metricInc(MetricBootstrapExpired)
			err = ErrSessionExpired
		} else {
			c.metricInc(MetricBootstrapCleared)
			err = fmt.Errorf("%w: %w", sentinelFor(res.Err), res.Err)
		}

	case flows.BootstrapVerified, flows.BootstrapDegraded:
		id := res.Identity.WithDisplayName()
		c.mu.Lock()
		if !c.closed && c.session.AccessToken == res.Session.AccessToken {
			c.session = res.Session
			c.identity = &id
			c.persistSessionLocked(res.Session)
			c.persistIdentityLocked(id)
			// The landing route is only exposed in memory; the persisted
			// hint belongs to login.
			c.redirect = res.Redirect
			c.armLocked(res.Session)
		}
		c.loading = false
		c.mu.Unlock()

		if res.Outcome == flows.BootstrapVerified {
			c.metricInc(MetricBootstrapVerified)
			c.recordVerification(ctx, id, res.Resolution)
		} else {
			c.metricInc(MetricBootstrapDegraded)
			err = fmt.Errorf("%w: %w", sentinelFor(res.Err), res.Err)
		}
	}

	ev := c.newEvent(EventBootstrapComplete)
	ev.Success = res.Outcome.Authenticated()
	ev.UserID = res.Identity.ID
	ev.Role = string(res.Identity.Role)
	ev.Redirect = res.Redirect
	ev.Metadata = map[string]string{
		"outcome": res.Outcome.String(),
		"retried": strconv.FormatBool(res.Retried),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	c.emit(ctx, ev)

	return res.Outcome, err
}

// adoptStoredSession loads the persisted tokens and makes them current so a
// bootstrap refresh renews them through the guarded routine.
func (c *Controller) adoptStoredSession() (identity.Session, bool) {
	sess, ok := c.loadStoredSession()
	if !ok {
		return identity.Session{}, false
	}
	c.mu.Lock()
	c.generation++
	c.session = sess
	c.mu.Unlock()
	return sess, true
}

func (c *Controller) bootstrapRefresh(ctx context.Context) (identity.Session, error) {
	if _, err := c.scheduler.Trigger(ctx, refresh.TriggerBootstrap); err != nil {
		return identity.Session{}, err
	}
	sess, _ := c.currentSession()
	return sess, nil
}

/*
====================================
REFRESH
====================================
*/

// Refresh renews the session now. A refresh already in flight is joined
// instead of starting a second network call. Failures leave the current
// session in place.
func (c *Controller) Refresh(ctx context.Context) (Session, error) {
	if c.isClosed() {
		return Session{}, ErrControllerClosed
	}
	if _, ok := c.currentSession(); !ok {
		return Session{}, ErrNoSession
	}
	if _, err := c.scheduler.Trigger(ctx, refresh.TriggerManual); err != nil {
		if errors.Is(err, refresh.ErrStopped) {
			return Session{}, ErrControllerClosed
		}
		return Session{}, err
	}
	sess, _ := c.currentSession()
	return sess, nil
}

// SetVisible reports a foreground/background transition. Becoming visible
// with little validity left refreshes immediately; the result reports
// whether that happened.
func (c *Controller) SetVisible(ctx context.Context, visible bool) (bool, error) {
	if c.isClosed() {
		return false, ErrControllerClosed
	}
	return c.scheduler.VisibilityChanged(ctx, visible)
}

// refreshSession is the only routine that renews tokens. The scheduler runs
// it under its in-flight guard for every trigger.
func (c *Controller) refreshSession(ctx context.Context) (time.Time, error) {
	c.mu.RLock()
	gen := c.generation
	c.mu.RUnlock()

	res := flows.RunRefresh(ctx, c.flows.Refresh)
	if res.Failure != flows.RefreshFailureNone {
		return time.Time{}, refreshError(res)
	}

	c.mu.Lock()
	if c.closed || gen != c.generation {
		c.mu.Unlock()
		c.metricInc(MetricRefreshDiscarded)
		return time.Time{}, refresh.ErrDiscarded
	}
	c.session = res.Session
	c.persistSessionLocked(res.Session)
	c.mu.Unlock()

	return res.Session.ExpiresAt, nil
}

func refreshError(res flows.RefreshResult) error {
	switch res.Failure {
	case flows.RefreshFailureNoSession:
		return ErrNoSession
	case flows.RefreshFailureNoRefreshToken:
		return ErrNoRefreshToken
	case flows.RefreshFailureRejected:
		return fmt.Errorf("%w: %w", ErrUnauthorized, res.Err)
	case flows.RefreshFailureNetwork:
		return fmt.Errorf("%w: %w", ErrNetwork, res.Err)
	default:
		return fmt.Errorf("%w: %w", ErrServer, res.Err)
	}
}

// isTerminalRefresh reports whether err means only a new login can help.
func isTerminalRefresh(err error) bool {
	return errors.Is(err, ErrNoSession) ||
		errors.Is(err, ErrNoRefreshToken) ||
		errors.Is(err, ErrUnauthorized)
}

func (c *Controller) schedulerHooks() refresh.Hooks {
	return refresh.Hooks{
		OnRefreshed: func(trigger refresh.Trigger, expiresAt time.Time, took time.Duration) {
			c.metricInc(MetricRefreshSuccess)
			c.metricTrigger(trigger)
			c.metricObserve(MetricRefreshLatency, took)

			ev := c.sessionEvent(EventSessionRefreshed, trigger)
			ev.Success = true
			if !expiresAt.IsZero() {
				ev.Metadata["expires_at"] = expiresAt.UTC().Format(time.RFC3339)
			}
			c.emit(context.Background(), ev)
		},
		OnFailed: func(trigger refresh.Trigger, err error) {
			if errors.Is(err, refresh.ErrDiscarded) {
				return
			}
			c.metricInc(MetricRefreshFailure)
			c.metricTrigger(trigger)

			ev := c.sessionEvent(EventRefreshFailed, trigger)
			ev.Error = err.Error()
			ev.Metadata["kind"] = KindOf(err).String()
			c.emit(context.Background(), ev)
		},
		OnCoalesced: func(refresh.Trigger) {
			c.metricInc(MetricRefreshCoalesced)
		},
		OnExpired:  c.expire,
		IsTerminal: isTerminalRefresh,
	}
}

func (c *Controller) metricTrigger(trigger refresh.Trigger) {
	switch trigger {
	case refresh.TriggerTimer:
		c.metricInc(MetricRefreshTriggerTimer)
	case refresh.TriggerVisibility:
		c.metricInc(MetricRefreshTriggerVisibility)
	case refresh.TriggerHeartbeat:
		c.metricInc(MetricRefreshTriggerHeartbeat)
	case refresh.TriggerManual, refresh.TriggerBootstrap:
		c.metricInc(MetricRefreshTriggerManual)
	}
}

func (c *Controller) sessionEvent(typ string, trigger refresh.Trigger) Event {
	ev := c.newEvent(typ)
	c.mu.RLock()
	if c.identity != nil {
		ev.UserID = c.identity.ID
		ev.Role = string(c.identity.Role)
	}
	c.mu.RUnlock()
	ev.Metadata = map[string]string{"trigger": trigger.String()}
	return ev
}

// expire ends a session whose token lapsed with no way to renew it. Local
// state is cleared as on logout, without a server call.
func (c *Controller) expire(cause error) {
	c.scheduler.Disarm()

	c.mu.Lock()
	if c.closed || c.session.AccessToken == "" {
		c.mu.Unlock()
		return
	}
	var userID, role string
	if c.identity != nil {
		userID, role = c.identity.ID, string(c.identity.Role)
	}
	c.clearSessionKeysLocked()
	c.store.RemoveMatching(c.keys.DraftPrefix)
	c.clearMemoryLocked()
	c.mu.Unlock()

	c.logger.Warn("goSession: session expired", "error", cause)
	c.metricInc(MetricSessionExpired)

	ev := c.newEvent(EventSessionExpired)
	ev.UserID = userID
	ev.Role = role
	ev.Error = cause.Error()
	ev.Redirect = c.routes.Login
	c.emit(context.Background(), ev)

	c.navigator.Reset(c.routes.Login)
}

/*
====================================
LOGOUT
====================================
*/

// Logout ends the session. The server is told on a best-effort basis; its
// outcome never affects local cleanup. Tokens, the cached identity, the
// redirect hint and every draft key are removed, subscribers are notified,
// and the navigator is reset to the login route.
func (c *Controller) Logout(ctx context.Context) {
	c.mu.RLock()
	token := c.session.AccessToken
	var userID, role string
	if c.identity != nil {
		userID, role = c.identity.ID, string(c.identity.Role)
	}
	c.mu.RUnlock()

	res := flows.RunLogout(ctx, token, c.flows.Logout)

	c.metricInc(MetricLogout)
	if res.ServerErr != nil {
		c.metricInc(MetricLogoutServerFailure)
	}

	ev := c.newEvent(EventLogout)
	ev.UserID = userID
	ev.Role = role
	ev.Success = true
	ev.Redirect = c.routes.Login
	if res.ServerErr != nil {
		ev.Metadata = map[string]string{"server_error": res.ServerErr.Error()}
	}
	c.emit(ctx, ev)

	c.navigator.Reset(c.routes.Login)
}

func (c *Controller) serverLogout(ctx context.Context, accessToken string) error {
	if c.isClosed() {
		return nil
	}
	if d := c.config.Logout.ServerTimeout; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return c.gateway.Logout(ctx, accessToken)
}
