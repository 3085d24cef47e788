package goSession

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/MrEthical07/goSession/identity"
	"github.com/MrEthical07/goSession/internal/events"
	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/refresh"
	"github.com/MrEthical07/goSession/store"
)

// Controller defines a public type used by goSession APIs.
//
// Controller owns the identity and session of one signed-in user. It is the
// only writer of the persisted session; UI code reads through its accessors
// and observes changes with [Controller.Subscribe]. Controller methods are
// safe for concurrent use.
type Controller struct {
	config     Config
	store      store.TokenStore
	keys       store.Keys
	routes     flows.Routes
	gateway    Gateway
	decoder    *jwt.Decoder
	clock      refresh.Clock
	logger     *slog.Logger
	navigator  Navigator
	scheduler  *refresh.Scheduler
	metrics    *Metrics
	hub        *events.Hub
	sink       events.Sink
	dispatcher *events.Dispatcher
	flows      flows.Deps

	mu       sync.RWMutex
	session  identity.Session
	identity *identity.Identity
	redirect string
	loading  bool
	closed   bool
	// generation changes whenever the session is replaced or cleared. A
	// refresh result is only persisted if it still matches.
	generation uint64
}

// Identity returns a copy of the current identity. The second result is
// false when signed out.
func (c *Controller) Identity() (Identity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.identity == nil {
		return Identity{}, false
	}
	return c.identity.Clone(), true
}

// IsAuthenticated reports whether an identity and an access token are held.
func (c *Controller) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authenticatedLocked()
}

func (c *Controller) authenticatedLocked() bool {
	return c.identity != nil && c.session.AccessToken != ""
}

// Loading reports whether startup has not finished yet.
func (c *Controller) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Session returns a copy of the current session.
func (c *Controller) Session() (Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session, c.session.AccessToken != ""
}

// State returns a snapshot for UI binding.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st := State{
		Authenticated: c.authenticatedLocked(),
		Loading:       c.loading,
		Redirect:      c.redirect,
	}
	if c.identity != nil {
		id := c.identity.Clone()
		st.Identity = &id
	}
	return st
}

// ConsumeRedirect returns the pending post-login route and forgets it. It
// returns "" when there is none.
func (c *Controller) ConsumeRedirect() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	path := c.redirect
	if path == "" {
		path, _ = c.store.Get(c.keys.RedirectHint)
	}
	c.redirect = ""
	c.store.Remove(c.keys.RedirectHint)
	return path
}

// Subscribe registers fn for every event and returns its unsubscribe
// function. With events enabled fn runs on the dispatcher goroutine;
// otherwise it runs synchronously on the emitting call.
func (c *Controller) Subscribe(fn func(Event)) func() {
	return c.hub.Subscribe(fn)
}

// FlushEvents blocks until every event emitted so far has been delivered.
func (c *Controller) FlushEvents(ctx context.Context) error {
	return c.dispatcher.Flush(ctx)
}

// EventsDropped returns the number of events dropped by a full buffer.
func (c *Controller) EventsDropped() uint64 {
	if c == nil || c.dispatcher == nil {
		return 0
	}
	return c.dispatcher.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

// SchedulerState reports the refresh timer and heartbeat.
func (c *Controller) SchedulerState() refresh.State {
	return c.scheduler.State()
}

// Close stops the scheduler and the event dispatcher. The controller keeps
// its persisted session; every later operation fails with
// [ErrControllerClosed].
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.generation++
	c.mu.Unlock()

	c.scheduler.Stop()
	if c.dispatcher != nil {
		c.dispatcher.Close()
	}
}

func (c *Controller) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Controller) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

func (c *Controller) metricObserve(id MetricID, d time.Duration) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Observe(id, d)
}

/*
====================================
EVENTS
====================================
*/

func (c *Controller) newEvent(typ string) Event {
	return events.New(typ, c.clock.Now())
}

func (c *Controller) identityEvent(typ string, id identity.Identity) Event {
	ev := c.newEvent(typ)
	ev.UserID = id.ID
	ev.Role = string(id.Role)
	ev.Success = true
	return ev
}

// emit must not be called with c.mu held: synchronous subscribers may read
// the controller.
func (c *Controller) emit(ctx context.Context, ev Event) {
	if c.dispatcher != nil {
		c.dispatcher.Emit(ctx, ev)
		return
	}
	c.sink.Emit(ctx, ev)
}

/*
====================================
PERSISTENCE
====================================
*/

func (c *Controller) persistSessionLocked(sess identity.Session) {
	c.store.Set(c.keys.AccessToken, sess.AccessToken)
	if sess.RefreshToken != "" {
		c.store.Set(c.keys.RefreshToken, sess.RefreshToken)
	} else {
		c.store.Remove(c.keys.RefreshToken)
	}
}

func (c *Controller) persistIdentityLocked(id identity.Identity) {
	blob, err := identity.EncodeCache(id)
	if err != nil {
		c.logger.Warn("goSession: identity not persisted", "error", err)
		return
	}
	c.store.Set(c.keys.Identity, blob)
}

func (c *Controller) persistRedirectLocked(path string) {
	c.redirect = path
	if path == "" {
		c.store.Remove(c.keys.RedirectHint)
		return
	}
	c.store.Set(c.keys.RedirectHint, path)
}

// clearSessionKeysLocked removes the token, identity and redirect keys. Draft
// keys are only swept on logout.
func (c *Controller) clearSessionKeysLocked() {
	for _, key := range c.keys.Session() {
		c.store.Remove(key)
	}
}

func (c *Controller) clearMemoryLocked() {
	c.generation++
	c.session = identity.Session{}
	c.identity = nil
	c.redirect = ""
}

func (c *Controller) clearPersisted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.clearSessionKeysLocked()
	c.store.RemoveMatching(c.keys.DraftPrefix)
}

func (c *Controller) clearMemory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearMemoryLocked()
}

func (c *Controller) loadStoredSession() (identity.Session, bool) {
	access, ok := c.store.Get(c.keys.AccessToken)
	if !ok || access == "" {
		return identity.Session{}, false
	}
	sess := identity.Session{AccessToken: access}
	sess.RefreshToken, _ = c.store.Get(c.keys.RefreshToken)
	if exp, ok := c.decoder.ExpiresAt(access); ok {
		sess.ExpiresAt = exp
	}
	return sess, true
}

func (c *Controller) loadStoredIdentity() (identity.Identity, bool) {
	blob, ok := c.store.Get(c.keys.Identity)
	if !ok || blob == "" {
		return identity.Identity{}, false
	}
	id, err := identity.DecodeCache(blob)
	if err != nil {
		c.logger.Warn("goSession: cached identity unreadable", "error", err)
		return identity.Identity{}, false
	}
	return id, true
}

func (c *Controller) currentSession() (identity.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session, c.session.AccessToken != ""
}

// armLocked schedules renewal of sess. Safe under c.mu: the scheduler never
// calls back into the controller while holding its own lock.
func (c *Controller) armLocked(sess identity.Session) {
	if !c.config.Refresh.Enabled {
		return
	}
	c.scheduler.Arm(sess.ExpiresAt)
	c.scheduler.Start()
}
