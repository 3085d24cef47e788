package refresh

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrStopped is returned by Trigger after Stop.
	ErrStopped = errors.New("refresh scheduler stopped")
	// ErrDiscarded is returned when the session was disarmed while the
	// refresh call was in flight. The result was dropped.
	ErrDiscarded = errors.New("refresh result discarded")
)

// Trigger identifies the call site that asked for a refresh.
type Trigger uint8

const (
	TriggerTimer Trigger = iota
	TriggerVisibility
	TriggerHeartbeat
	TriggerManual
	TriggerBootstrap
)

func (t Trigger) String() string {
	switch t {
	case TriggerTimer:
		return "timer"
	case TriggerVisibility:
		return "visibility"
	case TriggerHeartbeat:
		return "heartbeat"
	case TriggerManual:
		return "manual"
	case TriggerBootstrap:
		return "bootstrap"
	default:
		return "unknown"
	}
}

// Config controls scheduling thresholds.
type Config struct {
	// MaxBuffer caps how early before expiry the timer fires.
	MaxBuffer time.Duration
	// VisibilityWindow is the remaining validity under which a foregrounded
	// client refreshes immediately.
	VisibilityWindow time.Duration
	// HeartbeatInterval is the poll period. Zero disables the heartbeat.
	HeartbeatInterval time.Duration
	// HeartbeatThreshold is the remaining validity under which a heartbeat
	// tick refreshes.
	HeartbeatThreshold time.Duration
	// AutoArm re-arms the timer for the new expiry after every successful
	// refresh. With it off, only explicit Arm calls schedule renewals.
	AutoArm bool
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		MaxBuffer:          5 * time.Minute,
		VisibilityWindow:   10 * time.Minute,
		HeartbeatInterval:  5 * time.Minute,
		HeartbeatThreshold: time.Minute,
		AutoArm:            true,
	}
}

// Func performs one refresh and returns the new token expiry. A zero expiry
// means unknown: the token is kept but no timer is armed for it.
type Func func(ctx context.Context) (time.Time, error)

// Hooks observe scheduler outcomes. Any field may be nil. Hooks run outside
// the scheduler lock.
type Hooks struct {
	OnRefreshed func(trigger Trigger, expiresAt time.Time, took time.Duration)
	OnFailed    func(trigger Trigger, err error)
	// OnCoalesced fires for a trigger that joined a refresh already in flight.
	OnCoalesced func(trigger Trigger)
	// OnExpired fires when a refresh fails at or after the token's expiry
	// and IsTerminal classifies the failure as unrecoverable.
	OnExpired  func(err error)
	IsTerminal func(err error) bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithHooks installs outcome hooks.
func WithHooks(h Hooks) Option {
	return func(s *Scheduler) { s.hooks = h }
}

// WithLogger sets the logger for swallowed refresh failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// Scheduler renews an access token ahead of its expiry. It is safe for
// concurrent use.
type Scheduler struct {
	cfg     Config
	clock   Clock
	refresh Func
	hooks   Hooks
	logger  *slog.Logger
	group   singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	expiresAt     time.Time
	fireAt        time.Time
	stopTimer     func() bool
	stopHeartbeat func() bool
	timerGen      uint64
	beatGen       uint64
	generation    uint64
	stopped       bool
}

// New returns a disarmed scheduler that renews through fn.
func New(cfg Config, fn Func, opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cfg:     cfg,
		clock:   SystemClock{},
		refresh: fn,
		logger:  slog.Default(),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FireTime computes when a token expiring at expiresAt should be renewed:
// buffer = min(maxBuffer, (expiresAt-now)/2), fire = expiresAt-buffer. It
// reports false when the fire time is not in the future.
func FireTime(now, expiresAt time.Time, maxBuffer time.Duration) (time.Time, bool) {
	if expiresAt.IsZero() {
		return time.Time{}, false
	}
	half := expiresAt.Sub(now) / 2
	fire := now.Add(half)
	if half > maxBuffer {
		fire = expiresAt.Add(-maxBuffer)
	}
	if !fire.After(now) {
		return time.Time{}, false
	}
	return fire, true
}

// Arm records expiresAt as the current token expiry and replaces the armed
// timer. It reports whether a new timer was armed; a token already past its
// safe-refresh point is left for the next visibility or heartbeat trigger.
func (s *Scheduler) Arm(expiresAt time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	return s.armLocked(expiresAt)
}

func (s *Scheduler) armLocked(expiresAt time.Time) bool {
	s.cancelTimerLocked()
	s.expiresAt = expiresAt

	now := s.clock.Now()
	fire, ok := FireTime(now, expiresAt, s.cfg.MaxBuffer)
	if !ok {
		return false
	}

	gen := s.timerGen
	s.fireAt = fire
	s.stopTimer = s.clock.AfterFunc(fire.Sub(now), func() { s.onTimer(gen) })
	return true
}

func (s *Scheduler) cancelTimerLocked() {
	s.timerGen++
	if s.stopTimer != nil {
		s.stopTimer()
		s.stopTimer = nil
	}
	s.fireAt = time.Time{}
}

func (s *Scheduler) onTimer(gen uint64) {
	s.mu.Lock()
	if gen != s.timerGen || s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopTimer = nil
	s.fireAt = time.Time{}
	s.mu.Unlock()

	_, _ = s.Trigger(s.ctx, TriggerTimer)
}

// Start begins the heartbeat. Calling it again while running is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.stopHeartbeat != nil || s.cfg.HeartbeatInterval <= 0 {
		return
	}
	s.scheduleBeatLocked()
}

func (s *Scheduler) scheduleBeatLocked() {
	gen := s.beatGen
	s.stopHeartbeat = s.clock.AfterFunc(s.cfg.HeartbeatInterval, func() { s.onBeat(gen) })
}

func (s *Scheduler) onBeat(gen uint64) {
	s.mu.Lock()
	if gen != s.beatGen || s.stopped {
		s.mu.Unlock()
		return
	}
	s.scheduleBeatLocked()
	due := s.withinLocked(s.cfg.HeartbeatThreshold)
	s.mu.Unlock()

	if due {
		_, _ = s.Trigger(s.ctx, TriggerHeartbeat)
	}
}

// withinLocked reports whether the known expiry is less than d away.
func (s *Scheduler) withinLocked(d time.Duration) bool {
	if s.expiresAt.IsZero() {
		return false
	}
	return s.expiresAt.Sub(s.clock.Now()) < d
}

// VisibilityChanged handles a foreground/background transition. Becoming
// visible with less than VisibilityWindow of validity left refreshes
// immediately and blocks until the refresh settles. It reports whether a
// refresh was triggered.
func (s *Scheduler) VisibilityChanged(ctx context.Context, visible bool) (bool, error) {
	if !visible {
		return false, nil
	}
	s.mu.Lock()
	due := !s.stopped && s.withinLocked(s.cfg.VisibilityWindow)
	s.mu.Unlock()
	if !due {
		return false, nil
	}
	_, err := s.Trigger(ctx, TriggerVisibility)
	return true, err
}

// Trigger refreshes now. If a refresh is already in flight the caller joins
// it instead of starting another, and gets the shared result. The shared call
// outlives the caller that started it: each caller stops waiting when its own
// ctx is done, and the call itself is only cancelled by Stop. On success the
// timer is re-armed for the new expiry when AutoArm is set.
func (s *Scheduler) Trigger(ctx context.Context, trigger Trigger) (time.Time, error) {
	if ctx == nil {
		ctx = s.ctx
	}
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return time.Time{}, ErrStopped
	}
	gen := s.generation
	s.mu.Unlock()

	var leader atomic.Bool
	ch := s.group.DoChan(strconv.FormatUint(gen, 10), func() (any, error) {
		leader.Store(true)
		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		defer cancel()
		stop := context.AfterFunc(s.ctx, cancel)
		defer stop()
		return s.run(runCtx, trigger, gen)
	})

	select {
	case res := <-ch:
		if !leader.Load() && s.hooks.OnCoalesced != nil {
			s.hooks.OnCoalesced(trigger)
		}
		if res.Err != nil {
			return time.Time{}, res.Err
		}
		return res.Val.(time.Time), nil
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	}
}

func (s *Scheduler) run(ctx context.Context, trigger Trigger, gen uint64) (time.Time, error) {
	start := s.clock.Now()
	expiresAt, err := s.refresh(ctx)

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return time.Time{}, ErrStopped
	}
	if gen != s.generation {
		s.mu.Unlock()
		return time.Time{}, ErrDiscarded
	}

	if err != nil {
		now := s.clock.Now()
		lapsed := !s.expiresAt.IsZero() && !now.Before(s.expiresAt)
		s.mu.Unlock()

		s.logger.Warn("goSession: token refresh failed", "trigger", trigger.String(), "error", err)
		if s.hooks.OnFailed != nil {
			s.hooks.OnFailed(trigger, err)
		}
		if lapsed && s.hooks.IsTerminal != nil && s.hooks.IsTerminal(err) && s.hooks.OnExpired != nil {
			s.hooks.OnExpired(err)
		}
		return time.Time{}, err
	}

	if s.cfg.AutoArm {
		s.armLocked(expiresAt)
	}
	took := s.clock.Now().Sub(start)
	s.mu.Unlock()

	if s.hooks.OnRefreshed != nil {
		s.hooks.OnRefreshed(trigger, expiresAt, took)
	}
	return expiresAt, nil
}

// Disarm cancels the timer and the heartbeat and forgets the token expiry.
// A refresh in flight when Disarm runs has its result discarded. The
// scheduler can be armed and started again afterwards.
func (s *Scheduler) Disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disarmLocked()
}

func (s *Scheduler) disarmLocked() {
	s.cancelTimerLocked()
	s.beatGen++
	if s.stopHeartbeat != nil {
		s.stopHeartbeat()
		s.stopHeartbeat = nil
	}
	s.expiresAt = time.Time{}
	s.generation++
}

// Stop disarms the scheduler permanently and cancels background refreshes.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.disarmLocked()
	s.stopped = true
	s.mu.Unlock()
	s.cancel()
}

// State is a snapshot of the scheduler.
type State struct {
	ExpiresAt time.Time
	// FireAt is zero when no timer is armed.
	FireAt           time.Time
	HeartbeatRunning bool
	Stopped          bool
}

// State returns the current snapshot.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		ExpiresAt:        s.expiresAt,
		FireAt:           s.fireAt,
		HeartbeatRunning: s.stopHeartbeat != nil,
		Stopped:          s.stopped,
	}
}
