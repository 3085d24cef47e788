package goSession

import (
	"errors"
	"log/slog"

	"github.com/MrEthical07/goSession/internal/events"
	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/refresh"
	"github.com/MrEthical07/goSession/store"
)

// Builder defines a public type used by goSession APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	store     store.TokenStore
	gateway   Gateway
	logger    *slog.Logger
	eventSink EventSink
	clock     refresh.Clock
	navigator Navigator

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state; every Builder produces an independent Controller.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig replaces the whole configuration; start from [DefaultConfig] to change single fields.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore sets the persistence backend. A [store.MemoryStore] is used when
// none is set.
func (b *Builder) WithStore(s store.TokenStore) *Builder {
	b.store = s
	return b
}

// WithGateway sets the network boundary. When none is set, Build constructs an
// HTTP gateway from Config.Gateway.
func (b *Builder) WithGateway(g Gateway) *Builder {
	b.gateway = g
	return b
}

// WithLogger sets the logger for swallowed failures.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithEventSink adds a sink that receives every event after subscribers.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.eventSink = sink
	return b
}

// WithClock replaces the wall clock. Tests use it to drive timers.
func (b *Builder) WithClock(c refresh.Clock) *Builder {
	b.clock = c
	return b
}

// WithNavigator sets the receiver of navigation resets.
func (b *Builder) WithNavigator(n Navigator) *Builder {
	b.navigator = n
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when the configuration is invalid or no gateway can be constructed.
// The returned Controller is in the loading state until [Controller.Bootstrap] is called.
func (b *Builder) Build() (*Controller, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gw := b.gateway
	if gw == nil {
		if cfg.Gateway.BaseURL == "" {
			return nil, errors.New("gateway required: set WithGateway or Gateway BaseURL")
		}
		hg, err := NewHTTPGateway(cfg)
		if err != nil {
			return nil, err
		}
		gw = hg
	}

	st := b.store
	if st == nil {
		st = store.NewMemoryStore()
	}
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := b.clock
	if clock == nil {
		clock = refresh.SystemClock{}
	}
	nav := b.navigator
	if nav == nil {
		nav = noopNavigator{}
	}

	c := &Controller{
		config:    cfg,
		store:     st,
		keys:      cfg.storeKeys(),
		routes:    cfg.routes(),
		gateway:   gw,
		decoder:   jwt.NewDecoder(),
		clock:     clock,
		logger:    logger,
		navigator: nav,
		metrics:   NewMetrics(cfg.Metrics),
		hub:       events.NewHub(),
		loading:   true,
	}

	// -------- EVENTS --------
	sink := events.MultiSink{c.hub}
	if b.eventSink != nil {
		sink = append(sink, b.eventSink)
	}
	c.sink = sink
	c.dispatcher = events.NewDispatcher(events.Config{
		Enabled:    cfg.Events.Enabled,
		BufferSize: cfg.Events.BufferSize,
		DropIfFull: cfg.Events.DropIfFull,
	}, sink)

	// -------- SCHEDULER --------
	c.scheduler = refresh.New(cfg.schedulerConfig(), c.refreshSession,
		refresh.WithClock(clock),
		refresh.WithLogger(logger),
		refresh.WithHooks(c.schedulerHooks()),
	)

	// -------- FLOWS --------
	c.flows = c.buildFlowDeps()

	b.built = true

	return c, nil
}

func (c *Controller) buildFlowDeps() flows.Deps {
	verify := flows.VerificationDeps{
		CheckExternal: c.gateway.CheckExternalTenantProfile,
		FetchPlatform: c.gateway.FetchPlatformTenantDashboard,
		Routes:        c.routes,
		Warn:          c.logger.Warn,
	}
	return flows.Deps{
		Login: flows.LoginDeps{
			Login:     c.gateway.Login,
			Register:  c.gateway.Register,
			ExpiresAt: c.decoder.ExpiresAt,
			Verify:    verify,
		},
		Bootstrap: flows.BootstrapDeps{
			LoadSession:   c.adoptStoredSession,
			LoadIdentity:  c.loadStoredIdentity,
			Now:           c.clock.Now,
			FetchIdentity: c.gateway.FetchIdentity,
			Refresh:       c.bootstrapRefresh,
			Verify:        verify,
			Warn:          c.logger.Warn,
		},
		Refresh: flows.RefreshDeps{
			Current:   c.currentSession,
			Refresh:   c.gateway.Refresh,
			ExpiresAt: c.decoder.ExpiresAt,
		},
		Logout: flows.LogoutDeps{
			ServerLogout: c.serverLogout,
			Disarm:       c.scheduler.Disarm,
			ClearStore:   c.clearPersisted,
			ClearMemory:  c.clearMemory,
			Warn:         c.logger.Warn,
		},
	}
}
