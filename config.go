package goSession

import (
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/goSession/gateway"
	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/refresh"
	"github.com/MrEthical07/goSession/store"
)

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Refresh RefreshConfig `envPrefix:"REFRESH_"`
	Storage StorageConfig `envPrefix:"STORAGE_"`
	Routes  RoutesConfig  `envPrefix:"ROUTE_"`
	Gateway GatewayConfig `envPrefix:"GATEWAY_"`
	Logout  LogoutConfig  `envPrefix:"LOGOUT_"`
	Events  EventsConfig  `envPrefix:"EVENTS_"`
	Metrics MetricsConfig `envPrefix:"METRICS_"`
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig controls when the access token is renewed.
type RefreshConfig struct {
	Enabled bool `env:"ENABLED"`
	// MaxBuffer caps how far ahead of expiry the timer fires.
	MaxBuffer time.Duration `env:"MAX_BUFFER"`
	// VisibilityWindow is the remaining validity under which a foregrounded
	// client refreshes at once.
	VisibilityWindow time.Duration `env:"VISIBILITY_WINDOW"`
	// HeartbeatInterval is the poll period; 0 disables the heartbeat.
	HeartbeatInterval  time.Duration `env:"HEARTBEAT_INTERVAL"`
	HeartbeatThreshold time.Duration `env:"HEARTBEAT_THRESHOLD"`
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig names the persisted keys.
type StorageConfig struct {
	AccessTokenKey  string `env:"ACCESS_TOKEN_KEY"`
	RefreshTokenKey string `env:"REFRESH_TOKEN_KEY"`
	IdentityKey     string `env:"IDENTITY_KEY"`
	RedirectHintKey string `env:"REDIRECT_HINT_KEY"`
	// DraftPrefix is swept in bulk on logout.
	DraftPrefix string `env:"DRAFT_PREFIX"`
}

/*
====================================
ROUTES CONFIG
====================================
*/

// RoutesConfig names every landing page the controller can redirect to.
type RoutesConfig struct {
	Login                   string `env:"LOGIN"`
	RoleSelection           string `env:"ROLE_SELECTION"`
	ProfileSetup            string `env:"PROFILE_SETUP"`
	Dashboard               string `env:"DASHBOARD"`
	AgentDashboard          string `env:"AGENT_DASHBOARD"`
	OwnerDashboard          string `env:"OWNER_DASHBOARD"`
	ManagerDashboard        string `env:"MANAGER_DASHBOARD"`
	TenantDashboard         string `env:"TENANT_DASHBOARD"`
	ExternalTenantDashboard string `env:"EXTERNAL_TENANT_DASHBOARD"`
}

/*
====================================
GATEWAY CONFIG
====================================
*/

// GatewayConfig configures the HTTP gateway built by [NewHTTPGateway].
type GatewayConfig struct {
	BaseURL   string        `env:"BASE_URL"`
	UserAgent string        `env:"USER_AGENT"`
	Timeout   time.Duration `env:"TIMEOUT"`

	LoginPath           string `env:"LOGIN_PATH"`
	RegisterPath        string `env:"REGISTER_PATH"`
	RefreshPath         string `env:"REFRESH_PATH"`
	LogoutPath          string `env:"LOGOUT_PATH"`
	MePath              string `env:"ME_PATH"`
	ExternalProfilePath string `env:"EXTERNAL_PROFILE_PATH"`
	TenantDashboardPath string `env:"TENANT_DASHBOARD_PATH"`
}

/*
====================================
LOGOUT CONFIG
====================================
*/

// LogoutConfig bounds the best-effort server logout.
type LogoutConfig struct {
	ServerTimeout time.Duration `env:"SERVER_TIMEOUT"`
}

/*
====================================
EVENTS CONFIG
====================================
*/

// EventsConfig controls asynchronous delivery of lifecycle events. When
// disabled, subscribers are called synchronously.
type EventsConfig struct {
	Enabled    bool `env:"ENABLED"`
	BufferSize int  `env:"BUFFER_SIZE"`
	DropIfFull bool `env:"DROP_IF_FULL"`
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by goSession APIs.
type MetricsConfig struct {
	Enabled                 bool `env:"ENABLED"`
	EnableLatencyHistograms bool `env:"LATENCY_HISTOGRAMS"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	rc := refresh.DefaultConfig()
	keys := store.DefaultKeys()
	routes := flows.DefaultRoutes()
	paths := gateway.DefaultPaths()

	return Config{
		Refresh: RefreshConfig{
			Enabled:            true,
			MaxBuffer:          rc.MaxBuffer,
			VisibilityWindow:   rc.VisibilityWindow,
			HeartbeatInterval:  rc.HeartbeatInterval,
			HeartbeatThreshold: rc.HeartbeatThreshold,
		},
		Storage: StorageConfig{
			AccessTokenKey:  keys.AccessToken,
			RefreshTokenKey: keys.RefreshToken,
			IdentityKey:     keys.Identity,
			RedirectHintKey: keys.RedirectHint,
			DraftPrefix:     keys.DraftPrefix,
		},
		Routes: RoutesConfig(routes),
		Gateway: GatewayConfig{
			UserAgent:           "goSession",
			Timeout:             15 * time.Second,
			LoginPath:           paths.Login,
			RegisterPath:        paths.Register,
			RefreshPath:         paths.Refresh,
			LogoutPath:          paths.Logout,
			MePath:              paths.Me,
			ExternalProfilePath: paths.ExternalProfile,
			TenantDashboardPath: paths.TenantDashboard,
		},
		Logout: LogoutConfig{
			ServerTimeout: 5 * time.Second,
		},
		Events: EventsConfig{
			Enabled:    true,
			BufferSize: 64,
			DropIfFull: false,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

// Validate checks cfg for values the controller cannot run with.
func (c *Config) Validate() error {
	if c.Refresh.Enabled {
		if c.Refresh.MaxBuffer <= 0 {
			return errors.New("Refresh MaxBuffer must be > 0")
		}
		if c.Refresh.VisibilityWindow < 0 {
			return errors.New("Refresh VisibilityWindow must be >= 0")
		}
		if c.Refresh.HeartbeatInterval < 0 {
			return errors.New("Refresh HeartbeatInterval must be >= 0")
		}
		if c.Refresh.HeartbeatInterval > 0 && c.Refresh.HeartbeatThreshold <= 0 {
			return errors.New("Refresh HeartbeatThreshold must be > 0 when the heartbeat is enabled")
		}
	}

	keys := map[string]string{
		"AccessTokenKey":  c.Storage.AccessTokenKey,
		"RefreshTokenKey": c.Storage.RefreshTokenKey,
		"IdentityKey":     c.Storage.IdentityKey,
		"RedirectHintKey": c.Storage.RedirectHintKey,
	}
	seen := make(map[string]string, len(keys))
	for name, key := range keys {
		if strings.TrimSpace(key) == "" {
			return errors.New("Storage " + name + " must not be empty")
		}
		if other, dup := seen[key]; dup {
			return errors.New("Storage " + name + " collides with " + other)
		}
		seen[key] = name
	}
	if strings.TrimSpace(c.Storage.DraftPrefix) == "" {
		return errors.New("Storage DraftPrefix must not be empty")
	}
	for key, name := range seen {
		if strings.HasPrefix(key, c.Storage.DraftPrefix) {
			return errors.New("Storage " + name + " must not start with DraftPrefix")
		}
	}

	if c.Routes.Login == "" {
		return errors.New("Routes Login is required")
	}

	if c.Events.Enabled && c.Events.BufferSize <= 0 {
		return errors.New("Events BufferSize must be > 0 when events are enabled")
	}
	if c.Logout.ServerTimeout < 0 {
		return errors.New("Logout ServerTimeout must be >= 0")
	}
	if c.Gateway.Timeout < 0 {
		return errors.New("Gateway Timeout must be >= 0")
	}

	return nil
}

func (c Config) schedulerConfig() refresh.Config {
	return refresh.Config{
		MaxBuffer:          c.Refresh.MaxBuffer,
		VisibilityWindow:   c.Refresh.VisibilityWindow,
		HeartbeatInterval:  c.Refresh.HeartbeatInterval,
		HeartbeatThreshold: c.Refresh.HeartbeatThreshold,
		AutoArm:            c.Refresh.Enabled,
	}
}

func (c Config) storeKeys() store.Keys {
	return store.Keys{
		AccessToken:  c.Storage.AccessTokenKey,
		RefreshToken: c.Storage.RefreshTokenKey,
		Identity:     c.Storage.IdentityKey,
		RedirectHint: c.Storage.RedirectHintKey,
		DraftPrefix:  c.Storage.DraftPrefix,
	}
}

func (c Config) routes() flows.Routes {
	return flows.Routes(c.Routes)
}

func (c Config) gatewayConfig() gateway.Config {
	return gateway.Config{
		BaseURL:   c.Gateway.BaseURL,
		UserAgent: c.Gateway.UserAgent,
		Timeout:   c.Gateway.Timeout,
		Paths: gateway.Paths{
			Login:           c.Gateway.LoginPath,
			Register:        c.Gateway.RegisterPath,
			Refresh:         c.Gateway.RefreshPath,
			Logout:          c.Gateway.LogoutPath,
			Me:              c.Gateway.MePath,
			ExternalProfile: c.Gateway.ExternalProfilePath,
			TenantDashboard: c.Gateway.TenantDashboardPath,
		},
	}
}

// NewHTTPGateway builds the HTTP gateway described by cfg.Gateway.
func NewHTTPGateway(cfg Config) (*gateway.HTTPGateway, error) {
	return gateway.NewHTTPGateway(cfg.gatewayConfig())
}
