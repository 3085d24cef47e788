package goSession

import (
	"context"
	"io"

	"github.com/MrEthical07/goSession/gateway"
	"github.com/MrEthical07/goSession/identity"
	"github.com/MrEthical07/goSession/internal/events"
	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/store"
)

// Identity is the authenticated user held by a [Controller].
type Identity = identity.Identity

// Session is the token set held by a [Controller].
type Session = identity.Session

// Role is a platform role.
type Role = identity.Role

// TokenStore is the persistence contract used by a [Controller].
type TokenStore = store.TokenStore

// Routes names the landing pages a [Controller] redirects to.
type Routes = flows.Routes

// RegisterRequest is the input of [Controller.Register].
type RegisterRequest = gateway.RegisterRequest

// Gateway is the network boundary a [Controller] talks to. [gateway.HTTPGateway]
// is the production implementation.
type Gateway interface {
	Login(ctx context.Context, email, password string) (*gateway.AuthResponse, error)
	Register(ctx context.Context, req gateway.RegisterRequest) (*gateway.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*gateway.TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	FetchIdentity(ctx context.Context, accessToken string) (*gateway.UserPayload, error)
	CheckExternalTenantProfile(ctx context.Context, accessToken string) (*gateway.ExternalProfile, error)
	FetchPlatformTenantDashboard(ctx context.Context, accessToken string) (*gateway.PlatformDashboard, error)
}

var _ Gateway = (*gateway.HTTPGateway)(nil)

// Navigator receives the full navigation reset on logout and forced expiry.
type Navigator interface {
	Reset(path string)
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func(path string)

// Reset calls f(path).
func (f NavigatorFunc) Reset(path string) { f(path) }

type noopNavigator struct{}

func (noopNavigator) Reset(string) {}

// State is the snapshot a UI binds to.
type State struct {
	// Identity is nil when signed out.
	Identity      *Identity
	Authenticated bool
	// Loading is true until [Controller.Bootstrap] returns.
	Loading  bool
	Redirect string
}

// BootstrapOutcome is how [Controller.Bootstrap] settled.
type BootstrapOutcome = flows.BootstrapOutcome

const (
	BootstrapUnauthenticated = flows.BootstrapUnauthenticated
	BootstrapExpired         = flows.BootstrapExpired
	BootstrapVerified        = flows.BootstrapVerified
	BootstrapDegraded        = flows.BootstrapDegraded
	BootstrapCleared         = flows.BootstrapCleared
)

// VerificationOutcome is the result of the tenant verification cascade.
type VerificationOutcome = flows.Outcome

const (
	VerificationNone               = flows.OutcomeNone
	VerificationExternalVerified   = flows.OutcomeExternalVerified
	VerificationExternalIncomplete = flows.OutcomeExternalIncomplete
	VerificationPlatformVerified   = flows.OutcomePlatformVerified
	VerificationPlatformUnverified = flows.OutcomePlatformUnverified
	VerificationCheckFailed        = flows.OutcomeCheckFailed
)

// Event is a lifecycle notification delivered to subscribers.
type Event = events.Event

// EventSink receives every [Event] in addition to subscribers.
type EventSink = events.Sink

// ChannelSink is a buffered channel-based [EventSink].
type ChannelSink = events.ChannelSink

// JSONWriterSink is an [EventSink] that writes JSON lines.
type JSONWriterSink = events.JSONWriterSink

// NewChannelSink returns a [ChannelSink] with the given buffer.
func NewChannelSink(buffer int) *ChannelSink {
	return events.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a [JSONWriterSink] writing to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return events.NewJSONWriterSink(w)
}

// Event types emitted by a [Controller].
const (
	EventLogin                = "login"
	EventLoginFailed          = "login_failed"
	EventSSOLogin             = "sso_login"
	EventRegister             = "register"
	EventLogout               = "logout"
	EventIdentityUpdated      = "identity_updated"
	EventSessionRefreshed     = "session_refreshed"
	EventRefreshFailed        = "refresh_failed"
	EventBootstrapComplete    = "bootstrap_complete"
	EventSessionExpired       = "session_expired"
	EventVerificationResolved = "verification_resolved"
)
