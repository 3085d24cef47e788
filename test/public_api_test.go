package test

import (
	"context"
	"net/http"
	"testing"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/middleware"
)

// This test intentionally guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = goSession.New
	_ = goSession.DefaultConfig
	_ = goSession.LoadConfigFromEnv

	var _ *goSession.Controller
	var _ goSession.Config
	var _ goSession.State
	var _ goSession.Identity
	var _ goSession.Session
	var _ goSession.Gateway
	var _ goSession.TokenStore
	var _ goSession.Navigator
	var _ goSession.EventSink

	var _ error = goSession.ErrInvalidCredentials
	var _ error = goSession.ErrUnauthorized
	var _ error = goSession.ErrNetwork
	var _ error = goSession.ErrServer
	var _ error = goSession.ErrNoSession
	var _ error = goSession.ErrSessionExpired
	var _ error = goSession.ErrControllerClosed

	var _ func(middleware.SessionSource) func(http.RoundTripper) http.RoundTripper = middleware.Authorize

	var _ func(*goSession.Controller, context.Context, string, string) (goSession.Identity, error) = (*goSession.Controller).Login
	var _ func(*goSession.Controller, context.Context, []byte) (goSession.Identity, error) = (*goSession.Controller).LoginWithSSO
	var _ func(*goSession.Controller, context.Context, goSession.RegisterRequest) (goSession.Identity, error) = (*goSession.Controller).Register
	var _ func(*goSession.Controller, context.Context) = (*goSession.Controller).Logout
	var _ func(*goSession.Controller, goSession.Identity) (goSession.Identity, error) = (*goSession.Controller).UpdateUser
	var _ func(*goSession.Controller, context.Context) (goSession.BootstrapOutcome, error) = (*goSession.Controller).Bootstrap
	var _ func(*goSession.Controller, context.Context) (goSession.Session, error) = (*goSession.Controller).Refresh
	var _ func(*goSession.Controller, context.Context, bool) (bool, error) = (*goSession.Controller).SetVisible
}
