//go:build integration
// +build integration

package test

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/gateway"
	"github.com/MrEthical07/goSession/gateway/gatewaytest"
	"github.com/MrEthical07/goSession/identity"
	"github.com/MrEthical07/goSession/store"
)

const (
	testNamespace = "gs:"
	testPassword  = "correct horse"
	agentEmail    = "alice@example.com"
	tenantEmail   = "tina@example.com"
)

// redisMode describes which Redis backend the suite is running against.
type redisMode struct {
	name  string
	setup func(t *testing.T) (redis.UniversalClient, func())
}

// redisModes returns the set of Redis backends to test.
// miniredis is always available.
// Real Redis is used when REDIS_ADDR is set (e.g. "127.0.0.1:6379").
func redisModes(t *testing.T) []redisMode {
	t.Helper()
	modes := []redisMode{
		{
			name: "miniredis",
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				mr, err := miniredis.Run()
				if err != nil {
					t.Fatalf("miniredis: %v", err)
				}
				rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
				return rdb, func() { _ = rdb.Close(); mr.Close() }
			},
		},
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		modes = append(modes, redisMode{
			name: "redis",
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				rdb := redis.NewClient(&redis.Options{Addr: addr})
				return rdb, func() { _ = rdb.Close() }
			},
		})
	}
	return modes
}

func newBackend(t *testing.T, opts ...gatewaytest.Option) (*gatewaytest.Server, string) {
	t.Helper()
	backend := gatewaytest.New(opts...)
	backend.AddUser(gatewaytest.User{
		Password: testPassword,
		Payload: gateway.UserPayload{
			ID: "u-agent", Email: agentEmail, FirstName: "Alice", Role: "agent",
			ProfileComplete: identity.Bool(true),
		},
	})
	backend.AddUser(gatewaytest.User{
		Password: testPassword,
		Payload: gateway.UserPayload{
			ID: "u-tenant", Email: tenantEmail, FirstName: "Tina", Role: "tenant",
		},
		External: &gateway.ExternalProfile{HasExternalProfile: true, ProfileComplete: true},
	})
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	return backend, srv.URL
}

func newController(t *testing.T, st goSession.TokenStore, baseURL string) *goSession.Controller {
	t.Helper()
	cfg := goSession.DefaultConfig()
	cfg.Gateway.BaseURL = baseURL
	cfg.Events.Enabled = false

	ctrl, err := goSession.New().
		WithConfig(cfg).
		WithStore(st).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(ctrl.Close)
	return ctrl
}

// newRedisStore returns a store under a namespace unique to the test, so runs
// against a shared Redis do not see each other's keys.
func newRedisStore(t *testing.T, rdb redis.UniversalClient) (*store.RedisStore, string) {
	t.Helper()
	ns := testNamespace + t.Name() + ":"
	return store.NewRedisStore(rdb, ns), ns
}
