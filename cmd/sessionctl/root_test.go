package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/MrEthical07/goSession/gateway"
	"github.com/MrEthical07/goSession/gateway/gatewaytest"
	"github.com/MrEthical07/goSession/identity"
)

const testEnvPrefix = "SESSIONCTLTEST_"

func resetFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
}

// run executes the CLI with fresh flag state, as a new process would.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd.PersistentFlags())
	for _, c := range rootCmd.Commands() {
		resetFlags(c.Flags())
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--env-prefix", testEnvPrefix}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func newBackend(t *testing.T) (*gatewaytest.Server, string) {
	t.Helper()
	backend := gatewaytest.New()
	backend.AddUser(gatewaytest.User{
		Password: "correct horse",
		Payload: gateway.UserPayload{
			ID: "u-agent", Email: "alice@example.com", FirstName: "Alice", Role: "agent",
			ProfileComplete: identity.Bool(true),
		},
	})
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	return backend, srv.URL
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"login": false, "sso": false, "status": false, "refresh": false, "logout": false, "watch": false, "demo": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("command %q not registered", name)
		}
	}
}

func TestStatusWithoutSession(t *testing.T) {
	out, err := run(t, "", "--store", "memory", "--base-url", "http://127.0.0.1:1", "status", "--json")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var view statusView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode status %q: %v", out, err)
	}
	if view.Outcome != "unauthenticated" || view.Authenticated {
		t.Fatalf("unexpected status %+v", view)
	}
}

func TestSessionSurvivesAcrossInvocations(t *testing.T) {
	backend, url := newBackend(t)
	db := filepath.Join(t.TempDir(), "session.db")
	common := []string{"--store", "sqlite", "--db", db, "--base-url", url}

	out, err := run(t, "correct horse\n", append(common, "login", "--email", "alice@example.com", "--password", "-")...)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "authenticated:  true") || !strings.Contains(out, "redirect:       /agent/dashboard") {
		t.Fatalf("unexpected login output:\n%s", out)
	}

	out, err = run(t, "", append(common, "status", "--json")...)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var view statusView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode status %q: %v", out, err)
	}
	if view.Outcome != "verified" || !view.Authenticated || view.Identity == nil || view.Identity.Email != "alice@example.com" {
		t.Fatalf("unexpected status %+v", view)
	}
	if !view.HasRefresh || view.ExpiresAt == nil || view.NextRefresh == nil {
		t.Fatalf("expected armed session, got %+v", view)
	}

	if _, err := run(t, "", append(common, "refresh")...); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := backend.Calls(gatewaytest.EndpointRefresh); got != 1 {
		t.Fatalf("refresh calls=%d want 1", got)
	}

	if out, err := run(t, "", append(common, "logout")...); err != nil || !strings.Contains(out, "logged out") {
		t.Fatalf("logout: %v\n%s", err, out)
	}
	if got := backend.Calls(gatewaytest.EndpointLogout); got != 1 {
		t.Fatalf("logout calls=%d want 1", got)
	}

	out, err = run(t, "", append(common, "status")...)
	if err != nil {
		t.Fatalf("status after logout: %v", err)
	}
	if !strings.Contains(out, "outcome:        unauthenticated") {
		t.Fatalf("expected signed-out status, got:\n%s", out)
	}

	if _, err := run(t, "", append(common, "refresh")...); err == nil {
		t.Fatal("expected refresh without a session to fail")
	}
}

func TestLoginRejected(t *testing.T) {
	_, url := newBackend(t)
	_, err := run(t, "", "--store", "memory", "--base-url", url, "login", "--email", "alice@example.com", "--password", "wrong")
	if err == nil || !strings.Contains(err.Error(), "Invalid email or password") {
		t.Fatalf("expected backend message, got %v", err)
	}
}

func TestSSOFromFile(t *testing.T) {
	backend, url := newBackend(t)
	resp, ok := backend.IssueSSO("alice@example.com")
	if !ok {
		t.Fatal("IssueSSO failed")
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	out, err := run(t, string(payload), "--store", "memory", "--base-url", url, "sso")
	if err != nil {
		t.Fatalf("sso: %v", err)
	}
	if !strings.Contains(out, "outcome:        sso_login") || !strings.Contains(out, "authenticated:  true") {
		t.Fatalf("unexpected sso output:\n%s", out)
	}
	if got := backend.Calls(gatewaytest.EndpointLogin); got != 0 {
		t.Fatalf("sso must not call login, got %d calls", got)
	}
}

func TestUnknownStore(t *testing.T) {
	_, err := run(t, "", "--store", "etcd", "--base-url", "http://127.0.0.1:1", "status")
	if err == nil || !strings.Contains(err.Error(), "unknown store") {
		t.Fatalf("expected unknown store error, got %v", err)
	}
}

func TestMiniredisStore(t *testing.T) {
	_, url := newBackend(t)
	out, err := run(t, "", "--store", "miniredis", "--base-url", url, "login", "--email", "alice@example.com", "--password", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "authenticated:  true") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestDemoRunsLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("demo waits for a real timer refresh")
	}
	out, err := run(t, "", "--store", "memory", "demo", "--access-ttl", "2s", "--metrics")
	if err != nil {
		t.Fatalf("demo: %v\n%s", err, out)
	}
	for _, want := range []string{
		"== login",
		`"type":"login"`,
		`"type":"verification_resolved"`,
		`"trigger":"timer"`,
		`"type":"identity_updated"`,
		`"type":"logout"`,
		"redirect consumed: /tenant/dashboard",
		"gosession_login_success_total 1",
		`gosession_refresh_triggers_total{trigger="manual"} 1`,
		"gosession_logout_total 1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("demo output missing %q:\n%s", want, out)
		}
	}
}
