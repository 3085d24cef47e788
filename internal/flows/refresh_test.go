package flows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/gateway"
	"github.com/MrEthical07/goSession/identity"
)

func refreshDeps(cur *identity.Session, pair *gateway.TokenPair, err error, sent *string) RefreshDeps {
	return RefreshDeps{
		Current: func() (identity.Session, bool) {
			if cur == nil {
				return identity.Session{}, false
			}
			return *cur, true
		},
		Refresh: func(_ context.Context, token string) (*gateway.TokenPair, error) {
			*sent = token
			return pair, err
		},
		ExpiresAt: func(token string) (time.Time, bool) {
			return exp, token == "access2"
		},
	}
}

func TestRunRefreshReplacesSession(t *testing.T) {
	var sent string
	cur := &identity.Session{AccessToken: "access1", RefreshToken: "r1", ExpiresAt: exp.Add(-time.Hour)}
	res := RunRefresh(context.Background(), refreshDeps(cur, &gateway.TokenPair{AccessToken: "access2", RefreshToken: "r2"}, nil, &sent))

	if res.Failure != RefreshFailureNone {
		t.Fatalf("unexpected failure %v", res.Err)
	}
	if sent != "r1" {
		t.Fatalf("refresh token must be the credential, sent %q", sent)
	}
	want := identity.Session{AccessToken: "access2", RefreshToken: "r2", ExpiresAt: exp}
	if res.Session != want {
		t.Fatalf("got %+v want %+v", res.Session, want)
	}
}

func TestRunRefreshKeepsRefreshTokenWithoutRotation(t *testing.T) {
	var sent string
	cur := &identity.Session{AccessToken: "access1", RefreshToken: "r1"}
	res := RunRefresh(context.Background(), refreshDeps(cur, &gateway.TokenPair{AccessToken: "opaque"}, nil, &sent))
	if res.Session.RefreshToken != "r1" || res.Session.HasExpiry() {
		t.Fatalf("unexpected session %+v", res.Session)
	}
}

func TestRunRefreshFailures(t *testing.T) {
	tests := []struct {
		name     string
		cur      *identity.Session
		err      error
		failure  RefreshFailureKind
		terminal bool
	}{
		{"no session", nil, nil, RefreshFailureNoSession, true},
		{"no refresh token", &identity.Session{AccessToken: "a"}, nil, RefreshFailureNoRefreshToken, true},
		{"rejected", &identity.Session{AccessToken: "a", RefreshToken: "r"}, &gateway.Error{Kind: gateway.KindUnauthorized, Status: 401}, RefreshFailureRejected, true},
		{"network", &identity.Session{AccessToken: "a", RefreshToken: "r"}, &gateway.Error{Kind: gateway.KindNetwork, Err: errors.New("eof")}, RefreshFailureNetwork, false},
		{"server", &identity.Session{AccessToken: "a", RefreshToken: "r"}, &gateway.Error{Kind: gateway.KindServer, Status: 500}, RefreshFailureServer, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sent string
			res := RunRefresh(context.Background(), refreshDeps(tt.cur, nil, tt.err, &sent))
			if res.Failure != tt.failure || res.Err == nil {
				t.Fatalf("failure=%v want %v (err %v)", res.Failure, tt.failure, res.Err)
			}
			if res.Failure.Terminal() != tt.terminal {
				t.Fatalf("terminal=%v want %v", res.Failure.Terminal(), tt.terminal)
			}
		})
	}
}
