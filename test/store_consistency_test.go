//go:build integration
// +build integration

package test

import (
	"context"
	"reflect"
	"testing"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/gateway/gatewaytest"
)

func TestRedisSessionSurvivesReload(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			ctx := context.Background()
			rdb, cleanup := mode.setup(t)
			defer cleanup()
			st, _ := newRedisStore(t, rdb)
			backend, url := newBackend(t)

			first := newController(t, st, url)
			want, err := first.Login(ctx, tenantEmail, testPassword)
			if err != nil {
				t.Fatalf("login: %v", err)
			}
			if want.TenantVerified == nil || !*want.TenantVerified {
				t.Fatalf("expected external tenant verified, got %+v", want)
			}
			first.Close()

			second := newController(t, st, url)
			outcome, err := second.Bootstrap(ctx)
			if err != nil || outcome != goSession.BootstrapVerified {
				t.Fatalf("bootstrap outcome=%s err=%v", outcome, err)
			}
			got, ok := second.Identity()
			if !ok || !reflect.DeepEqual(got, want) {
				t.Fatalf("identity after reload:\n got %+v\nwant %+v", got, want)
			}
			if backend.Calls(gatewaytest.EndpointMe) != 1 {
				t.Fatalf("expected one identity fetch, got %d", backend.Calls(gatewaytest.EndpointMe))
			}
		})
	}
}

func TestRedisLogoutSweepsDraftsOnly(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			ctx := context.Background()
			rdb, cleanup := mode.setup(t)
			defer cleanup()
			st, ns := newRedisStore(t, rdb)
			_, url := newBackend(t)

			ctrl := newController(t, st, url)
			if _, err := ctrl.Login(ctx, agentEmail, testPassword); err != nil {
				t.Fatalf("login: %v", err)
			}
			keys := goSession.DefaultConfig().Storage
			st.Set(keys.DraftPrefix+"listing-1", `{"title":"a"}`)
			st.Set(keys.DraftPrefix+"listing-2", `{"title":"b"}`)
			st.Set("theme", "dark")
			// a draft-looking key outside the namespace belongs to someone else
			if err := rdb.Set(ctx, "other:"+keys.DraftPrefix+"x", "1", 0).Err(); err != nil {
				t.Fatalf("seed foreign key: %v", err)
			}
			defer rdb.Del(ctx, "other:"+keys.DraftPrefix+"x")

			ctrl.Logout(ctx)

			for _, key := range []string{
				keys.AccessTokenKey, keys.RefreshTokenKey, keys.IdentityKey,
				keys.DraftPrefix + "listing-1", keys.DraftPrefix + "listing-2",
			} {
				if n, _ := rdb.Exists(ctx, ns+key).Result(); n != 0 {
					t.Fatalf("key %q survived logout", key)
				}
			}
			if v, _ := rdb.Get(ctx, ns+"theme").Result(); v != "dark" {
				t.Fatalf("unrelated key removed, got %q", v)
			}
			if n, _ := rdb.Exists(ctx, "other:"+keys.DraftPrefix+"x").Result(); n != 1 {
				t.Fatal("logout swept a key outside its namespace")
			}
		})
	}
}
