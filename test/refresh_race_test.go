//go:build integration
// +build integration

package test

import (
	"context"
	"sync"
	"testing"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/gateway/gatewaytest"
)

func TestRefreshRaceSingleWinner(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			ctx := context.Background()
			rdb, cleanup := mode.setup(t)
			defer cleanup()
			st, ns := newRedisStore(t, rdb)
			backend, url := newBackend(t, gatewaytest.WithRefreshDelay(150*time.Millisecond))

			ctrl := newController(t, st, url)
			if _, err := ctrl.Login(ctx, agentEmail, testPassword); err != nil {
				t.Fatalf("login: %v", err)
			}

			const workers = 16
			start := make(chan struct{})
			var wg sync.WaitGroup
			wg.Add(workers)
			errs := make(chan error, workers)
			for i := 0; i < workers; i++ {
				go func() {
					defer wg.Done()
					<-start
					_, err := ctrl.Refresh(ctx)
					errs <- err
				}()
			}
			close(start)
			wg.Wait()
			close(errs)

			for err := range errs {
				if err != nil {
					t.Fatalf("refresh: %v", err)
				}
			}
			if got := backend.Calls(gatewaytest.EndpointRefresh); got != 1 {
				t.Fatalf("expected exactly one refresh call, got %d", got)
			}

			sess, _ := ctrl.Session()
			keys := goSession.DefaultConfig().Storage
			stored, err := rdb.Get(ctx, ns+keys.RefreshTokenKey).Result()
			if err != nil {
				t.Fatalf("read stored refresh token: %v", err)
			}
			if stored != sess.RefreshToken {
				t.Fatal("stored refresh token differs from the controller's")
			}
			access, _ := rdb.Get(ctx, ns+keys.AccessTokenKey).Result()
			if access != sess.AccessToken {
				t.Fatal("stored access token differs from the controller's")
			}
		})
	}
}
