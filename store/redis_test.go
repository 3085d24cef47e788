package store

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisStoreNamespacesKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	a := NewRedisStore(rdb, "gs:a:")
	b := NewRedisStore(rdb, "gs:b:")

	a.Set("draft_1", "x")
	b.Set("draft_1", "y")
	a.RemoveMatching("draft_")

	if _, ok := a.Get("draft_1"); ok {
		t.Fatal("expected namespace a swept")
	}
	if v, ok := b.Get("draft_1"); !ok || v != "y" {
		t.Fatal("sweep must not cross namespaces")
	}
	if !mr.Exists("gs:b:draft_1") {
		t.Fatal("expected raw namespaced key in redis")
	}
}

func TestRedisStoreSweepsAcrossScanPages(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	s := NewRedisStore(rdb, "gs:", WithRedisTimeout(time.Second))
	for i := 0; i < 3*redisScanCount; i++ {
		s.Set("draft_"+strconv.Itoa(i), "{}")
	}
	s.Set("token", "keep")

	s.RemoveMatching("draft_")

	n, err := rdb.DBSize(context.Background()).Result()
	if err != nil {
		t.Fatalf("dbsize: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected only the token key left, got %d keys", n)
	}
}

func TestRedisStoreSwallowsBackendFailure(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	s := NewRedisStore(rdb, "gs:", WithRedisTimeout(200*time.Millisecond))

	mr.Close()

	s.Set("token", "a")
	s.Remove("token")
	s.RemoveMatching("draft_")
	if _, ok := s.Get("token"); ok {
		t.Fatal("expected failed read to look like a missing key")
	}
}

func TestEscapeGlob(t *testing.T) {
	if got := escapeGlob(`a*b?[c]\`); got != `a\*b\?\[c\]\\` {
		t.Fatalf("unexpected escape result %q", got)
	}
}
