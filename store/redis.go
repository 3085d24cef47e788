package store

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisTimeout = 2 * time.Second
	redisScanCount      = 256
)

// RedisStore keeps session keys in Redis under a namespace prefix, so several
// clients can share one instance.
type RedisStore struct {
	redis     redis.UniversalClient
	namespace string
	timeout   time.Duration
	logger    *slog.Logger
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisTimeout bounds every Redis call. Non-positive values keep the default.
func WithRedisTimeout(d time.Duration) RedisOption {
	return func(s *RedisStore) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRedisLogger sets the logger used for swallowed failures.
func WithRedisLogger(l *slog.Logger) RedisOption {
	return func(s *RedisStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewRedisStore returns a store writing keys as namespace+key.
func NewRedisStore(client redis.UniversalClient, namespace string, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		redis:     client,
		namespace: namespace,
		timeout:   defaultRedisTimeout,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(k string) string {
	return s.namespace + k
}

func (s *RedisStore) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *RedisStore) Get(key string) (string, bool) {
	ctx, cancel := s.ctx()
	defer cancel()

	v, err := s.redis.Get(ctx, s.key(key)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("goSession: redis store read failed", "key", key, "error", err)
		}
		return "", false
	}
	return v, true
}

func (s *RedisStore) Set(key, value string) {
	ctx, cancel := s.ctx()
	defer cancel()

	if err := s.redis.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		s.logger.Warn("goSession: redis store write failed", "key", key, "error", err)
	}
}

func (s *RedisStore) Remove(key string) {
	ctx, cancel := s.ctx()
	defer cancel()

	if err := s.redis.Del(ctx, s.key(key)).Err(); err != nil {
		s.logger.Warn("goSession: redis store delete failed", "key", key, "error", err)
	}
}

// RemoveMatching walks the keyspace with SCAN and deletes matches in batches.
func (s *RedisStore) RemoveMatching(prefix string) {
	if prefix == "" {
		return
	}
	ctx, cancel := s.ctx()
	defer cancel()

	pattern := escapeGlob(s.key(prefix)) + "*"
	var cursor uint64
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, pattern, redisScanCount).Result()
		if err != nil {
			s.logger.Warn("goSession: redis store scan failed", "prefix", prefix, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := s.redis.Del(ctx, keys...).Err(); err != nil {
				s.logger.Warn("goSession: redis store sweep failed", "prefix", prefix, "error", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

// escapeGlob quotes the characters Redis MATCH treats as pattern syntax.
func escapeGlob(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
