package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/store"
)

const (
	storeMemory    = "memory"
	storeSQLite    = "sqlite"
	storeRedis     = "redis"
	storeMiniredis = "miniredis"
)

var (
	envPrefix  string
	envFiles   []string
	storeKind  string
	dbPath     string
	redisAddr  string
	namespace  string
	baseURL    string
	verbose    bool
	jsonOutput bool

	cfg    goSession.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sessionctl",
	Short: "Client session lifecycle CLI",
	Long: `sessionctl signs in against a session backend and keeps the resulting
tokens in a local store, so later invocations pick the session back up.

Configuration comes from GOSESSION_* variables (and an optional .env file);
flags override the backend URL.

Example usage:
  sessionctl login --email a@example.com --password secret
  sessionctl status --json
  sessionctl refresh
  sessionctl watch --metrics-addr :9102
  sessionctl logout
  sessionctl demo                # run the full lifecycle against a local fake backend`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd.ErrOrStderr())
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&envPrefix, "env-prefix", goSession.DefaultEnvPrefix, "environment variable prefix")
	flags.StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")
	flags.StringVar(&storeKind, "store", storeSQLite, "token store: memory, sqlite, redis, miniredis")
	flags.StringVar(&dbPath, "db", "sessionctl.db", "sqlite database path")
	flags.StringVar(&redisAddr, "redis-addr", "", "redis address; REDIS_ADDR is used when empty")
	flags.StringVar(&namespace, "namespace", "sessionctl:", "redis key namespace")
	flags.StringVar(&baseURL, "base-url", "", "backend base URL (overrides GOSESSION_GATEWAY_BASE_URL)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&jsonOutput, "json", false, "output as JSON")
}

func initConfig(stderr io.Writer) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	loaded, err := goSession.LoadConfigFromEnv(envPrefix, envFiles...)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if baseURL != "" {
		loaded.Gateway.BaseURL = baseURL
	}
	cfg = loaded

	logger.Debug("configuration loaded",
		"base_url", cfg.Gateway.BaseURL,
		"store", storeKind,
		"refresh_enabled", cfg.Refresh.Enabled,
	)
	return nil
}

// openStore returns the configured token store and a func releasing it.
func openStore() (store.TokenStore, func(), error) {
	switch strings.ToLower(storeKind) {
	case storeMemory:
		return store.NewMemoryStore(), func() {}, nil
	case storeSQLite:
		s, err := store.OpenSQLiteStore(dbPath, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case storeRedis:
		addr := redisAddr
		if addr == "" {
			addr = os.Getenv("REDIS_ADDR")
		}
		if addr == "" {
			return nil, nil, errors.New("redis store needs --redis-addr or REDIS_ADDR")
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		return store.NewRedisStore(client, namespace, store.WithRedisLogger(logger)), func() { _ = client.Close() }, nil
	case storeMiniredis:
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start miniredis: %w", err)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		cleanup := func() {
			_ = client.Close()
			mr.Close()
		}
		return store.NewRedisStore(client, namespace, store.WithRedisLogger(logger)), cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", storeKind)
	}
}

// openController builds a controller over the configured store. The returned
// func closes both.
func openController(sink goSession.EventSink) (*goSession.Controller, func(), error) {
	st, release, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	b := goSession.New().
		WithConfig(cfg).
		WithStore(st).
		WithLogger(logger)
	if sink != nil {
		b = b.WithEventSink(sink)
	}
	ctrl, err := b.Build()
	if err != nil {
		release()
		return nil, nil, err
	}
	return ctrl, func() {
		ctrl.Close()
		release()
	}, nil
}

// resume restores the stored session the way an application start would.
func resume(ctx context.Context, ctrl *goSession.Controller) (goSession.BootstrapOutcome, error) {
	outcome, err := ctrl.Bootstrap(ctx)
	logger.Debug("bootstrap finished", "outcome", outcome.String(), "error", err)
	return outcome, err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
