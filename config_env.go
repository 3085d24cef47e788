package goSession

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultEnvPrefix is the variable prefix read by [LoadConfigFromEnv] when
// none is given, e.g. GOSESSION_GATEWAY_BASE_URL.
const DefaultEnvPrefix = "GOSESSION_"

// LoadConfigFromEnv loads .env files (default ".env", missing files are
// ignored) and decodes prefixed variables over [DefaultConfig]. The result
// is validated.
func LoadConfigFromEnv(prefix string, dotenvFiles ...string) (Config, error) {
	if err := godotenv.Load(dotenvFiles...); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}
	return ConfigFromEnvironment(prefix, nil)
}

// ConfigFromEnvironment decodes prefixed variables from environ over
// [DefaultConfig]. A nil environ reads the process environment. Unset
// variables keep their defaults.
func ConfigFromEnvironment(prefix string, environ map[string]string) (Config, error) {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}

	cfg := defaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      prefix,
		Environment: environ,
	}); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
