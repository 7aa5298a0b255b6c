package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if CRADLE_CONFIG is set
//  3. env (prefix CRADLE_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("CRADLE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: CRADLE_ADDR, CRADLE_MYSQL_DSN, ...
	// Map env keys like CRADLE_MYSQL_DSN -> mysql_dsn (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("CRADLE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "cradle_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !c.UseMemoryStore && c.MySQLDSN == "":
		return fmt.Errorf("%w: mysql_dsn must not be empty", ErrInvalidConfig)
	case c.LeaderboardCap < 1:
		return fmt.Errorf("%w: leaderboard_cap must be positive", ErrInvalidConfig)
	case c.DailySignInPoints < 1:
		return fmt.Errorf("%w: daily_signin_points must be positive", ErrInvalidConfig)
	case c.CacheTTLSeconds < 1:
		return fmt.Errorf("%w: cache_ttl_seconds must be positive", ErrInvalidConfig)
	}
	return nil
}
