package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port string `env:"PORT" envDefault:"8080" validate:"required"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	// Store selects the identity/reset backend; SessionStore may move sessions to redis.
	Store        string `env:"STORE" envDefault:"memory" validate:"oneof=memory postgres"`
	SessionStore string `env:"SESSION_STORE" envDefault:"store" validate:"oneof=store redis"`
	DatabaseURL  string `env:"DATABASE_URL" validate:"required_if=Store postgres"`
	RedisURL     string `env:"REDIS_URL" validate:"required_if=SessionStore redis"`

	// SeedSamples is nil when unset; see SeedSampleIdentities.
	SeedSamples *bool `env:"SEED_SAMPLE_IDENTITIES"`

	SessionSecret string        `env:"SESSION_SECRET,required" validate:"required,min=32"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"168h" validate:"gte=1m"`
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"true"`
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL" envDefault:"30m" validate:"gte=15m,lte=60m"`

	ProtectedPrefixes []string `env:"PROTECTED_PREFIXES" envDefault:"/dashboard,/protected" envSeparator:"," validate:"min=1,dive,startswith=/"`
	PublicEntryPath   string   `env:"PUBLIC_ENTRY_PATH" envDefault:"/" validate:"required,startswith=/"`

	LoginRatePerMin int `env:"LOGIN_RATE_PER_MIN" envDefault:"10" validate:"min=1,max=600"`
	LoginBurst      int `env:"LOGIN_BURST" envDefault:"5" validate:"min=1,max=100"`

	ResetLinkRatePerMin int `env:"RESET_LINK_RATE_PER_MIN" envDefault:"3" validate:"min=1,max=60"`
	ResetLinkBurst      int `env:"RESET_LINK_BURST" envDefault:"3" validate:"min=1,max=20"`

	// TrustedProxies may set X-Forwarded-For; empty means rate limits key on
	// the peer address.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:"," validate:"dive,cidr|ip"`

	ResendAPIKey  string `env:"RESEND_API_KEY"      validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom    string `env:"RESEND_FROM"         validate:"required_if=Env production,required_if=Env staging"`
	ResetLinkBase string `env:"RESET_LINK_BASE_URL" envDefault:"http://localhost:8080" validate:"url"`

	PurgeCron string `env:"PURGE_CRON" envDefault:"*/10 * * * *"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Env == "production" && cfg.SeedSamples != nil && *cfg.SeedSamples {
		return nil, errors.New("invalid config: SEED_SAMPLE_IDENTITIES must not be enabled in production")
	}

	return cfg, nil
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SeedSampleIdentities reports whether the server should register the sample
// identities at startup. Unset, it is on only for the memory store outside
// production; a database is seeded explicitly with cmd/seed.
func (c *Config) SeedSampleIdentities() bool {
	if c.SeedSamples != nil {
		return *c.SeedSamples
	}
	return c.Store == "memory" && c.Env != "production"
}
