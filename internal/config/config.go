// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor
// principles; a local .env file is honored in development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Store backend selectors.
const (
	StoreBackendFile     = "file"
	StoreBackendPostgres = "postgres"
)

// Click log write modes for the file backend.
const (
	ClickLogAppend  = "append"  // append-only log, safe for concurrent appends
	ClickLogRewrite = "rewrite" // whole-file rewrite, original small-scale behavior
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Base URL of this service (used to build absolute short links)
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Record store backend: "file" or "postgres"
	StoreBackend string `env:"STORE_BACKEND" envDefault:"file"`

	// File backend settings
	DataDir      string `env:"DATA_DIR" envDefault:"./data"`
	ClickLogMode string `env:"CLICK_LOG_MODE" envDefault:"append"`

	// Postgres backend (required when STORE_BACKEND=postgres)
	DatabaseURL string `env:"DATABASE_URL"`

	// Optional link cache (enabled when set)
	RedisURL string `env:"REDIS_URL"`

	// Optional GeoIP database for click geolocation (enabled when set)
	GeoIPPath string `env:"GEOIP_DB_PATH"`

	// Cloaking
	CloakSafeURL string `env:"CLOAK_SAFE_URL" envDefault:"https://www.wikipedia.org/"`

	// Click-correlation query parameter appended to destinations.
	// Empty disables the parameter.
	ClickIDParam string `env:"CLICK_ID_PARAM" envDefault:"cid"`

	// Metrics
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"false"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate checks cross-field constraints that env tags cannot express.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreBackendFile:
	case StoreBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND=%s", StoreBackendPostgres)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.ClickLogMode != ClickLogAppend && c.ClickLogMode != ClickLogRewrite {
		return fmt.Errorf("unknown CLICK_LOG_MODE %q", c.ClickLogMode)
	}

	return nil
}

// Load parses environment variables and returns a Config.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
