// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

type Config struct {
	Port         int    `env:"PORT"          env-default:"5000"`
	DatabaseType string `env:"DATABASE_TYPE" env-default:"sqlite"`
	DatabasePath string `env:"DATABASE_PATH" env-default:"data/cruciverba.db"`
	DatabaseURL  string `env:"DATABASE_URL"`

	// Secrets
	SecretKey     string `env:"SECRET_KEY"`
	FormPassword  string `env:"FORM_PASSWORD"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	RateLimitStorageURL string `env:"RATE_LIMIT_STORAGE_URL" env-default:"memory://"`

	ForceHTTPS      bool          `env:"FORCE_HTTPS"      env-default:"false"`
	TrustProxy      bool          `env:"TRUST_PROXY"      env-default:"false"`
	SessionLifetime time.Duration `env:"SESSION_LIFETIME" env-default:"2h"`
	CSRFTimeLimit   time.Duration `env:"CSRF_TIME_LIMIT"  env-default:"1h"`
	StoreTimeout    time.Duration `env:"STORE_TIMEOUT"    env-default:"5s"`

	LogLevel  string `env:"LOG_LEVEL"  env-default:"info"`
	LogFormat string `env:"LOG_FORMAT" env-default:"text"`
}

// ConfigError reports a required setting that was not supplied.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("config %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config %s required", e.Key)
}

// LoadDotEnv loads a .env file from the working directory if one exists.
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("no .env file found")
		return nil
	}
	return err
}

// ParseFlags reads the environment, then applies CLI overrides and validates
// required settings.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}

	flags := flag.NewFlagSet("crucibia", flag.ContinueOnError)

	// Network and storage (CLI overrides env)
	flags.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	flags.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "SQLite database path")
	flags.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")
	flags.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "PostgreSQL connection string")
	flags.StringVar(&cfg.RateLimitStorageURL, "rate-limit-storage", cfg.RateLimitStorageURL, "Rate limit backend (memory://, sqlite://path, postgres://...)")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks required settings and value ranges.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return &ConfigError{Key: "PORT", Reason: "must be between 1 and 65535"}
	}

	switch c.DatabaseType {
	case DatabaseSQLite:
		if c.DatabasePath == "" {
			return &ConfigError{Key: "DATABASE_PATH"}
		}
	case DatabasePostgres:
		if c.DatabaseURL == "" {
			return &ConfigError{Key: "DATABASE_URL"}
		}
	default:
		return &ConfigError{Key: "DATABASE_TYPE", Reason: "must be sqlite or postgres"}
	}

	// Secrets - MUST be provided
	if c.FormPassword == "" {
		return &ConfigError{Key: "FORM_PASSWORD"}
	}
	if c.AdminPassword == "" {
		return &ConfigError{Key: "ADMIN_PASSWORD"}
	}

	if c.SessionLifetime <= 0 {
		return &ConfigError{Key: "SESSION_LIFETIME", Reason: "must be positive"}
	}
	if c.CSRFTimeLimit <= 0 {
		return &ConfigError{Key: "CSRF_TIME_LIMIT", Reason: "must be positive"}
	}
	if c.StoreTimeout <= 0 {
		return &ConfigError{Key: "STORE_TIMEOUT", Reason: "must be positive"}
	}

	return nil
}
