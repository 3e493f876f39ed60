// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FORM_PASSWORD", "guest-pass")
	t.Setenv("ADMIN_PASSWORD", "admin-pass")
}

func TestParseFlags_EnvVars(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_PATH", "/tmp/test.db")
	t.Setenv("FORCE_HTTPS", "True")
	t.Setenv("SESSION_LIFETIME", "30m")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabasePath != "/tmp/test.db" {
		t.Errorf("expected database path /tmp/test.db, got %s", cfg.DatabasePath)
	}
	if !cfg.ForceHTTPS {
		t.Error("expected FORCE_HTTPS to be parsed as true")
	}
	if cfg.SessionLifetime != 30*time.Minute {
		t.Errorf("expected session lifetime 30m, got %s", cfg.SessionLifetime)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 5000 {
		t.Errorf("expected default port 5000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != DatabaseSQLite {
		t.Errorf("expected default database type sqlite, got %s", cfg.DatabaseType)
	}
	if cfg.RateLimitStorageURL != "memory://" {
		t.Errorf("expected memory rate limit backend, got %s", cfg.RateLimitStorageURL)
	}
	if cfg.CSRFTimeLimit != time.Hour {
		t.Errorf("expected CSRF time limit 1h, got %s", cfg.CSRFTimeLimit)
	}
	if cfg.StoreTimeout != 5*time.Second {
		t.Errorf("expected store timeout 5s, got %s", cfg.StoreTimeout)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "test.db"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DatabasePath != "test.db" {
		t.Errorf("expected database path test.db, got %s", cfg.DatabasePath)
	}
}

func TestParseFlags_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantKey string
	}{
		{
			name:    "missing form password",
			env:     map[string]string{"FORM_PASSWORD": "", "ADMIN_PASSWORD": "a"},
			wantKey: "FORM_PASSWORD",
		},
		{
			name:    "missing admin password",
			env:     map[string]string{"FORM_PASSWORD": "g", "ADMIN_PASSWORD": ""},
			wantKey: "ADMIN_PASSWORD",
		},
		{
			name:    "postgres without url",
			env:     map[string]string{"FORM_PASSWORD": "g", "ADMIN_PASSWORD": "a", "DATABASE_TYPE": "postgres", "DATABASE_URL": ""},
			wantKey: "DATABASE_URL",
		},
		{
			name:    "unknown database type",
			env:     map[string]string{"FORM_PASSWORD": "g", "ADMIN_PASSWORD": "a", "DATABASE_TYPE": "mongo"},
			wantKey: "DATABASE_TYPE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := ParseFlags([]string{})
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T: %v", err, err)
			}
			if cfgErr.Key != tt.wantKey {
				t.Errorf("expected key %s, got %s", tt.wantKey, cfgErr.Key)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is not an error", func(t *testing.T) {
		if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Errorf("expected nil error for missing file, got %v", err)
		}
	})

	t.Run("values are loaded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("CRUCIBIA_TEST_VALUE=from-dotenv\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("CRUCIBIA_TEST_VALUE", "")
		os.Unsetenv("CRUCIBIA_TEST_VALUE")

		if err := LoadDotEnv(path); err != nil {
			t.Fatal(err)
		}
		if got := os.Getenv("CRUCIBIA_TEST_VALUE"); got != "from-dotenv" {
			t.Errorf("expected from-dotenv, got %q", got)
		}
	})
}
