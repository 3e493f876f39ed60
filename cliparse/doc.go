// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration loading.

# Sources

Settings come from three layers, later layers winning:

  - a .env file in the working directory (LoadDotEnv, optional)
  - environment variables (read with cleanenv, including defaults)
  - command-line flags

	if err := cliparse.LoadDotEnv(); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Environment Variables

	PORT                    → -p  (default 5000)
	DATABASE_TYPE           → -t  (sqlite | postgres, default sqlite)
	DATABASE_PATH           → -d  (default data/cruciverba.db)
	DATABASE_URL            → --database-url (required for postgres)
	RATE_LIMIT_STORAGE_URL  → --rate-limit-storage (default memory://)
	SECRET_KEY              session signing secret (random when absent)
	FORM_PASSWORD           guest password (required)
	ADMIN_PASSWORD          admin password (required)
	FORCE_HTTPS             mark the session cookie Secure
	TRUST_PROXY             honour X-Forwarded-For / X-Real-IP
	SESSION_LIFETIME        default 2h
	CSRF_TIME_LIMIT         default 1h
	STORE_TIMEOUT           default 5s
	LOG_LEVEL, LOG_FORMAT   default info, text

# Validation

A missing required setting is reported as *ConfigError carrying the key:

	var cfgErr *cliparse.ConfigError
	if errors.As(err, &cfgErr) {
		slog.Error("missing configuration", "key", cfgErr.Key)
	}
*/
package cliparse
