// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Crucibia server.

Crucibia collects crossword words and clues from invited guests. Guests
unlock the submission form with a shared password; organisers unlock a
separate admin area with their own password to review, delete and export
the submissions as CSV.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	FORM_PASSWORD=... ADMIN_PASSWORD=... go run .

Or with flags:

	go run . -p 5000 -d data/cruciverba.db

A .env file in the working directory is loaded first if present.

# Configuration

Required settings:

  - FORM_PASSWORD: password for the guest channel
  - ADMIN_PASSWORD: password for the admin channel
  - DATABASE_URL (--database-url): required when DATABASE_TYPE is postgres

Optional settings:

  - PORT (-p): Server port (default: 5000)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_PATH (-d): SQLite file (default: data/cruciverba.db)
  - SECRET_KEY: signs session cookies; random per process when unset
  - RATE_LIMIT_STORAGE_URL (--rate-limit-storage): memory://, sqlite://path or postgres://...
  - FORCE_HTTPS: mark the session cookie Secure
  - TRUST_PROXY: take the client address from X-Forwarded-For
  - SESSION_LIFETIME, CSRF_TIME_LIMIT, STORE_TIMEOUT: durations
  - LOG_LEVEL, LOG_FORMAT: debug|info|warn|error, text|json

Passwords may be given as bcrypt hashes.

# Architecture

  - handlers: guest and admin pages, CSV export, health check
  - router: routes, per-route rate limits and the middleware chain
  - middleware: logging, recovery, security headers, sessions, CSRF, rate limiting
  - auth: password gate, cookie sessions, CSRF tokens
  - ratelimit: fixed-window limiter over memory or SQL storage
  - validate: word/clue validation and HTML sanitizing
  - store: submissions persistence
  - db: connection setup and migrations
  - models: shared types
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
