// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"context"
	"fmt"
	"strings"

	"github.com/D35P4C1T0/crucibia/db"
)

// Open returns the Store named by a storage URL:
//
//	memory://             in-process counters
//	sqlite://<path>       counters in a SQLite file
//	postgres://...        counters in PostgreSQL
func Open(ctx context.Context, storageURL string) (Store, error) {
	switch {
	case storageURL == "" || storageURL == "memory://":
		return NewMemoryStore(), nil

	case strings.HasPrefix(storageURL, "sqlite://"):
		path := strings.TrimPrefix(storageURL, "sqlite://")
		if path == "" {
			return nil, fmt.Errorf("rate limit storage %q: missing database path", storageURL)
		}
		return openSQL(ctx, db.SQLite, path)

	case strings.HasPrefix(storageURL, "postgres://"), strings.HasPrefix(storageURL, "postgresql://"):
		return openSQL(ctx, db.Postgres, storageURL)

	default:
		return nil, fmt.Errorf("unsupported rate limit storage %q", storageURL)
	}
}

func openSQL(ctx context.Context, dialect db.Dialect, location string) (Store, error) {
	conn, err := db.Open(ctx, dialect, location)
	if err != nil {
		return nil, fmt.Errorf("rate limit storage: %w", err)
	}

	s, err := NewSQLStore(ctx, conn, dialect)
	if err != nil {
		conn.Close()
		return nil, err
	}
	s.ownsDB = true
	return s, nil
}
