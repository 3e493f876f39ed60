// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/D35P4C1T0/crucibia/db"
)

const tableRateLimit = "rate_limit"

// schemaStatements are valid for both SQLite and PostgreSQL.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS rate_limit (
		bucket       TEXT    NOT NULL,
		window_start BIGINT  NOT NULL,
		hits         INTEGER NOT NULL,
		expires_at   BIGINT  NOT NULL,
		PRIMARY KEY (bucket, window_start)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rate_limit_expires ON rate_limit(expires_at)`,
}

// SQLStore keeps counters in a database table so limits are shared across
// processes and survive restarts.
type SQLStore struct {
	db      *sql.DB
	qb      sq.StatementBuilderType
	ownsDB  bool
	timeout time.Duration
}

// NewSQLStore creates the counter table if needed. The caller keeps
// ownership of conn.
func NewSQLStore(ctx context.Context, conn *sql.DB, dialect db.Dialect) (*SQLStore, error) {
	for _, stmt := range schemaStatements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to create rate limit schema: %w", err)
		}
	}

	builder := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if dialect == db.Postgres {
		builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}

	return &SQLStore{db: conn, qb: builder, timeout: 2 * time.Second}, nil
}

func (s *SQLStore) Hit(ctx context.Context, key string, start time.Time, window time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query, args, err := s.qb.
		Insert(tableRateLimit).
		Columns("bucket", "window_start", "hits", "expires_at").
		Values(key, start.Unix(), 1, start.Add(window).Unix()).
		Suffix("ON CONFLICT (bucket, window_start) DO UPDATE SET hits = rate_limit.hits + 1 RETURNING hits").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build hit query: %w", err)
	}

	var hits int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&hits); err != nil {
		return 0, fmt.Errorf("failed to record hit: %w", err)
	}
	return hits, nil
}

func (s *SQLStore) Sweep(ctx context.Context, now time.Time) error {
	query, args, err := s.qb.
		Delete(tableRateLimit).
		Where(sq.LtOrEq{"expires_at": now.Unix()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sweep query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to sweep rate limit windows: %w", err)
	}
	return nil
}

// Close closes the connection when the store opened it itself.
func (s *SQLStore) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}
