// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/D35P4C1T0/crucibia/db"
	"github.com/D35P4C1T0/crucibia/models"
)

const (
	tableSubmissions = "submissions"
	colID            = "id"
	colWord          = "parola"
	colClue          = "frase_indizio"
	colName          = "nome"
	colTimestamp     = `"timestamp"`

	DefaultTimeout = 5 * time.Second
)

// StorageError wraps any failure of the underlying database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Store is the persistence layer for submissions.
type Store struct {
	db      *sql.DB
	qb      sq.StatementBuilderType
	timeout time.Duration
}

// New returns a Store over conn. Every call is bounded by timeout
// (DefaultTimeout when zero).
func New(conn *sql.DB, dialect db.Dialect, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	builder := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if dialect == db.Postgres {
		builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}

	return &Store{db: conn, qb: builder, timeout: timeout}
}

// Insert stores a new submission and returns its identifier.
// The timestamp is assigned by the database default.
func (s *Store) Insert(ctx context.Context, word, clue, name string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query, args, err := s.qb.
		Insert(tableSubmissions).
		Columns(colWord, colClue, colName).
		Values(word, clue, name).
		Suffix("RETURNING " + colID).
		ToSql()
	if err != nil {
		return 0, &StorageError{Op: "build insert", Err: err}
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, &StorageError{Op: "insert submission", Err: err}
	}

	return id, nil
}

// ListAll returns every submission ordered by identifier ascending.
// An empty table yields an empty slice.
func (s *Store) ListAll(ctx context.Context) ([]models.Submission, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query, args, err := s.qb.
		Select(colID, colWord, colClue, colName, colTimestamp).
		From(tableSubmissions).
		OrderBy(colID + " ASC").
		ToSql()
	if err != nil {
		return nil, &StorageError{Op: "build list", Err: err}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &StorageError{Op: "list submissions", Err: err}
	}
	defer rows.Close()

	submissions := []models.Submission{}
	for rows.Next() {
		var (
			sub  models.Submission
			name sql.NullString
			ts   dbTime
		)
		if err := rows.Scan(&sub.ID, &sub.Word, &sub.Clue, &name, &ts); err != nil {
			return nil, &StorageError{Op: "scan submission", Err: err}
		}
		sub.Name = name.String
		sub.CreatedAt = ts.Time
		submissions = append(submissions, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list submissions", Err: err}
	}

	return submissions, nil
}

// DeleteByID removes the submission with the given identifier and reports
// whether a row was removed. A missing identifier is not an error.
func (s *Store) DeleteByID(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query, args, err := s.qb.
		Delete(tableSubmissions).
		Where(sq.Eq{colID: id}).
		ToSql()
	if err != nil {
		return false, &StorageError{Op: "build delete", Err: err}
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, &StorageError{Op: "delete submission", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, &StorageError{Op: "delete submission", Err: err}
	}

	return affected > 0, nil
}

// HasDuplicate reports whether a submission with the same clue and the same
// word (compared case-insensitively) already exists.
func (s *Store) HasDuplicate(ctx context.Context, word, clue string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// SQLite's LOWER() only folds ASCII, so words are compared here.
	query, args, err := s.qb.
		Select(colWord).
		From(tableSubmissions).
		Where(sq.Eq{colClue: clue}).
		ToSql()
	if err != nil {
		return false, &StorageError{Op: "build duplicate check", Err: err}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return false, &StorageError{Op: "duplicate check", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var existing string
		if err := rows.Scan(&existing); err != nil {
			return false, &StorageError{Op: "duplicate check", Err: err}
		}
		if strings.EqualFold(existing, word) {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, &StorageError{Op: "duplicate check", Err: err}
	}

	return false, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return &StorageError{Op: "ping", Err: err}
	}
	return nil
}

// IsStorageError reports whether err came from the store.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
