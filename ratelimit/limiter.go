// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/D35P4C1T0/crucibia/auth"
)

// DefaultCleanupInterval is how often expired windows are swept.
const DefaultCleanupInterval = time.Minute

// Store counts hits per bucket and fixed window.
type Store interface {
	// Hit records one hit for key in the window starting at start and
	// returns the number of hits in that window so far.
	Hit(ctx context.Context, key string, start time.Time, window time.Duration) (int, error)
	// Sweep drops windows that ended before now.
	Sweep(ctx context.Context, now time.Time) error
	Close() error
}

// LimitError is returned when a client has used up a rule's window.
type LimitError struct {
	Rule       Rule
	RetryAfter time.Duration
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %s (retry after %s)", e.Rule, e.RetryAfter)
}

// IsLimitError reports whether err is a *LimitError.
func IsLimitError(err error) bool {
	var le *LimitError
	return errors.As(err, &le)
}

// Limiter enforces fixed-window limits per scope and client.
type Limiter struct {
	store Store
	salt  string
	now   func() time.Time
	stop  chan struct{}
}

// New creates a limiter over store with background cleanup.
// Call Stop() on shutdown.
func New(store Store, salt string, cleanupInterval time.Duration) *Limiter {
	l := &Limiter{
		store: store,
		salt:  salt,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go l.cleanup(cleanupInterval)
	}
	return l
}

// Stop terminates the background cleanup goroutine and closes the store.
func (l *Limiter) Stop() error {
	close(l.stop)
	return l.store.Close()
}

// Allow records a hit for client under scope against every rule. It returns
// a *LimitError when any rule is exhausted, or the store's error.
func (l *Limiter) Allow(ctx context.Context, scope, client string, rules ...Rule) error {
	now := l.now()
	clientKey := auth.HashIP(client, l.salt)

	var exceeded *LimitError
	for _, rule := range rules {
		start := now.Truncate(rule.Window)
		key := scope + "|" + clientKey + "|" + strconv.FormatInt(int64(rule.Window/time.Second), 10)

		hits, err := l.store.Hit(ctx, key, start, rule.Window)
		if err != nil {
			return fmt.Errorf("rate limit store: %w", err)
		}

		if hits > rule.Limit {
			retry := start.Add(rule.Window).Sub(now)
			if exceeded == nil || retry > exceeded.RetryAfter {
				exceeded = &LimitError{Rule: rule, RetryAfter: retry}
			}
		}
	}

	if exceeded != nil {
		return exceeded
	}
	return nil
}

func (l *Limiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			if err := l.store.Sweep(ctx, l.now()); err != nil {
				slog.Error("rate limit sweep failed", "error", err)
			}
			cancel()
		}
	}
}
