// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Rule allows Limit hits per Window.
type Rule struct {
	Limit  int
	Window time.Duration
}

var windowUnits = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
}

// ParseRule parses rules written as "30 per minute" or "50/hour".
func ParseRule(s string) (Rule, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.Replace(norm, "/", " per ", 1)

	fields := strings.Fields(norm)
	if len(fields) != 3 || fields[1] != "per" {
		return Rule{}, fmt.Errorf("invalid rate limit %q: want \"<n> per <unit>\"", s)
	}

	limit, err := strconv.Atoi(fields[0])
	if err != nil || limit <= 0 {
		return Rule{}, fmt.Errorf("invalid rate limit %q: count must be a positive integer", s)
	}

	unit := strings.TrimSuffix(fields[2], "s")
	window, ok := windowUnits[unit]
	if !ok {
		return Rule{}, fmt.Errorf("invalid rate limit %q: unknown unit %q", s, fields[2])
	}

	return Rule{Limit: limit, Window: window}, nil
}

// MustParseRule is like ParseRule but panics on error. For static route tables.
func MustParseRule(s string) Rule {
	r, err := ParseRule(s)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Rule) String() string {
	for name, d := range windowUnits {
		if d == r.Window {
			return fmt.Sprintf("%d per %s", r.Limit, name)
		}
	}
	return fmt.Sprintf("%d per %s", r.Limit, r.Window)
}
