// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	hits    int
	expires time.Time
}

type windowKey struct {
	bucket string
	start  int64
}

// MemoryStore keeps counters in process memory. Counts are lost on restart
// and are not shared between processes.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[windowKey]*window
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[windowKey]*window)}
}

func (m *MemoryStore) Hit(_ context.Context, key string, start time.Time, size time.Duration) (int, error) {
	k := windowKey{bucket: key, start: start.Unix()}

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[k]
	if !ok {
		w = &window{expires: start.Add(size)}
		m.windows[k] = w
	}
	w.hits++
	return w.hits, nil
}

func (m *MemoryStore) Sweep(_ context.Context, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, w := range m.windows {
		if !now.Before(w.expires) {
			delete(m.windows, k)
		}
	}
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// Len reports the number of live windows.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}
