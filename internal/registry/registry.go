// Package registry keeps the live games of the process.
package registry

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Entry is anything that knows when it was last used.
type Entry interface {
	LastActive() time.Time
}

// Store maps session IDs to entries. Implementations are safe for concurrent use.
type Store[T Entry] interface {
	Put(id string, entry T)
	Get(id string) (T, bool)
	Delete(id string)
	Len() int
	// EvictIdle removes the entries that have been idle for longer than maxIdle and returns their IDs.
	EvictIdle(maxIdle time.Duration) []string
}

// Memory is an in-process Store.
type Memory[T Entry] struct {
	mu      sync.RWMutex
	entries map[string]T
	logger  *slog.Logger
	now     func() time.Time
}

func NewMemory[T Entry](logger *slog.Logger) *Memory[T] {
	return &Memory[T]{
		mu:      sync.RWMutex{},
		entries: make(map[string]T),
		logger:  logger.With("source", "Registry"),
		now:     time.Now,
	}
}

func (m *Memory[T]) Put(id string, entry T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = entry
}

func (m *Memory[T]) Get(id string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[id]
	return entry, ok
}

func (m *Memory[T]) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
}

func (m *Memory[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory[T]) EvictIdle(maxIdle time.Duration) []string {
	m.mu.RLock()
	snapshot := make(map[string]T, len(m.entries))
	for id, entry := range m.entries {
		snapshot[id] = entry
	}
	m.mu.RUnlock()

	cutoff := m.now().Add(-maxIdle)
	var evicted []string
	for id, entry := range snapshot {
		if entry.LastActive().Before(cutoff) {
			evicted = append(evicted, id)
		}
	}
	if len(evicted) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := evicted[:0]
	for _, id := range evicted {
		// The entry may have been used or replaced since the scan.
		entry, ok := m.entries[id]
		if !ok || !entry.LastActive().Before(cutoff) {
			continue
		}
		delete(m.entries, id)
		removed = append(removed, id)
	}
	if len(removed) == 0 {
		return nil
	}
	return removed
}

// RunJanitor evicts idle entries every interval until ctx is done.
func (m *Memory[T]) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := m.EvictIdle(maxIdle); len(evicted) > 0 {
				m.logger.LogAttrs(ctx, slog.LevelInfo, "evicted idle sessions",
					slog.Int("evicted", len(evicted)), slog.Int("remaining", m.Len()))
			}
		}
	}
}
