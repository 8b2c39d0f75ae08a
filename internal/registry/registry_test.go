package registry_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/myrjola/murderai/internal/registry"
	"github.com/myrjola/murderai/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	lastActive atomic.Int64
}

func newEntry(at time.Time) *entry {
	e := &entry{}
	e.lastActive.Store(at.UnixNano())
	return e
}

func (e *entry) LastActive() time.Time {
	return time.Unix(0, e.lastActive.Load())
}

func TestMemory(t *testing.T) {
	m := registry.NewMemory[*entry](testhelpers.NewLogger(io.Discard))

	_, ok := m.Get("missing")
	require.False(t, ok)

	e := newEntry(time.Now())
	m.Put("a", e)
	got, ok := m.Get("a")
	require.True(t, ok)
	require.Same(t, e, got)
	require.Equal(t, 1, m.Len())

	m.Delete("a")
	require.Equal(t, 0, m.Len())
}

func TestMemory_EvictIdle(t *testing.T) {
	m := registry.NewMemory[*entry](testhelpers.NewLogger(io.Discard))
	m.Put("fresh", newEntry(time.Now()))
	m.Put("stale", newEntry(time.Now().Add(-3*time.Hour)))

	require.Equal(t, []string{"stale"}, m.EvictIdle(2*time.Hour))
	_, ok := m.Get("stale")
	require.False(t, ok)
	_, ok = m.Get("fresh")
	require.True(t, ok)
	require.Nil(t, m.EvictIdle(2*time.Hour))
}

// wakingEntry reports a stale time once and is used by its player right after.
type wakingEntry struct {
	entry
	reads atomic.Int32
}

func (e *wakingEntry) LastActive() time.Time {
	at := e.entry.LastActive()
	if e.reads.Add(1) == 1 {
		e.lastActive.Store(time.Now().UnixNano())
	}
	return at
}

func TestMemory_EvictIdle_KeepsEntryUsedDuringScan(t *testing.T) {
	m := registry.NewMemory[*wakingEntry](testhelpers.NewLogger(io.Discard))
	e := &wakingEntry{}
	e.lastActive.Store(time.Now().Add(-time.Hour).UnixNano())
	m.Put("g", e)

	require.Nil(t, m.EvictIdle(time.Minute))
	got, ok := m.Get("g")
	require.True(t, ok)
	require.Same(t, e, got)
	require.WithinDuration(t, time.Now(), e.entry.LastActive(), time.Minute)
}

func TestMemory_EvictIdle_StillIdleAfterScan(t *testing.T) {
	m := registry.NewMemory[*wakingEntry](testhelpers.NewLogger(io.Discard))
	stale := &wakingEntry{}
	stale.lastActive.Store(time.Now().Add(-time.Hour).UnixNano())
	stale.reads.Store(1)
	m.Put("g", stale)
	require.Equal(t, []string{"g"}, m.EvictIdle(time.Minute))
	_, ok := m.Get("g")
	require.False(t, ok)
}

func TestMemory_RunJanitor(t *testing.T) {
	m := registry.NewMemory[*entry](testhelpers.NewLogger(io.Discard))
	m.Put("stale", newEntry(time.Now().Add(-time.Hour)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.RunJanitor(ctx, time.Millisecond, time.Minute)
		close(done)
	}()
	require.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	<-done
}

func TestMemory_Concurrent(t *testing.T) {
	m := registry.NewMemory[*entry](testhelpers.NewLogger(io.Discard))
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("session-%d", i)
			m.Put(id, newEntry(time.Now()))
			_, ok := m.Get(id)
			assert.True(t, ok)
			m.EvictIdle(time.Hour)
		}()
	}
	wg.Wait()
	require.Equal(t, 50, m.Len())
}
