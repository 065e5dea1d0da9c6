// Package keylock provides string-keyed exclusive locks with bounded,
// multi-key acquisition. Callers that need several keys must request them
// in a single Acquire call; the manager takes them in sorted order, which
// makes deadlock between opposite-direction acquisitions impossible.
package keylock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrAcquireTimeout is returned when a lock set cannot be acquired within
// the manager's timeout (or the caller's context deadline, if sooner).
var ErrAcquireTimeout = errors.New("keylock: acquire timed out")

// Manager serializes access to string-keyed resources. Lock entries are
// created on demand and removed once no goroutine holds or waits on them.
type Manager struct {
	timeout time.Duration

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	sem  chan struct{} // capacity 1; holding the token = holding the lock
	refs int           // holders + waiters; entry is dropped at zero
}

// NewManager creates a Manager whose Acquire calls give up after timeout.
func NewManager(timeout time.Duration) *Manager {
	return &Manager{
		timeout: timeout,
		entries: make(map[string]*entry),
	}
}

// Acquire locks every key in keys and returns a release function covering
// all of them. Keys are deduplicated and acquired in sorted order
// regardless of the order given. On timeout or context cancellation any
// partially acquired keys are released and ErrAcquireTimeout is returned.
// The release function is idempotent.
func (m *Manager) Acquire(ctx context.Context, keys ...string) (func(), error) {
	ordered := normalize(keys)
	if len(ordered) == 0 {
		return func() {}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	held := make([]*entry, 0, len(ordered))
	for _, key := range ordered {
		e := m.ref(key)
		select {
		case e.sem <- struct{}{}:
			held = append(held, e)
		case <-ctx.Done():
			m.unref(key)
			m.releaseAll(ordered[:len(held)], held)
			return nil, fmt.Errorf("%w: key %q", ErrAcquireTimeout, key)
		}
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			m.releaseAll(ordered, held)
		})
	}
	return release, nil
}

// releaseAll unlocks held entries in reverse acquisition order and drops
// their refcounts.
func (m *Manager) releaseAll(keys []string, held []*entry) {
	for i := len(held) - 1; i >= 0; i-- {
		<-held[i].sem
		m.unref(keys[i])
	}
}

func (m *Manager) ref(key string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	return e
}

func (m *Manager) unref(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
}

// normalize returns keys sorted and deduplicated without mutating the input.
func normalize(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
