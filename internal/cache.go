package internal

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// IdentityMap holds at most one instance per id for one entity kind.
// Entries are never evicted; the map grows for the lifetime of its owner.
type IdentityMap[T any] struct {
	mu      sync.RWMutex
	entries map[int64]T
	flight  singleflight.Group
}

// NewIdentityMap creates an empty identity map.
func NewIdentityMap[T any]() *IdentityMap[T] {
	return &IdentityMap[T]{entries: make(map[int64]T)}
}

// Lookup returns the cached instance for id without touching the network.
func (m *IdentityMap[T]) Lookup(id int64) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[id]
	return v, ok
}

// Len returns the number of cached instances.
func (m *IdentityMap[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// LoadOrConstruct returns the cached instance for id, or builds one from
// embedded data. construct must not block on the network; it may resolve
// other ids, including ids in this same map. If another caller stored id
// while construct ran, that instance wins and the new one is dropped.
func (m *IdentityMap[T]) LoadOrConstruct(id int64, construct func() (T, error)) (T, error) {
	if v, ok := m.Lookup(id); ok {
		return v, nil
	}

	v, err := construct()
	if err != nil {
		var zero T
		return zero, err
	}
	return m.store(id, v), nil
}

// Resolve returns the cached instance for id, fetching it when absent.
// Concurrent resolutions of the same uncached id share one fetch, which runs
// detached from any single caller's cancellation; each caller still returns
// as soon as its own ctx is done. Nothing is cached when fetch fails.
func (m *IdentityMap[T]) Resolve(ctx context.Context, id int64, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := m.Lookup(id); ok {
		return v, nil
	}

	ch := m.flight.DoChan(strconv.FormatInt(id, 10), func() (any, error) {
		if v, ok := m.Lookup(id); ok {
			return v, nil
		}
		v, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		return m.store(id, v), nil
	})

	var zero T
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// store inserts v unless id is already present, and returns the stored instance.
func (m *IdentityMap[T]) store(id int64, v T) T {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.entries[id]; ok {
		return existing
	}
	m.entries[id] = v
	return v
}
