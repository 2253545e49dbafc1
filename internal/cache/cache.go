// Package cache holds in-process caches for derived report data.
package cache

import (
	"context"
	"log/slog"
	"time"
)

// Cache is a string-keyed store of values of one type.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches whose entries expire.
type Cleaner interface {
	CleanExpired() int
}

// Versioned stamps each entry with the data version it was computed from.
// A lookup with any other version misses, so a value is never served after
// the underlying data has changed.
type Versioned[T any] struct {
	inner *LRUCache[stamped[T]]
}

type stamped[T any] struct {
	version uint64
	value   T
}

func NewVersioned[T any](maxSize int, ttl time.Duration) *Versioned[T] {
	return &Versioned[T]{inner: NewLRUCache[stamped[T]](maxSize, ttl)}
}

// Get returns the value cached for key if it was computed at version.
func (v *Versioned[T]) Get(key string, version uint64) (T, bool) {
	s, ok := v.inner.Get(key)
	if !ok || s.version != version {
		var zero T
		return zero, false
	}
	return s.value, true
}

func (v *Versioned[T]) Set(key string, version uint64, value T) {
	v.inner.Set(key, stamped[T]{version: version, value: value})
}

func (v *Versioned[T]) Size() int { return v.inner.Size() }

func (v *Versioned[T]) CleanExpired() int { return v.inner.CleanExpired() }

// Manager periodically purges expired entries from registered caches.
type Manager struct {
	caches []Cleaner
	done   chan struct{}
	cancel context.CancelFunc
}

func NewManager() *Manager {
	return &Manager{}
}

// Register adds a cache. It must be called before StartCleanup.
func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

// StartCleanup runs the purge loop every interval until Stop or ctx ends.
func (m *Manager) StartCleanup(ctx context.Context, interval time.Duration) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	go m.cleanup(ctx, interval)
}

func (m *Manager) cleanup(ctx context.Context, interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			total := m.CleanAll()
			if total > 0 {
				slog.DebugContext(ctx, "Purged expired cache entries", "count", total)
			}
		case <-ctx.Done():
			return
		}
	}
}

// CleanAll purges every registered cache once.
func (m *Manager) CleanAll() int {
	total := 0
	for _, c := range m.caches {
		total += c.CleanExpired()
	}
	return total
}

// Stop ends the purge loop and waits for it to exit.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
}
