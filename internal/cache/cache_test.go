package cache

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[int], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCache_Eviction(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("Get(a) missed")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry b should be evicted")
	}
	for _, key := range []string{"a", "c"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("Get(%s) missed", key)
		}
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	clock.t = clock.t.Add(30 * time.Second)
	c.Set("b", 20)
	clock.t = clock.t.Add(45 * time.Second)

	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) should miss after ttl")
	}
	if v, ok := c.Get("b"); !ok || v != 20 {
		t.Errorf("Get(b) = %d, %v; want 20, true", v, ok)
	}

	clock.t = clock.t.Add(time.Hour)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
}

func TestLRUCache_Delete(t *testing.T) {
	c, _ := newTestCache(0, time.Minute)
	c.Set("a", 1)
	c.Delete("a")
	c.Delete("missing")
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) should miss after Delete")
	}
}

func TestVersioned(t *testing.T) {
	v := NewVersioned[string](4, time.Minute)
	v.Set("report:2024-01", 3, "stale")

	tests := []struct {
		name    string
		key     string
		version uint64
		want    string
		wantOK  bool
	}{
		{"same version hits", "report:2024-01", 3, "stale", true},
		{"newer version misses", "report:2024-01", 4, "", false},
		{"unknown key misses", "report:2024-02", 3, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := v.Get(tt.key, tt.version)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Get(%q, %d) = %q, %v; want %q, %v", tt.key, tt.version, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	v.Set("report:2024-01", 4, "fresh")
	if got, ok := v.Get("report:2024-01", 4); !ok || got != "fresh" {
		t.Errorf("Get() after reset = %q, %v", got, ok)
	}
	if v.Size() != 1 {
		t.Errorf("Size() = %d, want 1", v.Size())
	}
}

func TestManager_CleanAll(t *testing.T) {
	a, clock := newTestCache(4, time.Second)
	b, _ := newTestCache(4, time.Hour)
	b.now = clock.now
	a.Set("x", 1)
	b.Set("y", 2)

	m := NewManager()
	m.Register(a)
	m.Register(b)

	clock.t = clock.t.Add(time.Minute)
	if n := m.CleanAll(); n != 1 {
		t.Errorf("CleanAll() = %d, want 1", n)
	}

	m.StartCleanup(context.Background(), time.Millisecond)
	m.Stop()
	m.Stop()
}
