package cache

import (
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := NewLRUCache[string](4, time.Minute)

	c.Set("mario", "snapshot-a")
	got, ok := c.Get("mario")
	if !ok || got != "snapshot-a" {
		t.Errorf("Get() = %q, %v; want snapshot-a, true", got, ok)
	}

	c.Set("mario", "snapshot-b")
	got, _ = c.Get("mario")
	if got != "snapshot-b" {
		t.Errorf("Get() after overwrite = %q, want snapshot-b", got)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestExpiredEntryIsMiss(t *testing.T) {
	c := NewLRUCache[int](4, -time.Second)

	c.Set("k", 42)
	if _, ok := c.Get("k"); ok {
		t.Error("Get() returned an expired entry")
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d after expired read, want 0", c.Size())
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // refresh a so b is the eviction candidate
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should have survived eviction")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should be present")
	}
}

func TestDelete(t *testing.T) {
	c := NewLRUCache[int](4, time.Minute)

	c.Set("k", 1)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("Get() found a deleted key")
	}
	c.Delete("missing") // must not panic
}

func TestCleanExpired(t *testing.T) {
	c := NewLRUCache[int](8, -time.Second)
	c.Set("a", 1)
	c.Set("b", 2)

	if n := c.CleanExpired(); n != 2 {
		t.Errorf("CleanExpired() = %d, want 2", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d after cleanup, want 0", c.Size())
	}
}

func TestManagerCleanup(t *testing.T) {
	c := NewLRUCache[int](8, -time.Second)
	c.Set("a", 1)

	m := NewManager()
	m.Register(c)
	m.StartCleanup(5 * time.Millisecond)

	deadline := time.After(time.Second)
	for c.Size() > 0 {
		select {
		case <-deadline:
			t.Fatal("cleanup never removed the expired entry")
		case <-time.After(5 * time.Millisecond):
		}
	}
	m.Stop()
}
