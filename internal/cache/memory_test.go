package cache

import (
	"errors"
	"testing"
	"time"
)

func TestMemoryCache_PutGet(t *testing.T) {
	c := NewMemoryCache(100)

	if err := c.Put("ciao", []byte("pcm")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	data, ok := c.Get("ciao")
	if !ok || string(data) != "pcm" {
		t.Errorf("Get = %q, %v", data, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Expected miss for unknown key")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.HitRate != 0.5 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	c := NewMemoryCache(10)

	_ = c.Put("a", make([]byte, 4))
	_ = c.Put("b", make([]byte, 4))
	c.Get("a") // b is now least recently used
	_ = c.Put("c", make([]byte, 4))

	if c.Contains("b") {
		t.Error("b should have been evicted")
	}
	if !c.Contains("a") || !c.Contains("c") {
		t.Error("a and c should still be cached")
	}
	if c.Size() != 8 {
		t.Errorf("Expected size 8, got %d", c.Size())
	}
	if c.Stats().Evictions != 1 {
		t.Errorf("Expected 1 eviction, got %d", c.Stats().Evictions)
	}
}

func TestMemoryCache_TooLarge(t *testing.T) {
	c := NewMemoryCache(4)
	if err := c.Put("big", make([]byte, 5)); !errors.Is(err, ErrItemTooLarge) {
		t.Errorf("Expected ErrItemTooLarge, got %v", err)
	}
}

func TestMemoryCache_ReplaceAndDelete(t *testing.T) {
	c := NewMemoryCache(100)
	_ = c.Put("k", make([]byte, 10))
	_ = c.Put("k", make([]byte, 3))
	if c.Size() != 3 {
		t.Errorf("Replacing should adjust size, got %d", c.Size())
	}

	_ = c.Delete("k")
	_ = c.Delete("k")
	if c.Contains("k") || c.Size() != 0 {
		t.Error("Delete should remove the clip")
	}
}

func TestMemoryCache_Prune(t *testing.T) {
	c := NewMemoryCache(100)
	_ = c.Put("old", []byte("x"))
	time.Sleep(20 * time.Millisecond)
	_ = c.Put("new", []byte("y"))

	if removed := c.Prune(10 * time.Millisecond); removed != 1 {
		t.Errorf("Expected 1 pruned clip, got %d", removed)
	}
	if c.Contains("old") || !c.Contains("new") {
		t.Error("Only the old clip should be pruned")
	}

	_ = c.Clear()
	if c.Size() != 0 || c.Contains("new") {
		t.Error("Clear should empty the cache")
	}
}
