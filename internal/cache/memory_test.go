package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestMemory_GetSetDelete(t *testing.T) {
	t.Parallel()
	m, err := NewMemory(100, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	// Get non-existent.
	if _, ok := m.Get(ctx, "missing"); ok {
		t.Error("should not find missing key")
	}

	// Set and get.
	m.Set(ctx, "k1", []byte("v1"), time.Minute)
	// otter may apply writes asynchronously; wait briefly.
	time.Sleep(50 * time.Millisecond)

	val, ok := m.Get(ctx, "k1")
	if !ok {
		t.Fatal("should find k1")
	}
	if string(val) != "v1" {
		t.Errorf("value = %q, want %q", val, "v1")
	}

	// Overwrite.
	m.Set(ctx, "k1", []byte("v2"), time.Minute)
	time.Sleep(50 * time.Millisecond)
	if val, _ := m.Get(ctx, "k1"); string(val) != "v2" {
		t.Errorf("value after overwrite = %q, want %q", val, "v2")
	}

	// Delete.
	m.Delete(ctx, "k1")
	if _, ok := m.Get(ctx, "k1"); ok {
		t.Error("should not find deleted key")
	}
}

func TestMemory_PerEntryTTL(t *testing.T) {
	t.Parallel()
	m, err := NewMemory(100, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	clock := &fakeClock{t: time.Now()}
	m.now = clock.Now
	ctx := context.Background()

	m.Set(ctx, "prices", []byte("p"), 5*time.Minute)
	m.Set(ctx, "categories", []byte("c"), time.Hour)
	time.Sleep(50 * time.Millisecond)

	clock.Advance(5*time.Minute - time.Second)
	if _, ok := m.Get(ctx, "prices"); !ok {
		t.Error("entry should still be fresh just before its TTL")
	}

	clock.Advance(time.Second)
	if _, ok := m.Get(ctx, "prices"); ok {
		t.Error("entry should be stale once its TTL lapses")
	}
	if _, ok := m.Get(ctx, "categories"); !ok {
		t.Error("longer-lived entry should be unaffected")
	}
}

func TestMemory_Purge(t *testing.T) {
	t.Parallel()
	m, err := NewMemory(100, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	m.Set(ctx, "a", []byte("1"), time.Minute)
	m.Set(ctx, "b", []byte("2"), time.Minute)
	time.Sleep(50 * time.Millisecond)

	m.Purge(ctx)

	if _, ok := m.Get(ctx, "a"); ok {
		t.Error("purge should remove all keys")
	}
	if _, ok := m.Get(ctx, "b"); ok {
		t.Error("purge should remove all keys")
	}
}

func TestMemory_StaleReadKeepsEntry(t *testing.T) {
	t.Parallel()
	m, err := NewMemory(100, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	start := time.Now()
	clock := &fakeClock{t: start}
	m.now = clock.Now
	ctx := context.Background()

	m.Set(ctx, "k", []byte("v"), time.Minute)
	time.Sleep(50 * time.Millisecond)

	clock.Advance(2 * time.Minute)
	if _, ok := m.Get(ctx, "k"); ok {
		t.Fatal("entry should be stale")
	}

	// A stale read must not remove anything: a concurrent writer may have
	// just stored a fresh value under the same key.
	clock.Advance(-2 * time.Minute)
	if v, ok := m.Get(ctx, "k"); !ok || string(v) != "v" {
		t.Errorf("Get after stale read = %q, %v; want v, true", v, ok)
	}
}

func TestMemory_OtterExpiresPerEntry(t *testing.T) {
	t.Parallel()
	m, err := NewMemory(100, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	m.Set(ctx, "short", []byte("s"), 50*time.Millisecond)
	m.Set(ctx, "long", []byte("l"), time.Hour)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := m.cache.GetIfPresent("short"); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("otter kept the short-lived entry past its TTL")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, ok := m.cache.GetIfPresent("long"); !ok {
		t.Error("long-lived entry should remain")
	}
}
