package cacheinfra

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-tenant-cache/cache"
)

func newStore(t *testing.T, mutate func(*cache.Config)) *MemoryStore {
	t.Helper()
	cfg := cache.DefaultConfig()
	cfg.CleanupInterval = 0 // tests drive expiry explicitly unless stated
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewMemoryStore(cfg)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

func mustSet(t *testing.T, s *MemoryStore, key string, value any, opts cache.SetOptions) {
	t.Helper()
	if err := s.Set(context.Background(), key, value, opts); err != nil {
		t.Fatalf("Set(%q): %v", key, err)
	}
}

func TestNewMemoryStoreRejectsBadConfig(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.MaxSize = 0
	if _, err := NewMemoryStore(cfg); !errors.Is(err, cache.ErrBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestSetGetDelete(t *testing.T) {
	s := newStore(t, nil)
	ctx := context.Background()

	mustSet(t, s, "k1", "v1", cache.SetOptions{})

	got, found, err := s.Get(ctx, "k1")
	if err != nil || !found || got != "v1" {
		t.Fatalf("Get = %v, %v, %v", got, found, err)
	}

	if _, found, _ := s.Get(ctx, "absent"); found {
		t.Fatal("absent key must miss")
	}

	if err := s.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := s.Get(ctx, "k1"); found {
		t.Fatal("deleted key must miss")
	}
	if err := s.Delete(ctx, "k1"); err != nil {
		t.Fatalf("deleting an absent key is a no-op, got %v", err)
	}
}

func TestGetExpiresAtReadTime(t *testing.T) {
	s := newStore(t, nil)
	ctx := context.Background()

	mustSet(t, s, "k1", "v1", cache.SetOptions{TTL: 10 * time.Millisecond})
	time.Sleep(25 * time.Millisecond)

	// The sweep is off, so only the read can observe the expiry.
	if _, found, err := s.Get(ctx, "k1"); found || err != nil {
		t.Fatalf("expired entry must read as a miss, found=%v err=%v", found, err)
	}
	if stats := s.Stats(); stats.Size != 0 || stats.Misses != 1 {
		t.Fatalf("expired entry must be removed and counted as a miss: %+v", stats)
	}
}

func TestSweepRemovesExpiredEntries(t *testing.T) {
	s := newStore(t, func(c *cache.Config) { c.CleanupInterval = 10 * time.Millisecond })

	mustSet(t, s, "k1", "v1", cache.SetOptions{TTL: 5 * time.Millisecond})
	mustSet(t, s, "k2", "v2", cache.SetOptions{TTL: time.Hour})

	deadline := time.Now().Add(time.Second)
	for {
		stats := s.Stats()
		if stats.Cleanups >= 1 && stats.Size == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("sweep never removed the expired entry: %+v", stats)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestInvalidateByTag(t *testing.T) {
	s := newStore(t, nil)
	ctx := context.Background()

	mustSet(t, s, "k1", "v1", cache.SetOptions{Tags: []string{"user", "user:u1"}})
	mustSet(t, s, "k2", "v2", cache.SetOptions{Tags: []string{"user", "user:u2"}})
	mustSet(t, s, "k3", "v3", cache.SetOptions{Tags: []string{"order"}})

	removed, err := s.InvalidateByTag(ctx, "user:u1")
	if err != nil || removed != 1 {
		t.Fatalf("InvalidateByTag(user:u1) = %d, %v", removed, err)
	}
	if _, found, _ := s.Get(ctx, "k1"); found {
		t.Fatal("k1 must be invalidated")
	}
	if _, found, _ := s.Get(ctx, "k2"); !found {
		t.Fatal("k2 must survive")
	}

	removed, err = s.InvalidateByTag(ctx, "user")
	if err != nil || removed != 1 {
		t.Fatalf("InvalidateByTag(user) = %d, %v", removed, err)
	}
	if _, found, _ := s.Get(ctx, "k3"); !found {
		t.Fatal("untagged entries must survive")
	}

	if removed, err := s.InvalidateByTag(ctx, "unknown"); removed != 0 || err != nil {
		t.Fatalf("unknown tag = %d, %v", removed, err)
	}
}

func TestInvalidateByPattern(t *testing.T) {
	s := newStore(t, nil)
	ctx := context.Background()

	mustSet(t, s, "t1:repo:user:find_by_id:aa", 1, cache.SetOptions{})
	mustSet(t, s, "t1:repo:user:exists:bb", 2, cache.SetOptions{})
	mustSet(t, s, "t1:repo:order:find_by_id:cc", 3, cache.SetOptions{})
	mustSet(t, s, "t2:repo:user:find_by_id:dd", 4, cache.SetOptions{})

	removed, err := s.InvalidateByPattern(ctx, "t1:repo:user:*")
	if err != nil || removed != 2 {
		t.Fatalf("InvalidateByPattern = %d, %v", removed, err)
	}
	if _, found, _ := s.Get(ctx, "t1:repo:order:find_by_id:cc"); !found {
		t.Fatal("non-matching entry must survive")
	}
	if _, found, _ := s.Get(ctx, "t2:repo:user:find_by_id:dd"); !found {
		t.Fatal("other tenant's entry must survive")
	}

	if removed, err := s.InvalidateByPattern(ctx, "no:match:*"); removed != 0 || err != nil {
		t.Fatalf("non-matching pattern = %d, %v", removed, err)
	}
}

func TestInvalidateByPatternMalformed(t *testing.T) {
	s := newStore(t, nil)

	_, err := s.InvalidateByPattern(context.Background(), "bad[")
	if !errors.Is(err, cache.ErrBackend) {
		t.Fatalf("malformed pattern must be a backend error, got %v", err)
	}
	var backend *cache.BackendError
	if !errors.As(err, &backend) {
		t.Fatalf("expected *cache.BackendError, got %T", err)
	}
}

func TestEvictionLRU(t *testing.T) {
	s := newStore(t, func(c *cache.Config) { c.MaxSize = 2 })
	ctx := context.Background()

	mustSet(t, s, "k1", 1, cache.SetOptions{})
	time.Sleep(2 * time.Millisecond)
	mustSet(t, s, "k2", 2, cache.SetOptions{})
	time.Sleep(2 * time.Millisecond)

	// Touch k1 so k2 becomes the least recently used.
	if _, found, _ := s.Get(ctx, "k1"); !found {
		t.Fatal("k1 must be cached")
	}
	time.Sleep(2 * time.Millisecond)

	mustSet(t, s, "k3", 3, cache.SetOptions{})

	if _, found, _ := s.Get(ctx, "k2"); found {
		t.Fatal("least recently used entry must be evicted")
	}
	if _, found, _ := s.Get(ctx, "k1"); !found {
		t.Fatal("recently used entry must survive")
	}
	if stats := s.Stats(); stats.Evictions != 1 || stats.Size != 2 {
		t.Fatalf("eviction accounting wrong: %+v", stats)
	}
}

func TestEvictionFIFO(t *testing.T) {
	s := newStore(t, func(c *cache.Config) {
		c.MaxSize = 2
		c.EvictionStrategy = cache.EvictionFIFO
	})
	ctx := context.Background()

	mustSet(t, s, "k1", 1, cache.SetOptions{})
	time.Sleep(2 * time.Millisecond)
	mustSet(t, s, "k2", 2, cache.SetOptions{})
	time.Sleep(2 * time.Millisecond)

	// Access order is irrelevant under FIFO; insertion order decides.
	if _, found, _ := s.Get(ctx, "k1"); !found {
		t.Fatal("k1 must be cached")
	}

	mustSet(t, s, "k3", 3, cache.SetOptions{})

	if _, found, _ := s.Get(ctx, "k1"); found {
		t.Fatal("oldest inserted entry must be evicted")
	}
	if _, found, _ := s.Get(ctx, "k2"); !found {
		t.Fatal("newer entry must survive")
	}
}

func TestStats(t *testing.T) {
	s := newStore(t, nil)
	ctx := context.Background()

	mustSet(t, s, "k1", 1, cache.SetOptions{})
	s.Get(ctx, "k1")
	s.Get(ctx, "k1")
	s.Get(ctx, "absent")
	s.Delete(ctx, "k1")

	stats := s.Stats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.Sets != 1 || stats.Deletes != 1 {
		t.Fatalf("counters wrong: %+v", stats)
	}
	if stats.Size != 0 || stats.MaxSize != s.cfg.MaxSize {
		t.Fatalf("size accounting wrong: %+v", stats)
	}
	want := 2.0 / 3.0
	if diff := stats.HitRate - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("HitRate = %v, want %v", stats.HitRate, want)
	}
	if stats.LastUpdated.IsZero() {
		t.Fatal("LastUpdated must be set")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := newStore(t, func(c *cache.Config) { c.MaxSize = 64 })
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", i%100)
				switch i % 4 {
				case 0:
					s.Set(ctx, key, i, cache.SetOptions{Tags: []string{"bulk"}})
				case 1:
					s.Get(ctx, key)
				case 2:
					s.Delete(ctx, key)
				default:
					s.InvalidateByTag(ctx, "bulk")
				}
			}
		}(g)
	}
	wg.Wait()

	if stats := s.Stats(); stats.Size > 64 {
		t.Fatalf("size bound violated: %+v", stats)
	}
}

func TestStopIdempotent(t *testing.T) {
	s := newStore(t, func(c *cache.Config) { c.CleanupInterval = time.Millisecond })
	s.Stop()
	s.Stop() // must not panic or block
}
