// Package cacheinfra implements the default in-memory cache store behind the
// cache.Store contract: a key→entry map with a tag→key index, passive TTL
// expiry at read time, a background sweep, and size-bounded eviction.
package cacheinfra

import (
	"context"
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/goliatone/go-tenant-cache/cache"
)

// entry is one cached value with its bookkeeping.
type entry struct {
	value      any
	insertedAt time.Time
	ttl        time.Duration
	tags       []string
	lastAccess time.Time
}

func (e *entry) expired(now time.Time) bool {
	return e.ttl > 0 && now.Sub(e.insertedAt) >= e.ttl
}

// MemoryStore is a single-process cache.Store. One mutex guards the entry map
// and the tag index together so a Set is never observed partially by a Get,
// and the sweep removes entries under the same locking discipline as every
// other operation.
type MemoryStore struct {
	cfg    cache.Config
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
	tags    map[string]map[string]struct{}

	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	cleanups  int64
	evictions int64

	stop     chan struct{}
	stopOnce sync.Once
	sweeper  sync.WaitGroup
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithLogger attaches a logger for sweep and eviction diagnostics.
// A nil store logger stays silent.
func WithLogger(logger *slog.Logger) Option {
	return func(s *MemoryStore) { s.logger = logger }
}

// Interface assertion to ensure MemoryStore implements cache.Store.
var _ cache.Store = (*MemoryStore)(nil)

// NewMemoryStore validates the configuration and returns a running store.
// When CleanupInterval is positive a background sweep goroutine starts; it is
// owned by the store and stopped by Stop.
func NewMemoryStore(cfg cache.Config, opts ...Option) (*MemoryStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &cache.BackendError{Operation: "configure", Err: err}
	}
	s := &MemoryStore{
		cfg:     cfg,
		entries: make(map[string]*entry),
		tags:    make(map[string]map[string]struct{}),
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.CleanupInterval > 0 {
		s.sweeper.Add(1)
		go s.sweepLoop()
	}
	return s, nil
}

// Get returns the value under key. An entry past its TTL is a miss at read
// time and is removed, regardless of whether the sweep has observed it.
func (s *MemoryStore) Get(ctx context.Context, key string) (any, bool, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		s.misses++
		return nil, false, nil
	}
	if e.expired(now) {
		s.removeLocked(key, e)
		s.misses++
		return nil, false, nil
	}
	e.lastAccess = now
	s.hits++
	return e.value, true, nil
}

// Set stores a value under key. A zero TTL in opts uses the configured
// default. When the size bound would be exceeded, entries are evicted
// according to the configured strategy; Set never fails for capacity.
func (s *MemoryStore) Set(ctx context.Context, key string, value any, opts cache.SetOptions) error {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = s.cfg.DefaultTTL
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[key]; ok {
		s.removeLocked(key, existing)
	}
	for len(s.entries) >= s.cfg.MaxSize {
		s.evictLocked()
	}

	e := &entry{
		value:      value,
		insertedAt: now,
		ttl:        ttl,
		tags:       append([]string(nil), opts.Tags...),
		lastAccess: now,
	}
	s.entries[key] = e
	for _, tag := range e.tags {
		keys, ok := s.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			s.tags[tag] = keys
		}
		keys[key] = struct{}{}
	}
	s.sets++
	return nil
}

// Delete removes a single entry. Absent keys are a no-op.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		s.removeLocked(key, e)
		s.deletes++
	}
	return nil
}

// InvalidateByTag removes every entry labeled with tag via the tag index, so
// cost is proportional to the entries carrying that tag, not the store size.
func (s *MemoryStore) InvalidateByTag(ctx context.Context, tag string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, ok := s.tags[tag]
	if !ok {
		return 0, nil
	}
	removed := 0
	for key := range keys {
		if e, ok := s.entries[key]; ok {
			s.removeLocked(key, e)
			removed++
		}
	}
	s.deletes += int64(removed)
	return removed, nil
}

// InvalidateByPattern removes every entry whose key matches the glob pattern.
// A malformed pattern surfaces as a backend error.
func (s *MemoryStore) InvalidateByPattern(ctx context.Context, pattern string) (int, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return 0, &cache.BackendError{Operation: "invalidate by pattern", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		if ok, _ := path.Match(pattern, key); ok {
			s.removeLocked(key, e)
			removed++
		}
	}
	s.deletes += int64(removed)
	return removed, nil
}

// Stats returns a point-in-time snapshot of the store counters.
func (s *MemoryStore) Stats() cache.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := cache.Stats{
		Hits:        s.hits,
		Misses:      s.misses,
		Sets:        s.sets,
		Deletes:     s.deletes,
		Cleanups:    s.cleanups,
		Evictions:   s.evictions,
		Size:        len(s.entries),
		MaxSize:     s.cfg.MaxSize,
		LastUpdated: time.Now(),
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats
}

// Stop terminates the background sweep and waits for it to exit. Idempotent.
func (s *MemoryStore) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.sweeper.Wait()
}

// sweepLoop periodically removes expired entries until Stop is called.
func (s *MemoryStore) sweepLoop() {
	defer s.sweeper.Done()
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

func (s *MemoryStore) sweep(now time.Time) {
	s.mu.Lock()
	removed := 0
	for key, e := range s.entries {
		if e.expired(now) {
			s.removeLocked(key, e)
			removed++
		}
	}
	s.cleanups += int64(removed)
	s.mu.Unlock()

	if removed > 0 && s.logger != nil {
		s.logger.Debug("cache sweep removed expired entries", "removed", removed)
	}
}

// evictLocked drops one entry chosen by the configured strategy: least
// recently used, or oldest inserted for FIFO. Callers hold the mutex.
func (s *MemoryStore) evictLocked() {
	var victimKey string
	var victim *entry
	for key, e := range s.entries {
		if victim == nil || s.olderLocked(e, victim) {
			victimKey, victim = key, e
		}
	}
	if victim == nil {
		return
	}
	s.removeLocked(victimKey, victim)
	s.evictions++
	if s.logger != nil {
		s.logger.Debug("cache evicted entry", "key", victimKey, "strategy", s.cfg.EvictionStrategy)
	}
}

func (s *MemoryStore) olderLocked(a, b *entry) bool {
	if s.cfg.EvictionStrategy == cache.EvictionFIFO {
		return a.insertedAt.Before(b.insertedAt)
	}
	return a.lastAccess.Before(b.lastAccess)
}

// removeLocked unlinks an entry from the map and the tag index. Callers hold
// the mutex.
func (s *MemoryStore) removeLocked(key string, e *entry) {
	delete(s.entries, key)
	for _, tag := range e.tags {
		if keys, ok := s.tags[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(s.tags, tag)
			}
		}
	}
}
