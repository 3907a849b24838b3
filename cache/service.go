package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrBackend marks a failure inside the cache abstraction itself. Callers
// must treat such failures as a miss and fall through to the source of truth;
// correctness never depends on the cache being available.
var ErrBackend = errors.New("cache: backend failure")

// BackendError wraps a cache-internal failure with the operation that hit it.
type BackendError struct {
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	return fmt.Sprintf("cache %s: %v", e.Operation, e.Err)
}

// Unwrap exposes the original cause.
func (e *BackendError) Unwrap() error { return e.Err }

// Is reports a match for the ErrBackend sentinel.
func (e *BackendError) Is(target error) bool { return target == ErrBackend }

// SetOptions controls how an entry is stored.
type SetOptions struct {
	// TTL is the entry's time-to-live. Zero uses the store's default.
	TTL time.Duration

	// Tags label the entry for group invalidation independent of its key.
	Tags []string
}

// Stats is a read-only snapshot of store counters, recomputed on demand.
type Stats struct {
	Hits        int64     `json:"hits"`
	Misses      int64     `json:"misses"`
	Sets        int64     `json:"sets"`
	Deletes     int64     `json:"deletes"`
	Cleanups    int64     `json:"cleanups"`
	Evictions   int64     `json:"evictions"`
	Size        int       `json:"size"`
	MaxSize     int       `json:"max_size"`
	HitRate     float64   `json:"hit_rate"`
	LastUpdated time.Time `json:"last_updated"`
}

// Store is a generic key/value cache with TTL, tag-based and pattern-based
// invalidation, and hit/miss statistics. Implementations must be safe for
// concurrent use; an entry whose TTL has elapsed is a miss at read time even
// before any background sweep observes it.
type Store interface {
	// Get returns the value stored under key. An expired or absent entry is
	// (nil, false, nil); a non-nil error signals a backend failure the caller
	// should degrade from.
	Get(ctx context.Context, key string) (any, bool, error)

	// Set stores a value under key.
	Set(ctx context.Context, key string, value any, opts SetOptions) error

	// Delete removes a single entry. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// InvalidateByTag removes every entry labeled with tag and returns the
	// number of removed entries.
	InvalidateByTag(ctx context.Context, tag string) (int, error)

	// InvalidateByPattern removes every entry whose key matches the glob
	// pattern (path.Match syntax) and returns the number of removed entries.
	InvalidateByPattern(ctx context.Context, pattern string) (int, error)

	// Stats returns a point-in-time snapshot of the store counters.
	Stats() Stats

	// Stop terminates the background TTL sweep. It is idempotent.
	Stop()
}

// NoopStore is a Store that caches nothing. It backs the Enabled=false
// configuration and is useful in tests that must observe every inner call.
type NoopStore struct{}

// NewNoopStore returns a Store that always misses.
func NewNoopStore() *NoopStore { return &NoopStore{} }

func (s *NoopStore) Get(ctx context.Context, key string) (any, bool, error) { return nil, false, nil }

func (s *NoopStore) Set(ctx context.Context, key string, value any, opts SetOptions) error {
	return nil
}

func (s *NoopStore) Delete(ctx context.Context, key string) error { return nil }

func (s *NoopStore) InvalidateByTag(ctx context.Context, tag string) (int, error) { return 0, nil }

func (s *NoopStore) InvalidateByPattern(ctx context.Context, pattern string) (int, error) {
	return 0, nil
}

func (s *NoopStore) Stats() Stats { return Stats{} }

func (s *NoopStore) Stop() {}
