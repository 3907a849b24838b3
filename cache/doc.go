// Package cache defines the cache abstraction shared by the cached repository
// decorator: a key/value Store with TTL, tag-based and pattern-based
// invalidation, statistics, plus key serialization helpers.
//
// # Overview
//
// The package exports:
//
//   - Store: the cache contract with Get/Set/Delete, InvalidateByTag,
//     InvalidateByPattern, Stats and Stop
//   - Config: recognized options (enabled flag, default TTL, size bound,
//     eviction strategy, cleanup interval, key prefix)
//   - KeySerializer: builds stable strings from an operation name and
//     arguments, digested into cache-key segments
//   - NoopStore: an always-miss store for disabled caching
//
// The default in-memory Store implementation lives in internal/cacheinfra and
// is wired up through pkg/di.
//
// # Semantics
//
// Entries expire passively: a Get past the entry's TTL is a miss even when
// the background sweep has not run yet. Exceeding the configured size bound
// evicts entries (LRU or FIFO), it never errors. All operations are safe
// under concurrent access, and invalidation by tag costs O(entries with that
// tag) rather than a full scan.
//
// Cache failures are recoverable by design: every Store error should be
// treated as a miss by callers, so correctness never depends on the cache.
//
// # Key Serialization
//
// The default serializer prefers fmt.Stringer (which covers the tenant,
// organization and department identifiers), sorts map keys, lists exported
// struct fields, and falls back to JSON for irregular types. Function values
// serialize by pointer and are therefore stable only within one process.
//
// Digest collapses a serialized string into a fixed-width xxhash hex form:
//
//	serializer := cache.NewDefaultKeySerializer()
//	argsHash := cache.Digest(serializer.SerializeKey("FindByID", id))
//
// # See Also
//
// The repositorycache package composes a Store and a KeySerializer into a
// tenant-aware cached repository decorator.
package cache
