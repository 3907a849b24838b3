// Package repositorycache decorates a tenant-isolated repository with
// read-through caching that can never leak data across tenants.
//
// # Overview
//
// Cached[T] wraps a repository.Repository[T] with a cache.Store and a
// cache.KeySerializer. Single-entity reads (FindByID, FindByIDWithContext,
// Exists) are cached; every other operation passes through; writes (Save,
// Delete) run against the inner repository first and then invalidate by tag.
//
// # Key structure
//
// Every cache key has the shape
//
//	{tenantDiscriminator}:repo:{entity}:{operation}:{argsHash}
//
// where the discriminator is the tenant id from the caller's tenant context,
// or the fixed "global" sentinel when none applies. Because the discriminator
// is mandatory, two tenants reading "the same" logical id occupy different
// keys in a shared store and each miss independently.
//
// # Caching behavior
//
//  1. Compute the key from the operation, arguments and tenant discriminator
//  2. On cache hit, return the cached result
//  3. On miss, call the inner repository (concurrent identical-key misses are
//     collapsed via single-flight), store the result tagged with the entity
//     type and entity id, and return it
//
// Not-found results are cached too, wrapped so they are distinguishable from
// an absent cache entry, and they carry the requested id's tag: a Save of
// that id invalidates a previously cached "not found" or exists=false.
//
// # Writes and invalidation
//
// Writes reach the inner repository before any cache bookkeeping, so an inner
// error leaves the cache unmodified and errors are never cached. On success,
// and on a concurrency conflict (where the cached copy is known wrong), the
// decorator invalidates the entity-id tag and, defensively, the entity-type
// tag. Out-of-band mutations can use InvalidateByTag or InvalidateByPattern;
// the next matching read repopulates from the inner repository.
//
// # Degradation
//
// A cache failure is recoverable locally: a failed Get becomes a miss and a
// failed Set is skipped, with the inner repository serving the request either
// way. Correctness never depends on the cache being available.
//
// # See Also
//
// The cache package for store semantics and configuration, and pkg/di for
// wiring a store, serializer and decorator together.
package repositorycache
