package repositorycache

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-tenant-cache/cache"
	"github.com/goliatone/go-tenant-cache/query"
	"github.com/goliatone/go-tenant-cache/repository"
	"github.com/goliatone/go-tenant-cache/specification"
	"github.com/goliatone/go-tenant-cache/tenant"
)

// GlobalDiscriminator is the fixed key segment used when no tenant context
// applies. Every cache key starts with a tenant discriminator, so entries for
// different tenants can never collide in a shared store.
const GlobalDiscriminator = "global"

// Interface assertion to ensure Cached implements Repository[T].
var _ repository.Repository[repository.TenantScoped] = (*Cached[repository.TenantScoped])(nil)

// findResult wraps a single-entity read so a cached "not found" is
// representable and distinguishable from an absent cache entry.
type findResult[T any] struct {
	Entity T
	Found  bool
}

// Option configures a Cached repository.
type Option func(*settings)

type settings struct {
	ttl          time.Duration
	prefix       string
	logger       *slog.Logger
	singleflight bool
}

// WithTTL overrides the store's default TTL for entries written by this
// decorator.
func WithTTL(ttl time.Duration) Option {
	return func(s *settings) { s.ttl = ttl }
}

// WithKeyPrefix prepends a fixed segment to every cache key, for stores
// shared across decorators or processes.
func WithKeyPrefix(prefix string) Option {
	return func(s *settings) { s.prefix = prefix }
}

// WithLogger attaches a logger for cache-degradation diagnostics. Without one
// the decorator degrades silently.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithoutSingleflight disables de-duplication of concurrent misses for the
// identical key.
func WithoutSingleflight() Option {
	return func(s *settings) { s.singleflight = false }
}

// Cached decorates a tenant-isolated repository with read-through caching.
// Cache keys are namespaced by tenant discriminator, entries are tagged by
// entity type and entity id, and every mutation invalidates by tag after the
// inner write resolves. A cache failure degrades to a miss: the inner
// repository remains the source of truth.
type Cached[T repository.TenantScoped] struct {
	base   repository.Repository[T]
	store  cache.Store
	keys   cache.KeySerializer
	entity string

	opts  settings
	group singleflight.Group
}

// New wraps base with caching backed by store, using serializer for the
// args-hash segment of cache keys.
func New[T repository.TenantScoped](base repository.Repository[T], store cache.Store, serializer cache.KeySerializer, opts ...Option) *Cached[T] {
	s := settings{singleflight: true}
	for _, opt := range opts {
		opt(&s)
	}
	return &Cached[T]{
		base:   base,
		store:  store,
		keys:   serializer,
		entity: entityName[T](),
		opts:   s,
	}
}

// EntityName returns the snake_cased entity segment used in keys and tags.
func (c *Cached[T]) EntityName() string { return c.entity }

// Stats exposes the underlying store counters for observability scraping.
func (c *Cached[T]) Stats() cache.Stats { return c.store.Stats() }

// InvalidateByTag removes cached entries by tag. Intended for collaborators
// that mutate data through other paths, e.g. bulk import jobs.
func (c *Cached[T]) InvalidateByTag(ctx context.Context, tag string) (int, error) {
	return c.store.InvalidateByTag(ctx, tag)
}

// InvalidateByPattern removes cached entries whose key matches the glob
// pattern. The next matching read repopulates from the inner repository.
func (c *Cached[T]) InvalidateByPattern(ctx context.Context, pattern string) (int, error) {
	return c.store.InvalidateByPattern(ctx, pattern)
}

// FindByID reads one entity through the cache, scoped by the ambient tenant
// context.
func (c *Cached[T]) FindByID(ctx context.Context, id string) (T, bool, error) {
	tc, _ := tenant.FromContext(ctx)
	return c.cachedFind(ctx, tc, "FindByID", id, func() (T, bool, error) {
		return c.base.FindByID(ctx, id)
	})
}

// FindByIDWithContext reads one entity through the cache, scoped by an
// explicit tenant context.
func (c *Cached[T]) FindByIDWithContext(ctx context.Context, id string, tc *tenant.Context) (T, bool, error) {
	return c.cachedFind(ctx, tc, "FindByIDWithContext", id, func() (T, bool, error) {
		return c.base.FindByIDWithContext(ctx, id, tc)
	})
}

// Exists reports entity visibility through the cache. A cached false is
// invalidated by any later write to the same id.
func (c *Cached[T]) Exists(ctx context.Context, id string) (bool, error) {
	tc, _ := tenant.FromContext(ctx)
	key := c.key(tc, "Exists", id)

	if value, ok := c.cacheGet(ctx, key); ok {
		if exists, ok := value.(bool); ok {
			return exists, nil
		}
	}

	value, err := c.fetch(key, func() (any, error) {
		exists, err := c.base.Exists(ctx, id)
		if err != nil {
			return false, err
		}
		c.cacheSet(ctx, key, exists, id)
		return exists, nil
	})
	if err != nil {
		return false, err
	}
	return value.(bool), nil
}

// Save performs the inner write first, so an inner failure leaves the cache
// unmodified, then invalidates by entity-id and entity-type tags. The stale
// entry is invalidated on a concurrency conflict too, since the cached copy
// is then known wrong.
func (c *Cached[T]) Save(ctx context.Context, entity T) error {
	err := c.base.Save(ctx, entity)
	if err == nil || errors.Is(err, repository.ErrConcurrencyConflict) {
		c.invalidateEntity(ctx, entity.GetID())
	}
	return err
}

// Delete performs the inner delete first, then invalidates by tag so cached
// reads (including cached not-found results) do not linger.
func (c *Cached[T]) Delete(ctx context.Context, id string) error {
	if err := c.base.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidateEntity(ctx, id)
	return nil
}

// The remaining contract operations pass through uncached: list shapes are
// dominated by the tenant filter already and mutate nothing.

func (c *Cached[T]) FindByIDCrossTenant(ctx context.Context, id string, tc *tenant.Context) (T, bool, error) {
	return c.base.FindByIDCrossTenant(ctx, id, tc)
}

func (c *Cached[T]) FindAllByContext(ctx context.Context, tc *tenant.Context) ([]T, error) {
	return c.base.FindAllByContext(ctx, tc)
}

func (c *Cached[T]) FindBySpecification(ctx context.Context, spec specification.Specification[T], tc *tenant.Context) ([]T, error) {
	return c.base.FindBySpecification(ctx, spec, tc)
}

func (c *Cached[T]) FindByCriteria(ctx context.Context, criteria query.Criteria, tc *tenant.Context) ([]T, error) {
	return c.base.FindByCriteria(ctx, criteria, tc)
}

func (c *Cached[T]) FindByTenant(ctx context.Context, id tenant.TenantID, tc *tenant.Context) ([]T, error) {
	return c.base.FindByTenant(ctx, id, tc)
}

func (c *Cached[T]) FindByOrganization(ctx context.Context, id tenant.OrganizationID, tc *tenant.Context) ([]T, error) {
	return c.base.FindByOrganization(ctx, id, tc)
}

func (c *Cached[T]) FindByDepartment(ctx context.Context, id tenant.DepartmentID, tc *tenant.Context) ([]T, error) {
	return c.base.FindByDepartment(ctx, id, tc)
}

func (c *Cached[T]) BelongsToTenant(ctx context.Context, id string, scope tenant.TenantID) (bool, error) {
	return c.base.BelongsToTenant(ctx, id, scope)
}

func (c *Cached[T]) BelongsToOrganization(ctx context.Context, id string, scope tenant.OrganizationID) (bool, error) {
	return c.base.BelongsToOrganization(ctx, id, scope)
}

func (c *Cached[T]) BelongsToDepartment(ctx context.Context, id string, scope tenant.DepartmentID) (bool, error) {
	return c.base.BelongsToDepartment(ctx, id, scope)
}

func (c *Cached[T]) CountByTenant(ctx context.Context, id tenant.TenantID, tc *tenant.Context) (int, error) {
	return c.base.CountByTenant(ctx, id, tc)
}

func (c *Cached[T]) CountByOrganization(ctx context.Context, id tenant.OrganizationID, tc *tenant.Context) (int, error) {
	return c.base.CountByOrganization(ctx, id, tc)
}

func (c *Cached[T]) CountByDepartment(ctx context.Context, id tenant.DepartmentID, tc *tenant.Context) (int, error) {
	return c.base.CountByDepartment(ctx, id, tc)
}

// cachedFind is the shared read path: compute key, try the cache, fall
// through to the inner repository on miss, store the result (found or not)
// and return it. The inner call resolves before any cache write, and an
// inner error is never cached.
func (c *Cached[T]) cachedFind(ctx context.Context, tc *tenant.Context, operation, id string, load func() (T, bool, error)) (T, bool, error) {
	key := c.key(tc, operation, id)

	if value, ok := c.cacheGet(ctx, key); ok {
		if res, ok := value.(findResult[T]); ok {
			return res.Entity, res.Found, nil
		}
	}

	value, err := c.fetch(key, func() (any, error) {
		entity, found, err := load()
		if err != nil {
			return nil, err
		}
		res := findResult[T]{Entity: entity, Found: found}
		c.cacheSet(ctx, key, res, id)
		return res, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	res := value.(findResult[T])
	return res.Entity, res.Found, nil
}

// fetch runs the loader, de-duplicating concurrent calls for the identical
// key when single-flight is enabled. Keys embed the tenant discriminator, so
// there is no lock coupling across tenants.
func (c *Cached[T]) fetch(key string, load func() (any, error)) (any, error) {
	if !c.opts.singleflight {
		return load()
	}
	value, err, _ := c.group.Do(key, load)
	return value, err
}

// cacheGet degrades a store failure to a miss.
func (c *Cached[T]) cacheGet(ctx context.Context, key string) (any, bool) {
	value, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.warn("cache get degraded to miss", key, err)
		return nil, false
	}
	return value, ok
}

// cacheSet stores a read result tagged by entity type, entity id, and any
// tags attached to the context. A store failure is logged and swallowed.
func (c *Cached[T]) cacheSet(ctx context.Context, key string, value any, id string) {
	tags := append([]string{EntityTag(c.entity), EntityIDTag(c.entity, id)}, cacheTagsFromContext(ctx)...)
	err := c.store.Set(ctx, key, value, cache.SetOptions{
		TTL:  c.opts.ttl,
		Tags: dedupeStrings(tags),
	})
	if err != nil {
		c.warn("cache set skipped", key, err)
	}
}

func (c *Cached[T]) invalidateEntity(ctx context.Context, id string) {
	if _, err := c.store.InvalidateByTag(ctx, EntityIDTag(c.entity, id)); err != nil {
		c.warn("cache invalidation failed", EntityIDTag(c.entity, id), err)
	}
	// Entries tagged only with the entity type go too.
	if _, err := c.store.InvalidateByTag(ctx, EntityTag(c.entity)); err != nil {
		c.warn("cache invalidation failed", EntityTag(c.entity), err)
	}
}

func (c *Cached[T]) warn(msg, key string, err error) {
	if c.opts.logger != nil {
		c.opts.logger.Warn(msg, "key", key, "error", err)
	}
}

// key builds {prefix:}{tenantDiscriminator}:repo:{entity}:{operation}:{argsHash}.
// The discriminator segment is mandatory: requests without a tenant context
// fall into the fixed global namespace, never into another tenant's.
func (c *Cached[T]) key(tc *tenant.Context, operation string, args ...any) string {
	discriminator := GlobalDiscriminator
	if tc != nil {
		discriminator = tc.TenantID().String()
	}
	segments := make([]string, 0, 6)
	if c.opts.prefix != "" {
		segments = append(segments, c.opts.prefix)
	}
	segments = append(segments,
		discriminator,
		"repo",
		c.entity,
		operation,
		cache.Digest(c.keys.SerializeKey(operation, args...)),
	)
	return strings.Join(segments, ":")
}

// entityName derives the cache namespace from the entity type, dereferencing
// pointers so Account and *Account share a namespace.
func entityName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	return toSnake(name)
}
