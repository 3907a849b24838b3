// Package di wires the cache store, key serializer and cached repository
// decorators together through explicit construction. There is no global or
// container-managed state: a Container is built once at composition time and
// passed to whatever creates repositories.
package di

import (
	"github.com/goliatone/go-tenant-cache/cache"
	"github.com/goliatone/go-tenant-cache/internal/cacheinfra"
	"github.com/goliatone/go-tenant-cache/repository"
	"github.com/goliatone/go-tenant-cache/repositorycache"
)

// Container holds the shared cache components for one process.
type Container struct {
	store      cache.Store
	serializer cache.KeySerializer
	config     cache.Config
}

// NewContainer validates the configuration and builds the shared cache store
// and key serializer. A disabled configuration yields a no-op store, so
// composition code does not branch on the flag.
func NewContainer(config cache.Config, opts ...cacheinfra.Option) (*Container, error) {
	var store cache.Store
	if config.Enabled {
		memStore, err := cacheinfra.NewMemoryStore(config, opts...)
		if err != nil {
			return nil, err
		}
		store = memStore
	} else {
		store = cache.NewNoopStore()
	}

	return &Container{
		store:      store,
		serializer: cache.NewDefaultKeySerializer(),
		config:     config,
	}, nil
}

// NewContainerWithDefaults builds a container from DefaultConfig.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(cache.DefaultConfig())
}

// Store returns the shared cache store, e.g. for out-of-band invalidation or
// stats scraping.
func (c *Container) Store() cache.Store { return c.store }

// KeySerializer returns the shared key serializer.
func (c *Container) KeySerializer() cache.KeySerializer { return c.serializer }

// Config returns a copy of the cache configuration used by this container.
func (c *Container) Config() cache.Config { return c.config }

// Stop shuts down the container's cache store, terminating its background
// TTL sweep.
func (c *Container) Stop() { c.store.Stop() }

// NewCachedRepository wraps base with caching backed by the container's
// store and serializer. The container's key prefix is applied to every key.
//
// Since Go methods cannot have type parameters, this is a package-level
// function: NewCachedRepository[Account](container, baseAccountRepository).
func NewCachedRepository[T repository.TenantScoped](c *Container, base repository.Repository[T], opts ...repositorycache.Option) *repositorycache.Cached[T] {
	if c.config.KeyPrefix != "" {
		opts = append([]repositorycache.Option{repositorycache.WithKeyPrefix(c.config.KeyPrefix)}, opts...)
	}
	return repositorycache.New(base, c.store, c.serializer, opts...)
}
