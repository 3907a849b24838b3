package di

import (
	"context"
	"testing"

	"github.com/goliatone/go-tenant-cache/cache"
	"github.com/goliatone/go-tenant-cache/pkg/testsupport"
	"github.com/goliatone/go-tenant-cache/repository"
	"github.com/goliatone/go-tenant-cache/tenant"
)

func TestNewContainerWiresComponents(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.CleanupInterval = 0
	c, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Stop()

	if c.Store() == nil || c.KeySerializer() == nil {
		t.Fatal("container components must be present")
	}
	if got := c.Config().MaxSize; got != cfg.MaxSize {
		t.Fatalf("Config().MaxSize = %d", got)
	}
}

func TestNewContainerRejectsBadConfig(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.EvictionStrategy = "random"
	if _, err := NewContainer(cfg); err == nil {
		t.Fatal("expected configuration error")
	}
}

func TestDisabledConfigYieldsNoopStore(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.Enabled = false
	c, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Stop()

	ctx := context.Background()
	if err := c.Store().Set(ctx, "k", "v", cache.SetOptions{}); err != nil {
		t.Fatalf("noop Set: %v", err)
	}
	if _, found, _ := c.Store().Get(ctx, "k"); found {
		t.Fatal("disabled cache must never hit")
	}
}

func TestNewCachedRepositoryReadsThroughContainerStore(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.CleanupInterval = 0
	cfg.KeyPrefix = "svc"
	c, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Stop()

	base := repository.NewMemory[*testsupport.Account]("account")
	cached := NewCachedRepository(c, base)

	alpha := testsupport.MustTenantID(t, testsupport.TenantAlphaID)
	ctx := tenant.WithContext(context.Background(), tenant.NewContext(alpha))
	if err := base.Save(ctx, testsupport.NewAccount("u1", alpha)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, found, err := cached.FindByID(ctx, "u1"); !found || err != nil {
		t.Fatalf("FindByID = %v, %v", found, err)
	}
	if stats := c.Store().Stats(); stats.Size != 1 {
		t.Fatalf("read must populate the container store: %+v", stats)
	}

	// The container's key prefix lands on every key.
	removed, err := cached.InvalidateByPattern(ctx, "svc:*")
	if err != nil || removed != 1 {
		t.Fatalf("prefixed pattern = %d, %v", removed, err)
	}
}

func TestNewContainerWithDefaults(t *testing.T) {
	c, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("NewContainerWithDefaults: %v", err)
	}
	defer c.Stop()

	if !c.Config().Enabled {
		t.Fatal("defaults must enable caching")
	}
}
