package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/kelseyhightower/envconfig"
)

// Eviction strategies recognized by the memory store.
const (
	EvictionLRU  = "lru"
	EvictionFIFO = "fifo"
)

// Config holds the recognized cache options. Zero values are filled in by
// DefaultConfig; ConfigFromEnv reads them from the environment.
type Config struct {
	// Enabled switches caching on. When false the composed store is a no-op
	// and every read goes to the underlying repository.
	Enabled bool `envconfig:"ENABLED" default:"true"`

	// DefaultTTL is the time-to-live applied to entries stored without an
	// explicit TTL. Must be greater than zero.
	DefaultTTL time.Duration `envconfig:"DEFAULT_TTL" default:"5m"`

	// MaxSize bounds the number of entries. Exceeding the bound evicts
	// according to EvictionStrategy; it never errors.
	MaxSize int `envconfig:"MAX_SIZE" default:"10000"`

	// EvictionStrategy selects which entries to drop when MaxSize is
	// exceeded: least-recently-used or oldest-inserted.
	EvictionStrategy string `envconfig:"EVICTION_STRATEGY" default:"lru"`

	// CleanupInterval sets how often the background sweep removes expired
	// entries. Zero disables the sweep; expiry then happens only at read time.
	CleanupInterval time.Duration `envconfig:"CLEANUP_INTERVAL" default:"1m"`

	// KeyPrefix is prepended to every cache key, separated by a colon.
	// Useful when one store instance is shared by several decorators.
	KeyPrefix string `envconfig:"KEY_PREFIX"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		DefaultTTL:       5 * time.Minute,
		MaxSize:          10000,
		EvictionStrategy: EvictionLRU,
		CleanupInterval:  time.Minute,
	}
}

// ConfigFromEnv loads a Config from environment variables under the given
// prefix, e.g. prefix "CACHE" reads CACHE_DEFAULT_TTL and friends.
func ConfigFromEnv(prefix string) (Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return Config{}, &BackendError{Operation: "config", Err: err}
	}
	return cfg, nil
}

// Validate checks whether the configuration values are usable.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DefaultTTL, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.MaxSize, validation.Required, validation.Min(1)),
		validation.Field(&c.EvictionStrategy, validation.Required, validation.In(EvictionLRU, EvictionFIFO)),
		validation.Field(&c.CleanupInterval, validation.Min(time.Duration(0))),
	)
}
