package figma

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/figma-client/internal/constants"
)

// CacheType represents the type of cache backend.
type CacheType string

const (
	// CacheTypeMemory represents in-memory cache.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS represents NATS KV cache.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeTiered keeps a per-process memory cache in front of NATS KV.
	// Entries copied into memory keep their original expiry.
	CacheTypeTiered CacheType = "tiered"

	// CacheTypeNone represents no caching.
	CacheTypeNone CacheType = "none"
)

// CacheConfig configures the response cache.
type CacheConfig struct {
	// Type is the cache backend type
	Type CacheType `json:"type" yaml:"type"`

	// TTL is how long responses stay fresh. Zero means constants.DefaultCacheTTL.
	TTL time.Duration `json:"ttl" yaml:"ttl"`

	// Memory cache configuration
	Memory *MemoryCacheConfig `json:"memory,omitempty" yaml:"memory,omitempty"`

	// NATS KV cache configuration
	NATS *NATSKVConfig `json:"nats,omitempty" yaml:"nats,omitempty"`
}

// MemoryCacheConfig configures memory cache.
type MemoryCacheConfig struct {
	// MaxSize is the maximum number of items in the cache
	MaxSize int `json:"max_size" yaml:"max_size"`
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type: CacheTypeMemory,
		TTL:  constants.DefaultCacheTTL,
		Memory: &MemoryCacheConfig{
			MaxSize: constants.DefaultCacheSize,
		},
	}
}

// EffectiveTTL returns the configured TTL or the default.
func (c *CacheConfig) EffectiveTTL() time.Duration {
	if c == nil || c.TTL <= 0 {
		return constants.DefaultCacheTTL
	}

	return c.TTL
}

// Disabled reports whether the config turns caching off.
func (c *CacheConfig) Disabled() bool {
	return c != nil && c.Type == CacheTypeNone
}

// NewCacheFromConfig creates a cache backend from configuration.
func NewCacheFromConfig(config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	switch config.Type {
	case CacheTypeMemory, "":
		return NewMemoryCacheFromConfig(config.Memory), nil

	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		return NewNATSKVCache(config.NATS)

	case CacheTypeTiered:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		shared, err := NewNATSKVCache(config.NATS)
		if err != nil {
			return nil, err
		}

		return NewCacheChain(NewMemoryCacheFromConfig(config.Memory), shared), nil

	case CacheTypeNone:
		return NewNoOpCache(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCacheType, config.Type)
	}
}

// NewMemoryCacheFromConfig creates a memory cache from configuration.
func NewMemoryCacheFromConfig(config *MemoryCacheConfig) *MemoryCache {
	if config == nil {
		return NewMemoryCache(constants.DefaultCacheSize)
	}

	return NewMemoryCache(config.MaxSize)
}

// NoOpCache is a cache that does nothing (no caching).
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always returns an error (nothing cached).
func (c *NoOpCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	return nil, ErrCacheDisabled
}

// Set does nothing.
func (c *NoOpCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return nil
}

// Delete does nothing.
func (c *NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}

// DeletePrefix does nothing.
func (c *NoOpCache) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	return 0, nil
}

// Clear does nothing.
func (c *NoOpCache) Clear(ctx context.Context) error {
	return nil
}

// Has always returns false.
func (c *NoOpCache) Has(ctx context.Context, key string) bool {
	return false
}

// CacheBuilder helps build cache configurations.
type CacheBuilder struct {
	config *CacheConfig
}

// NewCacheBuilder creates a new cache builder.
func NewCacheBuilder() *CacheBuilder {
	return &CacheBuilder{
		config: DefaultCacheConfig(),
	}
}

// WithType sets the cache type.
func (b *CacheBuilder) WithType(cacheType CacheType) *CacheBuilder {
	b.config.Type = cacheType

	return b
}

// WithTTL sets the entry lifetime.
func (b *CacheBuilder) WithTTL(ttl time.Duration) *CacheBuilder {
	b.config.TTL = ttl

	return b
}

// WithMemoryConfig sets memory cache configuration.
func (b *CacheBuilder) WithMemoryConfig(maxSize int) *CacheBuilder {
	b.config.Memory = &MemoryCacheConfig{
		MaxSize: maxSize,
	}

	return b
}

// WithNATSConfig sets NATS cache configuration.
func (b *CacheBuilder) WithNATSConfig(config *NATSKVConfig) *CacheBuilder {
	b.config.NATS = config

	return b
}

// Config returns the accumulated configuration.
func (b *CacheBuilder) Config() *CacheConfig {
	return b.config
}

// Build creates the cache from the configuration.
func (b *CacheBuilder) Build() (Cache, error) {
	return NewCacheFromConfig(b.config)
}

// CacheChain implements a chain of cache backends (L1, L2, etc.)
type CacheChain struct {
	caches []Cache
}

// NewCacheChain creates a new cache chain.
func NewCacheChain(caches ...Cache) *CacheChain {
	return &CacheChain{
		caches: caches,
	}
}

// Get retrieves an item from the cache chain.
func (c *CacheChain) Get(ctx context.Context, key string) (*CacheEntry, error) {
	for i, cache := range c.caches {
		entry, err := cache.Get(ctx, key)
		if err == nil {
			// Found in this cache, populate earlier caches
			for j := range i {
				_ = c.caches[j].Set(ctx, key, entry)
			}

			return entry, nil
		}
	}

	return nil, ErrKeyNotFoundInAnyCache
}

// Set stores an item in all caches.
func (c *CacheChain) Set(ctx context.Context, key string, entry *CacheEntry) error {
	var errs []error

	for _, cache := range c.caches {
		err := cache.Set(ctx, key, entry)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Delete removes an item from all caches.
func (c *CacheChain) Delete(ctx context.Context, key string) error {
	var errs []error

	for _, cache := range c.caches {
		err := cache.Delete(ctx, key)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// DeletePrefix removes matching keys from all caches. The count is the
// largest number removed from any single layer.
func (c *CacheChain) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	var errs []error

	removed := 0

	for _, cache := range c.caches {
		n, err := cache.DeletePrefix(ctx, prefix)
		if err != nil {
			errs = append(errs, err)
		}

		removed = max(removed, n)
	}

	return removed, errors.Join(errs...)
}

// Clear removes all items from all caches.
func (c *CacheChain) Clear(ctx context.Context) error {
	var errs []error

	for _, cache := range c.caches {
		err := cache.Clear(ctx)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Close releases every layer that holds resources.
func (c *CacheChain) Close() {
	for _, cache := range c.caches {
		if closer, ok := cache.(interface{ Close() }); ok {
			closer.Close()
		}
	}
}

// Has checks if a key exists in any cache.
func (c *CacheChain) Has(ctx context.Context, key string) bool {
	for _, cache := range c.caches {
		if cache.Has(ctx, key) {
			return true
		}
	}

	return false
}
