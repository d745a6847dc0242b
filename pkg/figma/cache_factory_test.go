package figma_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/figma-client/pkg/figma"
)

func TestCacheFactory_MemoryCache(t *testing.T) {
	t.Parallel()

	config := &figma.CacheConfig{
		Type: figma.CacheTypeMemory,
		Memory: &figma.MemoryCacheConfig{
			MaxSize: 100,
		},
	}

	cache, err := figma.NewCacheFromConfig(config)
	require.NoError(t, err)
	require.NotNil(t, cache)

	// Test basic operations
	ctx := context.Background()
	entry := figma.NewCacheEntry([]byte("test data"), time.Hour)

	err = cache.Set(ctx, "test-key", entry)
	require.NoError(t, err)

	retrieved, err := cache.Get(ctx, "test-key")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
}

func TestCacheFactory_Defaults(t *testing.T) {
	t.Parallel()

	cache, err := figma.NewCacheFromConfig(nil)
	require.NoError(t, err)
	assert.IsType(t, &figma.MemoryCache{}, cache)

	cache, err = figma.NewCacheFromConfig(&figma.CacheConfig{})
	require.NoError(t, err)
	assert.IsType(t, &figma.MemoryCache{}, cache)

	var nilConfig *figma.CacheConfig
	assert.Equal(t, figma.DefaultCacheConfig().TTL, nilConfig.EffectiveTTL())
	assert.False(t, nilConfig.Disabled())
	assert.Equal(t, 2*time.Minute, (&figma.CacheConfig{TTL: 2 * time.Minute}).EffectiveTTL())
}

func TestCacheFactory_NoOpCache(t *testing.T) {
	t.Parallel()

	config := &figma.CacheConfig{Type: figma.CacheTypeNone}
	assert.True(t, config.Disabled())

	cache, err := figma.NewCacheFromConfig(config)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "k", figma.NewCacheEntry([]byte("x"), time.Hour)))

	_, err = cache.Get(ctx, "k")
	require.ErrorIs(t, err, figma.ErrCacheDisabled)
	assert.False(t, cache.Has(ctx, "k"))

	removed, err := cache.DeletePrefix(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestCacheFactory_Errors(t *testing.T) {
	t.Parallel()

	_, err := figma.NewCacheFromConfig(&figma.CacheConfig{Type: figma.CacheTypeNATS})
	require.ErrorIs(t, err, figma.ErrNATSConfigRequired)

	_, err = figma.NewCacheFromConfig(&figma.CacheConfig{Type: figma.CacheTypeTiered})
	require.ErrorIs(t, err, figma.ErrNATSConfigRequired)

	_, err = figma.NewCacheFromConfig(&figma.CacheConfig{Type: "redis"})
	require.ErrorIs(t, err, figma.ErrUnsupportedCacheType)
	assert.Contains(t, err.Error(), "redis")

	_, err = figma.NewNATSKVCache(nil)
	require.ErrorIs(t, err, figma.ErrNATSConfigRequired)
}

func TestCacheBuilder(t *testing.T) {
	t.Parallel()

	builder := figma.NewCacheBuilder().
		WithType(figma.CacheTypeMemory).
		WithTTL(30 * time.Second).
		WithMemoryConfig(5)

	config := builder.Config()
	assert.Equal(t, figma.CacheTypeMemory, config.Type)
	assert.Equal(t, 30*time.Second, config.TTL)
	assert.Equal(t, 5, config.Memory.MaxSize)

	cache, err := builder.Build()
	require.NoError(t, err)

	memory, ok := cache.(*figma.MemoryCache)
	require.True(t, ok)

	ctx := context.Background()
	for i := range 8 {
		require.NoError(t, memory.Set(ctx, fmt.Sprintf("k%d", i), figma.NewCacheEntry([]byte("x"), time.Hour)))
	}

	assert.Equal(t, 5, memory.Len())
}

func TestCacheChain(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l1 := figma.NewMemoryCache(10)
	l2 := figma.NewMemoryCache(10)
	chain := figma.NewCacheChain(l1, l2)

	require.NoError(t, l2.Set(ctx, "GET /v1/files/abc", figma.NewCacheEntry([]byte("l2"), time.Hour)))

	entry, err := chain.Get(ctx, "GET /v1/files/abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("l2"), entry.Data)
	assert.True(t, l1.Has(ctx, "GET /v1/files/abc"), "hit in L2 backfills L1")

	_, err = chain.Get(ctx, "missing")
	require.ErrorIs(t, err, figma.ErrKeyNotFoundInAnyCache)

	require.NoError(t, chain.Set(ctx, "GET /v1/files/abc/comments", figma.NewCacheEntry([]byte("c"), time.Hour)))
	assert.True(t, l1.Has(ctx, "GET /v1/files/abc/comments"))
	assert.True(t, l2.Has(ctx, "GET /v1/files/abc/comments"))

	removed, err := chain.DeletePrefix(ctx, "GET /v1/files/abc")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.False(t, chain.Has(ctx, "GET /v1/files/abc"))

	require.NoError(t, chain.Set(ctx, "k", figma.NewCacheEntry([]byte("x"), time.Hour)))
	require.NoError(t, chain.Delete(ctx, "k"))
	assert.False(t, chain.Has(ctx, "k"))

	require.NoError(t, chain.Set(ctx, "k", figma.NewCacheEntry([]byte("x"), time.Hour)))
	require.NoError(t, chain.Clear(ctx))
	assert.Equal(t, 0, l1.Len()+l2.Len())
}

type closableCache struct {
	*figma.MemoryCache
	closed bool
}

func (c *closableCache) Close() {
	c.closed = true
}

func TestCacheChain_Close(t *testing.T) {
	t.Parallel()

	shared := &closableCache{MemoryCache: figma.NewMemoryCache(10)}
	chain := figma.NewCacheChain(figma.NewMemoryCache(10), shared)

	chain.Close()
	assert.True(t, shared.closed)
}

// TestTieredCache runs against a JetStream-enabled server named by NATS_URL.
func TestTieredCache(t *testing.T) {
	t.Parallel()

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		t.Skip("NATS_URL not set")
	}

	config := figma.NewCacheBuilder().
		WithType(figma.CacheTypeTiered).
		WithMemoryConfig(10).
		WithNATSConfig(&figma.NATSKVConfig{
			URL:    natsURL,
			Bucket: fmt.Sprintf("figma_tiered_%d", time.Now().UnixNano()),
		}).
		Config()

	writer, err := figma.NewCacheFromConfig(config)
	require.NoError(t, err)

	reader, err := figma.NewCacheFromConfig(config)
	require.NoError(t, err)

	writerChain, ok := writer.(*figma.CacheChain)
	require.True(t, ok)
	defer writerChain.Close()

	readerChain, ok := reader.(*figma.CacheChain)
	require.True(t, ok)
	defer readerChain.Close()

	ctx := context.Background()
	defer func() { _ = writer.Clear(ctx) }()

	require.NoError(t, writer.Set(ctx, "GET /v1/files/abc", figma.NewCacheEntry([]byte(`{"name":"a"}`), time.Hour)))

	entry, err := reader.Get(ctx, "GET /v1/files/abc")
	require.NoError(t, err, "entry written by one process is visible to another through NATS")
	assert.JSONEq(t, `{"name":"a"}`, string(entry.Data))

	removed, err := reader.DeletePrefix(ctx, "GET /v1/files/abc")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

// TestNATSKVCache runs against a JetStream-enabled server named by NATS_URL.
func TestNATSKVCache(t *testing.T) {
	t.Parallel()

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		t.Skip("NATS_URL not set")
	}

	cache, err := figma.NewNATSKVCache(&figma.NATSKVConfig{
		URL:    natsURL,
		Bucket: fmt.Sprintf("figma_test_%d", time.Now().UnixNano()),
	})
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	defer func() { _ = cache.Clear(ctx) }()

	entry := figma.NewCacheEntry([]byte(`{"name":"Design System"}`), time.Hour)
	entry.ETag = "v1"

	require.NoError(t, cache.Set(ctx, "GET /v1/files/abc?depth=1", entry))
	require.NoError(t, cache.Set(ctx, "GET /v1/files/abc/comments", entry))
	require.NoError(t, cache.Set(ctx, "GET /v1/files/xyz", entry))

	got, err := cache.Get(ctx, "GET /v1/files/abc?depth=1")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, got.Data)
	assert.Equal(t, "v1", got.ETag)

	removed, err := cache.DeletePrefix(ctx, "GET /v1/files/abc")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.True(t, cache.Has(ctx, "GET /v1/files/xyz"))

	require.NoError(t, cache.Set(ctx, "stale", &figma.CacheEntry{
		Data:     []byte("x"),
		StoredAt: time.Now().Add(-time.Hour),
		TTL:      time.Minute,
	}))

	_, err = cache.Get(ctx, "stale")
	require.ErrorIs(t, err, figma.ErrEntryExpired)

	_, err = cache.Get(ctx, "missing")
	require.ErrorIs(t, err, figma.ErrCacheMiss)
}
