package figma

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/fivetwenty-io/figma-client/internal/constants"
)

// NATSKVConfig configures a JetStream key/value bucket used as a cache shared
// between processes.
type NATSKVConfig struct {
	// URL is the NATS server URL. Defaults to nats.DefaultURL.
	URL string `json:"url" yaml:"url"`
	// Bucket is the KV bucket name. Created when missing.
	Bucket string `json:"bucket" yaml:"bucket"`
	// TTL bounds how long the bucket keeps any key.
	TTL time.Duration `json:"ttl" yaml:"ttl"`
	// Conn reuses an existing connection instead of dialing URL.
	Conn *nats.Conn `json:"-" yaml:"-"`
	// Options are passed to nats.Connect.
	Options []nats.Option `json:"-" yaml:"-"`
}

// NATSKVCache stores cache entries in a NATS JetStream KV bucket. Keys are
// base64url encoded because cache keys contain characters KV keys reject.
type NATSKVCache struct {
	conn     *nats.Conn
	kv       nats.KeyValue
	ownsConn bool
	now      func() time.Time
}

// NewNATSKVCache connects to NATS and binds (or creates) the bucket.
func NewNATSKVCache(config *NATSKVConfig) (*NATSKVCache, error) {
	if config == nil {
		return nil, ErrNATSConfigRequired
	}

	conn := config.Conn
	ownsConn := false

	if conn == nil {
		url := config.URL
		if url == "" {
			url = nats.DefaultURL
		}

		var err error

		conn, err = nats.Connect(url, config.Options...)
		if err != nil {
			return nil, fmt.Errorf("connecting to NATS: %w", err)
		}

		ownsConn = true
	}

	cache, err := bindNATSBucket(conn, config)
	if err != nil {
		if ownsConn {
			conn.Close()
		}

		return nil, err
	}

	cache.ownsConn = ownsConn

	return cache, nil
}

func bindNATSBucket(conn *nats.Conn, config *NATSKVConfig) (*NATSKVCache, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("opening JetStream context: %w", err)
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = constants.DefaultNATSBucket
	}

	kv, err := js.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:  bucket,
			TTL:     config.TTL,
			History: 1,
		})
	}

	if err != nil {
		return nil, fmt.Errorf("binding KV bucket %q: %w", bucket, err)
	}

	return &NATSKVCache{conn: conn, kv: kv, now: time.Now}, nil
}

// Close releases the connection when the cache dialed it.
func (c *NATSKVCache) Close() {
	if c.ownsConn {
		c.conn.Close()
	}
}

// Get returns a live entry.
func (c *NATSKVCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	kvEntry, err := c.kv.Get(encodeNATSKey(key))
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, ErrCacheMiss
	}

	if err != nil {
		return nil, fmt.Errorf("reading cache key: %w", err)
	}

	var entry CacheEntry

	err = json.Unmarshal(kvEntry.Value(), &entry)
	if err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}

	if entry.Expired(c.now()) {
		_ = c.kv.Delete(encodeNATSKey(key))

		return nil, ErrEntryExpired
	}

	return &entry, nil
}

// Set stores entry.
func (c *NATSKVCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	_, err = c.kv.Put(encodeNATSKey(key), data)
	if err != nil {
		return fmt.Errorf("writing cache key: %w", err)
	}

	return nil
}

// Delete removes a key.
func (c *NATSKVCache) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(encodeNATSKey(key))
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("deleting cache key: %w", err)
	}

	return nil
}

// DeletePrefix removes every key with the given prefix.
func (c *NATSKVCache) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	keys, err := c.keys()
	if err != nil {
		return 0, err
	}

	removed := 0

	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}

		err = c.Delete(ctx, key)
		if err != nil {
			return removed, err
		}

		removed++
	}

	return removed, nil
}

// Clear purges every key in the bucket.
func (c *NATSKVCache) Clear(ctx context.Context) error {
	keys, err := c.keys()
	if err != nil {
		return err
	}

	for _, key := range keys {
		err = c.kv.Purge(encodeNATSKey(key))
		if err != nil {
			return fmt.Errorf("purging cache key: %w", err)
		}
	}

	return nil
}

// Has reports whether a live entry exists for key.
func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

func (c *NATSKVCache) keys() ([]string, error) {
	encoded, err := c.kv.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("listing cache keys: %w", err)
	}

	keys := make([]string, 0, len(encoded))

	for _, k := range encoded {
		key, ok := decodeNATSKey(k)
		if ok {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

func encodeNATSKey(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

func decodeNATSKey(encoded string) (string, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}

	return string(raw), true
}
