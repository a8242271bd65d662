// Package redis provides an optional server-side response cache. The engine
// itself is pure; caching lives strictly in the serving layer.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/toodl-app/mind/pkg/domain"
)

// Cache stores interpretation responses keyed by a digest of the full
// request. Interpretation is deterministic for a given request, so a cached
// response is always valid until the model artifacts change.
type Cache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Cache)

// WithTTL sets the expiration for cached responses.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix for cached responses.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// New creates a new Redis cache with options.
func New(address, password string, db int, opts ...Option) *Cache {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis cache from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Cache {
	cache := &Cache{
		client: client,
		prefix: "mind:ask:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// Key derives the cache key for a request. The digest covers the utterance,
// the snapshot and the context hints, since all three shape the response.
func (c *Cache) Key(req *domain.MindRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request for cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return c.prefix + hex.EncodeToString(sum[:]), nil
}

// Get returns the cached response for a request, or domain.ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, req *domain.MindRequest) (*domain.MindResponse, error) {
	key, err := c.Key(req)
	if err != nil {
		return nil, err
	}

	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("read cache: %w", err)
	}

	var response domain.MindResponse
	if err := json.Unmarshal([]byte(val), &response); err != nil {
		return nil, fmt.Errorf("decode cached response: %w", err)
	}
	return &response, nil
}

// Set stores the response for a request, bounded by the configured TTL.
func (c *Cache) Set(ctx context.Context, req *domain.MindRequest, response *domain.MindResponse) error {
	key, err := c.Key(req)
	if err != nil {
		return err
	}

	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("marshal response for cache: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

// Close releases the underlying client connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
