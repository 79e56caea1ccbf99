package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/linkveil/linkveil/internal/model"
)

// Cache key prefixes and TTLs.
const (
	linkKeyPrefix = "link:"
	negKeyPrefix  = "link:neg:"

	// DefaultLinkTTL is the TTL for cached link records.
	DefaultLinkTTL = 10 * time.Minute

	// NegativeCacheTTL is the TTL for negative cache entries.
	NegativeCacheTTL = 2 * time.Minute
)

// ErrCacheMiss is returned when the requested key is absent.
var ErrCacheMiss = errors.New("cache miss")

// linkKey builds the cache key for a link record.
func linkKey(id string) string {
	return linkKeyPrefix + id
}

// negKey builds the negative-cache key for an unknown id.
func negKey(id string) string {
	return negKeyPrefix + id
}

// decodeLink deserializes a cached payload. ok is false for payloads that
// do not unmarshal; the caller treats those as misses.
func decodeLink(raw []byte) (*model.Link, bool) {
	var link model.Link
	if err := json.Unmarshal(raw, &link); err != nil {
		return nil, false
	}
	link.Normalize()
	return &link, true
}

// GetLink retrieves a cached link by id or alias.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetLink(ctx context.Context, id string) (*model.Link, error) {
	raw, err := c.client.Get(ctx, linkKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	link, ok := decodeLink(raw)
	if !ok {
		// A corrupt entry behaves like a miss; the store is authoritative.
		c.client.Del(ctx, linkKey(id))
		return nil, ErrCacheMiss
	}
	return link, nil
}

// SetLink stores a link under its lookup key.
func (c *Cache) SetLink(ctx context.Context, id string, link *model.Link) error {
	raw, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("marshal link: %w", err)
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, linkKey(id), raw, DefaultLinkTTL)
	pipe.Del(ctx, negKey(id))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache link: %w", err)
	}
	return nil
}

// DeleteLink removes a link and its negative-cache marker.
func (c *Cache) DeleteLink(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, linkKey(id), negKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete link from cache: %w", err)
	}
	return nil
}

// SetNegative marks an id as known-missing so repeated lookups for dead
// short codes do not hit the store.
func (c *Cache) SetNegative(ctx context.Context, id string) error {
	return c.client.Set(ctx, negKey(id), "1", NegativeCacheTTL).Err()
}

// IsNegative reports whether an id is negatively cached.
func (c *Cache) IsNegative(ctx context.Context, id string) (bool, error) {
	n, err := c.client.Exists(ctx, negKey(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
