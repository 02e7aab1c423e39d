package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// OwnershipCache caches resource-to-owning-employee lookups in Redis so the
// ownership authorization rule does not hit the database on every request.
// Principal status is never cached; only the immutable owner relation is.
type OwnershipCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOwnershipCache creates a new ownership cache instance
func NewOwnershipCache(host string, port int, password string, db int, ttlSeconds int) (*OwnershipCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Return cache with nil client - will gracefully degrade to no caching
		return &OwnershipCache{
			client: nil,
			ttl:    time.Duration(ttlSeconds) * time.Second,
		}, nil
	}

	return &OwnershipCache{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}, nil
}

// cacheKey generates a unique cache key for a resource's owner
func (c *OwnershipCache) cacheKey(entityType, resourceID string) string {
	return fmt.Sprintf("owner:%s:%s", entityType, resourceID)
}

// Get retrieves the cached owning-employee id for a resource.
// Returns uuid.Nil with no error on a miss or when the cache is unavailable.
func (c *OwnershipCache) Get(ctx context.Context, entityType, resourceID string) (uuid.UUID, error) {
	if c.client == nil {
		return uuid.Nil, nil // Cache unavailable
	}

	key := c.cacheKey(entityType, resourceID)
	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return uuid.Nil, nil // Cache miss
	}
	if err != nil {
		return uuid.Nil, err
	}

	owner, err := uuid.Parse(data)
	if err != nil {
		return uuid.Nil, err
	}
	return owner, nil
}

// Set caches the owning-employee id for a resource
func (c *OwnershipCache) Set(ctx context.Context, entityType, resourceID string, owner uuid.UUID) error {
	if c.client == nil {
		return nil // Cache unavailable, silently skip
	}

	key := c.cacheKey(entityType, resourceID)
	return c.client.Set(ctx, key, owner.String(), c.ttl).Err()
}

// Invalidate removes the cached owner for a resource
func (c *OwnershipCache) Invalidate(ctx context.Context, entityType, resourceID string) error {
	if c.client == nil {
		return nil
	}

	key := c.cacheKey(entityType, resourceID)
	return c.client.Del(ctx, key).Err()
}

// Close closes the Redis connection
func (c *OwnershipCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// IsAvailable returns true if the cache is available
func (c *OwnershipCache) IsAvailable() bool {
	return c.client != nil
}
