// Package cache provides the Redis-backed permission cache. Resolution
// results are small and hot (every document read resolves first), so they are
// kept in Redis under a short TTL; share mutations invalidate per document.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"docvault/internal/model"
)

const permissionKeyPrefix = "perm:"

// PermissionCache stores resolved (document, user) permissions in Redis.
type PermissionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewClient connects to Redis and verifies the connection.
func NewClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// NewPermissionCache wraps an existing Redis client. A non-positive ttl
// falls back to five minutes.
func NewPermissionCache(client *redis.Client, ttl time.Duration) *PermissionCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PermissionCache{client: client, ttl: ttl}
}

func permissionKey(documentID, userID string) string {
	return permissionKeyPrefix + documentID + ":" + userID
}

// Get returns the cached permission and whether the key was present.
func (c *PermissionCache) Get(ctx context.Context, documentID, userID string) (model.Permission, bool, error) {
	val, err := c.client.Get(ctx, permissionKey(documentID, userID)).Result()
	if errors.Is(err, redis.Nil) {
		return model.PermissionNone, false, nil
	}
	if err != nil {
		return model.PermissionNone, false, fmt.Errorf("cache get: %w", err)
	}
	return model.Permission(val), true, nil
}

// Set stores one resolution result under the configured TTL.
func (c *PermissionCache) Set(ctx context.Context, documentID, userID string, p model.Permission) error {
	if err := c.client.Set(ctx, permissionKey(documentID, userID), string(p), c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// InvalidateDocument drops every cached permission for one document. SCAN is
// used instead of KEYS so invalidation never blocks the server.
func (c *PermissionCache) InvalidateDocument(ctx context.Context, documentID string) error {
	pattern := permissionKeyPrefix + documentID + ":*"
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (c *PermissionCache) Close() error {
	return c.client.Close()
}
