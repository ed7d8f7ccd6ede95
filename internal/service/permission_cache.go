package service

import (
	"context"

	"go.uber.org/zap"

	"docvault/internal/model"
)

// PermissionCacheStore is the port the cached resolver speaks to. The Redis
// implementation lives in internal/cache.
type PermissionCacheStore interface {
	Get(ctx context.Context, documentID, userID string) (model.Permission, bool, error)
	Set(ctx context.Context, documentID, userID string, p model.Permission) error
	InvalidateDocument(ctx context.Context, documentID string) error
}

// cachedPermissionResolver consults the cache before the database. Cache
// failures are logged and degrade to a plain resolve, never to an error.
type cachedPermissionResolver struct {
	inner PermissionResolver
	cache PermissionCacheStore
	log   *zap.Logger
}

// NewCachedPermissionResolver wraps inner with a read-through cache.
func NewCachedPermissionResolver(inner PermissionResolver, cache PermissionCacheStore, log *zap.Logger) PermissionResolver {
	return &cachedPermissionResolver{inner: inner, cache: cache, log: log}
}

func (r *cachedPermissionResolver) Resolve(ctx context.Context, userID, documentID string) (model.Permission, error) {
	p, hit, err := r.cache.Get(ctx, documentID, userID)
	if err != nil {
		r.log.Warn("permission cache read failed", zap.Error(err))
	} else if hit {
		return p, nil
	}

	p, err = r.inner.Resolve(ctx, userID, documentID)
	if err != nil {
		return p, err
	}
	if err := r.cache.Set(ctx, documentID, userID, p); err != nil {
		r.log.Warn("permission cache write failed", zap.Error(err))
	}
	return p, nil
}
