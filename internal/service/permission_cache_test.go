package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"docvault/internal/model"
)

// memoryPermissionCache is an in-memory PermissionCacheStore for tests.
type memoryPermissionCache struct {
	entries map[string]model.Permission
	getErr  error
}

func newMemoryPermissionCache() *memoryPermissionCache {
	return &memoryPermissionCache{entries: map[string]model.Permission{}}
}

func (c *memoryPermissionCache) Get(_ context.Context, documentID, userID string) (model.Permission, bool, error) {
	if c.getErr != nil {
		return model.PermissionNone, false, c.getErr
	}
	p, ok := c.entries[documentID+":"+userID]
	return p, ok, nil
}

func (c *memoryPermissionCache) Set(_ context.Context, documentID, userID string, p model.Permission) error {
	c.entries[documentID+":"+userID] = p
	return nil
}

func (c *memoryPermissionCache) InvalidateDocument(_ context.Context, documentID string) error {
	for k := range c.entries {
		if len(k) > len(documentID) && k[:len(documentID)+1] == documentID+":" {
			delete(c.entries, k)
		}
	}
	return nil
}

// countingResolver counts how often the database path is taken.
type countingResolver struct {
	p     model.Permission
	err   error
	calls int
}

func (r *countingResolver) Resolve(context.Context, string, string) (model.Permission, error) {
	r.calls++
	return r.p, r.err
}

func TestCachedPermissionResolver_ReadThrough(t *testing.T) {
	ctx := context.Background()
	inner := &countingResolver{p: model.PermissionEdit}
	c := newMemoryPermissionCache()
	r := NewCachedPermissionResolver(inner, c, zap.NewNop())

	p, err := r.Resolve(ctx, "u-1", "d-1")
	assert.NoError(t, err)
	assert.Equal(t, model.PermissionEdit, p)
	assert.Equal(t, 1, inner.calls)

	// second call is served from the cache
	p, err = r.Resolve(ctx, "u-1", "d-1")
	assert.NoError(t, err)
	assert.Equal(t, model.PermissionEdit, p)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedPermissionResolver_CacheFailureDegrades(t *testing.T) {
	ctx := context.Background()
	inner := &countingResolver{p: model.PermissionView}
	c := newMemoryPermissionCache()
	c.getErr = errors.New("redis down")
	r := NewCachedPermissionResolver(inner, c, zap.NewNop())

	p, err := r.Resolve(ctx, "u-1", "d-1")
	assert.NoError(t, err)
	assert.Equal(t, model.PermissionView, p)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedPermissionResolver_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	inner := &countingResolver{err: errors.New("db down")}
	c := newMemoryPermissionCache()
	r := NewCachedPermissionResolver(inner, c, zap.NewNop())

	_, err := r.Resolve(ctx, "u-1", "d-1")
	assert.Error(t, err)

	inner.err = nil
	inner.p = model.PermissionOwner
	p, err := r.Resolve(ctx, "u-1", "d-1")
	assert.NoError(t, err)
	assert.Equal(t, model.PermissionOwner, p)
	assert.Equal(t, 2, inner.calls)
}
