package mocks

import (
	"context"

	"docvault/internal/repository"
)

// StubAtomic is a repository.Atomic that runs fn directly against the given
// Store, with no real transaction. Service tests use it so expectations set
// on the mock repositories are visible inside "transactional" closures.
type StubAtomic struct {
	Store repository.Store
}

var _ repository.Atomic = (*StubAtomic)(nil)

func (a *StubAtomic) WithinTx(ctx context.Context, fn func(ctx context.Context, s repository.Store) error) error {
	return fn(ctx, a.Store)
}
