package repository

// Package repository contains data access layer abstractions.
// Implementations can live in subpackages (e.g., postgres) inside this directory.

import "context"

// Store bundles the per-entity repositories behind one port. The core
// receives a Store by injection; connection lifecycle is owned by the
// composition root.
type Store struct {
	Users      UserRepository
	Areas      AreaRepository
	Documents  DocumentRepository
	Categories CategoryRepository
	Shares     ShareRepository
	Versions   VersionRepository
}

// Atomic runs fn against a Store whose repositories are bound to a single
// transaction. Either every write inside fn commits or none is visible.
// Operations that pair a document mutation with share or version rows must
// go through this primitive.
type Atomic interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
