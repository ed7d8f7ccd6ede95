package repository

import (
	"context"

	"docvault/internal/model"
)

// VersionRepository defines data access for document version snapshots.
type VersionRepository interface {
	// Insert stores a new snapshot and returns the stored row.
	Insert(ctx context.Context, v *model.DocumentVersion) (*model.DocumentVersion, error)

	// FindByDocumentAndVersion returns one snapshot, or sql.ErrNoRows.
	FindByDocumentAndVersion(ctx context.Context, documentID string, version int) (*model.DocumentVersion, error)

	// ListByDocument returns all snapshots of a document, newest first.
	ListByDocument(ctx context.Context, documentID string) ([]model.DocumentVersion, error)

	// MaxVersion returns the highest version number for the document, or 0
	// if no snapshot exists. Callers needing a race-free next number must
	// hold the document row lock in the same transaction.
	MaxVersion(ctx context.Context, documentID string) (int, error)

	// UpdateChangeNote edits the change note of an existing snapshot.
	// The snapshot itself stays immutable.
	UpdateChangeNote(ctx context.Context, documentID string, version int, note string) error
}
