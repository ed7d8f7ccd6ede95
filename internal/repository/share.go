package repository

import (
	"context"

	"docvault/internal/model"
)

// ShareRepository defines data access for the three share tables. Every
// materialization is an upsert keyed by the natural unique pair, so repeated
// propagation runs never duplicate rows.
type ShareRepository interface {
	// UpsertDocumentShare creates or updates the (document, user) share.
	UpsertDocumentShare(ctx context.Context, documentID, userID string, p model.Permission) (*model.DocumentShare, error)

	// UpsertAreaDocumentShare creates or updates the (document, area) share.
	// A nil areaID stores the all-areas grant.
	UpsertAreaDocumentShare(ctx context.Context, documentID string, areaID *string, p model.Permission) (*model.AreaDocumentShare, error)

	// UpsertCategoryShare creates or updates the (category, user) share.
	UpsertCategoryShare(ctx context.Context, categoryID, userID string, p model.Permission) (*model.CategoryShare, error)

	// FindDocumentShare returns the direct share for (document, user),
	// or sql.ErrNoRows if absent.
	FindDocumentShare(ctx context.Context, documentID, userID string) (*model.DocumentShare, error)

	// FindAreaDocumentShare returns the area share applying to the given
	// area: the exact-area row if present, else the all-areas (NULL) row,
	// else sql.ErrNoRows.
	FindAreaDocumentShare(ctx context.Context, documentID, areaID string) (*model.AreaDocumentShare, error)

	// ListDocumentShares returns every direct share on a document.
	ListDocumentShares(ctx context.Context, documentID string) ([]model.DocumentShare, error)

	// ListCategorySharesForUser returns the folder shares visible to a user.
	ListCategorySharesForUser(ctx context.Context, userID string) ([]model.CategoryShare, error)

	// DeleteDocumentShare revokes a direct share. Missing rows are not an
	// error.
	DeleteDocumentShare(ctx context.Context, documentID, userID string) error
}
