package repository

import (
	"context"

	"docvault/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here — strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by id, deleted or not.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// FindByIDForUpdate returns a document by id with a row lock held for the
	// remainder of the surrounding transaction. Version numbering is
	// serialized through this lock.
	FindByIDForUpdate(ctx context.Context, id string) (*model.Document, error)

	// ListOwned returns a page of the owner's non-deleted documents.
	ListOwned(ctx context.Context, ownerID string, pq PageQuery) (*PageResult[model.Document], error)

	// ListActiveByCategories returns the owner's non-deleted documents filed
	// directly under any of the given categories.
	ListActiveByCategories(ctx context.Context, ownerID string, categoryIDs []string) ([]model.Document, error)

	// UpdateContent sets title and content, bumping updated_at.
	UpdateContent(ctx context.Context, id, title, content string) error

	// SetCategory files (or with nil un-files) the document.
	SetCategory(ctx context.Context, id string, categoryID *string) error

	// SoftDelete marks the document deleted with reason and actor.
	SoftDelete(ctx context.Context, id, reason, deletedBy string) error

	// Restore clears the soft-delete marker.
	Restore(ctx context.Context, id string) error

	// CountActiveInCategory returns the number of non-deleted documents filed
	// directly under the category, regardless of owner.
	CountActiveInCategory(ctx context.Context, categoryID string) (int, error)
}
