package repository

import (
	"context"

	"docvault/internal/model"
)

// CategoryRepository defines data access for categories.
type CategoryRepository interface {
	// Create inserts a new category and returns the stored row.
	Create(ctx context.Context, c *model.Category) (*model.Category, error)

	// FindByID returns a category by id, deleted or not.
	FindByID(ctx context.Context, id string) (*model.Category, error)

	// ListChildren returns the non-deleted direct children of the category.
	ListChildren(ctx context.Context, parentID string) ([]model.Category, error)

	// ListRoots returns the owner's non-deleted top-level categories.
	ListRoots(ctx context.Context, ownerID string) ([]model.Category, error)

	// NameExists reports whether a non-deleted sibling with the same name
	// already exists under parentID (nil parentID means top level) for the
	// given owner.
	NameExists(ctx context.Context, ownerID string, parentID *string, name string) (bool, error)

	// CountActiveChildren returns the number of non-deleted subcategories.
	CountActiveChildren(ctx context.Context, id string) (int, error)

	// SoftDelete marks the category deleted.
	SoftDelete(ctx context.Context, id string) error
}
