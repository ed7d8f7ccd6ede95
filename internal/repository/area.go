package repository

import (
	"context"

	"docvault/internal/model"
)

// AreaRepository defines data access for areas.
type AreaRepository interface {
	// Create inserts a new area and returns the stored row.
	Create(ctx context.Context, a *model.Area) (*model.Area, error)

	// FindByID returns an area by id.
	FindByID(ctx context.Context, id string) (*model.Area, error)

	// FindByName returns an area by its unique name.
	FindByName(ctx context.Context, name string) (*model.Area, error)

	// List returns every area.
	List(ctx context.Context) ([]model.Area, error)

	// Delete removes the area row. Member orphaning is the caller's job and
	// must happen in the same transaction.
	Delete(ctx context.Context, id string) error
}
