package repository

import (
	"context"

	"docvault/internal/model"
)

// UserRepository defines data access for users using SQL queries only.
// No business logic here — strictly persistence operations.
type UserRepository interface {
	// Create inserts a new user record and returns the stored row.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by id.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail returns a user by email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// ListByArea returns every member of the given area.
	ListByArea(ctx context.Context, areaID string) ([]model.User, error)

	// UpdateRole sets the organizational role of a user.
	UpdateRole(ctx context.Context, id string, role model.Role) error

	// UpdateGrants replaces the fine-grained grant set of a user.
	UpdateGrants(ctx context.Context, id string, grants []string) error

	// SetArea assigns (or clears, with nil) a user's area and leader flag.
	SetArea(ctx context.Context, id string, areaID *string, isLeader bool) error

	// OrphanAreaMembers clears area_id and is_leader on every member of the
	// area and returns how many rows were touched. Members are never deleted.
	OrphanAreaMembers(ctx context.Context, areaID string) (int64, error)
}
