package postgres

import (
	"context"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// CategoryPostgres is a PostgreSQL implementation of repository.CategoryRepository.
type CategoryPostgres struct {
	q Querier
}

// NewCategoryPostgres creates a new CategoryPostgres repository.
func NewCategoryPostgres(q Querier) *CategoryPostgres {
	return &CategoryPostgres{q: q}
}

var _ repository.CategoryRepository = (*CategoryPostgres)(nil)

const categoryColumns = `id, name, owner_id, parent_id, is_deleted, deleted_at, created_at`

func scanCategory(row rowScanner) (*model.Category, error) {
	var c model.Category
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.OwnerID,
		&c.ParentID,
		&c.IsDeleted,
		&c.DeletedAt,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new category row and returns the stored record.
func (r *CategoryPostgres) Create(ctx context.Context, c *model.Category) (*model.Category, error) {
	const q = `
		INSERT INTO categories (id, name, owner_id, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + categoryColumns
	row := r.q.QueryRowContext(ctx, q, c.ID, c.Name, c.OwnerID, c.ParentID, c.CreatedAt)
	return scanCategory(row)
}

// FindByID fetches a single category by id.
func (r *CategoryPostgres) FindByID(ctx context.Context, id string) (*model.Category, error) {
	const q = `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	return scanCategory(r.q.QueryRowContext(ctx, q, id))
}

// ListChildren returns the non-deleted direct children of a category.
func (r *CategoryPostgres) ListChildren(ctx context.Context, parentID string) ([]model.Category, error) {
	const q = `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE parent_id = $1 AND is_deleted = FALSE
		ORDER BY name
	`
	return r.list(ctx, q, parentID)
}

// ListRoots returns the owner's non-deleted top-level categories.
func (r *CategoryPostgres) ListRoots(ctx context.Context, ownerID string) ([]model.Category, error) {
	const q = `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE owner_id = $1 AND parent_id IS NULL AND is_deleted = FALSE
		ORDER BY name
	`
	return r.list(ctx, q, ownerID)
}

func (r *CategoryPostgres) list(ctx context.Context, q string, args ...any) ([]model.Category, error) {
	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// NameExists reports whether a non-deleted sibling with the same name exists.
func (r *CategoryPostgres) NameExists(ctx context.Context, ownerID string, parentID *string, name string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM categories
			WHERE owner_id = $1
			  AND name = $3
			  AND is_deleted = FALSE
			  AND ($2::uuid IS NULL AND parent_id IS NULL OR parent_id = $2)
		)
	`
	var exists bool
	if err := r.q.QueryRowContext(ctx, q, ownerID, parentID, name).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// CountActiveChildren counts the non-deleted subcategories.
func (r *CategoryPostgres) CountActiveChildren(ctx context.Context, id string) (int, error) {
	const q = `SELECT COUNT(*) FROM categories WHERE parent_id = $1 AND is_deleted = FALSE`
	var n int
	if err := r.q.QueryRowContext(ctx, q, id).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// SoftDelete marks the category deleted.
func (r *CategoryPostgres) SoftDelete(ctx context.Context, id string) error {
	const q = `UPDATE categories SET is_deleted = TRUE, deleted_at = now() WHERE id = $1`
	_, err := r.q.ExecContext(ctx, q, id)
	return err
}
