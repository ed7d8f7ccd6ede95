package postgres

import (
	"context"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// AreaPostgres is a PostgreSQL implementation of repository.AreaRepository.
type AreaPostgres struct {
	q Querier
}

// NewAreaPostgres creates a new AreaPostgres repository.
func NewAreaPostgres(q Querier) *AreaPostgres {
	return &AreaPostgres{q: q}
}

var _ repository.AreaRepository = (*AreaPostgres)(nil)

const areaColumns = `id, name, created_at`

func scanArea(row rowScanner) (*model.Area, error) {
	var a model.Area
	if err := row.Scan(&a.ID, &a.Name, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new area row and returns the stored record.
func (r *AreaPostgres) Create(ctx context.Context, a *model.Area) (*model.Area, error) {
	const q = `
		INSERT INTO areas (id, name, created_at)
		VALUES ($1, $2, $3)
		RETURNING ` + areaColumns
	return scanArea(r.q.QueryRowContext(ctx, q, a.ID, a.Name, a.CreatedAt))
}

// FindByID fetches a single area by id.
func (r *AreaPostgres) FindByID(ctx context.Context, id string) (*model.Area, error) {
	const q = `SELECT ` + areaColumns + ` FROM areas WHERE id = $1`
	return scanArea(r.q.QueryRowContext(ctx, q, id))
}

// FindByName fetches a single area by its unique name.
func (r *AreaPostgres) FindByName(ctx context.Context, name string) (*model.Area, error) {
	const q = `SELECT ` + areaColumns + ` FROM areas WHERE name = $1`
	return scanArea(r.q.QueryRowContext(ctx, q, name))
}

// List returns every area ordered by name.
func (r *AreaPostgres) List(ctx context.Context) ([]model.Area, error) {
	const q = `SELECT ` + areaColumns + ` FROM areas ORDER BY name`
	rows, err := r.q.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	areas := make([]model.Area, 0)
	for rows.Next() {
		a, err := scanArea(rows)
		if err != nil {
			return nil, err
		}
		areas = append(areas, *a)
	}
	return areas, rows.Err()
}

// Delete removes the area row.
func (r *AreaPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM areas WHERE id = $1`
	_, err := r.q.ExecContext(ctx, q, id)
	return err
}
