package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type UserPostgres struct {
	q Querier
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(q Querier) *UserPostgres {
	return &UserPostgres{q: q}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `id, email, name, role, area_id, is_leader, grants, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	var grants []byte
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Role,
		&u.AreaID,
		&u.IsLeader,
		&grants,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(grants) > 0 {
		if err := json.Unmarshal(grants, &u.Grants); err != nil {
			return nil, fmt.Errorf("decode grants: %w", err)
		}
	}
	return &u, nil
}

func encodeGrants(grants []string) ([]byte, error) {
	if grants == nil {
		grants = []string{}
	}
	return json.Marshal(grants)
}

// Create inserts a new user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, email, name, role, area_id, is_leader, grants, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns
	grants, err := encodeGrants(u.Grants)
	if err != nil {
		return nil, err
	}
	row := r.q.QueryRowContext(ctx, q,
		u.ID,
		u.Email,
		u.Name,
		u.Role,
		u.AreaID,
		u.IsLeader,
		grants,
		u.CreatedAt,
	)
	return scanUser(row)
}

// FindByID fetches a single user by id.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.q.QueryRowContext(ctx, q, id))
}

// FindByEmail fetches a single user by email.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.q.QueryRowContext(ctx, q, email))
}

// ListByArea returns every user whose area_id matches.
func (r *UserPostgres) ListByArea(ctx context.Context, areaID string) ([]model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE area_id = $1 ORDER BY email`
	rows, err := r.q.QueryContext(ctx, q, areaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateRole sets the role column.
func (r *UserPostgres) UpdateRole(ctx context.Context, id string, role model.Role) error {
	const q = `UPDATE users SET role = $2 WHERE id = $1`
	_, err := r.q.ExecContext(ctx, q, id, role)
	return err
}

// UpdateGrants replaces the grants column.
func (r *UserPostgres) UpdateGrants(ctx context.Context, id string, grants []string) error {
	const q = `UPDATE users SET grants = $2 WHERE id = $1`
	enc, err := encodeGrants(grants)
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, q, id, enc)
	return err
}

// SetArea assigns or clears the user's area and leader flag.
func (r *UserPostgres) SetArea(ctx context.Context, id string, areaID *string, isLeader bool) error {
	const q = `UPDATE users SET area_id = $2, is_leader = $3 WHERE id = $1`
	_, err := r.q.ExecContext(ctx, q, id, areaID, isLeader)
	return err
}

// OrphanAreaMembers clears membership for every user in the area.
func (r *UserPostgres) OrphanAreaMembers(ctx context.Context, areaID string) (int64, error) {
	const q = `UPDATE users SET area_id = NULL, is_leader = FALSE WHERE area_id = $1`
	res, err := r.q.ExecContext(ctx, q, areaID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
