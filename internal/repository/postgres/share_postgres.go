package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// SharePostgres is a PostgreSQL implementation of repository.ShareRepository.
// All writes are upserts keyed by the natural unique pair of each table.
type SharePostgres struct {
	q Querier
}

// NewSharePostgres creates a new SharePostgres repository.
func NewSharePostgres(q Querier) *SharePostgres {
	return &SharePostgres{q: q}
}

var _ repository.ShareRepository = (*SharePostgres)(nil)

const documentShareColumns = `id, document_id, shared_with_user_id, permission, created_at, updated_at`
const areaDocumentShareColumns = `id, document_id, area_id, permission, created_at, updated_at`
const categoryShareColumns = `id, category_id, shared_with_user_id, permission, created_at, updated_at`

func scanDocumentShare(row rowScanner) (*model.DocumentShare, error) {
	var s model.DocumentShare
	if err := row.Scan(&s.ID, &s.DocumentID, &s.SharedWithUserID, &s.Permission, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanAreaDocumentShare(row rowScanner) (*model.AreaDocumentShare, error) {
	var s model.AreaDocumentShare
	if err := row.Scan(&s.ID, &s.DocumentID, &s.AreaID, &s.Permission, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanCategoryShare(row rowScanner) (*model.CategoryShare, error) {
	var s model.CategoryShare
	if err := row.Scan(&s.ID, &s.CategoryID, &s.SharedWithUserID, &s.Permission, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpsertDocumentShare creates or updates the (document, user) share.
func (r *SharePostgres) UpsertDocumentShare(ctx context.Context, documentID, userID string, p model.Permission) (*model.DocumentShare, error) {
	const q = `
		INSERT INTO document_shares (id, document_id, shared_with_user_id, permission, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (document_id, shared_with_user_id)
		DO UPDATE SET permission = EXCLUDED.permission, updated_at = EXCLUDED.updated_at
		RETURNING ` + documentShareColumns
	row := r.q.QueryRowContext(ctx, q, uuid.NewString(), documentID, userID, p, time.Now().UTC())
	return scanDocumentShare(row)
}

// UpsertAreaDocumentShare creates or updates the (document, area) share.
// The unique index treats NULL area_id as a value, so the all-areas grant is
// also a single upsertable row.
func (r *SharePostgres) UpsertAreaDocumentShare(ctx context.Context, documentID string, areaID *string, p model.Permission) (*model.AreaDocumentShare, error) {
	const q = `
		INSERT INTO area_document_shares (id, document_id, area_id, permission, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (document_id, area_id)
		DO UPDATE SET permission = EXCLUDED.permission, updated_at = EXCLUDED.updated_at
		RETURNING ` + areaDocumentShareColumns
	row := r.q.QueryRowContext(ctx, q, uuid.NewString(), documentID, areaID, p, time.Now().UTC())
	return scanAreaDocumentShare(row)
}

// UpsertCategoryShare creates or updates the (category, user) share.
func (r *SharePostgres) UpsertCategoryShare(ctx context.Context, categoryID, userID string, p model.Permission) (*model.CategoryShare, error) {
	const q = `
		INSERT INTO category_shares (id, category_id, shared_with_user_id, permission, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (category_id, shared_with_user_id)
		DO UPDATE SET permission = EXCLUDED.permission, updated_at = EXCLUDED.updated_at
		RETURNING ` + categoryShareColumns
	row := r.q.QueryRowContext(ctx, q, uuid.NewString(), categoryID, userID, p, time.Now().UTC())
	return scanCategoryShare(row)
}

// FindDocumentShare fetches the direct share for (document, user).
func (r *SharePostgres) FindDocumentShare(ctx context.Context, documentID, userID string) (*model.DocumentShare, error) {
	const q = `
		SELECT ` + documentShareColumns + `
		FROM document_shares
		WHERE document_id = $1 AND shared_with_user_id = $2
	`
	return scanDocumentShare(r.q.QueryRowContext(ctx, q, documentID, userID))
}

// FindAreaDocumentShare fetches the area share applying to the given area.
// An exact-area row outranks the all-areas (NULL) row.
func (r *SharePostgres) FindAreaDocumentShare(ctx context.Context, documentID, areaID string) (*model.AreaDocumentShare, error) {
	const q = `
		SELECT ` + areaDocumentShareColumns + `
		FROM area_document_shares
		WHERE document_id = $1 AND (area_id = $2 OR area_id IS NULL)
		ORDER BY area_id NULLS LAST
		LIMIT 1
	`
	return scanAreaDocumentShare(r.q.QueryRowContext(ctx, q, documentID, areaID))
}

// ListDocumentShares returns every direct share on a document.
func (r *SharePostgres) ListDocumentShares(ctx context.Context, documentID string) ([]model.DocumentShare, error) {
	const q = `
		SELECT ` + documentShareColumns + `
		FROM document_shares
		WHERE document_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.q.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.DocumentShare, 0)
	for rows.Next() {
		s, err := scanDocumentShare(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	return items, rows.Err()
}

// ListCategorySharesForUser returns the folder shares visible to a user.
func (r *SharePostgres) ListCategorySharesForUser(ctx context.Context, userID string) ([]model.CategoryShare, error) {
	const q = `
		SELECT ` + categoryShareColumns + `
		FROM category_shares
		WHERE shared_with_user_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.q.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.CategoryShare, 0)
	for rows.Next() {
		s, err := scanCategoryShare(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	return items, rows.Err()
}

// DeleteDocumentShare revokes a direct share. Missing rows are ignored.
func (r *SharePostgres) DeleteDocumentShare(ctx context.Context, documentID, userID string) error {
	const q = `DELETE FROM document_shares WHERE document_id = $1 AND shared_with_user_id = $2`
	_, err := r.q.ExecContext(ctx, q, documentID, userID)
	return err
}
