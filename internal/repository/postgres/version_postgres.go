package postgres

import (
	"context"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// VersionPostgres is a PostgreSQL implementation of repository.VersionRepository.
type VersionPostgres struct {
	q Querier
}

// NewVersionPostgres creates a new VersionPostgres repository.
func NewVersionPostgres(q Querier) *VersionPostgres {
	return &VersionPostgres{q: q}
}

var _ repository.VersionRepository = (*VersionPostgres)(nil)

const versionColumns = `id, document_id, version, title, content, change_note, created_by, created_at`

func scanVersion(row rowScanner) (*model.DocumentVersion, error) {
	var v model.DocumentVersion
	if err := row.Scan(
		&v.ID,
		&v.DocumentID,
		&v.Version,
		&v.Title,
		&v.Content,
		&v.ChangeNote,
		&v.CreatedBy,
		&v.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &v, nil
}

// Insert stores a new snapshot row and returns the stored record.
func (r *VersionPostgres) Insert(ctx context.Context, v *model.DocumentVersion) (*model.DocumentVersion, error) {
	const q = `
		INSERT INTO document_versions (id, document_id, version, title, content, change_note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + versionColumns
	row := r.q.QueryRowContext(ctx, q,
		v.ID,
		v.DocumentID,
		v.Version,
		v.Title,
		v.Content,
		v.ChangeNote,
		v.CreatedBy,
		v.CreatedAt,
	)
	return scanVersion(row)
}

// FindByDocumentAndVersion fetches one snapshot.
func (r *VersionPostgres) FindByDocumentAndVersion(ctx context.Context, documentID string, version int) (*model.DocumentVersion, error) {
	const q = `
		SELECT ` + versionColumns + `
		FROM document_versions
		WHERE document_id = $1 AND version = $2
	`
	return scanVersion(r.q.QueryRowContext(ctx, q, documentID, version))
}

// ListByDocument returns all snapshots of a document, newest first.
func (r *VersionPostgres) ListByDocument(ctx context.Context, documentID string) ([]model.DocumentVersion, error) {
	const q = `
		SELECT ` + versionColumns + `
		FROM document_versions
		WHERE document_id = $1
		ORDER BY version DESC
	`
	rows, err := r.q.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.DocumentVersion, 0)
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *v)
	}
	return items, rows.Err()
}

// MaxVersion returns the highest version number, or 0 when no snapshot exists.
func (r *VersionPostgres) MaxVersion(ctx context.Context, documentID string) (int, error) {
	const q = `SELECT COALESCE(MAX(version), 0) FROM document_versions WHERE document_id = $1`
	var n int
	if err := r.q.QueryRowContext(ctx, q, documentID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateChangeNote edits the change note of one snapshot.
func (r *VersionPostgres) UpdateChangeNote(ctx context.Context, documentID string, version int, note string) error {
	const q = `UPDATE document_versions SET change_note = $3 WHERE document_id = $1 AND version = $2`
	_, err := r.q.ExecContext(ctx, q, documentID, version, note)
	return err
}
