package postgres

import (
	"context"
	"fmt"
	"strings"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	q Querier
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(q Querier) *DocumentPostgres {
	return &DocumentPostgres{q: q}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, title, content, owner_id, category_id, is_deleted, deleted_at, deletion_reason, deleted_by, created_at, updated_at`

func scanDocument(row rowScanner) (*model.Document, error) {
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.Title,
		&d.Content,
		&d.OwnerID,
		&d.CategoryID,
		&d.IsDeleted,
		&d.DeletedAt,
		&d.DeletionReason,
		&d.DeletedBy,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, title, content, owner_id, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + documentColumns
	row := r.q.QueryRowContext(ctx, q,
		doc.ID,
		doc.Title,
		doc.Content,
		doc.OwnerID,
		doc.CategoryID,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its id.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.q.QueryRowContext(ctx, q, id))
}

// FindByIDForUpdate fetches a document and locks its row until the
// surrounding transaction ends.
func (r *DocumentPostgres) FindByIDForUpdate(ctx context.Context, id string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 FOR UPDATE`
	return scanDocument(r.q.QueryRowContext(ctx, q, id))
}

// ListOwned returns the owner's non-deleted documents using LIMIT/OFFSET
// pagination and a total count.
func (r *DocumentPostgres) ListOwned(ctx context.Context, ownerID string, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	const qCount = `SELECT COUNT(*) FROM documents WHERE owner_id = $1 AND is_deleted = FALSE`
	var total int
	if err := r.q.QueryRowContext(ctx, qCount, ownerID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE owner_id = $1 AND is_deleted = FALSE
		ORDER BY updated_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.q.QueryContext(ctx, qList, ownerID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{Items: items, Total: total}, nil
}

// ListActiveByCategories returns the owner's non-deleted documents filed
// directly under any of the given categories.
func (r *DocumentPostgres) ListActiveByCategories(ctx context.Context, ownerID string, categoryIDs []string) ([]model.Document, error) {
	if len(categoryIDs) == 0 {
		return []model.Document{}, nil
	}

	args := make([]any, 0, len(categoryIDs)+1)
	args = append(args, ownerID)
	placeholders := make([]string, len(categoryIDs))
	for i, id := range categoryIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}

	q := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE owner_id = $1 AND is_deleted = FALSE AND category_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY created_at, id
	`
	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	return items, rows.Err()
}

// UpdateContent sets title and content and bumps updated_at.
func (r *DocumentPostgres) UpdateContent(ctx context.Context, id, title, content string) error {
	const q = `UPDATE documents SET title = $2, content = $3, updated_at = now() WHERE id = $1`
	_, err := r.q.ExecContext(ctx, q, id, title, content)
	return err
}

// SetCategory files or un-files the document.
func (r *DocumentPostgres) SetCategory(ctx context.Context, id string, categoryID *string) error {
	const q = `UPDATE documents SET category_id = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.ExecContext(ctx, q, id, categoryID)
	return err
}

// SoftDelete marks the document deleted.
func (r *DocumentPostgres) SoftDelete(ctx context.Context, id, reason, deletedBy string) error {
	const q = `
		UPDATE documents
		SET is_deleted = TRUE, deleted_at = now(), deletion_reason = $2, deleted_by = $3
		WHERE id = $1
	`
	_, err := r.q.ExecContext(ctx, q, id, reason, deletedBy)
	return err
}

// Restore clears the soft-delete marker.
func (r *DocumentPostgres) Restore(ctx context.Context, id string) error {
	const q = `
		UPDATE documents
		SET is_deleted = FALSE, deleted_at = NULL, deletion_reason = NULL, deleted_by = NULL
		WHERE id = $1
	`
	_, err := r.q.ExecContext(ctx, q, id)
	return err
}

// CountActiveInCategory counts the non-deleted documents filed directly
// under the category.
func (r *DocumentPostgres) CountActiveInCategory(ctx context.Context, categoryID string) (int, error) {
	const q = `SELECT COUNT(*) FROM documents WHERE category_id = $1 AND is_deleted = FALSE`
	var n int
	if err := r.q.QueryRowContext(ctx, q, categoryID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
