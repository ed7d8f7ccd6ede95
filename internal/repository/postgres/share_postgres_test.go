package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"docvault/internal/model"
)

func TestSharePostgres_UpsertDocumentShare(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewSharePostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "document_id", "shared_with_user_id", "permission", "created_at", "updated_at"}).
		AddRow("share-1", "doc-1", "user-2", "view", now, now)

	mock.ExpectQuery("INSERT INTO document_shares (.+) ON CONFLICT").
		WithArgs(sqlmock.AnyArg(), "doc-1", "user-2", model.PermissionView, sqlmock.AnyArg()).
		WillReturnRows(rows)

	share, err := repo.UpsertDocumentShare(ctx, "doc-1", "user-2", model.PermissionView)

	assert.NoError(t, err)
	assert.Equal(t, "doc-1", share.DocumentID)
	assert.Equal(t, model.PermissionView, share.Permission)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSharePostgres_UpsertAreaDocumentShare_AllAreas(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewSharePostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "document_id", "area_id", "permission", "created_at", "updated_at"}).
		AddRow("share-1", "doc-1", nil, "edit", now, now)

	mock.ExpectQuery("INSERT INTO area_document_shares (.+) ON CONFLICT").
		WithArgs(sqlmock.AnyArg(), "doc-1", nil, model.PermissionEdit, sqlmock.AnyArg()).
		WillReturnRows(rows)

	share, err := repo.UpsertAreaDocumentShare(ctx, "doc-1", nil, model.PermissionEdit)

	assert.NoError(t, err)
	assert.Nil(t, share.AreaID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSharePostgres_FindAreaDocumentShare(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewSharePostgres(db)
	ctx := context.Background()

	t.Run("exact area row wins over all-areas row", func(t *testing.T) {
		now := time.Now().UTC()
		area := "area-1"
		rows := sqlmock.NewRows([]string{"id", "document_id", "area_id", "permission", "created_at", "updated_at"}).
			AddRow("share-1", "doc-1", area, "edit", now, now)

		mock.ExpectQuery(`SELECT (.+) FROM area_document_shares\s+WHERE document_id = \$1 AND \(area_id = \$2 OR area_id IS NULL\)\s+ORDER BY area_id NULLS LAST`).
			WithArgs("doc-1", "area-1").
			WillReturnRows(rows)

		share, err := repo.FindAreaDocumentShare(ctx, "doc-1", "area-1")

		assert.NoError(t, err)
		assert.Equal(t, &area, share.AreaID)
		assert.Equal(t, model.PermissionEdit, share.Permission)
	})

	t.Run("no matching row", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM area_document_shares").
			WithArgs("doc-1", "area-9").
			WillReturnError(sql.ErrNoRows)

		share, err := repo.FindAreaDocumentShare(ctx, "doc-1", "area-9")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, share)
	})
}

func TestSharePostgres_DeleteDocumentShare(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewSharePostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM document_shares").
		WithArgs("doc-1", "user-2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.DeleteDocumentShare(ctx, "doc-1", "user-2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
