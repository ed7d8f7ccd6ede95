package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docvault/internal/apperr"
	"docvault/internal/model"
	"docvault/internal/repository"
)

// VersionLedger records immutable document snapshots and restores live state
// from them. Snapshots are numbered 1..max per document with no gaps;
// restoring only ever appends, so the full audit trail survives any number
// of restores.
type VersionLedger interface {
	// RecordEdit applies patch to the document inside one transaction. A new
	// snapshot is created only when a supplied title or content actually
	// differs from the current state; otherwise the document is returned
	// unchanged with a nil version. A category change alone re-files the
	// document without creating a snapshot.
	RecordEdit(ctx context.Context, documentID, editorID string, patch model.DocumentPatch) (*model.Document, *model.DocumentVersion, error)

	// RestoreToVersion copies the historical snapshot's title/content onto
	// the live document and appends a new snapshot recording the restore.
	// Requires owner or edit permission.
	RestoreToVersion(ctx context.Context, documentID string, version int, restorerID string) (*model.Document, error)

	// ListVersions returns the document's snapshots newest first. Requires
	// read permission.
	ListVersions(ctx context.Context, userID, documentID string) ([]model.DocumentVersion, error)

	// GetVersion returns one snapshot. Requires read permission.
	GetVersion(ctx context.Context, userID, documentID string, version int) (*model.DocumentVersion, error)

	// UpdateChangeNote edits a snapshot's change note, the only mutable
	// snapshot field. Requires owner or edit permission.
	UpdateChangeNote(ctx context.Context, userID, documentID string, version int, note string) error
}

type versionLedger struct {
	atomic   repository.Atomic
	store    repository.Store
	resolver PermissionResolver
	log      *zap.Logger
}

// NewVersionLedger constructs a VersionLedger.
func NewVersionLedger(atomic repository.Atomic, store repository.Store, resolver PermissionResolver, log *zap.Logger) VersionLedger {
	return &versionLedger{atomic: atomic, store: store, resolver: resolver, log: log}
}

func (l *versionLedger) RecordEdit(ctx context.Context, documentID, editorID string, patch model.DocumentPatch) (*model.Document, *model.DocumentVersion, error) {
	var (
		doc     *model.Document
		created *model.DocumentVersion
	)
	err := l.atomic.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		current, err := lockDocument(ctx, st, documentID)
		if err != nil {
			return err
		}

		newTitle := current.Title
		if patch.Title.Set {
			newTitle = patch.Title.Value
		}
		newContent := current.Content
		if patch.Content.Set {
			newContent = patch.Content.Value
		}
		changed := newTitle != current.Title || newContent != current.Content

		if patch.CategoryID.Set {
			if err := st.Documents.SetCategory(ctx, current.ID, patch.CategoryID.Value); err != nil {
				return fmt.Errorf("set category: %w", err)
			}
			current.CategoryID = patch.CategoryID.Value
		}

		if !changed {
			// Idempotent save: no snapshot, current state returned as is.
			doc = current
			return nil
		}

		if err := st.Documents.UpdateContent(ctx, current.ID, newTitle, newContent); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		next, err := nextVersionNumber(ctx, st, current.ID)
		if err != nil {
			return err
		}
		note := changeNoteFor(next, patch.ChangeNote)
		created, err = st.Versions.Insert(ctx, &model.DocumentVersion{
			ID:         uuid.NewString(),
			DocumentID: current.ID,
			Version:    next,
			Title:      newTitle,
			Content:    newContent,
			ChangeNote: note,
			CreatedBy:  editorID,
			CreatedAt:  time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("insert version: %w", err)
		}

		current.Title = newTitle
		current.Content = newContent
		doc = current
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if created != nil {
		l.log.Info("document version recorded",
			zap.String("document_id", documentID),
			zap.Int("version", created.Version),
			zap.String("editor_id", editorID),
		)
	}
	return doc, created, nil
}

func (l *versionLedger) RestoreToVersion(ctx context.Context, documentID string, version int, restorerID string) (*model.Document, error) {
	p, err := l.resolver.Resolve(ctx, restorerID, documentID)
	if err != nil {
		return nil, err
	}
	if !p.AllowsWrite() {
		return nil, apperr.Forbidden("restoring a version requires owner or edit permission")
	}

	var doc *model.Document
	err = l.atomic.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		current, err := lockDocument(ctx, st, documentID)
		if err != nil {
			return err
		}

		snapshot, err := st.Versions.FindByDocumentAndVersion(ctx, documentID, version)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NotFound("version %d of document %s not found", version, documentID)
			}
			return fmt.Errorf("find version: %w", err)
		}

		if err := st.Documents.UpdateContent(ctx, current.ID, snapshot.Title, snapshot.Content); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		next, err := nextVersionNumber(ctx, st, current.ID)
		if err != nil {
			return err
		}
		if _, err := st.Versions.Insert(ctx, &model.DocumentVersion{
			ID:         uuid.NewString(),
			DocumentID: current.ID,
			Version:    next,
			Title:      snapshot.Title,
			Content:    snapshot.Content,
			ChangeNote: fmt.Sprintf("restored from version %d", version),
			CreatedBy:  restorerID,
			CreatedAt:  time.Now().UTC(),
		}); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}

		current.Title = snapshot.Title
		current.Content = snapshot.Content
		doc = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.log.Info("document restored from version",
		zap.String("document_id", documentID),
		zap.Int("restored_from", version),
		zap.String("restorer_id", restorerID),
	)
	return doc, nil
}

func (l *versionLedger) ListVersions(ctx context.Context, userID, documentID string) ([]model.DocumentVersion, error) {
	if err := l.requireRead(ctx, userID, documentID); err != nil {
		return nil, err
	}
	versions, err := l.store.Versions.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return versions, nil
}

func (l *versionLedger) GetVersion(ctx context.Context, userID, documentID string, version int) (*model.DocumentVersion, error) {
	if err := l.requireRead(ctx, userID, documentID); err != nil {
		return nil, err
	}
	v, err := l.store.Versions.FindByDocumentAndVersion(ctx, documentID, version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("version %d of document %s not found", version, documentID)
		}
		return nil, fmt.Errorf("find version: %w", err)
	}
	return v, nil
}

func (l *versionLedger) UpdateChangeNote(ctx context.Context, userID, documentID string, version int, note string) error {
	p, err := l.resolver.Resolve(ctx, userID, documentID)
	if err != nil {
		return err
	}
	if !p.AllowsWrite() {
		return apperr.Forbidden("editing a change note requires owner or edit permission")
	}
	if _, err := l.store.Versions.FindByDocumentAndVersion(ctx, documentID, version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("version %d of document %s not found", version, documentID)
		}
		return fmt.Errorf("find version: %w", err)
	}
	return l.store.Versions.UpdateChangeNote(ctx, documentID, version, note)
}

func (l *versionLedger) requireRead(ctx context.Context, userID, documentID string) error {
	p, err := l.resolver.Resolve(ctx, userID, documentID)
	if err != nil {
		return err
	}
	if !p.AllowsRead() {
		return apperr.Forbidden("no access to document")
	}
	return nil
}

// lockDocument fetches the document under FOR UPDATE so concurrent editors
// cannot compute the same next version number.
func lockDocument(ctx context.Context, st repository.Store, documentID string) (*model.Document, error) {
	doc, err := st.Documents.FindByIDForUpdate(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("document %s not found", documentID)
		}
		return nil, fmt.Errorf("lock document: %w", err)
	}
	if doc.IsDeleted {
		return nil, apperr.NotFound("document %s not found", documentID)
	}
	return doc, nil
}

// nextVersionNumber reads max+1 under the caller's document lock.
func nextVersionNumber(ctx context.Context, st repository.Store, documentID string) (int, error) {
	max, err := st.Versions.MaxVersion(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("max version: %w", err)
	}
	return max + 1, nil
}

// changeNoteFor picks the stored change note: version 1 is always the
// initial version regardless of caller input; later versions fall back to a
// numbered label when the caller supplies none.
func changeNoteFor(version int, note model.Opt[string]) string {
	if version == 1 {
		return "initial version"
	}
	if note.Set && note.Value != "" {
		return note.Value
	}
	return fmt.Sprintf("version %d", version)
}
