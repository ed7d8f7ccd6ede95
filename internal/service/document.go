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

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// DeletionReceipt records the outcome of a soft delete.
type DeletionReceipt struct {
	DocumentID string    `json:"document_id"`
	DeletedBy  string    `json:"deleted_by"`
	Reason     string    `json:"reason"`
	DeletedAt  time.Time `json:"deleted_at"`
}

// DocumentService is the facade the HTTP layer calls for document lifecycle
// operations. It composes the permission resolver and the version ledger;
// administrative role checks (delete/restore) live here and only here.
type DocumentService interface {
	// Create makes a new document. Requires an elevated role or the
	// create_documents grant.
	Create(ctx context.Context, userID, title, content string, categoryID *string) (*model.Document, error)

	// Get returns a document the user can at least view.
	Get(ctx context.Context, userID, documentID string) (*model.Document, error)

	// List returns a page of the user's own non-deleted documents.
	List(ctx context.Context, userID string, limit, offset int) (*DocumentListResult, error)

	// Update applies a patch: title/content need edit permission and go
	// through the version ledger; a category change is owner-only.
	Update(ctx context.Context, userID, documentID string, patch model.DocumentPatch) (*model.Document, error)

	// Delete soft-deletes. Owner or elevated role.
	Delete(ctx context.Context, userID, documentID, reason string) (*DeletionReceipt, error)

	// Restore clears a soft delete. Elevated role only.
	Restore(ctx context.Context, restorerID, documentID string) (*model.Document, error)

	// Resolve exposes permission resolution to the HTTP layer.
	Resolve(ctx context.Context, userID, documentID string) (model.Permission, error)
}

type documentService struct {
	atomic   repository.Atomic
	store    repository.Store
	resolver PermissionResolver
	ledger   VersionLedger
	log      *zap.Logger
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(atomic repository.Atomic, store repository.Store, resolver PermissionResolver, ledger VersionLedger, log *zap.Logger) DocumentService {
	return &documentService{atomic: atomic, store: store, resolver: resolver, ledger: ledger, log: log}
}

func (s *documentService) Create(ctx context.Context, userID, title, content string, categoryID *string) (*model.Document, error) {
	if title == "" {
		return nil, apperr.InvalidInput("title is required")
	}

	user, err := findUser(ctx, s.store.Users, userID)
	if err != nil {
		return nil, err
	}
	if !user.CanCreateDocuments() {
		return nil, apperr.Forbidden("creating documents requires an elevated role or the create_documents grant")
	}

	if categoryID != nil {
		cat, err := s.store.Categories.FindByID(ctx, *categoryID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperr.NotFound("category %s not found", *categoryID)
			}
			return nil, fmt.Errorf("find category: %w", err)
		}
		if cat.IsDeleted {
			return nil, apperr.NotFound("category %s not found", *categoryID)
		}
	}

	now := time.Now().UTC()
	doc, err := s.store.Documents.Create(ctx, &model.Document{
		ID:         uuid.NewString(),
		Title:      title,
		Content:    content,
		OwnerID:    userID,
		CategoryID: categoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	s.log.Info("document created",
		zap.String("document_id", doc.ID),
		zap.String("owner_id", userID),
	)
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, userID, documentID string) (*model.Document, error) {
	p, err := s.resolver.Resolve(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	if !p.AllowsRead() {
		return nil, apperr.Forbidden("no access to document")
	}
	doc, err := s.store.Documents.FindByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	if doc.IsDeleted && p != model.PermissionOwner {
		return nil, apperr.NotFound("document %s not found", documentID)
	}
	return doc, nil
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, userID string, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.store.Documents.ListOwned(ctx, userID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) Update(ctx context.Context, userID, documentID string, patch model.DocumentPatch) (*model.Document, error) {
	if patch.Empty() {
		return nil, apperr.InvalidInput("patch carries no fields")
	}

	p, err := s.resolver.Resolve(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	if !p.AllowsWrite() {
		return nil, apperr.Forbidden("editing requires owner or edit permission")
	}
	if patch.CategoryID.Set && p != model.PermissionOwner {
		return nil, apperr.Forbidden("re-filing a document is owner-only")
	}
	if patch.CategoryID.Set && patch.CategoryID.Value != nil {
		cat, err := s.store.Categories.FindByID(ctx, *patch.CategoryID.Value)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperr.NotFound("category %s not found", *patch.CategoryID.Value)
			}
			return nil, fmt.Errorf("find category: %w", err)
		}
		if cat.IsDeleted {
			return nil, apperr.NotFound("category %s not found", *patch.CategoryID.Value)
		}
	}

	doc, _, err := s.ledger.RecordEdit(ctx, documentID, userID, patch)
	return doc, err
}

func (s *documentService) Delete(ctx context.Context, userID, documentID, reason string) (*DeletionReceipt, error) {
	if reason == "" {
		return nil, apperr.InvalidInput("deletion reason is required")
	}

	user, err := findUser(ctx, s.store.Users, userID)
	if err != nil {
		return nil, err
	}

	var receipt *DeletionReceipt
	err = s.atomic.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		doc, err := lockDocument(ctx, st, documentID)
		if err != nil {
			return err
		}
		if doc.OwnerID != userID && !user.Role.Elevated() {
			return apperr.Forbidden("deleting requires ownership or an elevated role")
		}
		if err := st.Documents.SoftDelete(ctx, documentID, reason, userID); err != nil {
			return fmt.Errorf("soft delete: %w", err)
		}
		receipt = &DeletionReceipt{
			DocumentID: documentID,
			DeletedBy:  userID,
			Reason:     reason,
			DeletedAt:  time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("document deleted",
		zap.String("document_id", documentID),
		zap.String("deleted_by", userID),
		zap.String("reason", reason),
	)
	return receipt, nil
}

func (s *documentService) Restore(ctx context.Context, restorerID, documentID string) (*model.Document, error) {
	user, err := findUser(ctx, s.store.Users, restorerID)
	if err != nil {
		return nil, err
	}
	if !user.Role.Elevated() {
		return nil, apperr.Forbidden("restoring a deleted document requires an elevated role")
	}

	doc, err := s.store.Documents.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("document %s not found", documentID)
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	if !doc.IsDeleted {
		return doc, nil
	}
	if err := s.store.Documents.Restore(ctx, documentID); err != nil {
		return nil, fmt.Errorf("restore document: %w", err)
	}

	doc.IsDeleted = false
	doc.DeletedAt = nil
	doc.DeletionReason = nil
	doc.DeletedBy = nil

	s.log.Info("document restored",
		zap.String("document_id", documentID),
		zap.String("restorer_id", restorerID),
	)
	return doc, nil
}

func (s *documentService) Resolve(ctx context.Context, userID, documentID string) (model.Permission, error) {
	return s.resolver.Resolve(ctx, userID, documentID)
}

// findUser maps the missing-row case onto the typed taxonomy.
func findUser(ctx context.Context, users repository.UserRepository, id string) (*model.User, error) {
	user, err := users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user %s not found", id)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
