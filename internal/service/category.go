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

// CategoryService manages the folder tree.
type CategoryService interface {
	// Create adds a category under parentID (nil for top level). Duplicate
	// sibling names are a conflict.
	Create(ctx context.Context, ownerID, name string, parentID *string) (*model.Category, error)

	// Get returns a category by id.
	Get(ctx context.Context, categoryID string) (*model.Category, error)

	// ListRoots returns the owner's top-level categories.
	ListRoots(ctx context.Context, ownerID string) ([]model.Category, error)

	// ListChildren returns the direct subcategories.
	ListChildren(ctx context.Context, categoryID string) ([]model.Category, error)

	// Delete soft-deletes a category. It must hold no active documents and
	// no active subcategories; owner or elevated role required.
	Delete(ctx context.Context, actorID, categoryID string) error
}

type categoryService struct {
	atomic repository.Atomic
	store  repository.Store
	log    *zap.Logger
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(atomic repository.Atomic, store repository.Store, log *zap.Logger) CategoryService {
	return &categoryService{atomic: atomic, store: store, log: log}
}

func (s *categoryService) Create(ctx context.Context, ownerID, name string, parentID *string) (*model.Category, error) {
	if name == "" {
		return nil, apperr.InvalidInput("category name is required")
	}

	if parentID != nil {
		parent, err := s.store.Categories.FindByID(ctx, *parentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperr.NotFound("category %s not found", *parentID)
			}
			return nil, fmt.Errorf("find parent category: %w", err)
		}
		if parent.IsDeleted {
			return nil, apperr.NotFound("category %s not found", *parentID)
		}
		if parent.OwnerID != ownerID {
			return nil, apperr.Forbidden("parent category belongs to another user")
		}
	}

	exists, err := s.store.Categories.NameExists(ctx, ownerID, parentID, name)
	if err != nil {
		return nil, fmt.Errorf("check category name: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("a category named %q already exists here", name)
	}

	cat, err := s.store.Categories.Create(ctx, &model.Category{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   ownerID,
		ParentID:  parentID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.log.Info("category created",
		zap.String("category_id", cat.ID),
		zap.String("owner_id", ownerID),
	)
	return cat, nil
}

func (s *categoryService) Get(ctx context.Context, categoryID string) (*model.Category, error) {
	cat, err := s.store.Categories.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("category %s not found", categoryID)
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	if cat.IsDeleted {
		return nil, apperr.NotFound("category %s not found", categoryID)
	}
	return cat, nil
}

func (s *categoryService) ListRoots(ctx context.Context, ownerID string) ([]model.Category, error) {
	return s.store.Categories.ListRoots(ctx, ownerID)
}

func (s *categoryService) ListChildren(ctx context.Context, categoryID string) ([]model.Category, error) {
	return s.store.Categories.ListChildren(ctx, categoryID)
}

func (s *categoryService) Delete(ctx context.Context, actorID, categoryID string) error {
	actor, err := findUser(ctx, s.store.Users, actorID)
	if err != nil {
		return err
	}

	err = s.atomic.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		cat, err := st.Categories.FindByID(ctx, categoryID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NotFound("category %s not found", categoryID)
			}
			return fmt.Errorf("find category: %w", err)
		}
		if cat.IsDeleted {
			return apperr.NotFound("category %s not found", categoryID)
		}
		if cat.OwnerID != actorID && !actor.Role.Elevated() {
			return apperr.Forbidden("deleting a category requires ownership or an elevated role")
		}

		docs, err := st.Documents.CountActiveInCategory(ctx, categoryID)
		if err != nil {
			return fmt.Errorf("count documents: %w", err)
		}
		if docs > 0 {
			return apperr.Conflict("category still holds %d active document(s)", docs)
		}
		children, err := st.Categories.CountActiveChildren(ctx, categoryID)
		if err != nil {
			return fmt.Errorf("count subcategories: %w", err)
		}
		if children > 0 {
			return apperr.Conflict("category still holds %d active subcategorie(s)", children)
		}

		return st.Categories.SoftDelete(ctx, categoryID)
	})
	if err != nil {
		return err
	}

	s.log.Info("category deleted",
		zap.String("category_id", categoryID),
		zap.String("actor_id", actorID),
	)
	return nil
}
