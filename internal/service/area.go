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

// AreaService manages organizational areas and their membership. Every
// operation here is administrative and requires an elevated role.
type AreaService interface {
	// Create adds a new area. Duplicate names are a conflict.
	Create(ctx context.Context, actorID, name string) (*model.Area, error)

	// List returns every area.
	List(ctx context.Context, actorID string) ([]model.Area, error)

	// Delete removes the area and orphans its members: their area_id is
	// cleared and is_leader reset, the users themselves are kept.
	Delete(ctx context.Context, actorID, areaID string) error

	// AssignUser puts a user into an area (or with nil areaID removes them
	// from their area) and sets the leader flag.
	AssignUser(ctx context.Context, actorID, userID string, areaID *string, isLeader bool) error
}

type areaService struct {
	atomic repository.Atomic
	store  repository.Store
	log    *zap.Logger
}

// NewAreaService constructs an AreaService.
func NewAreaService(atomic repository.Atomic, store repository.Store, log *zap.Logger) AreaService {
	return &areaService{atomic: atomic, store: store, log: log}
}

func (s *areaService) requireElevated(ctx context.Context, actorID string) error {
	actor, err := findUser(ctx, s.store.Users, actorID)
	if err != nil {
		return err
	}
	if !actor.Role.Elevated() {
		return apperr.Forbidden("area management requires an elevated role")
	}
	return nil
}

func (s *areaService) Create(ctx context.Context, actorID, name string) (*model.Area, error) {
	if name == "" {
		return nil, apperr.InvalidInput("area name is required")
	}
	if err := s.requireElevated(ctx, actorID); err != nil {
		return nil, err
	}

	if _, err := s.store.Areas.FindByName(ctx, name); err == nil {
		return nil, apperr.Conflict("an area named %q already exists", name)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find area by name: %w", err)
	}

	area, err := s.store.Areas.Create(ctx, &model.Area{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create area: %w", err)
	}

	s.log.Info("area created", zap.String("area_id", area.ID), zap.String("name", name))
	return area, nil
}

func (s *areaService) List(ctx context.Context, actorID string) ([]model.Area, error) {
	if err := s.requireElevated(ctx, actorID); err != nil {
		return nil, err
	}
	return s.store.Areas.List(ctx)
}

func (s *areaService) Delete(ctx context.Context, actorID, areaID string) error {
	if err := s.requireElevated(ctx, actorID); err != nil {
		return err
	}

	var orphaned int64
	err := s.atomic.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		if _, err := st.Areas.FindByID(ctx, areaID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NotFound("area %s not found", areaID)
			}
			return fmt.Errorf("find area: %w", err)
		}
		n, err := st.Users.OrphanAreaMembers(ctx, areaID)
		if err != nil {
			return fmt.Errorf("orphan members: %w", err)
		}
		orphaned = n
		return st.Areas.Delete(ctx, areaID)
	})
	if err != nil {
		return err
	}

	s.log.Info("area deleted",
		zap.String("area_id", areaID),
		zap.Int64("orphaned_members", orphaned),
	)
	return nil
}

func (s *areaService) AssignUser(ctx context.Context, actorID, userID string, areaID *string, isLeader bool) error {
	if err := s.requireElevated(ctx, actorID); err != nil {
		return err
	}
	if areaID == nil && isLeader {
		return apperr.InvalidInput("a user without an area cannot be a leader")
	}

	if _, err := findUser(ctx, s.store.Users, userID); err != nil {
		return err
	}
	if areaID != nil {
		if _, err := s.store.Areas.FindByID(ctx, *areaID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NotFound("area %s not found", *areaID)
			}
			return fmt.Errorf("find area: %w", err)
		}
	}
	return s.store.Users.SetArea(ctx, userID, areaID, isLeader)
}
