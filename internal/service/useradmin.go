package service

import (
	"context"

	"go.uber.org/zap"

	"docvault/internal/apperr"
	"docvault/internal/model"
	"docvault/internal/repository"
)

// UserAdminService covers role assignment and fine-grained grants.
// Only admins and superusers may call it; only a superuser may mint another
// superuser.
type UserAdminService interface {
	SetRole(ctx context.Context, actorID, userID string, role model.Role) error
	SetGrants(ctx context.Context, actorID, userID string, grants []string) error
}

type userAdminService struct {
	store repository.Store
	log   *zap.Logger
}

// NewUserAdminService constructs a UserAdminService.
func NewUserAdminService(store repository.Store, log *zap.Logger) UserAdminService {
	return &userAdminService{store: store, log: log}
}

func (s *userAdminService) SetRole(ctx context.Context, actorID, userID string, role model.Role) error {
	switch role {
	case model.RoleNormal, model.RoleAdmin, model.RoleSuperuser:
	default:
		return apperr.InvalidInput("unknown role %q", role)
	}

	actor, err := findUser(ctx, s.store.Users, actorID)
	if err != nil {
		return err
	}
	if !actor.Role.Elevated() {
		return apperr.Forbidden("role assignment requires an elevated role")
	}
	if role == model.RoleSuperuser && actor.Role != model.RoleSuperuser {
		return apperr.Forbidden("only a superuser can assign the superuser role")
	}
	if _, err := findUser(ctx, s.store.Users, userID); err != nil {
		return err
	}

	if err := s.store.Users.UpdateRole(ctx, userID, role); err != nil {
		return err
	}
	s.log.Info("role assigned",
		zap.String("user_id", userID),
		zap.String("role", string(role)),
		zap.String("actor_id", actorID),
	)
	return nil
}

func (s *userAdminService) SetGrants(ctx context.Context, actorID, userID string, grants []string) error {
	actor, err := findUser(ctx, s.store.Users, actorID)
	if err != nil {
		return err
	}
	if !actor.Role.Elevated() {
		return apperr.Forbidden("grant management requires an elevated role")
	}
	if _, err := findUser(ctx, s.store.Users, userID); err != nil {
		return err
	}
	return s.store.Users.UpdateGrants(ctx, userID, grants)
}
