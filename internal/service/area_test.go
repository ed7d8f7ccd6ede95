package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"docvault/internal/apperr"
	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/repository/mocks"
)

func newAreaService() (AreaService, *mocks.MockUserRepository, *mocks.MockAreaRepository) {
	mUsers := new(mocks.MockUserRepository)
	mAreas := new(mocks.MockAreaRepository)
	store := repository.Store{Users: mUsers, Areas: mAreas}
	svc := NewAreaService(&mocks.StubAtomic{Store: store}, store, zap.NewNop())
	return svc, mUsers, mAreas
}

func TestAreaService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("normal user is forbidden", func(t *testing.T) {
		svc, mUsers, _ := newAreaService()

		mUsers.On("FindByID", ctx, "u-1").Return(&model.User{ID: "u-1", Role: model.RoleNormal}, nil)

		_, err := svc.Create(ctx, "u-1", "Sales")

		assert.True(t, apperr.IsForbidden(err), "got %v", err)
	})

	t.Run("duplicate name is a conflict", func(t *testing.T) {
		svc, mUsers, mAreas := newAreaService()

		mUsers.On("FindByID", ctx, "u-admin").Return(&model.User{ID: "u-admin", Role: model.RoleAdmin}, nil)
		mAreas.On("FindByName", ctx, "Sales").Return(&model.Area{ID: "a-1", Name: "Sales"}, nil)

		_, err := svc.Create(ctx, "u-admin", "Sales")

		assert.True(t, apperr.IsConflict(err), "got %v", err)
		mAreas.AssertExpectations(t)
	})

	t.Run("admin creates an area", func(t *testing.T) {
		svc, mUsers, mAreas := newAreaService()

		mUsers.On("FindByID", ctx, "u-admin").Return(&model.User{ID: "u-admin", Role: model.RoleAdmin}, nil)
		mAreas.On("FindByName", ctx, "Sales").Return(nil, sql.ErrNoRows)
		mAreas.On("Create", ctx, mock.MatchedBy(func(a *model.Area) bool {
			return a.Name == "Sales" && a.ID != ""
		})).Return(&model.Area{ID: "a-1", Name: "Sales"}, nil)

		area, err := svc.Create(ctx, "u-admin", "Sales")

		assert.NoError(t, err)
		assert.Equal(t, "a-1", area.ID)
		mAreas.AssertExpectations(t)
	})
}

func TestAreaService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("members are orphaned, not deleted", func(t *testing.T) {
		svc, mUsers, mAreas := newAreaService()

		mUsers.On("FindByID", ctx, "u-admin").Return(&model.User{ID: "u-admin", Role: model.RoleAdmin}, nil)
		mAreas.On("FindByID", ctx, "a-1").Return(&model.Area{ID: "a-1"}, nil)
		mUsers.On("OrphanAreaMembers", ctx, "a-1").Return(int64(3), nil)
		mAreas.On("Delete", ctx, "a-1").Return(nil)

		err := svc.Delete(ctx, "u-admin", "a-1")

		assert.NoError(t, err)
		mUsers.AssertExpectations(t)
		mAreas.AssertExpectations(t)
	})

	t.Run("unknown area", func(t *testing.T) {
		svc, mUsers, mAreas := newAreaService()

		mUsers.On("FindByID", ctx, "u-admin").Return(&model.User{ID: "u-admin", Role: model.RoleAdmin}, nil)
		mAreas.On("FindByID", ctx, "a-missing").Return(nil, sql.ErrNoRows)

		err := svc.Delete(ctx, "u-admin", "a-missing")

		assert.True(t, apperr.IsNotFound(err), "got %v", err)
	})
}

func TestAreaService_AssignUser(t *testing.T) {
	ctx := context.Background()

	t.Run("leader without area is invalid", func(t *testing.T) {
		svc, mUsers, _ := newAreaService()

		mUsers.On("FindByID", ctx, "u-admin").Return(&model.User{ID: "u-admin", Role: model.RoleAdmin}, nil)

		err := svc.AssignUser(ctx, "u-admin", "u-1", nil, true)

		assert.True(t, apperr.IsInvalidInput(err), "got %v", err)
	})

	t.Run("assigns user and leader flag", func(t *testing.T) {
		svc, mUsers, mAreas := newAreaService()

		areaID := "a-1"
		mUsers.On("FindByID", ctx, "u-admin").Return(&model.User{ID: "u-admin", Role: model.RoleAdmin}, nil)
		mUsers.On("FindByID", ctx, "u-1").Return(&model.User{ID: "u-1"}, nil)
		mAreas.On("FindByID", ctx, "a-1").Return(&model.Area{ID: "a-1"}, nil)
		mUsers.On("SetArea", ctx, "u-1", &areaID, true).Return(nil)

		err := svc.AssignUser(ctx, "u-admin", "u-1", &areaID, true)

		assert.NoError(t, err)
		mUsers.AssertExpectations(t)
	})
}
