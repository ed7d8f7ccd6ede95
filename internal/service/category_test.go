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

type categoryMocks struct {
	users *mocks.MockUserRepository
	docs  *mocks.MockDocumentRepository
	cats  *mocks.MockCategoryRepository
}

func newCategoryService() (CategoryService, categoryMocks) {
	m := categoryMocks{
		users: new(mocks.MockUserRepository),
		docs:  new(mocks.MockDocumentRepository),
		cats:  new(mocks.MockCategoryRepository),
	}
	store := repository.Store{Users: m.users, Documents: m.docs, Categories: m.cats}
	svc := NewCategoryService(&mocks.StubAtomic{Store: store}, store, zap.NewNop())
	return svc, m
}

func TestCategoryService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate sibling name is a conflict", func(t *testing.T) {
		svc, m := newCategoryService()

		m.cats.On("NameExists", ctx, "u-1", (*string)(nil), "Reports").Return(true, nil)

		_, err := svc.Create(ctx, "u-1", "Reports", nil)

		assert.True(t, apperr.IsConflict(err), "got %v", err)
		m.cats.AssertExpectations(t)
	})

	t.Run("nested create checks parent ownership", func(t *testing.T) {
		svc, m := newCategoryService()

		parentID := "c-parent"
		m.cats.On("FindByID", ctx, parentID).Return(&model.Category{ID: parentID, OwnerID: "u-other"}, nil)

		_, err := svc.Create(ctx, "u-1", "Q1", &parentID)

		assert.True(t, apperr.IsForbidden(err), "got %v", err)
	})

	t.Run("happy path", func(t *testing.T) {
		svc, m := newCategoryService()

		parentID := "c-parent"
		m.cats.On("FindByID", ctx, parentID).Return(&model.Category{ID: parentID, OwnerID: "u-1"}, nil)
		m.cats.On("NameExists", ctx, "u-1", &parentID, "Q1").Return(false, nil)
		m.cats.On("Create", ctx, mock.MatchedBy(func(c *model.Category) bool {
			return c.Name == "Q1" && c.OwnerID == "u-1" && c.ParentID == &parentID
		})).Return(&model.Category{ID: "c-q1", Name: "Q1"}, nil)

		cat, err := svc.Create(ctx, "u-1", "Q1", &parentID)

		assert.NoError(t, err)
		assert.Equal(t, "c-q1", cat.ID)
		m.cats.AssertExpectations(t)
	})
}

func TestCategoryService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("category with active documents cannot be deleted", func(t *testing.T) {
		svc, m := newCategoryService()

		m.users.On("FindByID", ctx, "u-1").Return(&model.User{ID: "u-1", Role: model.RoleNormal}, nil)
		m.cats.On("FindByID", ctx, "c-1").Return(&model.Category{ID: "c-1", OwnerID: "u-1"}, nil)
		m.docs.On("CountActiveInCategory", ctx, "c-1").Return(2, nil)

		err := svc.Delete(ctx, "u-1", "c-1")

		assert.True(t, apperr.IsConflict(err), "got %v", err)
	})

	t.Run("category with active subcategories cannot be deleted", func(t *testing.T) {
		svc, m := newCategoryService()

		m.users.On("FindByID", ctx, "u-1").Return(&model.User{ID: "u-1", Role: model.RoleNormal}, nil)
		m.cats.On("FindByID", ctx, "c-1").Return(&model.Category{ID: "c-1", OwnerID: "u-1"}, nil)
		m.docs.On("CountActiveInCategory", ctx, "c-1").Return(0, nil)
		m.cats.On("CountActiveChildren", ctx, "c-1").Return(1, nil)

		err := svc.Delete(ctx, "u-1", "c-1")

		assert.True(t, apperr.IsConflict(err), "got %v", err)
	})

	t.Run("non-owner needs an elevated role", func(t *testing.T) {
		svc, m := newCategoryService()

		m.users.On("FindByID", ctx, "u-2").Return(&model.User{ID: "u-2", Role: model.RoleNormal}, nil)
		m.cats.On("FindByID", ctx, "c-1").Return(&model.Category{ID: "c-1", OwnerID: "u-1"}, nil)

		err := svc.Delete(ctx, "u-2", "c-1")

		assert.True(t, apperr.IsForbidden(err), "got %v", err)
	})

	t.Run("empty category is deleted", func(t *testing.T) {
		svc, m := newCategoryService()

		m.users.On("FindByID", ctx, "u-1").Return(&model.User{ID: "u-1", Role: model.RoleNormal}, nil)
		m.cats.On("FindByID", ctx, "c-1").Return(&model.Category{ID: "c-1", OwnerID: "u-1"}, nil)
		m.docs.On("CountActiveInCategory", ctx, "c-1").Return(0, nil)
		m.cats.On("CountActiveChildren", ctx, "c-1").Return(0, nil)
		m.cats.On("SoftDelete", ctx, "c-1").Return(nil)

		err := svc.Delete(ctx, "u-1", "c-1")

		assert.NoError(t, err)
		m.cats.AssertExpectations(t)
	})

	t.Run("unknown parent on create", func(t *testing.T) {
		svc, m := newCategoryService()

		parentID := "c-missing"
		m.cats.On("FindByID", ctx, parentID).Return(nil, sql.ErrNoRows)

		_, err := svc.Create(ctx, "u-1", "Q1", &parentID)

		assert.True(t, apperr.IsNotFound(err), "got %v", err)
	})
}
