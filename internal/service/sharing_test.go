package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"docvault/internal/apperr"
	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/repository/mocks"
)

type sharingMocks struct {
	users  *mocks.MockUserRepository
	areas  *mocks.MockAreaRepository
	docs   *mocks.MockDocumentRepository
	cats   *mocks.MockCategoryRepository
	shares *mocks.MockShareRepository
}

func newSharingService() (SharingService, sharingMocks) {
	m := sharingMocks{
		users:  new(mocks.MockUserRepository),
		areas:  new(mocks.MockAreaRepository),
		docs:   new(mocks.MockDocumentRepository),
		cats:   new(mocks.MockCategoryRepository),
		shares: new(mocks.MockShareRepository),
	}
	store := repository.Store{
		Users:      m.users,
		Areas:      m.areas,
		Documents:  m.docs,
		Categories: m.cats,
		Shares:     m.shares,
	}
	svc := NewSharingService(&mocks.StubAtomic{Store: store}, store, zap.NewNop())
	return svc, m
}

func (m sharingMocks) assertExpectations(t *testing.T) {
	t.Helper()
	m.users.AssertExpectations(t)
	m.areas.AssertExpectations(t)
	m.docs.AssertExpectations(t)
	m.cats.AssertExpectations(t)
	m.shares.AssertExpectations(t)
}

func TestSharingService_ShareCategoryWithUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("fans out over the owned subtree and skips unknown emails", func(t *testing.T) {
		svc, m := newSharingService()

		reports := &model.Category{ID: "c-reports", Name: "Reports", OwnerID: "u-owner"}
		q1 := model.Category{ID: "c-q1", Name: "Q1", OwnerID: "u-owner", ParentID: &reports.ID}

		m.cats.On("FindByID", ctx, "c-reports").Return(reports, nil)
		m.cats.On("ListChildren", ctx, "c-reports").Return([]model.Category{q1}, nil)
		m.cats.On("ListChildren", ctx, "c-q1").Return([]model.Category{}, nil)
		m.docs.On("ListActiveByCategories", ctx, "u-owner", []string{"c-reports", "c-q1"}).
			Return([]model.Document{
				{ID: "d-1", OwnerID: "u-owner", CategoryID: &reports.ID},
				{ID: "d-2", OwnerID: "u-owner", CategoryID: &q1.ID},
			}, nil)

		m.users.On("FindByEmail", ctx, "bob@corp.test").Return(&model.User{ID: "u-bob"}, nil)
		m.users.On("FindByEmail", ctx, "ghost@corp.test").Return(nil, sql.ErrNoRows)
		m.users.On("FindByEmail", ctx, "owner@corp.test").Return(&model.User{ID: "u-owner"}, nil)

		m.shares.On("UpsertDocumentShare", ctx, "d-1", "u-bob", model.PermissionView).Return(&model.DocumentShare{}, nil)
		m.shares.On("UpsertDocumentShare", ctx, "d-2", "u-bob", model.PermissionView).Return(&model.DocumentShare{}, nil)
		m.shares.On("UpsertCategoryShare", ctx, "c-reports", "u-bob", model.PermissionView).Return(&model.CategoryShare{}, nil)
		m.shares.On("UpsertCategoryShare", ctx, "c-q1", "u-bob", model.PermissionView).Return(&model.CategoryShare{}, nil)

		res, err := svc.ShareCategoryWithUsers(ctx, "u-owner", "c-reports",
			[]string{"bob@corp.test", "ghost@corp.test", "owner@corp.test"}, model.PermissionView)

		assert.NoError(t, err)
		assert.Equal(t, 2, res.SharedDocumentCount)
		assert.Equal(t, 2, res.SharedCategoryCount)
		assert.Equal(t, []SkippedTarget{
			{Email: "ghost@corp.test", Reason: "unknown email"},
			{Email: "owner@corp.test", Reason: "cannot share with yourself"},
		}, res.Skipped)
		assert.Equal(t, []string{"d-1", "d-2"}, res.AffectedDocumentIDs)
		m.assertExpectations(t)
	})

	t.Run("all recipients skipped leaves no affected documents", func(t *testing.T) {
		svc, m := newSharingService()

		m.cats.On("FindByID", ctx, "c-1").Return(&model.Category{ID: "c-1", OwnerID: "u-owner"}, nil)
		m.cats.On("ListChildren", ctx, "c-1").Return([]model.Category{}, nil)
		m.docs.On("ListActiveByCategories", ctx, "u-owner", []string{"c-1"}).
			Return([]model.Document{{ID: "d-1", OwnerID: "u-owner"}}, nil)
		m.users.On("FindByEmail", ctx, "ghost@corp.test").Return(nil, sql.ErrNoRows)

		res, err := svc.ShareCategoryWithUsers(ctx, "u-owner", "c-1", []string{"ghost@corp.test"}, model.PermissionView)

		assert.NoError(t, err)
		assert.Equal(t, 0, res.SharedDocumentCount)
		assert.Empty(t, res.AffectedDocumentIDs)
		m.shares.AssertNotCalled(t, "UpsertDocumentShare")
		m.assertExpectations(t)
	})

	t.Run("cycle in parent links cannot loop the traversal", func(t *testing.T) {
		svc, m := newSharingService()

		reports := &model.Category{ID: "c-reports", OwnerID: "u-owner"}
		q1 := model.Category{ID: "c-q1", OwnerID: "u-owner", ParentID: &reports.ID}

		m.cats.On("FindByID", ctx, "c-reports").Return(reports, nil)
		m.cats.On("ListChildren", ctx, "c-reports").Return([]model.Category{q1}, nil)
		// corrupt link: the child claims the root as its own child
		m.cats.On("ListChildren", ctx, "c-q1").Return([]model.Category{*reports}, nil)
		m.docs.On("ListActiveByCategories", ctx, "u-owner", []string{"c-reports", "c-q1"}).
			Return([]model.Document{{ID: "d-1", OwnerID: "u-owner"}}, nil)
		m.users.On("FindByEmail", ctx, "bob@corp.test").Return(&model.User{ID: "u-bob"}, nil)
		m.shares.On("UpsertDocumentShare", ctx, "d-1", "u-bob", model.PermissionEdit).Return(&model.DocumentShare{}, nil)
		m.shares.On("UpsertCategoryShare", ctx, "c-reports", "u-bob", model.PermissionEdit).Return(&model.CategoryShare{}, nil)
		m.shares.On("UpsertCategoryShare", ctx, "c-q1", "u-bob", model.PermissionEdit).Return(&model.CategoryShare{}, nil)

		res, err := svc.ShareCategoryWithUsers(ctx, "u-owner", "c-reports", []string{"bob@corp.test"}, model.PermissionEdit)

		assert.NoError(t, err)
		assert.Equal(t, 2, res.SharedCategoryCount)
		m.assertExpectations(t)
	})

	t.Run("foreign subcategories are not expanded", func(t *testing.T) {
		svc, m := newSharingService()

		root := &model.Category{ID: "c-root", OwnerID: "u-owner"}
		foreign := model.Category{ID: "c-foreign", OwnerID: "u-other", ParentID: &root.ID}

		m.cats.On("FindByID", ctx, "c-root").Return(root, nil)
		m.cats.On("ListChildren", ctx, "c-root").Return([]model.Category{foreign}, nil)
		m.docs.On("ListActiveByCategories", ctx, "u-owner", []string{"c-root"}).
			Return([]model.Document{{ID: "d-1", OwnerID: "u-owner"}}, nil)
		m.users.On("FindByEmail", ctx, "bob@corp.test").Return(&model.User{ID: "u-bob"}, nil)
		m.shares.On("UpsertDocumentShare", ctx, "d-1", "u-bob", model.PermissionView).Return(&model.DocumentShare{}, nil)
		m.shares.On("UpsertCategoryShare", ctx, "c-root", "u-bob", model.PermissionView).Return(&model.CategoryShare{}, nil)

		res, err := svc.ShareCategoryWithUsers(ctx, "u-owner", "c-root", []string{"bob@corp.test"}, model.PermissionView)

		assert.NoError(t, err)
		assert.Equal(t, 1, res.SharedCategoryCount)
		m.assertExpectations(t)
	})

	t.Run("empty folder is invalid input and nothing is written", func(t *testing.T) {
		svc, m := newSharingService()

		m.cats.On("FindByID", ctx, "c-empty").Return(&model.Category{ID: "c-empty", OwnerID: "u-owner"}, nil)
		m.cats.On("ListChildren", ctx, "c-empty").Return([]model.Category{}, nil)
		m.docs.On("ListActiveByCategories", ctx, "u-owner", []string{"c-empty"}).Return([]model.Document{}, nil)

		_, err := svc.ShareCategoryWithUsers(ctx, "u-owner", "c-empty", []string{"bob@corp.test"}, model.PermissionView)

		assert.True(t, apperr.IsInvalidInput(err), "got %v", err)
		m.shares.AssertNotCalled(t, "UpsertDocumentShare")
		m.shares.AssertNotCalled(t, "UpsertCategoryShare")
		m.assertExpectations(t)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		svc, m := newSharingService()

		m.cats.On("FindByID", ctx, "c-1").Return(&model.Category{ID: "c-1", OwnerID: "u-other"}, nil)

		_, err := svc.ShareCategoryWithUsers(ctx, "u-actor", "c-1", []string{"bob@corp.test"}, model.PermissionView)

		assert.True(t, apperr.IsForbidden(err), "got %v", err)
		m.assertExpectations(t)
	})

	t.Run("empty email list is invalid input", func(t *testing.T) {
		svc, _ := newSharingService()

		_, err := svc.ShareCategoryWithUsers(ctx, "u-owner", "c-1", nil, model.PermissionView)

		assert.True(t, apperr.IsInvalidInput(err), "got %v", err)
	})

	t.Run("owner permission is not grantable", func(t *testing.T) {
		svc, _ := newSharingService()

		_, err := svc.ShareCategoryWithUsers(ctx, "u-owner", "c-1", []string{"bob@corp.test"}, model.PermissionOwner)

		assert.True(t, apperr.IsInvalidInput(err), "got %v", err)
	})
}

func TestSharingService_ShareCategoryWithAreas(t *testing.T) {
	ctx := context.Background()

	t.Run("empty area list means every area", func(t *testing.T) {
		svc, m := newSharingService()

		m.cats.On("FindByID", ctx, "c-1").Return(&model.Category{ID: "c-1", OwnerID: "u-owner"}, nil)
		m.cats.On("ListChildren", ctx, "c-1").Return([]model.Category{}, nil)
		m.docs.On("ListActiveByCategories", ctx, "u-owner", []string{"c-1"}).
			Return([]model.Document{{ID: "d-1", OwnerID: "u-owner"}}, nil)

		m.areas.On("List", ctx).Return([]model.Area{{ID: "a-1"}, {ID: "a-2"}}, nil)
		m.users.On("ListByArea", ctx, "a-1").Return([]model.User{{ID: "u-owner"}, {ID: "u-bob"}}, nil)
		m.users.On("ListByArea", ctx, "a-2").Return([]model.User{{ID: "u-bob"}, {ID: "u-eve"}}, nil)

		a1, a2 := "a-1", "a-2"
		m.shares.On("UpsertAreaDocumentShare", ctx, "d-1", &a1, model.PermissionView).Return(&model.AreaDocumentShare{}, nil)
		m.shares.On("UpsertAreaDocumentShare", ctx, "d-1", &a2, model.PermissionView).Return(&model.AreaDocumentShare{}, nil)
		m.shares.On("UpsertDocumentShare", ctx, "d-1", "u-bob", model.PermissionView).Return(&model.DocumentShare{}, nil)
		m.shares.On("UpsertDocumentShare", ctx, "d-1", "u-eve", model.PermissionView).Return(&model.DocumentShare{}, nil)
		m.shares.On("UpsertCategoryShare", ctx, "c-1", "u-bob", model.PermissionView).Return(&model.CategoryShare{}, nil)
		m.shares.On("UpsertCategoryShare", ctx, "c-1", "u-eve", model.PermissionView).Return(&model.CategoryShare{}, nil)

		res, err := svc.ShareCategoryWithAreas(ctx, "u-owner", "c-1", nil, model.PermissionView)

		assert.NoError(t, err)
		// the owner is excluded, u-bob counted once despite two memberships
		assert.Equal(t, 2, res.SharedDocumentCount)
		assert.Equal(t, 2, res.SharedCategoryCount)
		assert.Equal(t, []string{"d-1"}, res.AffectedDocumentIDs)
		m.assertExpectations(t)
	})

	t.Run("unknown explicit area aborts the batch", func(t *testing.T) {
		svc, m := newSharingService()

		m.cats.On("FindByID", ctx, "c-1").Return(&model.Category{ID: "c-1", OwnerID: "u-owner"}, nil)
		m.cats.On("ListChildren", ctx, "c-1").Return([]model.Category{}, nil)
		m.docs.On("ListActiveByCategories", ctx, "u-owner", []string{"c-1"}).
			Return([]model.Document{{ID: "d-1", OwnerID: "u-owner"}}, nil)
		m.areas.On("FindByID", ctx, "a-missing").Return(nil, sql.ErrNoRows)

		_, err := svc.ShareCategoryWithAreas(ctx, "u-owner", "c-1", []string{"a-missing"}, model.PermissionView)

		assert.True(t, apperr.IsNotFound(err), "got %v", err)
		m.assertExpectations(t)
	})
}

func TestSharingService_ShareDocumentWithArea(t *testing.T) {
	ctx := context.Background()

	t.Run("nil area id is the all-areas grant", func(t *testing.T) {
		svc, m := newSharingService()

		m.docs.On("FindByID", ctx, "d-1").Return(&model.Document{ID: "d-1", OwnerID: "u-owner"}, nil)
		m.shares.On("UpsertAreaDocumentShare", ctx, "d-1", (*string)(nil), model.PermissionView).
			Return(&model.AreaDocumentShare{}, nil)

		res, err := svc.ShareDocumentWithArea(ctx, "u-owner", "d-1", nil, model.PermissionView)

		assert.NoError(t, err)
		assert.Equal(t, 1, res.SharedDocumentCount)
		m.assertExpectations(t)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		svc, m := newSharingService()

		m.docs.On("FindByID", ctx, "d-1").Return(&model.Document{ID: "d-1", OwnerID: "u-other"}, nil)

		_, err := svc.ShareDocumentWithArea(ctx, "u-actor", "d-1", nil, model.PermissionEdit)

		assert.True(t, apperr.IsForbidden(err), "got %v", err)
		m.assertExpectations(t)
	})
}

func TestSharingService_RevokeDocumentShare(t *testing.T) {
	ctx := context.Background()
	svc, m := newSharingService()

	m.docs.On("FindByID", ctx, "d-1").Return(&model.Document{ID: "d-1", OwnerID: "u-owner"}, nil)
	m.shares.On("DeleteDocumentShare", ctx, "d-1", "u-bob").Return(nil)

	err := svc.RevokeDocumentShare(ctx, "u-owner", "d-1", "u-bob")

	assert.NoError(t, err)
	m.assertExpectations(t)
}
