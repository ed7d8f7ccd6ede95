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

// stubLedger answers RecordEdit with fixed values and records the last patch
// it was handed.
type stubLedger struct {
	VersionLedger
	doc       *model.Document
	version   *model.DocumentVersion
	err       error
	lastPatch model.DocumentPatch
}

func (s *stubLedger) RecordEdit(_ context.Context, _, _ string, patch model.DocumentPatch) (*model.Document, *model.DocumentVersion, error) {
	s.lastPatch = patch
	return s.doc, s.version, s.err
}

type documentMocks struct {
	users *mocks.MockUserRepository
	docs  *mocks.MockDocumentRepository
	cats  *mocks.MockCategoryRepository
}

func newDocumentService(p model.Permission, ledger *stubLedger) (DocumentService, documentMocks) {
	m := documentMocks{
		users: new(mocks.MockUserRepository),
		docs:  new(mocks.MockDocumentRepository),
		cats:  new(mocks.MockCategoryRepository),
	}
	store := repository.Store{
		Users:      m.users,
		Documents:  m.docs,
		Categories: m.cats,
	}
	if ledger == nil {
		ledger = &stubLedger{}
	}
	svc := NewDocumentService(&mocks.StubAtomic{Store: store}, store, stubResolver{p: p}, ledger, zap.NewNop())
	return svc, m
}

func TestDocumentService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("normal user without grant is forbidden", func(t *testing.T) {
		svc, m := newDocumentService(model.PermissionNone, nil)

		m.users.On("FindByID", ctx, "u-1").Return(&model.User{ID: "u-1", Role: model.RoleNormal}, nil)

		_, err := svc.Create(ctx, "u-1", "notes", "body", nil)

		assert.True(t, apperr.IsForbidden(err), "got %v", err)
		m.users.AssertExpectations(t)
	})

	t.Run("create_documents grant is enough", func(t *testing.T) {
		svc, m := newDocumentService(model.PermissionNone, nil)

		m.users.On("FindByID", ctx, "u-1").
			Return(&model.User{ID: "u-1", Role: model.RoleNormal, Grants: []string{model.GrantCreateDocuments}}, nil)
		m.docs.On("Create", ctx, mock.MatchedBy(func(d *model.Document) bool {
			return d.Title == "notes" && d.OwnerID == "u-1" && d.ID != ""
		})).Return(&model.Document{ID: "d-1", Title: "notes", OwnerID: "u-1"}, nil)

		doc, err := svc.Create(ctx, "u-1", "notes", "body", nil)

		assert.NoError(t, err)
		assert.Equal(t, "d-1", doc.ID)
		m.docs.AssertExpectations(t)
	})

	t.Run("empty title is invalid input", func(t *testing.T) {
		svc, _ := newDocumentService(model.PermissionNone, nil)

		_, err := svc.Create(ctx, "u-1", "", "body", nil)

		assert.True(t, apperr.IsInvalidInput(err), "got %v", err)
	})

	t.Run("unknown category", func(t *testing.T) {
		svc, m := newDocumentService(model.PermissionNone, nil)

		catID := "c-missing"
		m.users.On("FindByID", ctx, "u-1").Return(&model.User{ID: "u-1", Role: model.RoleAdmin}, nil)
		m.cats.On("FindByID", ctx, catID).Return(nil, sql.ErrNoRows)

		_, err := svc.Create(ctx, "u-1", "notes", "body", &catID)

		assert.True(t, apperr.IsNotFound(err), "got %v", err)
		m.cats.AssertExpectations(t)
	})
}

func TestDocumentService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("no permission is forbidden", func(t *testing.T) {
		svc, _ := newDocumentService(model.PermissionNone, nil)

		_, err := svc.Get(ctx, "u-1", "d-1")

		assert.True(t, apperr.IsForbidden(err), "got %v", err)
	})

	t.Run("deleted document is invisible to a viewer", func(t *testing.T) {
		svc, m := newDocumentService(model.PermissionView, nil)

		m.docs.On("FindByID", ctx, "d-1").
			Return(&model.Document{ID: "d-1", OwnerID: "u-owner", IsDeleted: true}, nil)

		_, err := svc.Get(ctx, "u-1", "d-1")

		assert.True(t, apperr.IsNotFound(err), "got %v", err)
		m.docs.AssertExpectations(t)
	})

	t.Run("deleted document stays visible to its owner", func(t *testing.T) {
		svc, m := newDocumentService(model.PermissionOwner, nil)

		m.docs.On("FindByID", ctx, "d-1").
			Return(&model.Document{ID: "d-1", OwnerID: "u-owner", IsDeleted: true}, nil)

		doc, err := svc.Get(ctx, "u-owner", "d-1")

		assert.NoError(t, err)
		assert.True(t, doc.IsDeleted)
		m.docs.AssertExpectations(t)
	})
}

func TestDocumentService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("empty patch is invalid input", func(t *testing.T) {
		svc, _ := newDocumentService(model.PermissionOwner, nil)

		_, err := svc.Update(ctx, "u-1", "d-1", model.DocumentPatch{})

		assert.True(t, apperr.IsInvalidInput(err), "got %v", err)
	})

	t.Run("viewer cannot edit", func(t *testing.T) {
		svc, _ := newDocumentService(model.PermissionView, nil)

		_, err := svc.Update(ctx, "u-1", "d-1", model.DocumentPatch{Content: model.Some("x")})

		assert.True(t, apperr.IsForbidden(err), "got %v", err)
	})

	t.Run("editor cannot re-file the document", func(t *testing.T) {
		svc, _ := newDocumentService(model.PermissionEdit, nil)

		cat := "c-2"
		_, err := svc.Update(ctx, "u-1", "d-1", model.DocumentPatch{CategoryID: model.Some(&cat)})

		assert.True(t, apperr.IsForbidden(err), "got %v", err)
	})

	t.Run("edit goes through the ledger", func(t *testing.T) {
		ledger := &stubLedger{doc: &model.Document{ID: "d-1", Content: "new"}}
		svc, _ := newDocumentService(model.PermissionEdit, ledger)

		doc, err := svc.Update(ctx, "u-1", "d-1", model.DocumentPatch{Content: model.Some("new")})

		assert.NoError(t, err)
		assert.Equal(t, "new", doc.Content)
		assert.Equal(t, model.Some("new"), ledger.lastPatch.Content)
	})
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("reason is mandatory", func(t *testing.T) {
		svc, _ := newDocumentService(model.PermissionOwner, nil)

		_, err := svc.Delete(ctx, "u-1", "d-1", "")

		assert.True(t, apperr.IsInvalidInput(err), "got %v", err)
	})

	t.Run("non-owner without elevated role is forbidden", func(t *testing.T) {
		svc, m := newDocumentService(model.PermissionEdit, nil)

		m.users.On("FindByID", ctx, "u-1").Return(&model.User{ID: "u-1", Role: model.RoleNormal}, nil)
		m.docs.On("FindByIDForUpdate", ctx, "d-1").
			Return(&model.Document{ID: "d-1", OwnerID: "u-owner"}, nil)

		_, err := svc.Delete(ctx, "u-1", "d-1", "cleanup")

		assert.True(t, apperr.IsForbidden(err), "got %v", err)
		m.docs.AssertExpectations(t)
	})

	t.Run("admin may delete someone else's document", func(t *testing.T) {
		svc, m := newDocumentService(model.PermissionNone, nil)

		m.users.On("FindByID", ctx, "u-admin").Return(&model.User{ID: "u-admin", Role: model.RoleAdmin}, nil)
		m.docs.On("FindByIDForUpdate", ctx, "d-1").
			Return(&model.Document{ID: "d-1", OwnerID: "u-owner"}, nil)
		m.docs.On("SoftDelete", ctx, "d-1", "policy violation", "u-admin").Return(nil)

		receipt, err := svc.Delete(ctx, "u-admin", "d-1", "policy violation")

		assert.NoError(t, err)
		assert.Equal(t, "u-admin", receipt.DeletedBy)
		assert.Equal(t, "policy violation", receipt.Reason)
		m.docs.AssertExpectations(t)
	})
}

func TestDocumentService_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("normal user cannot restore", func(t *testing.T) {
		svc, m := newDocumentService(model.PermissionOwner, nil)

		m.users.On("FindByID", ctx, "u-1").Return(&model.User{ID: "u-1", Role: model.RoleNormal}, nil)

		_, err := svc.Restore(ctx, "u-1", "d-1")

		assert.True(t, apperr.IsForbidden(err), "got %v", err)
		m.users.AssertExpectations(t)
	})

	t.Run("restoring a live document is a no-op", func(t *testing.T) {
		svc, m := newDocumentService(model.PermissionNone, nil)

		m.users.On("FindByID", ctx, "u-admin").Return(&model.User{ID: "u-admin", Role: model.RoleAdmin}, nil)
		m.docs.On("FindByID", ctx, "d-1").Return(&model.Document{ID: "d-1"}, nil)

		doc, err := svc.Restore(ctx, "u-admin", "d-1")

		assert.NoError(t, err)
		assert.False(t, doc.IsDeleted)
		m.docs.AssertNotCalled(t, "Restore", mock.Anything, mock.Anything)
	})

	t.Run("restore clears the deletion markers", func(t *testing.T) {
		svc, m := newDocumentService(model.PermissionNone, nil)

		reason := "cleanup"
		m.users.On("FindByID", ctx, "u-admin").Return(&model.User{ID: "u-admin", Role: model.RoleAdmin}, nil)
		m.docs.On("FindByID", ctx, "d-1").
			Return(&model.Document{ID: "d-1", IsDeleted: true, DeletionReason: &reason}, nil)
		m.docs.On("Restore", ctx, "d-1").Return(nil)

		doc, err := svc.Restore(ctx, "u-admin", "d-1")

		assert.NoError(t, err)
		assert.False(t, doc.IsDeleted)
		assert.Nil(t, doc.DeletionReason)
		m.docs.AssertExpectations(t)
	})
}
