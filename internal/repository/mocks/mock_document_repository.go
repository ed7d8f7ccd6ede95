package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docvault/internal/model"
	"docvault/internal/repository"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByIDForUpdate(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListOwned(ctx context.Context, ownerID string, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	args := m.Called(ctx, ownerID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Document]), args.Error(1)
}

func (m *MockDocumentRepository) ListActiveByCategories(ctx context.Context, ownerID string, categoryIDs []string) ([]model.Document, error) {
	args := m.Called(ctx, ownerID, categoryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentRepository) UpdateContent(ctx context.Context, id, title, content string) error {
	args := m.Called(ctx, id, title, content)
	return args.Error(0)
}

func (m *MockDocumentRepository) SetCategory(ctx context.Context, id string, categoryID *string) error {
	args := m.Called(ctx, id, categoryID)
	return args.Error(0)
}

func (m *MockDocumentRepository) SoftDelete(ctx context.Context, id, reason, deletedBy string) error {
	args := m.Called(ctx, id, reason, deletedBy)
	return args.Error(0)
}

func (m *MockDocumentRepository) Restore(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentRepository) CountActiveInCategory(ctx context.Context, categoryID string) (int, error) {
	args := m.Called(ctx, categoryID)
	return args.Int(0), args.Error(1)
}
