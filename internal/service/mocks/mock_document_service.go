package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docvault/internal/model"
	"docvault/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Create(ctx context.Context, userID, title, content string, categoryID *string) (*model.Document, error) {
	args := m.Called(ctx, userID, title, content, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, userID, documentID string) (*model.Document, error) {
	args := m.Called(ctx, userID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, userID string, limit, offset int) (*service.DocumentListResult, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, userID, documentID string, patch model.DocumentPatch) (*model.Document, error) {
	args := m.Called(ctx, userID, documentID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, userID, documentID, reason string) (*service.DeletionReceipt, error) {
	args := m.Called(ctx, userID, documentID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DeletionReceipt), args.Error(1)
}

func (m *MockDocumentService) Restore(ctx context.Context, restorerID, documentID string) (*model.Document, error) {
	args := m.Called(ctx, restorerID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Resolve(ctx context.Context, userID, documentID string) (model.Permission, error) {
	args := m.Called(ctx, userID, documentID)
	return args.Get(0).(model.Permission), args.Error(1)
}
