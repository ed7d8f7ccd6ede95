package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docvault/internal/model"
)

type MockShareRepository struct {
	mock.Mock
}

func (m *MockShareRepository) UpsertDocumentShare(ctx context.Context, documentID, userID string, p model.Permission) (*model.DocumentShare, error) {
	args := m.Called(ctx, documentID, userID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentShare), args.Error(1)
}

func (m *MockShareRepository) UpsertAreaDocumentShare(ctx context.Context, documentID string, areaID *string, p model.Permission) (*model.AreaDocumentShare, error) {
	args := m.Called(ctx, documentID, areaID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AreaDocumentShare), args.Error(1)
}

func (m *MockShareRepository) UpsertCategoryShare(ctx context.Context, categoryID, userID string, p model.Permission) (*model.CategoryShare, error) {
	args := m.Called(ctx, categoryID, userID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CategoryShare), args.Error(1)
}

func (m *MockShareRepository) FindDocumentShare(ctx context.Context, documentID, userID string) (*model.DocumentShare, error) {
	args := m.Called(ctx, documentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentShare), args.Error(1)
}

func (m *MockShareRepository) FindAreaDocumentShare(ctx context.Context, documentID, areaID string) (*model.AreaDocumentShare, error) {
	args := m.Called(ctx, documentID, areaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AreaDocumentShare), args.Error(1)
}

func (m *MockShareRepository) ListDocumentShares(ctx context.Context, documentID string) ([]model.DocumentShare, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentShare), args.Error(1)
}

func (m *MockShareRepository) ListCategorySharesForUser(ctx context.Context, userID string) ([]model.CategoryShare, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CategoryShare), args.Error(1)
}

func (m *MockShareRepository) DeleteDocumentShare(ctx context.Context, documentID, userID string) error {
	args := m.Called(ctx, documentID, userID)
	return args.Error(0)
}
