package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docvault/internal/model"
	"docvault/internal/service"
)

type MockSharingService struct {
	mock.Mock
}

func (m *MockSharingService) ShareCategoryWithAreas(ctx context.Context, actorID, categoryID string, areaIDs []string, p model.Permission) (*service.PropagationResult, error) {
	args := m.Called(ctx, actorID, categoryID, areaIDs, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PropagationResult), args.Error(1)
}

func (m *MockSharingService) ShareCategoryWithUsers(ctx context.Context, actorID, categoryID string, emails []string, p model.Permission) (*service.PropagationResult, error) {
	args := m.Called(ctx, actorID, categoryID, emails, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PropagationResult), args.Error(1)
}

func (m *MockSharingService) ShareDocumentWithUsers(ctx context.Context, actorID, documentID string, emails []string, p model.Permission) (*service.PropagationResult, error) {
	args := m.Called(ctx, actorID, documentID, emails, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PropagationResult), args.Error(1)
}

func (m *MockSharingService) ShareDocumentWithArea(ctx context.Context, actorID, documentID string, areaID *string, p model.Permission) (*service.PropagationResult, error) {
	args := m.Called(ctx, actorID, documentID, areaID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PropagationResult), args.Error(1)
}

func (m *MockSharingService) RevokeDocumentShare(ctx context.Context, actorID, documentID, userID string) error {
	args := m.Called(ctx, actorID, documentID, userID)
	return args.Error(0)
}

func (m *MockSharingService) ListDocumentShares(ctx context.Context, actorID, documentID string) ([]model.DocumentShare, error) {
	args := m.Called(ctx, actorID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentShare), args.Error(1)
}

func (m *MockSharingService) ListSharedCategories(ctx context.Context, userID string) ([]model.CategoryShare, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CategoryShare), args.Error(1)
}
