package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docvault/internal/model"
)

type MockAreaService struct {
	mock.Mock
}

func (m *MockAreaService) Create(ctx context.Context, actorID, name string) (*model.Area, error) {
	args := m.Called(ctx, actorID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Area), args.Error(1)
}

func (m *MockAreaService) List(ctx context.Context, actorID string) ([]model.Area, error) {
	args := m.Called(ctx, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Area), args.Error(1)
}

func (m *MockAreaService) Delete(ctx context.Context, actorID, areaID string) error {
	args := m.Called(ctx, actorID, areaID)
	return args.Error(0)
}

func (m *MockAreaService) AssignUser(ctx context.Context, actorID, userID string, areaID *string, isLeader bool) error {
	args := m.Called(ctx, actorID, userID, areaID, isLeader)
	return args.Error(0)
}
