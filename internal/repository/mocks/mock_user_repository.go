package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docvault/internal/model"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ListByArea(ctx context.Context, areaID string) ([]model.User, error) {
	args := m.Called(ctx, areaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id string, role model.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateGrants(ctx context.Context, id string, grants []string) error {
	args := m.Called(ctx, id, grants)
	return args.Error(0)
}

func (m *MockUserRepository) SetArea(ctx context.Context, id string, areaID *string, isLeader bool) error {
	args := m.Called(ctx, id, areaID, isLeader)
	return args.Error(0)
}

func (m *MockUserRepository) OrphanAreaMembers(ctx context.Context, areaID string) (int64, error) {
	args := m.Called(ctx, areaID)
	return args.Get(0).(int64), args.Error(1)
}
