package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docvault/internal/model"
)

type MockUserAdminService struct {
	mock.Mock
}

func (m *MockUserAdminService) SetRole(ctx context.Context, actorID, userID string, role model.Role) error {
	args := m.Called(ctx, actorID, userID, role)
	return args.Error(0)
}

func (m *MockUserAdminService) SetGrants(ctx context.Context, actorID, userID string, grants []string) error {
	args := m.Called(ctx, actorID, userID, grants)
	return args.Error(0)
}
