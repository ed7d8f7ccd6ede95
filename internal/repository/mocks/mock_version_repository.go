package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docvault/internal/model"
)

type MockVersionRepository struct {
	mock.Mock
}

func (m *MockVersionRepository) Insert(ctx context.Context, v *model.DocumentVersion) (*model.DocumentVersion, error) {
	args := m.Called(ctx, v)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentVersion), args.Error(1)
}

func (m *MockVersionRepository) FindByDocumentAndVersion(ctx context.Context, documentID string, version int) (*model.DocumentVersion, error) {
	args := m.Called(ctx, documentID, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentVersion), args.Error(1)
}

func (m *MockVersionRepository) ListByDocument(ctx context.Context, documentID string) ([]model.DocumentVersion, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentVersion), args.Error(1)
}

func (m *MockVersionRepository) MaxVersion(ctx context.Context, documentID string) (int, error) {
	args := m.Called(ctx, documentID)
	return args.Int(0), args.Error(1)
}

func (m *MockVersionRepository) UpdateChangeNote(ctx context.Context, documentID string, version int, note string) error {
	args := m.Called(ctx, documentID, version, note)
	return args.Error(0)
}
