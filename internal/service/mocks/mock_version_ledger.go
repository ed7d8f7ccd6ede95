package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docvault/internal/model"
)

type MockVersionLedger struct {
	mock.Mock
}

func (m *MockVersionLedger) RecordEdit(ctx context.Context, documentID, editorID string, patch model.DocumentPatch) (*model.Document, *model.DocumentVersion, error) {
	args := m.Called(ctx, documentID, editorID, patch)
	var doc *model.Document
	if args.Get(0) != nil {
		doc = args.Get(0).(*model.Document)
	}
	var v *model.DocumentVersion
	if args.Get(1) != nil {
		v = args.Get(1).(*model.DocumentVersion)
	}
	return doc, v, args.Error(2)
}

func (m *MockVersionLedger) RestoreToVersion(ctx context.Context, documentID string, version int, restorerID string) (*model.Document, error) {
	args := m.Called(ctx, documentID, version, restorerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockVersionLedger) ListVersions(ctx context.Context, userID, documentID string) ([]model.DocumentVersion, error) {
	args := m.Called(ctx, userID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentVersion), args.Error(1)
}

func (m *MockVersionLedger) GetVersion(ctx context.Context, userID, documentID string, version int) (*model.DocumentVersion, error) {
	args := m.Called(ctx, userID, documentID, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentVersion), args.Error(1)
}

func (m *MockVersionLedger) UpdateChangeNote(ctx context.Context, userID, documentID string, version int, note string) error {
	args := m.Called(ctx, userID, documentID, version, note)
	return args.Error(0)
}
