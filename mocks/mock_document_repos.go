package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"finbook/internal/domain"
)

// MockFolderRepo is a mock implementation of port.FolderRepository.
type MockFolderRepo struct {
	mock.Mock
}

func (m *MockFolderRepo) Create(ctx context.Context, folder *domain.Folder) error {
	args := m.Called(ctx, folder)
	return args.Error(0)
}

func (m *MockFolderRepo) GetByID(ctx context.Context, businessID, folderID uuid.UUID) (*domain.Folder, error) {
	args := m.Called(ctx, businessID, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Folder), args.Error(1)
}

func (m *MockFolderRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]domain.Folder, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Folder), args.Error(1)
}

func (m *MockFolderRepo) CountFiles(ctx context.Context, businessID, folderID uuid.UUID) (int, error) {
	args := m.Called(ctx, businessID, folderID)
	return args.Int(0), args.Error(1)
}

func (m *MockFolderRepo) Delete(ctx context.Context, businessID, folderID uuid.UUID) error {
	args := m.Called(ctx, businessID, folderID)
	return args.Error(0)
}

// MockFileMetaRepo is a mock implementation of port.FileMetaRepository.
type MockFileMetaRepo struct {
	mock.Mock
}

func (m *MockFileMetaRepo) Create(ctx context.Context, meta *domain.FileMeta) error {
	args := m.Called(ctx, meta)
	return args.Error(0)
}

func (m *MockFileMetaRepo) GetByID(ctx context.Context, businessID, fileID uuid.UUID) (*domain.FileMeta, error) {
	args := m.Called(ctx, businessID, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FileMeta), args.Error(1)
}

func (m *MockFileMetaRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID, folderID *uuid.UUID, offset, limit int) ([]domain.FileMeta, int, error) {
	args := m.Called(ctx, businessID, folderID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.FileMeta), args.Int(1), args.Error(2)
}

func (m *MockFileMetaRepo) UpdateStatus(ctx context.Context, businessID, fileID uuid.UUID, status domain.FileStatus) error {
	args := m.Called(ctx, businessID, fileID, status)
	return args.Error(0)
}

func (m *MockFileMetaRepo) Delete(ctx context.Context, businessID, fileID uuid.UUID) error {
	args := m.Called(ctx, businessID, fileID)
	return args.Error(0)
}
