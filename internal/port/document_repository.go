package port

import (
	"context"

	"github.com/google/uuid"

	"finbook/internal/domain"
)

// FolderRepository defines the contract for document folder persistence.
type FolderRepository interface {
	Create(ctx context.Context, folder *domain.Folder) error
	GetByID(ctx context.Context, businessID, folderID uuid.UUID) (*domain.Folder, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]domain.Folder, error)
	CountFiles(ctx context.Context, businessID, folderID uuid.UUID) (int, error)
	Delete(ctx context.Context, businessID, folderID uuid.UUID) error
}

// ClientRepository defines the contract for client (customer) persistence.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, businessID, clientID uuid.UUID) (*domain.Client, error)
	GetByName(ctx context.Context, businessID uuid.UUID, name string) (*domain.Client, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.Client, int, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, businessID, clientID uuid.UUID) error
}

// FileMetaRepository defines the contract for file metadata persistence.
type FileMetaRepository interface {
	Create(ctx context.Context, meta *domain.FileMeta) error
	GetByID(ctx context.Context, businessID, fileID uuid.UUID) (*domain.FileMeta, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, folderID *uuid.UUID, offset, limit int) ([]domain.FileMeta, int, error)
	UpdateStatus(ctx context.Context, businessID, fileID uuid.UUID, status domain.FileStatus) error
	Delete(ctx context.Context, businessID, fileID uuid.UUID) error
}
