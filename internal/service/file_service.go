package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"finbook/internal/config"
	"finbook/internal/domain"
	"finbook/internal/port"
)

// UploadFileInput carries an uploaded document into storage.
type UploadFileInput struct {
	FolderID    *uuid.UUID
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// FolderInput is the DTO for creating folders.
type FolderInput struct {
	Name     string     `json:"name" binding:"required"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// FileService manages stored documents and their folders.
type FileService interface {
	CreateFolder(ctx context.Context, businessID, userID uuid.UUID, input FolderInput) (*domain.Folder, error)
	ListFolders(ctx context.Context, businessID uuid.UUID) ([]domain.Folder, error)
	// DeleteFolder refuses to delete folders that still hold files.
	DeleteFolder(ctx context.Context, businessID, folderID uuid.UUID) error

	Upload(ctx context.Context, businessID, userID uuid.UUID, input UploadFileInput) (*domain.FileMeta, error)
	Get(ctx context.Context, businessID, fileID uuid.UUID) (*domain.FileMeta, error)
	List(ctx context.Context, businessID uuid.UUID, folderID *uuid.UUID, offset, limit int) ([]domain.FileMeta, int, error)
	// DownloadURL returns a time-limited presigned URL for the file.
	DownloadURL(ctx context.Context, businessID, fileID uuid.UUID) (string, error)
	Delete(ctx context.Context, businessID, fileID uuid.UUID) error
}

type fileService struct {
	folderRepo port.FolderRepository
	fileRepo   port.FileMetaRepository
	storage    port.ObjectStorage
	cfg        config.S3Config
}

// NewFileService creates a new FileService implementation.
func NewFileService(
	folderRepo port.FolderRepository,
	fileRepo port.FileMetaRepository,
	storage port.ObjectStorage,
	cfg config.S3Config,
) FileService {
	return &fileService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		storage:    storage,
		cfg:        cfg,
	}
}

func (s *fileService) CreateFolder(ctx context.Context, businessID, userID uuid.UUID, input FolderInput) (*domain.Folder, error) {
	if input.ParentID != nil {
		if _, err := s.folderRepo.GetByID(ctx, businessID, *input.ParentID); err != nil {
			return nil, err
		}
	}

	folder := &domain.Folder{
		ID:         uuid.New(),
		BusinessID: businessID,
		Name:       input.Name,
		ParentID:   input.ParentID,
		CreatedBy:  userID,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

func (s *fileService) ListFolders(ctx context.Context, businessID uuid.UUID) ([]domain.Folder, error) {
	return s.folderRepo.ListByBusiness(ctx, businessID)
}

func (s *fileService) DeleteFolder(ctx context.Context, businessID, folderID uuid.UUID) error {
	count, err := s.folderRepo.CountFiles(ctx, businessID, folderID)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrFolderNotEmpty
	}
	return s.folderRepo.Delete(ctx, businessID, folderID)
}

func (s *fileService) Upload(ctx context.Context, businessID, userID uuid.UUID, input UploadFileInput) (*domain.FileMeta, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(input.FileName)), ".")
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	if input.Size > s.cfg.MaxFileSizeMB*1024*1024 {
		return nil, domain.ErrFileTooLarge
	}
	if input.FolderID != nil {
		if _, err := s.folderRepo.GetByID(ctx, businessID, *input.FolderID); err != nil {
			return nil, err
		}
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = domain.AllowedFileTypes[fileType]
	}

	id := uuid.New()
	key := fmt.Sprintf("files/%s/%s.%s", businessID, id, ext)
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        input.Body,
		ContentType: contentType,
		Size:        input.Size,
	}); err != nil {
		return nil, fmt.Errorf("file.Upload: %w", err)
	}

	meta := &domain.FileMeta{
		ID:           id,
		BusinessID:   businessID,
		FolderID:     input.FolderID,
		UploadedBy:   userID,
		FileName:     fmt.Sprintf("%s.%s", id, ext),
		OriginalName: input.FileName,
		FileType:     fileType,
		FileSize:     input.Size,
		S3Bucket:     s.cfg.Bucket,
		S3Key:        key,
		ContentType:  contentType,
		Status:       domain.FileStatusUploaded,
	}
	if err := s.fileRepo.Create(ctx, meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func (s *fileService) Get(ctx context.Context, businessID, fileID uuid.UUID) (*domain.FileMeta, error) {
	return s.fileRepo.GetByID(ctx, businessID, fileID)
}

func (s *fileService) List(ctx context.Context, businessID uuid.UUID, folderID *uuid.UUID, offset, limit int) ([]domain.FileMeta, int, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.fileRepo.ListByBusiness(ctx, businessID, folderID, offset, limit)
}

func (s *fileService) DownloadURL(ctx context.Context, businessID, fileID uuid.UUID) (string, error) {
	meta, err := s.fileRepo.GetByID(ctx, businessID, fileID)
	if err != nil {
		return "", err
	}
	if meta.Status != domain.FileStatusUploaded {
		return "", domain.ErrNotFound
	}
	return s.storage.GetPresignedURL(ctx, meta.S3Bucket, meta.S3Key, s.cfg.PresignExpiry)
}

func (s *fileService) Delete(ctx context.Context, businessID, fileID uuid.UUID) error {
	meta, err := s.fileRepo.GetByID(ctx, businessID, fileID)
	if err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, meta.S3Bucket, meta.S3Key); err != nil {
		return fmt.Errorf("file.Delete: %w", err)
	}
	return s.fileRepo.UpdateStatus(ctx, businessID, fileID, domain.FileStatusDeleted)
}
