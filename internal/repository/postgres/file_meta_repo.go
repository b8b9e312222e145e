package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"finbook/internal/domain"
	"finbook/internal/port"
)

type fileMetaRepo struct {
	db *sqlx.DB
}

// NewFileMetaRepo creates a new PostgreSQL-backed FileMetaRepository.
func NewFileMetaRepo(db *sqlx.DB) port.FileMetaRepository {
	return &fileMetaRepo{db: db}
}

func (r *fileMetaRepo) Create(ctx context.Context, meta *domain.FileMeta) error {
	now := time.Now().UTC()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	query := `INSERT INTO files (
		id, business_id, folder_id, uploaded_by, file_name, original_name,
		file_type, file_size, s3_bucket, s3_key, content_type, status,
		created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.ExecContext(ctx, query,
		meta.ID, meta.BusinessID, meta.FolderID, meta.UploadedBy,
		meta.FileName, meta.OriginalName, meta.FileType, meta.FileSize,
		meta.S3Bucket, meta.S3Key, meta.ContentType, meta.Status,
		meta.CreatedAt, meta.UpdatedAt)
	if err != nil {
		return fmt.Errorf("fileMetaRepo.Create: %w", err)
	}
	return nil
}

func (r *fileMetaRepo) GetByID(ctx context.Context, businessID, fileID uuid.UUID) (*domain.FileMeta, error) {
	var meta domain.FileMeta
	err := r.db.GetContext(ctx, &meta,
		"SELECT * FROM files WHERE id = $1 AND business_id = $2",
		fileID, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("fileMetaRepo.GetByID: %w", err)
	}
	return &meta, nil
}

func (r *fileMetaRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID, folderID *uuid.UUID, offset, limit int) ([]domain.FileMeta, int, error) {
	where := "WHERE business_id = $1"
	args := []interface{}{businessID}
	if folderID != nil {
		args = append(args, *folderID)
		where += fmt.Sprintf(" AND folder_id = $%d", len(args))
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM files "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("fileMetaRepo.ListByBusiness count: %w", err)
	}

	args = append(args, offset, limit)
	query := fmt.Sprintf(`
		SELECT * FROM files %s
		ORDER BY created_at DESC
		OFFSET $%d LIMIT $%d`, where, len(args)-1, len(args))

	var files []domain.FileMeta
	if err := r.db.SelectContext(ctx, &files, query, args...); err != nil {
		return nil, 0, fmt.Errorf("fileMetaRepo.ListByBusiness: %w", err)
	}
	return files, total, nil
}

func (r *fileMetaRepo) UpdateStatus(ctx context.Context, businessID, fileID uuid.UUID, status domain.FileStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE files SET status = $3, updated_at = $4
		WHERE id = $1 AND business_id = $2`,
		fileID, businessID, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("fileMetaRepo.UpdateStatus: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *fileMetaRepo) Delete(ctx context.Context, businessID, fileID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM files WHERE id = $1 AND business_id = $2",
		fileID, businessID)
	if err != nil {
		return fmt.Errorf("fileMetaRepo.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
