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

type folderRepo struct {
	db *sqlx.DB
}

// NewFolderRepo creates a new PostgreSQL-backed FolderRepository.
func NewFolderRepo(db *sqlx.DB) port.FolderRepository {
	return &folderRepo{db: db}
}

func (r *folderRepo) Create(ctx context.Context, folder *domain.Folder) error {
	now := time.Now().UTC()
	folder.CreatedAt = now
	folder.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO folders (id, business_id, name, parent_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		folder.ID, folder.BusinessID, folder.Name, folder.ParentID,
		folder.CreatedBy, folder.CreatedAt, folder.UpdatedAt)
	if err != nil {
		return fmt.Errorf("folderRepo.Create: %w", err)
	}
	return nil
}

func (r *folderRepo) GetByID(ctx context.Context, businessID, folderID uuid.UUID) (*domain.Folder, error) {
	var folder domain.Folder
	err := r.db.GetContext(ctx, &folder,
		"SELECT * FROM folders WHERE id = $1 AND business_id = $2",
		folderID, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("folderRepo.GetByID: %w", err)
	}
	return &folder, nil
}

func (r *folderRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]domain.Folder, error) {
	var folders []domain.Folder
	err := r.db.SelectContext(ctx, &folders, `
		SELECT * FROM folders
		WHERE business_id = $1
		ORDER BY name`, businessID)
	if err != nil {
		return nil, fmt.Errorf("folderRepo.ListByBusiness: %w", err)
	}
	return folders, nil
}

func (r *folderRepo) CountFiles(ctx context.Context, businessID, folderID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM files WHERE business_id = $1 AND folder_id = $2",
		businessID, folderID)
	if err != nil {
		return 0, fmt.Errorf("folderRepo.CountFiles: %w", err)
	}
	return count, nil
}

func (r *folderRepo) Delete(ctx context.Context, businessID, folderID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM folders WHERE id = $1 AND business_id = $2",
		folderID, businessID)
	if err != nil {
		return fmt.Errorf("folderRepo.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
