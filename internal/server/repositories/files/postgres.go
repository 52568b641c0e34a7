package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/vaultshare/internal/common"
	"github.com/dmitrijs2005/vaultshare/internal/dbx"
	"github.com/dmitrijs2005/vaultshare/internal/server/models"
)

// PostgresRepository implements file metadata storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateOrGet(ctx context.Context, file *models.File) (*models.File, bool, error) {
	query := `INSERT INTO files (content_hash, size_bytes, storage_path)
		VALUES ($1, $2, $3)
		ON CONFLICT (content_hash) DO NOTHING
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, file.ContentHash, file.SizeBytes, file.StoragePath).
		Scan(&file.ID, &file.CreatedAt)
	switch {
	case err == nil:
		return file, true, nil
	case errors.Is(err, sql.ErrNoRows):
		existing, err := r.GetByContentHash(ctx, file.ContentHash)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	default:
		return nil, false, fmt.Errorf("db error: %w", err)
	}
}

const selectFile = `SELECT id, content_hash, size_bytes, storage_path, created_at FROM files`

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.File, error) {
	f := &models.File{}
	if err := row.Scan(&f.ID, &f.ContentHash, &f.SizeBytes, &f.StoragePath, &f.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select file: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) GetByContentHash(ctx context.Context, hash string) (*models.File, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectFile+` WHERE content_hash = $1`, hash))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectFile+` WHERE id = $1`, id))
}
