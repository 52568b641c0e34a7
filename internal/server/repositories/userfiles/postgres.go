package userfiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/vaultshare/internal/common"
	"github.com/dmitrijs2005/vaultshare/internal/dbx"
	"github.com/dmitrijs2005/vaultshare/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, uf *models.UserFile) (*models.UserFile, error) {
	query := `INSERT INTO user_files (user_id, file_id, filename, mime_type, encryption_key, folder_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, uf.UserID, uf.FileID, uf.Filename, uf.MimeType, uf.EncryptionKey, uf.FolderID).
		Scan(&uf.ID, &uf.CreatedAt, &uf.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return uf, nil
}

const selectJoined = `SELECT uf.id, uf.user_id, uf.file_id, uf.filename, uf.mime_type, uf.encryption_key,
		uf.folder_id, uf.is_starred, uf.is_trashed, uf.created_at, uf.updated_at,
		f.content_hash, f.size_bytes, f.storage_path, f.created_at
	FROM user_files uf
	JOIN files f ON f.id = uf.file_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanJoined(s scanner) (*models.UserFile, error) {
	uf := &models.UserFile{File: &models.File{}}
	var folder sql.NullString
	err := s.Scan(&uf.ID, &uf.UserID, &uf.FileID, &uf.Filename, &uf.MimeType, &uf.EncryptionKey,
		&folder, &uf.IsStarred, &uf.IsTrashed, &uf.CreatedAt, &uf.UpdatedAt,
		&uf.File.ContentHash, &uf.File.SizeBytes, &uf.File.StoragePath, &uf.File.CreatedAt)
	if err != nil {
		return nil, err
	}
	if folder.Valid {
		uf.FolderID = &folder.String
	}
	uf.File.ID = uf.FileID
	return uf, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.UserFile, error) {
	uf, err := scanJoined(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select user file: %w", err)
	}
	return uf, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.UserFile, error) {
	return r.getOne(ctx, selectJoined+` WHERE uf.id = $1`, id)
}

func (r *PostgresRepository) FindByFileID(ctx context.Context, fileID string) (*models.UserFile, error) {
	return r.getOne(ctx, selectJoined+` WHERE uf.file_id = $1 ORDER BY uf.created_at LIMIT 1`, fileID)
}

func (r *PostgresRepository) FindOwned(ctx context.Context, userID, fileID, filename string) (*models.UserFile, error) {
	return r.getOne(ctx, selectJoined+` WHERE uf.user_id = $1 AND uf.file_id = $2 AND uf.filename = $3
		AND NOT uf.is_trashed ORDER BY uf.created_at LIMIT 1`, userID, fileID, filename)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.UserFile, error) {
	rows, err := r.db.QueryContext(ctx, selectJoined+` WHERE uf.user_id = $1 AND NOT uf.is_trashed ORDER BY uf.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select user files: %w", err)
	}
	defer rows.Close()

	var result []*models.UserFile
	for rows.Next() {
		uf, err := scanJoined(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, uf)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_files WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
