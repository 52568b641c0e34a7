package sharedaccess

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

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

func (r *PostgresRepository) Upsert(ctx context.Context, userID, shareID string, at time.Time) error {
	query := `INSERT INTO shared_file_access (user_id, share_id, first_accessed_at, last_accessed_at, access_count)
		VALUES ($1, $2, $3, $3, 1)
		ON CONFLICT (user_id, share_id) DO UPDATE
		SET last_accessed_at = EXCLUDED.last_accessed_at,
			access_count = shared_file_access.access_count + 1`

	if _, err := r.db.ExecContext(ctx, query, userID, shareID, at.UTC()); err != nil {
		if dbx.IsForeignKeyViolation(err, "") {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID string, now time.Time) ([]*models.SharedFile, error) {
	query := `SELECT a.user_id, a.share_id, a.first_accessed_at, a.last_accessed_at, a.access_count,
			s.user_file_id, s.owner_id, s.share_token, s.max_downloads, s.download_count,
			s.expires_at, s.allowed_usernames, s.created_at,
			o.username, uf.filename, uf.mime_type, f.size_bytes
		FROM shared_file_access a
		JOIN file_shares s ON s.id = a.share_id
		JOIN users o ON o.id = s.owner_id
		JOIN user_files uf ON uf.id = s.user_file_id
		JOIN files f ON f.id = uf.file_id
		WHERE a.user_id = $1 AND (s.expires_at IS NULL OR s.expires_at > $2)
		ORDER BY a.last_accessed_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to select shared files: %w", err)
	}
	defer rows.Close()

	var result []*models.SharedFile
	for rows.Next() {
		sf, err := scanSharedFile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, sf)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanSharedFile(rows *sql.Rows) (*models.SharedFile, error) {
	var (
		sf      models.SharedFile
		sh      models.FileShare
		maxDl   sql.NullInt64
		expires sql.NullTime
		allowed []byte
	)
	err := rows.Scan(&sf.Access.UserID, &sf.Access.ShareID, &sf.Access.FirstAccessedAt, &sf.Access.LastAccessedAt,
		&sf.Access.AccessCount, &sh.UserFileID, &sh.OwnerID, &sh.ShareToken, &maxDl, &sh.DownloadCount,
		&expires, &allowed, &sh.CreatedAt, &sf.OwnerUserName, &sf.Filename, &sf.MimeType, &sf.SizeBytes)
	if err != nil {
		return nil, err
	}
	sh.ID = sf.Access.ShareID
	if maxDl.Valid {
		n := int(maxDl.Int64)
		sh.MaxDownloads = &n
	}
	if expires.Valid {
		t := expires.Time
		sh.ExpiresAt = &t
	}
	if allowed != nil {
		if err := json.Unmarshal(allowed, &sh.AllowedUsernames); err != nil {
			return nil, fmt.Errorf("decode allowlist: %w", err)
		}
	}
	sf.Share = &sh
	return &sf, nil
}
