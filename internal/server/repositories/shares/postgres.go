package shares

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vaultshare/internal/common"
	"github.com/dmitrijs2005/vaultshare/internal/dbx"
	"github.com/dmitrijs2005/vaultshare/internal/server/models"
)

const tokenConstraint = "file_shares_share_token_key"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func encodeAllowlist(names []string) (any, error) {
	if names == nil {
		return nil, nil
	}
	b, err := json.Marshal(names)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func nullableTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC()
}

func (r *PostgresRepository) Create(ctx context.Context, share *models.FileShare) (*models.FileShare, error) {
	allowed, err := encodeAllowlist(share.AllowedUsernames)
	if err != nil {
		return nil, fmt.Errorf("encode allowlist: %w", err)
	}

	query := `INSERT INTO file_shares (user_file_id, owner_id, share_token, wrapped_key, salt,
			max_downloads, download_count, expires_at, allowed_usernames)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8)
		RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query, share.UserFileID, share.OwnerID, share.ShareToken,
		share.WrappedKey, share.Salt, nullableInt(share.MaxDownloads), nullableTime(share.ExpiresAt), allowed).
		Scan(&share.ID, &share.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err, tokenConstraint) {
			return nil, ErrTokenCollision
		}
		if dbx.IsForeignKeyViolation(err, "") {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	share.DownloadCount = 0
	return share, nil
}

const selectShare = `SELECT id, user_file_id, owner_id, share_token, wrapped_key, salt,
		max_downloads, download_count, expires_at, allowed_usernames, created_at
	FROM file_shares`

type scanner interface {
	Scan(dest ...any) error
}

func scanShare(s scanner) (*models.FileShare, error) {
	var (
		sh      models.FileShare
		maxDl   sql.NullInt64
		expires sql.NullTime
		allowed []byte
	)
	err := s.Scan(&sh.ID, &sh.UserFileID, &sh.OwnerID, &sh.ShareToken, &sh.WrappedKey, &sh.Salt,
		&maxDl, &sh.DownloadCount, &expires, &allowed, &sh.CreatedAt)
	if err != nil {
		return nil, err
	}
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
		if sh.AllowedUsernames == nil {
			sh.AllowedUsernames = []string{}
		}
	}
	return &sh, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.FileShare, error) {
	sh, err := scanShare(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select share: %w", err)
	}
	return sh, nil
}

func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*models.FileShare, error) {
	return r.getOne(ctx, selectShare+` WHERE share_token = $1`, token)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.FileShare, error) {
	return r.getOne(ctx, selectShare+` WHERE id = $1`, id)
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.FileShare, error) {
	rows, err := r.db.QueryContext(ctx, selectShare+` WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select shares: %w", err)
	}
	defer rows.Close()

	var result []*models.FileShare
	for rows.Next() {
		sh, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, share *models.FileShare) error {
	allowed, err := encodeAllowlist(share.AllowedUsernames)
	if err != nil {
		return fmt.Errorf("encode allowlist: %w", err)
	}

	query := `UPDATE file_shares
		SET wrapped_key = $3, salt = $4, max_downloads = $5, expires_at = $6, allowed_usernames = $7
		WHERE id = $1 AND owner_id = $2`

	res, err := r.db.ExecContext(ctx, query, share.ID, share.OwnerID, share.WrappedKey, share.Salt,
		nullableInt(share.MaxDownloads), nullableTime(share.ExpiresAt), allowed)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM file_shares WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) IncrementDownloadCount(ctx context.Context, token string, now time.Time) (int, error) {
	query := `UPDATE file_shares
		SET download_count = download_count + 1
		WHERE share_token = $1
			AND (max_downloads IS NULL OR download_count < max_downloads)
			AND (expires_at IS NULL OR expires_at > $2)
		RETURNING download_count`

	var count int
	if err := r.db.QueryRowContext(ctx, query, token, now.UTC()).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrConcurrencyConflict
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
