package metadata

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vaultshare/internal/dbx"
)

const (
	keyUserName    = "username"
	keyAccessToken = "access_token"
	keyEndpoint    = "endpoint"
)

type SQLiteRepository struct {
	db DB
}

func NewSQLiteRepository(db DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// SaveSession replaces the stored session in one transaction, so a crash
// never leaves a token paired with another user's name.
func (r *SQLiteRepository) SaveSession(ctx context.Context, s *Session) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM metadata`); err != nil {
			return err
		}
		for k, v := range map[string]string{
			keyUserName:    s.UserName,
			keyAccessToken: s.AccessToken,
			keyEndpoint:    s.Endpoint,
		} {
			if v == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
				k, []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) LoadSession(ctx context.Context) (*Session, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM metadata WHERE key IN (?, ?, ?)`,
		keyUserName, keyAccessToken, keyEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	defer rows.Close()

	s := &Session{}
	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		switch key {
		case keyUserName:
			s.UserName = string(value)
		case keyAccessToken:
			s.AccessToken = string(value)
		case keyEndpoint:
			s.Endpoint = string(value)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if s.AccessToken == "" {
		return nil, nil
	}
	return s, nil
}

func (r *SQLiteRepository) ClearSession(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM metadata`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
