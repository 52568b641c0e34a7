// Package accesslogs is the append-only audit store for share redemption
// attempts.
package accesslogs

import (
	"context"
	"time"

	"github.com/dmitrijs2005/vaultshare/internal/server/models"
)

type Repository interface {
	// Record inserts one row. Existing rows are never updated.
	Record(ctx context.Context, entry *models.ShareAccessLog) error
	Stats(ctx context.Context, token string, recentSince time.Time) (*models.AccessStats, error)
	ListByToken(ctx context.Context, token string, limit int) ([]*models.ShareAccessLog, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
