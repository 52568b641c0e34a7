// Package sharedaccess records which signed-in users have redeemed which
// shares and lists those shares back to them.
package sharedaccess

import (
	"context"
	"time"

	"github.com/dmitrijs2005/vaultshare/internal/server/models"
)

type Repository interface {
	// Upsert records one redemption of shareID by userID at at. The first
	// call creates the row; later calls bump the count and last access time.
	Upsert(ctx context.Context, userID, shareID string, at time.Time) error
	// ListForUser returns the shares userID has redeemed that have not
	// expired at now, most recently accessed first.
	ListForUser(ctx context.Context, userID string, now time.Time) ([]*models.SharedFile, error)
}
