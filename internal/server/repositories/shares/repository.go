// Package shares is the share store: persistence of FileShare records and
// the atomic download counter.
package shares

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/vaultshare/internal/server/models"
)

// ErrTokenCollision is returned by Create when the share token is already
// taken. Callers generate a new token and retry.
var ErrTokenCollision = errors.New("share token collision")

type Repository interface {
	Create(ctx context.Context, share *models.FileShare) (*models.FileShare, error)
	GetByToken(ctx context.Context, token string) (*models.FileShare, error)
	GetByID(ctx context.Context, id string) (*models.FileShare, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.FileShare, error)
	// Update rewrites the owner-editable fields of the share identified by
	// share.ID and share.OwnerID.
	Update(ctx context.Context, share *models.FileShare) error
	Delete(ctx context.Context, id, ownerID string) error
	// IncrementDownloadCount adds one download if the share still has budget
	// and has not expired at now, and returns the new count. When nothing
	// was updated it returns common.ErrConcurrencyConflict.
	IncrementDownloadCount(ctx context.Context, token string, now time.Time) (int, error)
}
