// Package users persists account owners and their storage accounting.
package users

import (
	"context"

	"github.com/dmitrijs2005/vaultshare/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// ReserveStorage adds bytes to used storage only if the result stays
	// within the user's quota; otherwise it returns common.ErrQuotaExceeded.
	ReserveStorage(ctx context.Context, userID string, bytes int64) error
	ReleaseStorage(ctx context.Context, userID string, bytes int64) error
}
