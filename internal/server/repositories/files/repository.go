// Package files persists content-addressed blob metadata.
package files

import (
	"context"

	"github.com/dmitrijs2005/vaultshare/internal/server/models"
)

type Repository interface {
	// CreateOrGet inserts file unless a row with the same content hash
	// already exists, in which case the existing row is returned and
	// created is false.
	CreateOrGet(ctx context.Context, file *models.File) (result *models.File, created bool, err error)
	GetByContentHash(ctx context.Context, hash string) (*models.File, error)
	GetByID(ctx context.Context, id string) (*models.File, error)
}
