// Package userfiles persists the ownership edges between users and files.
package userfiles

import (
	"context"

	"github.com/dmitrijs2005/vaultshare/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, uf *models.UserFile) (*models.UserFile, error)
	// GetByID returns the user file joined with its File row.
	GetByID(ctx context.Context, id string) (*models.UserFile, error)
	ListByUser(ctx context.Context, userID string) ([]*models.UserFile, error)
	// FindByFileID returns the oldest user file referencing fileID.
	FindByFileID(ctx context.Context, fileID string) (*models.UserFile, error)
	// FindOwned returns userID's live copy of fileID stored under filename,
	// or common.ErrorNotFound.
	FindOwned(ctx context.Context, userID, fileID, filename string) (*models.UserFile, error)
	// Delete removes the user file owned by userID. Shares of it go with it.
	Delete(ctx context.Context, id, userID string) error
}
