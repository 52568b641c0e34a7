package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/vaultshare/internal/dbx"
	"github.com/dmitrijs2005/vaultshare/internal/server/repositories/accesslogs"
	"github.com/dmitrijs2005/vaultshare/internal/server/repositories/files"
	"github.com/dmitrijs2005/vaultshare/internal/server/repositories/ratelimits"
	"github.com/dmitrijs2005/vaultshare/internal/server/repositories/sharedaccess"
	"github.com/dmitrijs2005/vaultshare/internal/server/repositories/shares"
	"github.com/dmitrijs2005/vaultshare/internal/server/repositories/userfiles"
	"github.com/dmitrijs2005/vaultshare/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX so callers can use
// the same code path with a plain connection or inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Files(db dbx.DBTX) files.Repository
	UserFiles(db dbx.DBTX) userfiles.Repository
	Shares(db dbx.DBTX) shares.Repository
	AccessLogs(db dbx.DBTX) accesslogs.Repository
	RateLimits(db dbx.DBTX) ratelimits.Repository
	SharedAccess(db dbx.DBTX) sharedaccess.Repository
}
