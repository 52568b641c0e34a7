// Package metadata is the CLI's local session store. It keeps who is logged
// in, with which token and against which server, between invocations.
package metadata

import (
	"context"

	"github.com/dmitrijs2005/vaultshare/internal/dbx"
)

// Session is a saved login. Endpoint records the server the token was
// issued by.
type Session struct {
	UserName    string
	AccessToken string
	Endpoint    string
}

// Repository returns (nil, nil) from LoadSession when nobody is logged in.
type Repository interface {
	SaveSession(ctx context.Context, s *Session) error
	LoadSession(ctx context.Context) (*Session, error)
	ClearSession(ctx context.Context) error
}

// DB is what the SQLite repository needs from *sql.DB.
type DB interface {
	dbx.DBTX
	dbx.TxBeginner
}
