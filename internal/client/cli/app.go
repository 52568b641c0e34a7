package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/vaultshare/internal/client/client"
	"github.com/dmitrijs2005/vaultshare/internal/client/config"
	"github.com/dmitrijs2005/vaultshare/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/vaultshare/internal/client/services"
	pb "github.com/dmitrijs2005/vaultshare/internal/proto"
)

// UserAgent identifies the CLI in share access logs.
const UserAgent = "vaultshare-cli"

type authSvc interface {
	Register(ctx context.Context, username string, password []byte) error
	Login(ctx context.Context, username string, password []byte) error
	Restore(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) (*client.ServerParams, error)
}

type fileSvc interface {
	Upload(ctx context.Context, path string) (*pb.UploadFileResponse, error)
	List(ctx context.Context) ([]pb.UserFile, error)
	Download(ctx context.Context, userFileID, dir string) (string, error)
	Delete(ctx context.Context, userFileID string) error
}

type shareSvc interface {
	CheckPassword(password string) error
	Create(ctx context.Context, userFileID, password string, opts pb.ShareOptions) (*pb.Share, error)
	Update(ctx context.Context, shareID, newPassword string, opts pb.ShareOptions) (*pb.Share, error)
	List(ctx context.Context) ([]pb.Share, error)
	SharedWithMe(ctx context.Context) ([]pb.SharedFile, error)
	Delete(ctx context.Context, shareID string) error
	Stats(ctx context.Context, shareID string) (*pb.AccessStats, error)
	Logs(ctx context.Context, shareID string, limit int) ([]pb.AccessLogEntry, error)
	Metadata(ctx context.Context, tokenOrLink string) (*pb.GetShareMetadataResponse, error)
	Access(ctx context.Context, tokenOrLink, password, dir string) (*services.AccessResult, error)
}

type App struct {
	config   *config.Config
	auth     authSvc
	files    fileSvc
	shares   shareSvc
	closers  []io.Closer
	userName string
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp opens the local database, dials the server lazily and restores a
// saved session if there is one.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabaseFile)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr, UserAgent)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	files := services.NewFileService(apiClient, c.MaxFileSize, nil)
	a := &App{
		config:  c,
		auth:    services.NewAuthService(apiClient, metadata.NewSQLiteRepository(db), c.ServerEndpointAddr),
		files:   files,
		shares:  services.NewShareService(apiClient, files),
		closers: []io.Closer{apiClient, db},
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}

	name, err := a.auth.Restore(ctx)
	switch {
	case err == nil:
		a.userName = name
	case !errors.Is(err, client.ErrNotLoggedIn):
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Run executes args as a single command, or starts the REPL when args is
// empty. A failing one-shot command returns its error.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) > 0 {
		_, err := dispatch(ctx, a, args[0], args[1:])
		if err != nil {
			a.printError(err)
		}
		return err
	}

	printlnFn("Welcome to VaultShare CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) status() string {
	if a.userName == "" {
		return "anonymous"
	}
	return a.userName
}

// callCtx bounds one server round trip.
func (a *App) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) requireLogin() error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please login first")
		return client.ErrNotLoggedIn
	}
	return nil
}

func (a *App) downloadDir(args []string, idx int) string {
	if len(args) > idx && args[idx] != "" {
		return args[idx]
	}
	if a.config != nil {
		return a.config.DownloadDir
	}
	return "."
}
