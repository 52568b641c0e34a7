// Package server wires configuration, storage, crypto and services together
// and runs the gRPC API, the public HTTP API and periodic maintenance until
// the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/vaultshare/internal/common"
	"github.com/dmitrijs2005/vaultshare/internal/cryptox"
	"github.com/dmitrijs2005/vaultshare/internal/logging"
	"github.com/dmitrijs2005/vaultshare/internal/server/blobstore"
	"github.com/dmitrijs2005/vaultshare/internal/server/config"
	"github.com/dmitrijs2005/vaultshare/internal/server/httpapi"
	"github.com/dmitrijs2005/vaultshare/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vaultshare/internal/server/services"
	"golang.org/x/sync/errgroup"

	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/vaultshare/internal/server/grpc"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	crypto       *cryptox.Manager
	userService  *services.UserService
	fileService  *services.FileService
	shareService *services.ShareService
	accessLogs   *services.AccessLogService
	rateLimiter  *services.RateLimiter
}

// Seams for tests.
var (
	openDB = func(dsn string) (*sql.DB, error) { return sql.Open("pgx", dsn) }

	newBlobStore = func(ctx context.Context, cfg blobstore.S3Config) (blobstore.Store, error) {
		return blobstore.NewS3Store(ctx, cfg)
	}

	newRepositoryManager = func() repomanager.RepositoryManager {
		return repomanager.NewPostgresRepositoryManager()
	}
)

// NewApp validates c, connects to the database, applies migrations and
// builds every service. Log output goes to w.
func NewApp(ctx context.Context, c *config.Config, w io.Writer) (*App, error) {
	logger, err := logging.NewJSONLogger(w, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	kek, err := c.KEKBytes()
	if err != nil {
		return nil, err
	}
	if kek == nil {
		kek = common.GenerateRandByteArray(32)
		logger.Warn(ctx, "no key-encryption key configured, using an ephemeral one; stored files will not be readable after a restart")
	}
	keyring, err := cryptox.NewKeyring(kek)
	common.WipeByteArray(kek)
	if err != nil {
		return nil, fmt.Errorf("keyring init error: %w", err)
	}

	cm, err := cryptox.NewManager(c.CryptoConfig())
	if err != nil {
		return nil, fmt.Errorf("crypto init error: %w", err)
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	blobs, err := newBlobStore(ctx, blobstore.S3Config{
		Region:    c.S3Region,
		AccessKey: c.S3RootUser,
		SecretKey: c.S3RootPassword,
		Bucket:    c.S3Bucket,
		Endpoint:  c.S3BaseEndpoint,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	audit := services.NewAccessLogService(db, rm, c.StatsRecentWindow, logger)
	limiter := services.NewRateLimiter(db, rm, c.RateLimitAttempts, c.RateLimitTokenAttempts, c.RateLimitWindow)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		crypto:      cm,
		userService: services.NewUserService(db, rm, c, logger),
		fileService: services.NewFileService(db, rm, blobs, keyring, cm, cm.KeyLength(), c.PresignTTL, logger),
		shareService: services.NewShareService(services.ShareServiceDeps{
			DB:         db,
			Repos:      rm,
			Crypto:     cm,
			Keyring:    keyring,
			Blobs:      blobs,
			Limiter:    limiter,
			Audit:      audit,
			BaseURL:    c.PublicBaseURL,
			PresignTTL: c.PresignTTL,
			Log:        logger,
		}),
		accessLogs:  audit,
		rateLimiter: limiter,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled, a signal arrives or one of the servers
// fails. The database is closed on return.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	grpcServer := gs.NewGRPCServer(gs.Deps{
		Address:    app.config.EndpointAddrGRPC,
		Users:      app.userService,
		Files:      app.fileService,
		Shares:     app.shareService,
		FileCipher: app.crypto.FileCipher(),
		KeyLength:  app.crypto.KeyLength(),
		SecretKey:  app.config.SecretKey,
		TrustProxy: app.config.TrustProxyHeaders,
		Log:        app.logger,
	})

	httpServer := httpapi.NewServer(app.config.EndpointAddrHTTP, httpapi.NewRouter(httpapi.Deps{
		Shares:      app.shareService,
		FileCipher:  app.crypto.FileCipher(),
		SecretKey:   app.config.SecretKey,
		CORSOrigins: app.config.CORSOrigins,
		TrustProxy:  app.config.TrustProxyHeaders,
		Log:         app.logger,
	}), app.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return grpcServer.Run(gctx) })
	g.Go(func() error { return httpServer.Run(gctx) })
	g.Go(func() error { return app.runMaintenance(gctx) })

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "app stopped with error", "error", err)
	} else {
		app.logger.Info(ctx, "App stopped")
	}
	return err
}

// runMaintenance prunes old access logs and stale rate-limit hits every
// MaintenanceInterval. A non-positive interval disables it.
func (app *App) runMaintenance(ctx context.Context) error {
	if app.config.MaintenanceInterval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(app.config.MaintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			app.maintain(ctx)
		}
	}
}

func (app *App) maintain(ctx context.Context) {
	if _, err := app.accessLogs.CleanOldLogs(ctx, app.config.AccessLogRetention); err != nil && ctx.Err() == nil {
		app.logger.Error(ctx, "access log cleanup failed", "error", err)
	}

	n, err := app.rateLimiter.Prune(ctx)
	if err != nil {
		if ctx.Err() == nil {
			app.logger.Error(ctx, "rate limit pruning failed", "error", err)
		}
		return
	}
	if n > 0 {
		app.logger.Debug(ctx, "rate limit hits pruned", "count", n)
	}
}
