// Package grpc exposes the VaultShare services over gRPC using the protobuf
// codec from internal/proto.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/vaultshare/internal/cryptox"
	"github.com/dmitrijs2005/vaultshare/internal/logging"
	pb "github.com/dmitrijs2005/vaultshare/internal/proto"
	"github.com/dmitrijs2005/vaultshare/internal/server/auth"
	"github.com/dmitrijs2005/vaultshare/internal/server/models"
	"github.com/dmitrijs2005/vaultshare/internal/server/services"
	"google.golang.org/grpc"
)

// MaxMessageSize bounds request and response sizes. Uploads travel inline
// in the request message.
const MaxMessageSize = 64 << 20

type userSvc interface {
	Register(ctx context.Context, username string, salt, verifier []byte) (*models.User, error)
	GetSalt(ctx context.Context, username string) ([]byte, error)
	Login(ctx context.Context, username string, verifierCandidate []byte) (string, error)
}

type fileSvc interface {
	Upload(ctx context.Context, userID string, req *services.UploadRequest) (*services.UploadResult, error)
	List(ctx context.Context, userID string) ([]*models.UserFile, error)
	Download(ctx context.Context, userID, userFileID string) (*services.DownloadInfo, error)
	Delete(ctx context.Context, userID, userFileID string) error
}

type shareSvc interface {
	CreateShare(ctx context.Context, ownerID string, req *services.CreateShareRequest) (*services.ShareView, error)
	UpdateShare(ctx context.Context, ownerID, shareID string, req *services.UpdateShareRequest) (*services.ShareView, error)
	ListShares(ctx context.Context, ownerID string) ([]*services.ShareView, error)
	DeleteShare(ctx context.Context, ownerID, shareID string) error
	GetShareStats(ctx context.Context, ownerID, shareID string) (*models.AccessStats, error)
	GetShareAccessLogs(ctx context.Context, ownerID, shareID string, limit int) ([]*models.ShareAccessLog, error)
	GetShareMetadata(ctx context.Context, token string) (*services.ShareMetadata, error)
	AccessShare(ctx context.Context, req *services.AccessRequest) (*services.AccessGrant, error)
	ListSharedWithMe(ctx context.Context, userID string) ([]*services.SharedFileView, error)
}

// Deps collects what the server needs. FileCipher and KeyLength are
// advertised through Ping so clients encrypt with matching parameters.
type Deps struct {
	Address    string
	Users      userSvc
	Files      fileSvc
	Shares     shareSvc
	FileCipher cryptox.CipherAlgorithm
	KeyLength  int
	SecretKey  string
	TrustProxy bool
	Log        logging.Logger
}

type GRPCServer struct {
	pb.UnimplementedVaultServiceServer
	address    string
	users      userSvc
	files      fileSvc
	shares     shareSvc
	fileCipher cryptox.CipherAlgorithm
	keyLength  int
	trustProxy bool
	logger     logging.Logger
	jwtSecret  []byte
}

func NewGRPCServer(d Deps) *GRPCServer {
	return &GRPCServer{
		address:    d.Address,
		users:      d.Users,
		files:      d.Files,
		shares:     d.Shares,
		fileCipher: d.FileCipher,
		keyLength:  d.KeyLength,
		trustProxy: d.TrustProxy,
		logger:     d.Log.With("module", "grpc_server"),
		jwtSecret:  []byte(d.SecretKey),
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis and stops gracefully when ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.MaxRecvMsgSize(MaxMessageSize),
		grpc.MaxSendMsgSize(MaxMessageSize),
	)
	pb.RegisterVaultServiceServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}

// identity returns the caller authenticated by the interceptor.
func identity(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}
