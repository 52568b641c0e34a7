package client

import (
	"context"

	pb "github.com/dmitrijs2005/vaultshare/internal/proto"
)

// ServerParams are the encryption parameters the server advertises.
type ServerParams struct {
	FileCipher string
	KeyLength  int
}

type Client interface {
	Close() error
	SetAccessToken(token string)
	Ping(ctx context.Context) (*ServerParams, error)

	Register(ctx context.Context, username string, salt, verifier []byte) error
	GetSalt(ctx context.Context, username string) ([]byte, error)
	Login(ctx context.Context, username string, verifier []byte) (string, error)

	UploadFile(ctx context.Context, req *pb.UploadFileRequest) (*pb.UploadFileResponse, error)
	ListFiles(ctx context.Context) ([]pb.UserFile, error)
	DownloadFile(ctx context.Context, userFileID string) (*pb.DownloadFileResponse, error)
	DeleteFile(ctx context.Context, userFileID string) error

	CreateShare(ctx context.Context, req *pb.CreateShareRequest) (*pb.Share, error)
	UpdateShare(ctx context.Context, req *pb.UpdateShareRequest) (*pb.Share, error)
	ListShares(ctx context.Context) ([]pb.Share, error)
	ListSharedWithMe(ctx context.Context) ([]pb.SharedFile, error)
	DeleteShare(ctx context.Context, shareID string) error
	GetShareStats(ctx context.Context, shareID string) (*pb.AccessStats, error)
	GetShareAccessLogs(ctx context.Context, shareID string, limit int) ([]pb.AccessLogEntry, error)
	GetShareMetadata(ctx context.Context, token string) (*pb.GetShareMetadataResponse, error)
	AccessShare(ctx context.Context, token, password string) (*pb.AccessShareResponse, error)
}
