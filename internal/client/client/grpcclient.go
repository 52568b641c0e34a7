package client

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/vaultshare/internal/common"
	pb "github.com/dmitrijs2005/vaultshare/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// MaxMessageSize matches the server's limit; uploads travel inline.
const MaxMessageSize = 64 << 20

// vaultAPI is the generated-style client surface, narrowed for fakes.
type vaultAPI interface {
	Ping(ctx context.Context, in *pb.PingRequest, opts ...grpc.CallOption) (*pb.PingResponse, error)
	Register(ctx context.Context, in *pb.RegisterRequest, opts ...grpc.CallOption) (*pb.RegisterResponse, error)
	GetSalt(ctx context.Context, in *pb.GetSaltRequest, opts ...grpc.CallOption) (*pb.GetSaltResponse, error)
	Login(ctx context.Context, in *pb.LoginRequest, opts ...grpc.CallOption) (*pb.LoginResponse, error)
	UploadFile(ctx context.Context, in *pb.UploadFileRequest, opts ...grpc.CallOption) (*pb.UploadFileResponse, error)
	ListFiles(ctx context.Context, in *pb.ListFilesRequest, opts ...grpc.CallOption) (*pb.ListFilesResponse, error)
	DownloadFile(ctx context.Context, in *pb.DownloadFileRequest, opts ...grpc.CallOption) (*pb.DownloadFileResponse, error)
	DeleteFile(ctx context.Context, in *pb.DeleteFileRequest, opts ...grpc.CallOption) (*pb.DeleteFileResponse, error)
	CreateShare(ctx context.Context, in *pb.CreateShareRequest, opts ...grpc.CallOption) (*pb.CreateShareResponse, error)
	UpdateShare(ctx context.Context, in *pb.UpdateShareRequest, opts ...grpc.CallOption) (*pb.UpdateShareResponse, error)
	ListShares(ctx context.Context, in *pb.ListSharesRequest, opts ...grpc.CallOption) (*pb.ListSharesResponse, error)
	ListSharedWithMe(ctx context.Context, in *pb.ListSharedWithMeRequest, opts ...grpc.CallOption) (*pb.ListSharedWithMeResponse, error)
	DeleteShare(ctx context.Context, in *pb.DeleteShareRequest, opts ...grpc.CallOption) (*pb.DeleteShareResponse, error)
	GetShareStats(ctx context.Context, in *pb.GetShareStatsRequest, opts ...grpc.CallOption) (*pb.GetShareStatsResponse, error)
	GetShareAccessLogs(ctx context.Context, in *pb.GetShareAccessLogsRequest, opts ...grpc.CallOption) (*pb.GetShareAccessLogsResponse, error)
	GetShareMetadata(ctx context.Context, in *pb.GetShareMetadataRequest, opts ...grpc.CallOption) (*pb.GetShareMetadataResponse, error)
	AccessShare(ctx context.Context, in *pb.AccessShareRequest, opts ...grpc.CallOption) (*pb.AccessShareResponse, error)
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      vaultAPI

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	s.mu.RLock()
	token := s.accessToken
	s.mu.RUnlock()

	if token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient dials endpointURL lazily; extra options are appended after
// the defaults.
func NewGRPCClient(endpointURL, userAgent string, extra ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(MaxMessageSize),
			grpc.MaxCallSendMsgSize(MaxMessageSize),
		),
	}
	if userAgent != "" {
		opts = append(opts, grpc.WithUserAgent(userAgent))
	}
	opts = append(opts, extra...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewVaultServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *GRPCClient) Ping(ctx context.Context) (*ServerParams, error) {
	resp, err := s.client.Ping(ctx, &pb.PingRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	if resp.Status != "OK" {
		return nil, ErrUnavailable
	}
	return &ServerParams{FileCipher: resp.FileCipher, KeyLength: resp.KeyLength}, nil
}

func (s *GRPCClient) Register(ctx context.Context, userName string, salt, verifier []byte) error {
	_, err := s.client.Register(ctx, &pb.RegisterRequest{Username: userName, Salt: salt, Verifier: verifier})
	return s.mapError(err)
}

func (s *GRPCClient) GetSalt(ctx context.Context, userName string) ([]byte, error) {
	resp, err := s.client.GetSalt(ctx, &pb.GetSaltRequest{Username: userName})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Salt, nil
}

// Login returns the access token and also installs it on the client.
func (s *GRPCClient) Login(ctx context.Context, userName string, verifier []byte) (string, error) {
	resp, err := s.client.Login(ctx, &pb.LoginRequest{Username: userName, VerifierCandidate: verifier})
	if err != nil {
		return "", s.mapError(err)
	}
	s.SetAccessToken(resp.AccessToken)
	return resp.AccessToken, nil
}

func (s *GRPCClient) UploadFile(ctx context.Context, req *pb.UploadFileRequest) (*pb.UploadFileResponse, error) {
	resp, err := s.client.UploadFile(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) ListFiles(ctx context.Context) ([]pb.UserFile, error) {
	resp, err := s.client.ListFiles(ctx, &pb.ListFilesRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Files, nil
}

func (s *GRPCClient) DownloadFile(ctx context.Context, userFileID string) (*pb.DownloadFileResponse, error) {
	resp, err := s.client.DownloadFile(ctx, &pb.DownloadFileRequest{UserFileID: userFileID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) DeleteFile(ctx context.Context, userFileID string) error {
	_, err := s.client.DeleteFile(ctx, &pb.DeleteFileRequest{UserFileID: userFileID})
	return s.mapError(err)
}

func (s *GRPCClient) CreateShare(ctx context.Context, req *pb.CreateShareRequest) (*pb.Share, error) {
	resp, err := s.client.CreateShare(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &resp.Share, nil
}

func (s *GRPCClient) UpdateShare(ctx context.Context, req *pb.UpdateShareRequest) (*pb.Share, error) {
	resp, err := s.client.UpdateShare(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &resp.Share, nil
}

func (s *GRPCClient) ListShares(ctx context.Context) ([]pb.Share, error) {
	resp, err := s.client.ListShares(ctx, &pb.ListSharesRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Shares, nil
}

// ListSharedWithMe returns the unexpired shares this user has redeemed.
func (s *GRPCClient) ListSharedWithMe(ctx context.Context) ([]pb.SharedFile, error) {
	resp, err := s.client.ListSharedWithMe(ctx, &pb.ListSharedWithMeRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Files, nil
}

func (s *GRPCClient) DeleteShare(ctx context.Context, shareID string) error {
	_, err := s.client.DeleteShare(ctx, &pb.DeleteShareRequest{ShareID: shareID})
	return s.mapError(err)
}

func (s *GRPCClient) GetShareStats(ctx context.Context, shareID string) (*pb.AccessStats, error) {
	resp, err := s.client.GetShareStats(ctx, &pb.GetShareStatsRequest{ShareID: shareID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &resp.Stats, nil
}

func (s *GRPCClient) GetShareAccessLogs(ctx context.Context, shareID string, limit int) ([]pb.AccessLogEntry, error) {
	resp, err := s.client.GetShareAccessLogs(ctx, &pb.GetShareAccessLogsRequest{ShareID: shareID, Limit: limit})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Entries, nil
}

func (s *GRPCClient) GetShareMetadata(ctx context.Context, token string) (*pb.GetShareMetadataResponse, error) {
	resp, err := s.client.GetShareMetadata(ctx, &pb.GetShareMetadataRequest{Token: token})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) AccessShare(ctx context.Context, token, password string) (*pb.AccessShareResponse, error) {
	resp, err := s.client.AccessShare(ctx, &pb.AccessShareRequest{Token: token, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

// mapError turns a gRPC status back into the sentinel errors the server
// started from.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	msg := st.Message()

	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case codes.PermissionDenied:
		if msg == common.ErrInvalidCredentials.Error() {
			return common.ErrInvalidCredentials
		}
		return common.ErrorForbidden
	case codes.ResourceExhausted:
		switch msg {
		case common.ErrRateLimited.Error():
			return common.ErrRateLimited
		case common.ErrShareExhausted.Error():
			return common.ErrShareExhausted
		}
		return fmt.Errorf("%w: %s", common.ErrQuotaExceeded, msg)
	case codes.FailedPrecondition:
		return common.ErrShareExpired
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.AlreadyExists:
		return common.ErrorAlreadyExists
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrValidation, strings.TrimPrefix(msg, common.ErrValidation.Error()+": "))
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
