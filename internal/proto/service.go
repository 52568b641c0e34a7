package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "vaultshare.v1.VaultService"

// FullMethod returns the "/service/method" path of a VaultService RPC.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

type VaultServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	UploadFile(context.Context, *UploadFileRequest) (*UploadFileResponse, error)
	ListFiles(context.Context, *ListFilesRequest) (*ListFilesResponse, error)
	DownloadFile(context.Context, *DownloadFileRequest) (*DownloadFileResponse, error)
	DeleteFile(context.Context, *DeleteFileRequest) (*DeleteFileResponse, error)
	CreateShare(context.Context, *CreateShareRequest) (*CreateShareResponse, error)
	UpdateShare(context.Context, *UpdateShareRequest) (*UpdateShareResponse, error)
	ListShares(context.Context, *ListSharesRequest) (*ListSharesResponse, error)
	DeleteShare(context.Context, *DeleteShareRequest) (*DeleteShareResponse, error)
	GetShareStats(context.Context, *GetShareStatsRequest) (*GetShareStatsResponse, error)
	GetShareAccessLogs(context.Context, *GetShareAccessLogsRequest) (*GetShareAccessLogsResponse, error)
	GetShareMetadata(context.Context, *GetShareMetadataRequest) (*GetShareMetadataResponse, error)
	AccessShare(context.Context, *AccessShareRequest) (*AccessShareResponse, error)
	ListSharedWithMe(context.Context, *ListSharedWithMeRequest) (*ListSharedWithMeResponse, error)
}

// UnimplementedVaultServiceServer answers every RPC with codes.Unimplemented.
// Embed it to stay source compatible when methods are added.
type UnimplementedVaultServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedVaultServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, unimplemented("Ping")
}
func (UnimplementedVaultServiceServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, unimplemented("Register")
}
func (UnimplementedVaultServiceServer) GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error) {
	return nil, unimplemented("GetSalt")
}
func (UnimplementedVaultServiceServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, unimplemented("Login")
}
func (UnimplementedVaultServiceServer) UploadFile(context.Context, *UploadFileRequest) (*UploadFileResponse, error) {
	return nil, unimplemented("UploadFile")
}
func (UnimplementedVaultServiceServer) ListFiles(context.Context, *ListFilesRequest) (*ListFilesResponse, error) {
	return nil, unimplemented("ListFiles")
}
func (UnimplementedVaultServiceServer) DownloadFile(context.Context, *DownloadFileRequest) (*DownloadFileResponse, error) {
	return nil, unimplemented("DownloadFile")
}
func (UnimplementedVaultServiceServer) DeleteFile(context.Context, *DeleteFileRequest) (*DeleteFileResponse, error) {
	return nil, unimplemented("DeleteFile")
}
func (UnimplementedVaultServiceServer) CreateShare(context.Context, *CreateShareRequest) (*CreateShareResponse, error) {
	return nil, unimplemented("CreateShare")
}
func (UnimplementedVaultServiceServer) UpdateShare(context.Context, *UpdateShareRequest) (*UpdateShareResponse, error) {
	return nil, unimplemented("UpdateShare")
}
func (UnimplementedVaultServiceServer) ListShares(context.Context, *ListSharesRequest) (*ListSharesResponse, error) {
	return nil, unimplemented("ListShares")
}
func (UnimplementedVaultServiceServer) DeleteShare(context.Context, *DeleteShareRequest) (*DeleteShareResponse, error) {
	return nil, unimplemented("DeleteShare")
}
func (UnimplementedVaultServiceServer) GetShareStats(context.Context, *GetShareStatsRequest) (*GetShareStatsResponse, error) {
	return nil, unimplemented("GetShareStats")
}
func (UnimplementedVaultServiceServer) GetShareAccessLogs(context.Context, *GetShareAccessLogsRequest) (*GetShareAccessLogsResponse, error) {
	return nil, unimplemented("GetShareAccessLogs")
}
func (UnimplementedVaultServiceServer) GetShareMetadata(context.Context, *GetShareMetadataRequest) (*GetShareMetadataResponse, error) {
	return nil, unimplemented("GetShareMetadata")
}
func (UnimplementedVaultServiceServer) AccessShare(context.Context, *AccessShareRequest) (*AccessShareResponse, error) {
	return nil, unimplemented("AccessShare")
}

func (UnimplementedVaultServiceServer) ListSharedWithMe(context.Context, *ListSharedWithMeRequest) (*ListSharedWithMeResponse, error) {
	return nil, unimplemented("ListSharedWithMe")
}

func RegisterVaultServiceServer(s grpc.ServiceRegistrar, srv VaultServiceServer) {
	s.RegisterService(&VaultService_ServiceDesc, srv)
}

// unary builds the method descriptor for one RPC, routing through the
// server's interceptor chain when there is one.
func unary[Req, Resp any](method string, call func(VaultServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(VaultServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(VaultServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var VaultService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VaultServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", VaultServiceServer.Ping),
		unary("Register", VaultServiceServer.Register),
		unary("GetSalt", VaultServiceServer.GetSalt),
		unary("Login", VaultServiceServer.Login),
		unary("UploadFile", VaultServiceServer.UploadFile),
		unary("ListFiles", VaultServiceServer.ListFiles),
		unary("DownloadFile", VaultServiceServer.DownloadFile),
		unary("DeleteFile", VaultServiceServer.DeleteFile),
		unary("CreateShare", VaultServiceServer.CreateShare),
		unary("UpdateShare", VaultServiceServer.UpdateShare),
		unary("ListShares", VaultServiceServer.ListShares),
		unary("DeleteShare", VaultServiceServer.DeleteShare),
		unary("GetShareStats", VaultServiceServer.GetShareStats),
		unary("GetShareAccessLogs", VaultServiceServer.GetShareAccessLogs),
		unary("GetShareMetadata", VaultServiceServer.GetShareMetadata),
		unary("AccessShare", VaultServiceServer.AccessShare),
		unary("ListSharedWithMe", VaultServiceServer.ListSharedWithMe),
	},
	Streams: []grpc.StreamDesc{},
}

// VaultServiceClient calls VaultService. Messages are encoded by Codec.
type VaultServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewVaultServiceClient(cc grpc.ClientConnInterface) *VaultServiceClient {
	return &VaultServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *VaultServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, "Ping", in, opts)
}
func (c *VaultServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, "Register", in, opts)
}
func (c *VaultServiceClient) GetSalt(ctx context.Context, in *GetSaltRequest, opts ...grpc.CallOption) (*GetSaltResponse, error) {
	return invoke[GetSaltResponse](ctx, c.cc, "GetSalt", in, opts)
}
func (c *VaultServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, "Login", in, opts)
}
func (c *VaultServiceClient) UploadFile(ctx context.Context, in *UploadFileRequest, opts ...grpc.CallOption) (*UploadFileResponse, error) {
	return invoke[UploadFileResponse](ctx, c.cc, "UploadFile", in, opts)
}
func (c *VaultServiceClient) ListFiles(ctx context.Context, in *ListFilesRequest, opts ...grpc.CallOption) (*ListFilesResponse, error) {
	return invoke[ListFilesResponse](ctx, c.cc, "ListFiles", in, opts)
}
func (c *VaultServiceClient) DownloadFile(ctx context.Context, in *DownloadFileRequest, opts ...grpc.CallOption) (*DownloadFileResponse, error) {
	return invoke[DownloadFileResponse](ctx, c.cc, "DownloadFile", in, opts)
}
func (c *VaultServiceClient) DeleteFile(ctx context.Context, in *DeleteFileRequest, opts ...grpc.CallOption) (*DeleteFileResponse, error) {
	return invoke[DeleteFileResponse](ctx, c.cc, "DeleteFile", in, opts)
}
func (c *VaultServiceClient) CreateShare(ctx context.Context, in *CreateShareRequest, opts ...grpc.CallOption) (*CreateShareResponse, error) {
	return invoke[CreateShareResponse](ctx, c.cc, "CreateShare", in, opts)
}
func (c *VaultServiceClient) UpdateShare(ctx context.Context, in *UpdateShareRequest, opts ...grpc.CallOption) (*UpdateShareResponse, error) {
	return invoke[UpdateShareResponse](ctx, c.cc, "UpdateShare", in, opts)
}
func (c *VaultServiceClient) ListShares(ctx context.Context, in *ListSharesRequest, opts ...grpc.CallOption) (*ListSharesResponse, error) {
	return invoke[ListSharesResponse](ctx, c.cc, "ListShares", in, opts)
}
func (c *VaultServiceClient) DeleteShare(ctx context.Context, in *DeleteShareRequest, opts ...grpc.CallOption) (*DeleteShareResponse, error) {
	return invoke[DeleteShareResponse](ctx, c.cc, "DeleteShare", in, opts)
}
func (c *VaultServiceClient) GetShareStats(ctx context.Context, in *GetShareStatsRequest, opts ...grpc.CallOption) (*GetShareStatsResponse, error) {
	return invoke[GetShareStatsResponse](ctx, c.cc, "GetShareStats", in, opts)
}
func (c *VaultServiceClient) GetShareAccessLogs(ctx context.Context, in *GetShareAccessLogsRequest, opts ...grpc.CallOption) (*GetShareAccessLogsResponse, error) {
	return invoke[GetShareAccessLogsResponse](ctx, c.cc, "GetShareAccessLogs", in, opts)
}
func (c *VaultServiceClient) GetShareMetadata(ctx context.Context, in *GetShareMetadataRequest, opts ...grpc.CallOption) (*GetShareMetadataResponse, error) {
	return invoke[GetShareMetadataResponse](ctx, c.cc, "GetShareMetadata", in, opts)
}
func (c *VaultServiceClient) AccessShare(ctx context.Context, in *AccessShareRequest, opts ...grpc.CallOption) (*AccessShareResponse, error) {
	return invoke[AccessShareResponse](ctx, c.cc, "AccessShare", in, opts)
}
func (c *VaultServiceClient) ListSharedWithMe(ctx context.Context, in *ListSharedWithMeRequest, opts ...grpc.CallOption) (*ListSharedWithMeResponse, error) {
	return invoke[ListSharedWithMeResponse](ctx, c.cc, "ListSharedWithMe", in, opts)
}
