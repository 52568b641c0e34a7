package grpc

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/dmitrijs2005/vaultshare/internal/common"
	"github.com/dmitrijs2005/vaultshare/internal/logging"
	pb "github.com/dmitrijs2005/vaultshare/internal/proto"
	"github.com/dmitrijs2005/vaultshare/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

type ctxKey string

const identityKey ctxKey = "identity"

// AccessTokenHeader is the metadata key carrying the owner's JWT.
const AccessTokenHeader = common.AccessTokenHeaderName

// publicMethods never require a token.
var publicMethods = map[string]bool{
	pb.FullMethod("Ping"):             true,
	pb.FullMethod("Register"):         true,
	pb.FullMethod("GetSalt"):          true,
	pb.FullMethod("Login"):            true,
	pb.FullMethod("GetShareMetadata"): true,
}

// optionalAuthMethods accept anonymous callers but still validate a token
// when one is sent; allowlisted shares need the caller's username.
var optionalAuthMethods = map[string]bool{
	pb.FullMethod("AccessShare"): true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	ctx = logging.ContextWith(ctx, "rpc", info.FullMethod)
	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	accessToken := firstMetadata(ctx, AccessTokenHeader)
	if accessToken == "" {
		if optionalAuthMethods[info.FullMethod] {
			return handler(ctx, req)
		}
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	id, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, "token expired")
		}
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	ctx = context.WithValue(ctx, identityKey, id)
	ctx = logging.ContextWith(ctx, "user_id", id.UserID)
	return handler(ctx, req)
}

func firstMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(key)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// sourceIdentifier returns the caller's address without the port. Forwarded
// headers are only honoured behind a trusted proxy.
func (s *GRPCServer) sourceIdentifier(ctx context.Context) string {
	if s.trustProxy {
		if fwd := firstMetadata(ctx, common.ForwardedForHeaderName); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			return strings.TrimSpace(first)
		}
		if ip := firstMetadata(ctx, common.RealIPHeaderName); ip != "" {
			return strings.TrimSpace(ip)
		}
	}
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	addr := p.Addr.String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func userAgent(ctx context.Context) string {
	return firstMetadata(ctx, "user-agent")
}
