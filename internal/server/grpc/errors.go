package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/vaultshare/internal/common"
	"github.com/dmitrijs2005/vaultshare/internal/cryptox"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// statusError converts a service error into a gRPC status. Unclassified
// errors are logged and surface as a bare Internal.
func (s *GRPCServer) statusError(ctx context.Context, method string, err error) error {
	var pe *cryptox.PolicyError
	var ve *common.ValidationError

	switch {
	case errors.As(err, &pe):
		return status.Error(codes.InvalidArgument, strings.Join(pe.Messages(), "; "))
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrInvalidCredentials):
		return status.Error(codes.PermissionDenied, common.ErrInvalidCredentials.Error())
	case errors.Is(err, common.ErrRateLimited):
		return status.Error(codes.ResourceExhausted, common.ErrRateLimited.Error())
	case errors.Is(err, common.ErrShareExhausted):
		return status.Error(codes.ResourceExhausted, common.ErrShareExhausted.Error())
	case errors.Is(err, common.ErrQuotaExceeded):
		return status.Error(codes.ResourceExhausted, "storage quota exceeded")
	case errors.Is(err, common.ErrShareExpired):
		return status.Error(codes.FailedPrecondition, common.ErrShareExpired.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}

	s.logger.Error(ctx, "request failed", "method", method, "error", err)
	return status.Error(codes.Internal, "internal error")
}
