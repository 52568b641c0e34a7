package grpc

import (
	"context"

	pb "github.com/dmitrijs2005/vaultshare/internal/proto"
	"github.com/dmitrijs2005/vaultshare/internal/server/models"
	"github.com/dmitrijs2005/vaultshare/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) owner(ctx context.Context) (string, error) {
	id, ok := identity(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	return id.UserID, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {
	return &pb.PingResponse{Status: "OK", FileCipher: string(s.fileCipher), KeyLength: s.keyLength}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error) {
	user, err := s.users.Register(ctx, req.Username, req.Salt, req.Verifier)
	if err != nil {
		return nil, s.statusError(ctx, "Register", err)
	}
	return &pb.RegisterResponse{UserID: user.ID}, nil
}

func (s *GRPCServer) GetSalt(ctx context.Context, req *pb.GetSaltRequest) (*pb.GetSaltResponse, error) {
	salt, err := s.users.GetSalt(ctx, req.Username)
	if err != nil {
		return nil, s.statusError(ctx, "GetSalt", err)
	}
	return &pb.GetSaltResponse{Salt: salt}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.LoginResponse, error) {
	token, err := s.users.Login(ctx, req.Username, req.VerifierCandidate)
	if err != nil {
		return nil, s.statusError(ctx, "Login", err)
	}
	return &pb.LoginResponse{AccessToken: token}, nil
}

func (s *GRPCServer) UploadFile(ctx context.Context, req *pb.UploadFileRequest) (*pb.UploadFileResponse, error) {
	userID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.files.Upload(ctx, userID, &services.UploadRequest{
		Filename:     req.Filename,
		ContentHash:  req.ContentHash,
		SizeBytes:    req.SizeBytes,
		MimeType:     req.MimeType,
		EncryptedKey: req.EncryptedKey,
		FileData:     req.FileData,
		FolderID:     req.FolderID,
	})
	if err != nil {
		return nil, s.statusError(ctx, "UploadFile", err)
	}
	return &pb.UploadFileResponse{File: userFileToPB(res.UserFile), Deduplicated: res.Deduplicated}, nil
}

func (s *GRPCServer) ListFiles(ctx context.Context, req *pb.ListFilesRequest) (*pb.ListFilesResponse, error) {
	userID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	files, err := s.files.List(ctx, userID)
	if err != nil {
		return nil, s.statusError(ctx, "ListFiles", err)
	}
	out := make([]pb.UserFile, 0, len(files))
	for _, f := range files {
		out = append(out, userFileToPB(f))
	}
	return &pb.ListFilesResponse{Files: out}, nil
}

func (s *GRPCServer) DownloadFile(ctx context.Context, req *pb.DownloadFileRequest) (*pb.DownloadFileResponse, error) {
	userID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	info, err := s.files.Download(ctx, userID, req.UserFileID)
	if err != nil {
		return nil, s.statusError(ctx, "DownloadFile", err)
	}
	return &pb.DownloadFileResponse{
		File:        userFileToPB(info.UserFile),
		ContentKey:  info.ContentKey,
		DownloadURL: info.DownloadURL,
		FileCipher:  string(s.fileCipher),
	}, nil
}

func (s *GRPCServer) DeleteFile(ctx context.Context, req *pb.DeleteFileRequest) (*pb.DeleteFileResponse, error) {
	userID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.files.Delete(ctx, userID, req.UserFileID); err != nil {
		return nil, s.statusError(ctx, "DeleteFile", err)
	}
	return &pb.DeleteFileResponse{}, nil
}

func (s *GRPCServer) CreateShare(ctx context.Context, req *pb.CreateShareRequest) (*pb.CreateShareResponse, error) {
	userID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	view, err := s.shares.CreateShare(ctx, userID, &services.CreateShareRequest{
		UserFileID:   req.UserFileID,
		Password:     req.Password,
		ShareOptions: shareOptionsFromPB(req.ShareOptions),
	})
	if err != nil {
		return nil, s.statusError(ctx, "CreateShare", err)
	}
	return &pb.CreateShareResponse{Share: shareToPB(view)}, nil
}

func (s *GRPCServer) UpdateShare(ctx context.Context, req *pb.UpdateShareRequest) (*pb.UpdateShareResponse, error) {
	userID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	view, err := s.shares.UpdateShare(ctx, userID, req.ShareID, &services.UpdateShareRequest{
		NewPassword:  req.NewPassword,
		ShareOptions: shareOptionsFromPB(req.ShareOptions),
	})
	if err != nil {
		return nil, s.statusError(ctx, "UpdateShare", err)
	}
	return &pb.UpdateShareResponse{Share: shareToPB(view)}, nil
}

func (s *GRPCServer) ListShares(ctx context.Context, req *pb.ListSharesRequest) (*pb.ListSharesResponse, error) {
	userID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	views, err := s.shares.ListShares(ctx, userID)
	if err != nil {
		return nil, s.statusError(ctx, "ListShares", err)
	}
	out := make([]pb.Share, 0, len(views))
	for _, v := range views {
		out = append(out, shareToPB(v))
	}
	return &pb.ListSharesResponse{Shares: out}, nil
}

func (s *GRPCServer) DeleteShare(ctx context.Context, req *pb.DeleteShareRequest) (*pb.DeleteShareResponse, error) {
	userID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.shares.DeleteShare(ctx, userID, req.ShareID); err != nil {
		return nil, s.statusError(ctx, "DeleteShare", err)
	}
	return &pb.DeleteShareResponse{}, nil
}

func (s *GRPCServer) GetShareStats(ctx context.Context, req *pb.GetShareStatsRequest) (*pb.GetShareStatsResponse, error) {
	userID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.shares.GetShareStats(ctx, userID, req.ShareID)
	if err != nil {
		return nil, s.statusError(ctx, "GetShareStats", err)
	}
	return &pb.GetShareStatsResponse{Stats: pb.AccessStats{
		TotalAttempts:      st.TotalAttempts,
		SuccessfulAttempts: st.SuccessfulAttempts,
		FailedAttempts:     st.FailedAttempts,
		RecentAttempts:     st.RecentAttempts,
		UniqueIPs:          st.UniqueIPs,
	}}, nil
}

func (s *GRPCServer) GetShareAccessLogs(ctx context.Context, req *pb.GetShareAccessLogsRequest) (*pb.GetShareAccessLogsResponse, error) {
	userID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	logs, err := s.shares.GetShareAccessLogs(ctx, userID, req.ShareID, req.Limit)
	if err != nil {
		return nil, s.statusError(ctx, "GetShareAccessLogs", err)
	}
	out := make([]pb.AccessLogEntry, 0, len(logs))
	for _, l := range logs {
		out = append(out, pb.AccessLogEntry{
			OccurredAt:       l.OccurredAt,
			SourceIdentifier: l.SourceIdentifier,
			UserAgent:        l.UserAgent,
			Outcome:          string(l.Outcome),
			Reason:           l.Reason,
		})
	}
	return &pb.GetShareAccessLogsResponse{Entries: out}, nil
}

func (s *GRPCServer) GetShareMetadata(ctx context.Context, req *pb.GetShareMetadataRequest) (*pb.GetShareMetadataResponse, error) {
	md, err := s.shares.GetShareMetadata(ctx, req.Token)
	if err != nil {
		return nil, s.statusError(ctx, "GetShareMetadata", err)
	}
	return &pb.GetShareMetadataResponse{
		Filename:           md.Filename,
		MimeType:           md.MimeType,
		SizeBytes:          md.SizeBytes,
		MaxDownloads:       md.MaxDownloads,
		DownloadCount:      md.DownloadCount,
		RemainingDownloads: md.RemainingDownloads,
		ExpiresAt:          md.ExpiresAt,
		RequiresLogin:      md.RequiresLogin,
		Status:             string(md.Status),
		CreatedAt:          md.CreatedAt,
	}, nil
}

func (s *GRPCServer) AccessShare(ctx context.Context, req *pb.AccessShareRequest) (*pb.AccessShareResponse, error) {
	var userID, username string
	if id, ok := identity(ctx); ok {
		userID, username = id.UserID, id.UserName
	}
	grant, err := s.shares.AccessShare(ctx, &services.AccessRequest{
		Token:            req.Token,
		Password:         req.Password,
		UserID:           userID,
		Username:         username,
		SourceIdentifier: s.sourceIdentifier(ctx),
		UserAgent:        userAgent(ctx),
	})
	if err != nil {
		return nil, s.statusError(ctx, "AccessShare", err)
	}
	return &pb.AccessShareResponse{
		ShareID:            grant.ShareID,
		Filename:           grant.Filename,
		MimeType:           grant.MimeType,
		SizeBytes:          grant.SizeBytes,
		ContentKey:         grant.ContentKey,
		DownloadURL:        grant.DownloadURL,
		FileCipher:         string(s.fileCipher),
		DownloadCount:      grant.DownloadCount,
		RemainingDownloads: grant.RemainingDownloads,
	}, nil
}

func (s *GRPCServer) ListSharedWithMe(ctx context.Context, req *pb.ListSharedWithMeRequest) (*pb.ListSharedWithMeResponse, error) {
	userID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.shares.ListSharedWithMe(ctx, userID)
	if err != nil {
		return nil, s.statusError(ctx, "ListSharedWithMe", err)
	}
	out := make([]pb.SharedFile, 0, len(list))
	for _, v := range list {
		out = append(out, pb.SharedFile{
			ShareID:            v.ShareID,
			Token:              v.Token,
			Link:               v.Link,
			OwnerUsername:      v.OwnerUserName,
			Filename:           v.Filename,
			MimeType:           v.MimeType,
			SizeBytes:          v.SizeBytes,
			DownloadCount:      v.DownloadCount,
			RemainingDownloads: v.RemainingDownloads,
			ExpiresAt:          v.ExpiresAt,
			Status:             string(v.Status),
			FirstAccessedAt:    v.FirstAccessedAt,
			LastAccessedAt:     v.LastAccessedAt,
			AccessCount:        v.AccessCount,
		})
	}
	return &pb.ListSharedWithMeResponse{Files: out}, nil
}

func userFileToPB(uf *models.UserFile) pb.UserFile {
	out := pb.UserFile{
		ID:        uf.ID,
		Filename:  uf.Filename,
		MimeType:  uf.MimeType,
		FolderID:  uf.FolderID,
		CreatedAt: uf.CreatedAt,
	}
	if uf.File != nil {
		out.ContentHash = uf.File.ContentHash
		out.SizeBytes = uf.File.SizeBytes
	}
	return out
}

func shareOptionsFromPB(o pb.ShareOptions) services.ShareOptions {
	return services.ShareOptions{
		MaxDownloads:     o.MaxDownloads,
		ExpiresAt:        o.ExpiresAt,
		AllowedUsernames: o.AllowedUsernames,
	}
}

func shareToPB(v *services.ShareView) pb.Share {
	return pb.Share{
		ID:                 v.ID,
		UserFileID:         v.UserFileID,
		Token:              v.Token,
		Link:               v.Link,
		MaxDownloads:       v.MaxDownloads,
		DownloadCount:      v.DownloadCount,
		RemainingDownloads: v.RemainingDownloads,
		ExpiresAt:          v.ExpiresAt,
		AllowedUsernames:   v.AllowedUsernames,
		Status:             string(v.Status),
		CreatedAt:          v.CreatedAt,
	}
}
