package services

import (
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/dmitrijs2005/vaultshare/internal/client/client"
	"github.com/dmitrijs2005/vaultshare/internal/cryptox"
	"github.com/dmitrijs2005/vaultshare/internal/filex"
	pb "github.com/dmitrijs2005/vaultshare/internal/proto"
)

type ShareService struct {
	client client.Client
	files  *FileService
	policy cryptox.PasswordPolicy
}

func NewShareService(c client.Client, files *FileService) *ShareService {
	return &ShareService{client: c, files: files, policy: cryptox.DefaultPasswordPolicy()}
}

// CheckPassword validates a share password locally, before any round trip.
func (s *ShareService) CheckPassword(password string) error {
	return s.policy.Validate(password)
}

func (s *ShareService) Create(ctx context.Context, userFileID, password string, opts pb.ShareOptions) (*pb.Share, error) {
	if err := s.CheckPassword(password); err != nil {
		return nil, err
	}
	opts.AllowedUsernames = cleanNames(opts.AllowedUsernames)
	return s.client.CreateShare(ctx, &pb.CreateShareRequest{UserFileID: userFileID, Password: password, ShareOptions: opts})
}

// Update changes a share's limits and, when newPassword is set, re-keys it.
func (s *ShareService) Update(ctx context.Context, shareID, newPassword string, opts pb.ShareOptions) (*pb.Share, error) {
	if newPassword != "" {
		if err := s.CheckPassword(newPassword); err != nil {
			return nil, err
		}
	}
	opts.AllowedUsernames = cleanNames(opts.AllowedUsernames)
	return s.client.UpdateShare(ctx, &pb.UpdateShareRequest{ShareID: shareID, NewPassword: newPassword, ShareOptions: opts})
}

func (s *ShareService) List(ctx context.Context) ([]pb.Share, error) {
	return s.client.ListShares(ctx)
}

// SharedWithMe lists files other users shared that this account has
// downloaded. Expired shares are left out by the server.
func (s *ShareService) SharedWithMe(ctx context.Context) ([]pb.SharedFile, error) {
	return s.client.ListSharedWithMe(ctx)
}

func (s *ShareService) Delete(ctx context.Context, shareID string) error {
	return s.client.DeleteShare(ctx, shareID)
}

func (s *ShareService) Stats(ctx context.Context, shareID string) (*pb.AccessStats, error) {
	return s.client.GetShareStats(ctx, shareID)
}

func (s *ShareService) Logs(ctx context.Context, shareID string, limit int) ([]pb.AccessLogEntry, error) {
	return s.client.GetShareAccessLogs(ctx, shareID, limit)
}

func (s *ShareService) Metadata(ctx context.Context, tokenOrLink string) (*pb.GetShareMetadataResponse, error) {
	return s.client.GetShareMetadata(ctx, TokenFromLink(tokenOrLink))
}

// AccessResult is a redeemed share written to disk.
type AccessResult struct {
	Path  string
	Grant *pb.AccessShareResponse
}

// Access redeems a share, decrypts the file and writes it into dir.
func (s *ShareService) Access(ctx context.Context, tokenOrLink, password, dir string) (*AccessResult, error) {
	grant, err := s.client.AccessShare(ctx, TokenFromLink(tokenOrLink), password)
	if err != nil {
		return nil, err
	}

	plain, err := s.files.fetchAndDecrypt(ctx, grant.DownloadURL, grant.FileCipher, grant.ContentKey)
	if err != nil {
		return nil, err
	}
	p, err := filex.WriteUnique(dir, grant.Filename, plain)
	if err != nil {
		return nil, err
	}
	return &AccessResult{Path: p, Grant: grant}, nil
}

// TokenFromLink accepts either a bare token or a full share link.
func TokenFromLink(s string) string {
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return s
	}
	return path.Base(strings.TrimSuffix(u.Path, "/"))
}

func cleanNames(names []string) []string {
	var out []string
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
