package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/vaultshare/internal/common"
	"github.com/dmitrijs2005/vaultshare/internal/cryptox"
	"github.com/dmitrijs2005/vaultshare/internal/logging"
	"github.com/dmitrijs2005/vaultshare/internal/server/blobstore"
	"github.com/dmitrijs2005/vaultshare/internal/server/models"
	"github.com/dmitrijs2005/vaultshare/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vaultshare/internal/server/repositories/shares"
)

const (
	maxTokenAttempts   = 5
	maxAllowedUsers    = 100
	defaultLogPageSize = 50
)

// ShareOptions are the owner-chosen limits of a share. Nil means unlimited;
// a nil AllowedUsernames lets anyone with the token and password in.
type ShareOptions struct {
	MaxDownloads     *int
	ExpiresAt        *time.Time
	AllowedUsernames []string
}

type CreateShareRequest struct {
	UserFileID string
	Password   string
	ShareOptions
}

// UpdateShareRequest replaces the limits of a share. A non-empty
// NewPassword re-wraps the content key under a fresh salt.
type UpdateShareRequest struct {
	NewPassword string
	ShareOptions
}

// ShareView is the owner's view of a share. It never carries key material.
type ShareView struct {
	ID                 string
	UserFileID         string
	Token              string
	Link               string
	MaxDownloads       *int
	DownloadCount      int
	RemainingDownloads *int
	ExpiresAt          *time.Time
	AllowedUsernames   []string
	Status             models.ShareStatus
	CreatedAt          time.Time
}

// ShareMetadata is what anyone holding a token may learn before entering
// the password.
type ShareMetadata struct {
	Filename           string
	MimeType           string
	SizeBytes          int64
	MaxDownloads       *int
	DownloadCount      int
	RemainingDownloads *int
	ExpiresAt          *time.Time
	RequiresLogin      bool
	Status             models.ShareStatus
	CreatedAt          time.Time
}

// ShareService is the share access controller: it creates password-gated
// shares for owners and redeems them for anonymous recipients.
type ShareService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	crypto      *cryptox.Manager
	keyring     *cryptox.Keyring
	blobs       blobstore.Store
	limiter     Limiter
	audit       *AccessLogService
	baseURL     string
	presignTTL  time.Duration
	log         logging.Logger
	now         func() time.Time
}

type ShareServiceDeps struct {
	DB         *sql.DB
	Repos      repomanager.RepositoryManager
	Crypto     *cryptox.Manager
	Keyring    *cryptox.Keyring
	Blobs      blobstore.Store
	Limiter    Limiter
	Audit      *AccessLogService
	BaseURL    string
	PresignTTL time.Duration
	Log        logging.Logger
}

func NewShareService(d ShareServiceDeps) *ShareService {
	return &ShareService{
		db:          d.DB,
		repomanager: d.Repos,
		crypto:      d.Crypto,
		keyring:     d.Keyring,
		blobs:       d.Blobs,
		limiter:     d.Limiter,
		audit:       d.Audit,
		baseURL:     d.BaseURL,
		presignTTL:  d.PresignTTL,
		log:         d.Log.With("module", "shares"),
		now:         time.Now,
	}
}

func (s *ShareService) view(share *models.FileShare) *ShareView {
	return &ShareView{
		ID:                 share.ID,
		UserFileID:         share.UserFileID,
		Token:              share.ShareToken,
		Link:               ShareLink(s.baseURL, share.ShareToken),
		MaxDownloads:       share.MaxDownloads,
		DownloadCount:      share.DownloadCount,
		RemainingDownloads: share.RemainingDownloads(),
		ExpiresAt:          share.ExpiresAt,
		AllowedUsernames:   share.AllowedUsernames,
		Status:             share.Status(s.now()),
		CreatedAt:          share.CreatedAt,
	}
}

// normalize validates o against the current time and returns a cleaned
// copy: usernames trimmed and deduplicated, expiry in UTC.
func (o ShareOptions) normalize(now time.Time, served int) (ShareOptions, []string) {
	var problems []string
	out := ShareOptions{MaxDownloads: o.MaxDownloads}

	if o.MaxDownloads != nil {
		switch {
		case *o.MaxDownloads < 1:
			problems = append(problems, "max downloads must be at least 1")
		case *o.MaxDownloads < served:
			problems = append(problems, fmt.Sprintf("max downloads cannot be below the %d downloads already served", served))
		}
	}
	if o.ExpiresAt != nil {
		if !o.ExpiresAt.After(now) {
			problems = append(problems, "expiry must be in the future")
		}
		exp := o.ExpiresAt.UTC()
		out.ExpiresAt = &exp
	}
	if o.AllowedUsernames != nil {
		names := make([]string, 0, len(o.AllowedUsernames))
		for _, n := range o.AllowedUsernames {
			n = strings.TrimSpace(n)
			if n != "" && !slices.Contains(names, n) {
				names = append(names, n)
			}
		}
		switch {
		case len(names) == 0:
			problems = append(problems, "allowed usernames must not be empty when set")
		case len(names) > maxAllowedUsers:
			problems = append(problems, fmt.Sprintf("at most %d allowed usernames", maxAllowedUsers))
		}
		out.AllowedUsernames = names
	}
	return out, problems
}

// ownedUserFile loads a user file and checks it belongs to ownerID.
func (s *ShareService) ownedUserFile(ctx context.Context, ownerID, userFileID string) (*models.UserFile, error) {
	uf, err := s.repomanager.UserFiles(s.db).GetByID(ctx, userFileID)
	if err != nil {
		return nil, err
	}
	if uf.UserID != ownerID {
		return nil, common.ErrorForbidden
	}
	return uf, nil
}

func (s *ShareService) ownedShare(ctx context.Context, ownerID, shareID string) (*models.FileShare, error) {
	share, err := s.repomanager.Shares(s.db).GetByID(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if share.OwnerID != ownerID {
		return nil, common.ErrorForbidden
	}
	return share, nil
}

// envelopeFor wraps the owner's content key of uf under password.
func (s *ShareService) envelopeFor(ctx context.Context, uf *models.UserFile, password string) (*cryptox.Envelope, error) {
	contentKey, err := s.keyring.Open(uf.UserID, uf.EncryptionKey)
	if err != nil {
		s.log.Error(ctx, "cannot open owner content key", "user_file_id", uf.ID, "error", err)
		return nil, common.ErrorInternal
	}
	defer common.WipeByteArray(contentKey)

	return s.crypto.GenerateEnvelope(ctx, contentKey, password)
}

// CreateShare issues a new share for one of the owner's files. The password
// must satisfy the password policy.
func (s *ShareService) CreateShare(ctx context.Context, ownerID string, req *CreateShareRequest) (*ShareView, error) {
	if err := s.crypto.ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	opts, problems := req.ShareOptions.normalize(s.now(), 0)
	if err := common.NewValidationError(problems); err != nil {
		return nil, err
	}

	uf, err := s.ownedUserFile(ctx, ownerID, req.UserFileID)
	if err != nil {
		return nil, err
	}

	env, err := s.envelopeFor(ctx, uf, req.Password)
	if err != nil {
		return nil, err
	}

	share := &models.FileShare{
		UserFileID:       uf.ID,
		OwnerID:          ownerID,
		WrappedKey:       env.WrappedKey,
		Salt:             env.Salt,
		MaxDownloads:     opts.MaxDownloads,
		ExpiresAt:        opts.ExpiresAt,
		AllowedUsernames: opts.AllowedUsernames,
	}

	repo := s.repomanager.Shares(s.db)
	for attempt := 1; ; attempt++ {
		token, err := NewShareToken()
		if err != nil {
			return nil, err
		}
		share.ShareToken = token

		created, err := repo.Create(ctx, share)
		if err == nil {
			share = created
			break
		}
		if !errors.Is(err, shares.ErrTokenCollision) || attempt >= maxTokenAttempts {
			return nil, fmt.Errorf("create share: %w", err)
		}
		s.log.Warn(ctx, "share token collision, retrying", "attempt", attempt)
	}

	s.log.Info(ctx, "share created", "share_id", share.ID, "user_file_id", uf.ID, "owner_id", ownerID)
	return s.view(share), nil
}

// UpdateShare replaces the limits of a share and optionally its password.
func (s *ShareService) UpdateShare(ctx context.Context, ownerID, shareID string, req *UpdateShareRequest) (*ShareView, error) {
	if req.NewPassword != "" {
		if err := s.crypto.ValidatePassword(req.NewPassword); err != nil {
			return nil, err
		}
	}

	share, err := s.ownedShare(ctx, ownerID, shareID)
	if err != nil {
		return nil, err
	}

	opts, problems := req.ShareOptions.normalize(s.now(), share.DownloadCount)
	if err := common.NewValidationError(problems); err != nil {
		return nil, err
	}
	share.MaxDownloads = opts.MaxDownloads
	share.ExpiresAt = opts.ExpiresAt
	share.AllowedUsernames = opts.AllowedUsernames

	if req.NewPassword != "" {
		uf, err := s.ownedUserFile(ctx, ownerID, share.UserFileID)
		if err != nil {
			return nil, err
		}
		env, err := s.envelopeFor(ctx, uf, req.NewPassword)
		if err != nil {
			return nil, err
		}
		share.WrappedKey, share.Salt = env.WrappedKey, env.Salt
	}

	if err := s.repomanager.Shares(s.db).Update(ctx, share); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "share updated", "share_id", share.ID, "password_changed", req.NewPassword != "")
	return s.view(share), nil
}

func (s *ShareService) ListShares(ctx context.Context, ownerID string) ([]*ShareView, error) {
	list, err := s.repomanager.Shares(s.db).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	views := make([]*ShareView, 0, len(list))
	for _, sh := range list {
		views = append(views, s.view(sh))
	}
	return views, nil
}

// DeleteShare removes a share. Its audit rows are kept.
func (s *ShareService) DeleteShare(ctx context.Context, ownerID, shareID string) error {
	if _, err := s.ownedShare(ctx, ownerID, shareID); err != nil {
		return err
	}
	if err := s.repomanager.Shares(s.db).Delete(ctx, shareID, ownerID); err != nil {
		return err
	}
	s.log.Info(ctx, "share deleted", "share_id", shareID, "owner_id", ownerID)
	return nil
}

func (s *ShareService) GetShareStats(ctx context.Context, ownerID, shareID string) (*models.AccessStats, error) {
	share, err := s.ownedShare(ctx, ownerID, shareID)
	if err != nil {
		return nil, err
	}
	return s.audit.Stats(ctx, share.ShareToken)
}

func (s *ShareService) GetShareAccessLogs(ctx context.Context, ownerID, shareID string, limit int) ([]*models.ShareAccessLog, error) {
	share, err := s.ownedShare(ctx, ownerID, shareID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultLogPageSize
	}
	return s.audit.Recent(ctx, share.ShareToken, limit)
}

// GetShareMetadata describes a share to a prospective recipient. Unknown
// and malformed tokens fail with common.ErrInvalidCredentials.
func (s *ShareService) GetShareMetadata(ctx context.Context, token string) (*ShareMetadata, error) {
	if !ValidateTokenFormat(token) {
		return nil, common.ErrInvalidCredentials
	}
	share, err := s.repomanager.Shares(s.db).GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	uf, err := s.repomanager.UserFiles(s.db).GetByID(ctx, share.UserFileID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	return &ShareMetadata{
		Filename:           uf.Filename,
		MimeType:           uf.MimeType,
		SizeBytes:          uf.File.SizeBytes,
		MaxDownloads:       share.MaxDownloads,
		DownloadCount:      share.DownloadCount,
		RemainingDownloads: share.RemainingDownloads(),
		ExpiresAt:          share.ExpiresAt,
		RequiresLogin:      share.AllowedUsernames != nil,
		Status:             share.Status(s.now()),
		CreatedAt:          share.CreatedAt,
	}, nil
}

// SharedFileView is one entry of a recipient's "shared with me" list.
// Re-downloading still takes the share password.
type SharedFileView struct {
	ShareID            string
	Token              string
	Link               string
	OwnerUserName      string
	Filename           string
	MimeType           string
	SizeBytes          int64
	DownloadCount      int
	RemainingDownloads *int
	ExpiresAt          *time.Time
	Status             models.ShareStatus
	FirstAccessedAt    time.Time
	LastAccessedAt     time.Time
	AccessCount        int
}

// ListSharedWithMe returns the shares userID has redeemed while signed in.
// Expired shares are left out.
func (s *ShareService) ListSharedWithMe(ctx context.Context, userID string) ([]*SharedFileView, error) {
	now := s.now()
	list, err := s.repomanager.SharedAccess(s.db).ListForUser(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	out := make([]*SharedFileView, 0, len(list))
	for _, sf := range list {
		if sf.Share.IsExpired(now) {
			continue
		}
		out = append(out, &SharedFileView{
			ShareID:            sf.Share.ID,
			Token:              sf.Share.ShareToken,
			Link:               ShareLink(s.baseURL, sf.Share.ShareToken),
			OwnerUserName:      sf.OwnerUserName,
			Filename:           sf.Filename,
			MimeType:           sf.MimeType,
			SizeBytes:          sf.SizeBytes,
			DownloadCount:      sf.Share.DownloadCount,
			RemainingDownloads: sf.Share.RemainingDownloads(),
			ExpiresAt:          sf.Share.ExpiresAt,
			Status:             sf.Share.Status(now),
			FirstAccessedAt:    sf.Access.FirstAccessedAt,
			LastAccessedAt:     sf.Access.LastAccessedAt,
			AccessCount:        sf.Access.AccessCount,
		})
	}
	return out, nil
}
