package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/vaultshare/internal/common"
	"github.com/dmitrijs2005/vaultshare/internal/cryptox"
	"github.com/dmitrijs2005/vaultshare/internal/logging"
	"github.com/dmitrijs2005/vaultshare/internal/server/models"
)

// AccessRequest is one redemption attempt. UserID and Username identify
// the authenticated caller and are empty for anonymous callers.
type AccessRequest struct {
	Token            string
	Password         string
	UserID           string
	Username         string
	SourceIdentifier string
	UserAgent        string
}

// AccessGrant carries everything a recipient needs to fetch and decrypt the
// shared file.
type AccessGrant struct {
	ShareID            string
	Filename           string
	MimeType           string
	SizeBytes          int64
	ContentKey         []byte
	DownloadURL        string
	DownloadCount      int
	RemainingDownloads *int
}

// malformedTokenBucket is the limiter key shared by every token that fails
// the format check. It can never collide with a real token.
const malformedTokenBucket = "malformed"

// AccessShare redeems a share. Checks run in a fixed order: rate limit,
// token format, lookup, expiry, download budget, allowlist, password.
// Every attempt is written to the access log exactly once, including those
// cut short by a server-side failure (models.OutcomeError).
//
// Unknown tokens, allowlist denials and wrong passwords all return
// common.ErrInvalidCredentials, and the first two spend one key derivation
// so they cost the same as a wrong password. Only the audit log records the
// real reason.
func (s *ShareService) AccessShare(ctx context.Context, req *AccessRequest) (*AccessGrant, error) {
	attempt := AccessAttempt{
		Token:            req.Token,
		SourceIdentifier: req.SourceIdentifier,
		UserAgent:        req.UserAgent,
	}
	source := SanitizeSource(req.SourceIdentifier)
	log := s.log.With("source", source)

	wellFormed := ValidateTokenFormat(req.Token)
	bucket := req.Token
	if !wellFormed {
		attempt.Token = truncate(req.Token, ShareTokenLength)
		bucket = malformedTokenBucket
	}

	allowed, err := s.limiter.Allow(ctx, bucket, source)
	if err != nil {
		s.audit.Record(ctx, attempt, models.OutcomeError, "rate limiter unavailable")
		log.Error(ctx, "rate limiter unavailable", "error", err)
		return nil, common.ErrorInternal
	}
	if !allowed {
		s.audit.Record(ctx, attempt, models.OutcomeRateLimited, "")
		log.Warn(ctx, "share access rate limited")
		return nil, common.ErrRateLimited
	}

	if !wellFormed {
		s.audit.Record(ctx, attempt, models.OutcomeNotFound, "malformed token")
		return nil, common.ErrInvalidCredentials
	}

	share, err := s.repomanager.Shares(s.db).GetByToken(ctx, req.Token)
	if errors.Is(err, common.ErrorNotFound) {
		s.burn(ctx, log, req.Password)
		s.audit.Record(ctx, attempt, models.OutcomeNotFound, "unknown token")
		return nil, common.ErrInvalidCredentials
	}
	if err != nil {
		s.audit.Record(ctx, attempt, models.OutcomeError, "share lookup failed")
		log.Error(ctx, "share lookup failed", "error", err)
		return nil, common.ErrorInternal
	}
	log = log.With("share_id", share.ID)

	if share.IsExpired(s.now()) {
		s.audit.Record(ctx, attempt, models.OutcomeExpired, "")
		return nil, common.ErrShareExpired
	}
	if share.IsExhausted() {
		s.audit.Record(ctx, attempt, models.OutcomeExhausted, "")
		return nil, common.ErrShareExhausted
	}
	if !share.Allows(req.Username) {
		s.burn(ctx, log, req.Password)
		s.audit.Record(ctx, attempt, models.OutcomeDenied, "caller not in allowlist")
		return nil, common.ErrInvalidCredentials
	}

	uf, err := s.repomanager.UserFiles(s.db).GetByID(ctx, share.UserFileID)
	if err != nil {
		s.audit.Record(ctx, attempt, models.OutcomeError, "shared file lookup failed")
		log.Error(ctx, "shared file lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	contentKey, err := s.crypto.OpenEnvelope(ctx, cryptox.Envelope{WrappedKey: share.WrappedKey, Salt: share.Salt}, req.Password)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			s.audit.Record(ctx, attempt, models.OutcomeError, "request cancelled")
			return nil, ctxErr
		}
		s.audit.Record(ctx, attempt, models.OutcomeWrongPassword, "envelope did not open")
		log.Info(ctx, "share access with wrong password")
		return nil, common.ErrInvalidCredentials
	}

	url, err := s.blobs.PresignGet(ctx, uf.File.StoragePath, s.presignTTL)
	if err != nil {
		common.WipeByteArray(contentKey)
		s.audit.Record(ctx, attempt, models.OutcomeError, "presign failed")
		log.Error(ctx, "presign failed", "error", err)
		return nil, common.ErrorInternal
	}

	// Expiry is judged again at the moment of the increment, not at the
	// start of the request.
	at := s.now()
	count, err := s.repomanager.Shares(s.db).IncrementDownloadCount(ctx, req.Token, at)
	if err != nil {
		common.WipeByteArray(contentKey)
		if errors.Is(err, common.ErrConcurrencyConflict) {
			if share.IsExpired(at) {
				s.audit.Record(ctx, attempt, models.OutcomeExpired, "expired during redemption")
				return nil, common.ErrShareExpired
			}
			s.audit.Record(ctx, attempt, models.OutcomeExhausted, "download budget taken concurrently")
			return nil, common.ErrShareExhausted
		}
		s.audit.Record(ctx, attempt, models.OutcomeError, "download count update failed")
		log.Error(ctx, "download count update failed", "error", err)
		return nil, common.ErrorInternal
	}
	share.DownloadCount = count

	s.audit.Record(ctx, attempt, models.OutcomeSuccess, "")
	log.Info(ctx, "share redeemed", "download_count", count)
	s.rememberRecipient(ctx, log, req.UserID, share.ID)

	return &AccessGrant{
		ShareID:            share.ID,
		Filename:           uf.Filename,
		MimeType:           uf.MimeType,
		SizeBytes:          uf.File.SizeBytes,
		ContentKey:         contentKey,
		DownloadURL:        url,
		DownloadCount:      count,
		RemainingDownloads: share.RemainingDownloads(),
	}, nil
}

// rememberRecipient adds the share to a signed-in caller's "shared with me"
// list. The download has already been granted, so failures are only logged.
func (s *ShareService) rememberRecipient(ctx context.Context, log logging.Logger, userID, shareID string) {
	if userID == "" {
		return
	}
	if err := s.repomanager.SharedAccess(s.db).Upsert(context.WithoutCancel(ctx), userID, shareID, s.now()); err != nil {
		log.Warn(ctx, "failed to record shared file access", "user_id", userID, "error", err)
	}
}

func (s *ShareService) burn(ctx context.Context, log logging.Logger, password string) {
	if err := s.crypto.BurnDerivation(ctx, password); err != nil && ctx.Err() == nil {
		log.Warn(ctx, "decoy derivation failed", "error", err)
	}
}
