package services

import (
	"context"
	"database/sql"
	"net"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/vaultshare/internal/logging"
	"github.com/dmitrijs2005/vaultshare/internal/server/models"
	"github.com/dmitrijs2005/vaultshare/internal/server/repositories/repomanager"
)

const (
	maxUserAgentLength = 500
	maxReasonLength    = 200
)

// AccessLogService writes and aggregates the share redemption audit trail.
type AccessLogService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	recentWindow time.Duration
	log          logging.Logger
	now          func() time.Time
}

func NewAccessLogService(db *sql.DB, m repomanager.RepositoryManager, recentWindow time.Duration, log logging.Logger) *AccessLogService {
	return &AccessLogService{
		db:           db,
		repomanager:  m,
		recentWindow: recentWindow,
		log:          log.With("module", "accesslog"),
		now:          time.Now,
	}
}

// AccessAttempt describes one redemption attempt as seen by the transport.
type AccessAttempt struct {
	Token            string
	SourceIdentifier string
	UserAgent        string
}

// Record appends one audit row. A failed insert is logged, not returned:
// the outcome already decided for the caller stands.
func (s *AccessLogService) Record(ctx context.Context, a AccessAttempt, outcome models.AccessOutcome, reason string) {
	entry := &models.ShareAccessLog{
		ShareToken:       a.Token,
		OccurredAt:       s.now(),
		SourceIdentifier: SanitizeSource(a.SourceIdentifier),
		UserAgent:        SanitizeUserAgent(a.UserAgent),
		Outcome:          outcome,
		Reason:           truncate(reason, maxReasonLength),
	}
	if err := s.repomanager.AccessLogs(s.db).Record(context.WithoutCancel(ctx), entry); err != nil {
		s.log.Error(ctx, "failed to record access attempt", "outcome", outcome, "error", err)
	}
}

func (s *AccessLogService) Stats(ctx context.Context, token string) (*models.AccessStats, error) {
	return s.repomanager.AccessLogs(s.db).Stats(ctx, token, s.now().Add(-s.recentWindow))
}

func (s *AccessLogService) Recent(ctx context.Context, token string, limit int) ([]*models.ShareAccessLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.repomanager.AccessLogs(s.db).ListByToken(ctx, token, limit)
}

// CleanOldLogs deletes rows older than maxAge. A non-positive maxAge keeps
// everything.
func (s *AccessLogService) CleanOldLogs(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	n, err := s.repomanager.AccessLogs(s.db).DeleteOlderThan(ctx, s.now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info(ctx, "old access logs removed", "count", n)
	}
	return n, nil
}

// SanitizeSource normalizes an IP address. Anything else is recorded as
// "invalid", an empty value as "unknown".
func SanitizeSource(source string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return "unknown"
	}
	if ip := net.ParseIP(source); ip != nil {
		return ip.String()
	}
	return "invalid"
}

// SanitizeUserAgent drops control characters and caps the length.
func SanitizeUserAgent(ua string) string {
	ua = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, ua)
	if ua == "" {
		return "unknown"
	}
	return truncate(ua, maxUserAgentLength)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
