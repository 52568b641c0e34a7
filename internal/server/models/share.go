package models

import (
	"slices"
	"time"
)

type ShareStatus string

const (
	ShareActive    ShareStatus = "active"
	ShareExpired   ShareStatus = "expired"
	ShareExhausted ShareStatus = "exhausted"
)

// FileShare grants password-gated access to one UserFile without an account.
// MaxDownloads and ExpiresAt are nil when unlimited. AllowedUsernames is nil
// when anyone holding the token and password may redeem it.
type FileShare struct {
	ID               string
	UserFileID       string
	OwnerID          string
	ShareToken       string
	WrappedKey       []byte
	Salt             []byte
	MaxDownloads     *int
	DownloadCount    int
	ExpiresAt        *time.Time
	AllowedUsernames []string
	CreatedAt        time.Time
}

func (s *FileShare) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

func (s *FileShare) IsExhausted() bool {
	return s.MaxDownloads != nil && s.DownloadCount >= *s.MaxDownloads
}

// Status reports expiry ahead of exhaustion.
func (s *FileShare) Status(now time.Time) ShareStatus {
	switch {
	case s.IsExpired(now):
		return ShareExpired
	case s.IsExhausted():
		return ShareExhausted
	default:
		return ShareActive
	}
}

// Allows reports whether username may redeem the share. An anonymous caller
// never passes a non-nil allowlist.
func (s *FileShare) Allows(username string) bool {
	if s.AllowedUsernames == nil {
		return true
	}
	return username != "" && slices.Contains(s.AllowedUsernames, username)
}

// RemainingDownloads is nil for unlimited shares.
func (s *FileShare) RemainingDownloads() *int {
	if s.MaxDownloads == nil {
		return nil
	}
	n := max(*s.MaxDownloads-s.DownloadCount, 0)
	return &n
}
