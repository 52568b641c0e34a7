package models

import "time"

// SharedFileAccess remembers that a signed-in user redeemed a share, so the
// file shows up in their "shared with me" list.
type SharedFileAccess struct {
	UserID          string
	ShareID         string
	FirstAccessedAt time.Time
	LastAccessedAt  time.Time
	AccessCount     int
}

// SharedFile is one "shared with me" row: the recorded access joined with
// the share and the file it points at.
type SharedFile struct {
	Access        SharedFileAccess
	Share         *FileShare
	OwnerUserName string
	Filename      string
	MimeType      string
	SizeBytes     int64
}
