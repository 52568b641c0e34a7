// Package models defines server-side data models persisted in the database.
package models

import "time"

// File is content-addressed blob metadata. There is exactly one File per
// distinct ContentHash; users reference it through UserFile rows.
type File struct {
	ID          string
	ContentHash string
	SizeBytes   int64
	StoragePath string
	CreatedAt   time.Time
}

// UserFile is the ownership edge between a user and a File. EncryptionKey is
// the file's content key sealed under the owner's master key.
type UserFile struct {
	ID            string
	UserID        string
	FileID        string
	Filename      string
	MimeType      string
	EncryptionKey []byte
	FolderID      *string
	IsStarred     bool
	IsTrashed     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// File is populated by queries that join the files table.
	File *File
}
