package models

import "time"

// User is an account owner. Salt and Verifier back the login handshake;
// StorageQuota and UsedStorage are in bytes.
type User struct {
	ID           string
	UserName     string
	Salt         []byte
	Verifier     []byte
	StorageQuota int64
	UsedStorage  int64
	CreatedAt    time.Time
}
