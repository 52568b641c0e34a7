// Package blobstore keeps encrypted file blobs in an S3-compatible bucket.
// Blobs are opaque to the store: they are already encrypted by the client.
package blobstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that downloads key without
	// further credentials.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// NewStorageKey returns a fresh object key partitioned by date.
func NewStorageKey(now time.Time) string {
	return fmt.Sprintf("blobs/%d/%02d/%02d/%v", now.Year(), now.Month(), now.Day(), uuid.New())
}
