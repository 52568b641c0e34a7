// Package ratelimits stores sliding-window hit records for rate-limited keys.
//
// All methods are meant to run inside one transaction per check: Lock
// serializes concurrent checks for the same key until commit.
package ratelimits

import (
	"context"
	"time"
)

type Repository interface {
	// Lock takes a transaction-scoped advisory lock on key.
	Lock(ctx context.Context, key string) error
	CountSince(ctx context.Context, key string, since time.Time) (int, error)
	Insert(ctx context.Context, key string, at time.Time) error
	// Prune deletes hits older than cutoff for every key.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}
