package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/vaultshare/internal/dbx"
	"github.com/dmitrijs2005/vaultshare/internal/server/repositories/repomanager"
)

// Limiter decides whether one more redemption attempt may proceed.
type Limiter interface {
	Allow(ctx context.Context, token, source string) (bool, error)
}

// RateLimiter is a sliding-window limiter persisted in PostgreSQL, so every
// server instance sees the same counts. Two windows apply to each attempt:
// one per (token, source) pair and one per token across all sources.
type RateLimiter struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	perSource   int
	perToken    int
	window      time.Duration
	now         func() time.Time
}

func NewRateLimiter(db *sql.DB, m repomanager.RepositoryManager, perSource, perToken int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		db:          db,
		repomanager: m,
		perSource:   perSource,
		perToken:    perToken,
		window:      window,
		now:         time.Now,
	}
}

type limitKey struct {
	key   string
	limit int
}

func (l *RateLimiter) keys(token, source string) []limitKey {
	return []limitKey{
		{key: "share:" + token, limit: l.perToken},
		{key: "share:" + token + "|src:" + source, limit: l.perSource},
	}
}

// Allow counts admitted attempts in the window ending now and admits this
// one if every key is under its limit. Locks are always taken in the same
// key order. Rejected attempts are not counted.
func (l *RateLimiter) Allow(ctx context.Context, token, source string) (bool, error) {
	now := l.now()
	since := now.Add(-l.window)
	keys := l.keys(token, source)
	allowed := true

	err := dbx.WithTx(ctx, l.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := l.repomanager.RateLimits(tx)
		for _, k := range keys {
			if err := repo.Lock(ctx, k.key); err != nil {
				return err
			}
		}
		for _, k := range keys {
			n, err := repo.CountSince(ctx, k.key, since)
			if err != nil {
				return err
			}
			if n >= k.limit {
				allowed = false
				return nil
			}
		}
		for _, k := range keys {
			if err := repo.Insert(ctx, k.key, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return allowed, nil
}

// Prune drops hits that can no longer affect any window.
func (l *RateLimiter) Prune(ctx context.Context) (int64, error) {
	return l.repomanager.RateLimits(l.db).Prune(ctx, l.now().Add(-l.window))
}
