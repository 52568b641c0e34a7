package accesslogs

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vaultshare/internal/dbx"
	"github.com/dmitrijs2005/vaultshare/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Record(ctx context.Context, e *models.ShareAccessLog) error {
	query := `INSERT INTO share_access_logs (share_token, occurred_at, source_identifier, user_agent, outcome, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, e.ShareToken, e.OccurredAt.UTC(), e.SourceIdentifier, e.UserAgent, string(e.Outcome), e.Reason).
		Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Stats computes every counter in a single statement so the numbers are
// consistent with each other. Failed attempts are derived, not counted.
func (r *PostgresRepository) Stats(ctx context.Context, token string, recentSince time.Time) (*models.AccessStats, error) {
	query := `SELECT
			count(*),
			count(*) FILTER (WHERE outcome = 'success'),
			count(*) FILTER (WHERE occurred_at >= $2),
			count(DISTINCT source_identifier)
		FROM share_access_logs
		WHERE share_token = $1`

	s := &models.AccessStats{}
	if err := r.db.QueryRowContext(ctx, query, token, recentSince.UTC()).
		Scan(&s.TotalAttempts, &s.SuccessfulAttempts, &s.RecentAttempts, &s.UniqueIPs); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	s.FailedAttempts = s.TotalAttempts - s.SuccessfulAttempts
	return s, nil
}

func (r *PostgresRepository) ListByToken(ctx context.Context, token string, limit int) ([]*models.ShareAccessLog, error) {
	query := `SELECT id, share_token, occurred_at, source_identifier, user_agent, outcome, reason
		FROM share_access_logs
		WHERE share_token = $1
		ORDER BY occurred_at DESC, id DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, token, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select access logs: %w", err)
	}
	defer rows.Close()

	var result []*models.ShareAccessLog
	for rows.Next() {
		var (
			e       models.ShareAccessLog
			outcome string
		)
		if err := rows.Scan(&e.ID, &e.ShareToken, &e.OccurredAt, &e.SourceIdentifier, &e.UserAgent, &outcome, &e.Reason); err != nil {
			return nil, err
		}
		e.Outcome = models.AccessOutcome(outcome)
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM share_access_logs WHERE occurred_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}
