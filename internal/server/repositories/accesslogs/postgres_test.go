package accesslogs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/vaultshare/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewPostgresRepository(db), mock
}

func TestRecord(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	q := `(?s)^INSERT\s+INTO\s+share_access_logs\s*\(share_token,\s*occurred_at,\s*source_identifier,\s*user_agent,\s*outcome,\s*reason\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*RETURNING\s+id$`
	mock.ExpectQuery(q).
		WithArgs("tok", at, "203.0.113.7", "curl/8", "wrong-password", "envelope unwrap failed").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(77)))

	e := &models.ShareAccessLog{
		ShareToken: "tok", OccurredAt: at, SourceIdentifier: "203.0.113.7", UserAgent: "curl/8",
		Outcome: models.OutcomeWrongPassword, Reason: "envelope unwrap failed",
	}
	require.NoError(t, repo.Record(context.Background(), e))
	assert.Equal(t, int64(77), e.ID)

	mock.ExpectQuery(q).WillReturnError(errors.New("disk full"))
	assert.ErrorContains(t, repo.Record(context.Background(), &models.ShareAccessLog{}), "disk full")
}

func TestStats(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	since := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	q := `(?s)count\(\*\),\s*count\(\*\)\s+FILTER\s+\(WHERE\s+outcome\s*=\s*'success'\),\s*count\(\*\)\s+FILTER\s+\(WHERE\s+occurred_at\s*>=\s*\$2\),\s*count\(DISTINCT\s+source_identifier\)\s+FROM\s+share_access_logs\s+WHERE\s+share_token\s*=\s*\$1$`
	mock.ExpectQuery(q).WithArgs("tok", since).
		WillReturnRows(sqlmock.NewRows([]string{"total", "successful", "recent", "unique"}).AddRow(7, 3, 2, 4))

	s, err := repo.Stats(context.Background(), "tok", since)
	require.NoError(t, err)
	assert.Equal(t, models.AccessStats{
		TotalAttempts: 7, SuccessfulAttempts: 3, FailedAttempts: 4, RecentAttempts: 2, UniqueIPs: 4,
	}, *s)
}

func TestListByToken(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`ORDER\s+BY\s+occurred_at\s+DESC,\s*id\s+DESC\s+LIMIT\s+\$2$`).WithArgs("tok", 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "share_token", "occurred_at", "source_identifier", "user_agent", "outcome", "reason"}).
			AddRow(int64(2), "tok", now, "10.0.0.1", "", "success", "").
			AddRow(int64(1), "tok", now, "10.0.0.2", "", "rate-limited", ""))

	list, err := repo.ListByToken(context.Background(), "tok", 50)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.OutcomeSuccess, list[0].Outcome)
	assert.Equal(t, models.OutcomeRateLimited, list[1].Outcome)
}

func TestDeleteOlderThan(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`^DELETE\s+FROM\s+share_access_logs\s+WHERE\s+occurred_at\s*<\s*\$1$`).WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 12))

	n, err := repo.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
}
