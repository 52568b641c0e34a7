package shares

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/vaultshare/internal/common"
	"github.com/dmitrijs2005/vaultshare/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
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

var shareCols = []string{"id", "user_file_id", "owner_id", "share_token", "wrapped_key", "salt",
	"max_downloads", "download_count", "expires_at", "allowed_usernames", "created_at"}

const insertQ = `(?s)^INSERT\s+INTO\s+file_shares\s*\(user_file_id,\s*owner_id,\s*share_token,\s*wrapped_key,\s*salt,\s*max_downloads,\s*download_count,\s*expires_at,\s*allowed_usernames\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*0,\s*\$7,\s*\$8\)\s*RETURNING\s+id,\s*created_at$`

func intPtr(v int) *int { return &v }

func TestCreate_WithLimits(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectQuery(insertQ).
		WithArgs("uf-1", "u-1", "tok", []byte("wrapped"), []byte("salt"), int64(3), exp, `["alice","bob"]`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("s-1", now))

	sh, err := repo.Create(context.Background(), &models.FileShare{
		UserFileID: "uf-1", OwnerID: "u-1", ShareToken: "tok", WrappedKey: []byte("wrapped"), Salt: []byte("salt"),
		MaxDownloads: intPtr(3), ExpiresAt: &exp, AllowedUsernames: []string{"alice", "bob"},
	})
	require.NoError(t, err)
	assert.Equal(t, "s-1", sh.ID)
	assert.Equal(t, 0, sh.DownloadCount)
}

func TestCreate_Unlimited(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).
		WithArgs("uf-1", "u-1", "tok", []byte("w"), []byte("s"), nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("s-1", time.Now()))

	_, err := repo.Create(context.Background(), &models.FileShare{
		UserFileID: "uf-1", OwnerID: "u-1", ShareToken: "tok", WrappedKey: []byte("w"), Salt: []byte("s"),
	})
	require.NoError(t, err)
}

func TestCreate_TokenCollision(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "file_shares_share_token_key"})
	_, err := repo.Create(context.Background(), &models.FileShare{ShareToken: "dup"})
	assert.ErrorIs(t, err, ErrTokenCollision)

	mock.ExpectQuery(insertQ).WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "file_shares_user_file_id_fkey"})
	_, err = repo.Create(context.Background(), &models.FileShare{ShareToken: "orphan"})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("boom"))
	_, err = repo.Create(context.Background(), &models.FileShare{ShareToken: "x"})
	assert.ErrorContains(t, err, "db error: boom")
}

func TestGetByToken(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `(?s)FROM\s+file_shares\s+WHERE\s+share_token\s*=\s*\$1$`
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q).WithArgs("tok").WillReturnRows(sqlmock.NewRows(shareCols).
		AddRow("s-1", "uf-1", "u-1", "tok", []byte("w"), []byte("s"), int64(5), int64(2), exp, []byte(`["alice"]`), time.Now()))

	sh, err := repo.GetByToken(context.Background(), "tok")
	require.NoError(t, err)
	require.NotNil(t, sh.MaxDownloads)
	assert.Equal(t, 5, *sh.MaxDownloads)
	assert.Equal(t, 2, sh.DownloadCount)
	require.NotNil(t, sh.ExpiresAt)
	assert.True(t, exp.Equal(*sh.ExpiresAt))
	assert.Equal(t, []string{"alice"}, sh.AllowedUsernames)

	mock.ExpectQuery(q).WithArgs("tok2").WillReturnRows(sqlmock.NewRows(shareCols).
		AddRow("s-2", "uf-1", "u-1", "tok2", []byte("w"), []byte("s"), nil, int64(0), nil, nil, time.Now()))
	sh, err = repo.GetByToken(context.Background(), "tok2")
	require.NoError(t, err)
	assert.Nil(t, sh.MaxDownloads)
	assert.Nil(t, sh.ExpiresAt)
	assert.Nil(t, sh.AllowedUsernames)

	mock.ExpectQuery(q).WithArgs("nope").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByToken(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListByOwner(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`WHERE\s+owner_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC$`).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(shareCols).
			AddRow("s-2", "uf-1", "u-1", "t2", []byte("w"), []byte("s"), nil, int64(0), nil, nil, time.Now()).
			AddRow("s-1", "uf-1", "u-1", "t1", []byte("w"), []byte("s"), int64(1), int64(1), nil, []byte(`[]`), time.Now()))

	list, err := repo.ListByOwner(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []string{}, list[1].AllowedUsernames)
}

func TestUpdateAndDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	updQ := `(?s)^UPDATE\s+file_shares\s+SET\s+wrapped_key\s*=\s*\$3,.*WHERE\s+id\s*=\s*\$1\s+AND\s+owner_id\s*=\s*\$2$`
	mock.ExpectExec(updQ).WithArgs("s-1", "u-1", []byte("w2"), []byte("s2"), int64(10), nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), &models.FileShare{
		ID: "s-1", OwnerID: "u-1", WrappedKey: []byte("w2"), Salt: []byte("s2"), MaxDownloads: intPtr(10),
	}))

	mock.ExpectExec(updQ).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Update(context.Background(), &models.FileShare{ID: "s-1", OwnerID: "other"}), common.ErrorNotFound)

	delQ := `^DELETE\s+FROM\s+file_shares\s+WHERE\s+id\s*=\s*\$1\s+AND\s+owner_id\s*=\s*\$2$`
	mock.ExpectExec(delQ).WithArgs("s-1", "u-1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "s-1", "u-1"))

	mock.ExpectExec(delQ).WithArgs("s-1", "u-1").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "s-1", "u-1"), common.ErrorNotFound)
}

func TestIncrementDownloadCount(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	q := `(?s)^UPDATE\s+file_shares\s+SET\s+download_count\s*=\s*download_count\s*\+\s*1\s+WHERE\s+share_token\s*=\s*\$1\s+AND\s+\(max_downloads\s+IS\s+NULL\s+OR\s+download_count\s*<\s*max_downloads\)\s+AND\s+\(expires_at\s+IS\s+NULL\s+OR\s+expires_at\s*>\s*\$2\)\s+RETURNING\s+download_count$`

	mock.ExpectQuery(q).WithArgs("tok", now).WillReturnRows(sqlmock.NewRows([]string{"download_count"}).AddRow(3))
	n, err := repo.IncrementDownloadCount(context.Background(), "tok", now)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	mock.ExpectQuery(q).WithArgs("tok", now).WillReturnError(sql.ErrNoRows)
	_, err = repo.IncrementDownloadCount(context.Background(), "tok", now)
	assert.ErrorIs(t, err, common.ErrConcurrencyConflict)

	mock.ExpectQuery(q).WithArgs("tok", now).WillReturnError(errors.New("boom"))
	_, err = repo.IncrementDownloadCount(context.Background(), "tok", now)
	assert.ErrorContains(t, err, "db error: boom")
}
