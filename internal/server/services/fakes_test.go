package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/vaultshare/internal/common"
	"github.com/dmitrijs2005/vaultshare/internal/cryptox"
	"github.com/dmitrijs2005/vaultshare/internal/dbx"
	"github.com/dmitrijs2005/vaultshare/internal/server/models"
	"github.com/dmitrijs2005/vaultshare/internal/server/repositories/accesslogs"
	"github.com/dmitrijs2005/vaultshare/internal/server/repositories/files"
	"github.com/dmitrijs2005/vaultshare/internal/server/repositories/ratelimits"
	"github.com/dmitrijs2005/vaultshare/internal/server/repositories/sharedaccess"
	"github.com/dmitrijs2005/vaultshare/internal/server/repositories/shares"
	"github.com/dmitrijs2005/vaultshare/internal/server/repositories/userfiles"
	"github.com/dmitrijs2005/vaultshare/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// memStore backs every fake repository. All methods hand out copies so
// concurrent tests never share a record with the store.
type memStore struct {
	mu sync.Mutex

	seq       int
	users     map[string]*models.User
	files     map[string]*models.File
	userFiles map[string]*models.UserFile
	shares    map[string]*models.FileShare
	logs      []models.ShareAccessLog
	hits      map[string][]time.Time
	access    map[[2]string]*models.SharedFileAccess

	tokenLookups    int
	shareCreateErrs []error
	lookupErr       error
	incrementErr    error
	recordErr       error
	upsertErr       error
	incrementedAt   []time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[string]*models.User{},
		files:     map[string]*models.File{},
		userFiles: map[string]*models.UserFile{},
		shares:    map[string]*models.FileShare{},
		hits:      map[string][]time.Time{},
		access:    map[[2]string]*models.SharedFileAccess{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) share(id string) models.FileShare {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.shares[id]
}

func (m *memStore) outcomes() []models.AccessOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.AccessOutcome, 0, len(m.logs))
	for _, l := range m.logs {
		out = append(out, l.Outcome)
	}
	return out
}

func (m *memStore) reasons() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.logs))
	for _, l := range m.logs {
		out = append(out, l.Reason)
	}
	return out
}

func copyShare(s *models.FileShare) *models.FileShare {
	c := *s
	c.AllowedUsernames = slices.Clone(s.AllowedUsernames)
	return &c
}

func (m *memStore) userFileCopy(uf *models.UserFile) *models.UserFile {
	c := *uf
	if f, ok := m.files[uf.FileID]; ok {
		fc := *f
		c.File = &fc
	}
	return &c
}

// users

type memUsers struct{ *memStore }

func (r memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.UserName == u.UserName {
			return nil, common.ErrorAlreadyExists
		}
	}
	c := *u
	c.ID = r.nextID("user")
	r.users[c.ID] = &c
	out := c
	return &out, nil
}

func (r memUsers) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UserName == login {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (r memUsers) ReserveStorage(_ context.Context, userID string, n int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok || u.UsedStorage+n > u.StorageQuota {
		return common.ErrQuotaExceeded
	}
	u.UsedStorage += n
	return nil
}

func (r memUsers) ReleaseStorage(_ context.Context, userID string, n int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.UsedStorage = max(u.UsedStorage-n, 0)
	}
	return nil
}

// files

type memFiles struct{ *memStore }

func (r memFiles) CreateOrGet(_ context.Context, f *models.File) (*models.File, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.files {
		if existing.ContentHash == f.ContentHash {
			c := *existing
			return &c, false, nil
		}
	}
	c := *f
	c.ID = r.nextID("file")
	r.files[c.ID] = &c
	out := c
	return &out, true, nil
}

func (r memFiles) GetByContentHash(_ context.Context, hash string) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.files {
		if f.ContentHash == hash {
			c := *f
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memFiles) GetByID(_ context.Context, id string) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *f
	return &c, nil
}

// user files

type memUserFiles struct{ *memStore }

func (r memUserFiles) Create(_ context.Context, uf *models.UserFile) (*models.UserFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *uf
	c.ID = r.nextID("uf")
	c.CreatedAt = time.Now()
	c.File = nil
	r.userFiles[c.ID] = &c
	out := c
	return &out, nil
}

func (r memUserFiles) GetByID(_ context.Context, id string) (*models.UserFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	uf, ok := r.userFiles[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.userFileCopy(uf), nil
}

func (r memUserFiles) ListByUser(_ context.Context, userID string) ([]*models.UserFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.UserFile
	for _, uf := range r.userFiles {
		if uf.UserID == userID && !uf.IsTrashed {
			out = append(out, r.userFileCopy(uf))
		}
	}
	slices.SortFunc(out, func(a, b *models.UserFile) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (r memUserFiles) FindByFileID(_ context.Context, fileID string) (*models.UserFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first *models.UserFile
	for _, uf := range r.userFiles {
		if uf.FileID == fileID && (first == nil || uf.CreatedAt.Before(first.CreatedAt)) {
			first = uf
		}
	}
	if first == nil {
		return nil, common.ErrorNotFound
	}
	return r.userFileCopy(first), nil
}

func (r memUserFiles) FindOwned(_ context.Context, userID, fileID, filename string) (*models.UserFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, uf := range r.userFiles {
		if uf.UserID == userID && uf.FileID == fileID && uf.Filename == filename && !uf.IsTrashed {
			return r.userFileCopy(uf), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUserFiles) Delete(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	uf, ok := r.userFiles[id]
	if !ok || uf.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.userFiles, id)
	for sid, s := range r.shares {
		if s.UserFileID == id {
			delete(r.shares, sid)
		}
	}
	return nil
}

// shares

type memShares struct{ *memStore }

func (r memShares) Create(_ context.Context, s *models.FileShare) (*models.FileShare, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.shareCreateErrs) > 0 {
		err := r.shareCreateErrs[0]
		r.shareCreateErrs = r.shareCreateErrs[1:]
		return nil, err
	}
	for _, existing := range r.shares {
		if existing.ShareToken == s.ShareToken {
			return nil, shares.ErrTokenCollision
		}
	}
	c := copyShare(s)
	c.ID = r.nextID("share")
	c.DownloadCount = 0
	c.CreatedAt = time.Now()
	r.shares[c.ID] = c
	return copyShare(c), nil
}

func (r memShares) GetByToken(_ context.Context, token string) (*models.FileShare, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokenLookups++
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	for _, s := range r.shares {
		if s.ShareToken == token {
			return copyShare(s), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memShares) GetByID(_ context.Context, id string) (*models.FileShare, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shares[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyShare(s), nil
}

func (r memShares) ListByOwner(_ context.Context, ownerID string) ([]*models.FileShare, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.FileShare
	for _, s := range r.shares {
		if s.OwnerID == ownerID {
			out = append(out, copyShare(s))
		}
	}
	slices.SortFunc(out, func(a, b *models.FileShare) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (r memShares) Update(_ context.Context, s *models.FileShare) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.shares[s.ID]
	if !ok || existing.OwnerID != s.OwnerID {
		return common.ErrorNotFound
	}
	existing.WrappedKey = s.WrappedKey
	existing.Salt = s.Salt
	existing.MaxDownloads = s.MaxDownloads
	existing.ExpiresAt = s.ExpiresAt
	existing.AllowedUsernames = slices.Clone(s.AllowedUsernames)
	return nil
}

func (r memShares) Delete(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.shares[id]
	if !ok || existing.OwnerID != ownerID {
		return common.ErrorNotFound
	}
	delete(r.shares, id)
	return nil
}

// IncrementDownloadCount mirrors the conditional UPDATE: the check and the
// increment happen under one lock.
func (r memShares) IncrementDownloadCount(_ context.Context, token string, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.incrementedAt = append(r.incrementedAt, now)
	if r.incrementErr != nil {
		return 0, r.incrementErr
	}
	for _, s := range r.shares {
		if s.ShareToken != token {
			continue
		}
		if s.IsExhausted() || s.IsExpired(now) {
			return 0, common.ErrConcurrencyConflict
		}
		s.DownloadCount++
		return s.DownloadCount, nil
	}
	return 0, common.ErrConcurrencyConflict
}

// access logs

type memAccessLogs struct{ *memStore }

func (r memAccessLogs) Record(_ context.Context, e *models.ShareAccessLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recordErr != nil {
		return r.recordErr
	}
	e.ID = int64(len(r.logs) + 1)
	r.logs = append(r.logs, *e)
	return nil
}

func (r memAccessLogs) Stats(_ context.Context, token string, since time.Time) (*models.AccessStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := &models.AccessStats{}
	sources := map[string]struct{}{}
	for _, l := range r.logs {
		if l.ShareToken != token {
			continue
		}
		st.TotalAttempts++
		if l.Outcome == models.OutcomeSuccess {
			st.SuccessfulAttempts++
		}
		if !l.OccurredAt.Before(since) {
			st.RecentAttempts++
		}
		sources[l.SourceIdentifier] = struct{}{}
	}
	st.FailedAttempts = st.TotalAttempts - st.SuccessfulAttempts
	st.UniqueIPs = int64(len(sources))
	return st, nil
}

func (r memAccessLogs) ListByToken(_ context.Context, token string, limit int) ([]*models.ShareAccessLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ShareAccessLog
	for i := len(r.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if r.logs[i].ShareToken == token {
			l := r.logs[i]
			out = append(out, &l)
		}
	}
	return out, nil
}

func (r memAccessLogs) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.logs[:0]
	var n int64
	for _, l := range r.logs {
		if l.OccurredAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, l)
	}
	r.logs = kept
	return n, nil
}

// rate limits

type memRateLimits struct{ *memStore }

func (r memRateLimits) Lock(context.Context, string) error { return nil }

func (r memRateLimits) CountSince(_ context.Context, key string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, at := range r.hits[key] {
		if at.After(since) {
			n++
		}
	}
	return n, nil
}

func (r memRateLimits) Insert(_ context.Context, key string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits[key] = append(r.hits[key], at)
	return nil
}

func (r memRateLimits) Prune(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, list := range r.hits {
		kept := list[:0]
		for _, at := range list {
			if at.After(cutoff) {
				kept = append(kept, at)
			} else {
				n++
			}
		}
		r.hits[k] = kept
	}
	return n, nil
}

// shared access

type memSharedAccess struct{ *memStore }

func (r memSharedAccess) Upsert(_ context.Context, userID, shareID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	if _, ok := r.shares[shareID]; !ok {
		return common.ErrorNotFound
	}
	k := [2]string{userID, shareID}
	if a, ok := r.access[k]; ok {
		a.LastAccessedAt = at
		a.AccessCount++
		return nil
	}
	r.access[k] = &models.SharedFileAccess{UserID: userID, ShareID: shareID, FirstAccessedAt: at, LastAccessedAt: at, AccessCount: 1}
	return nil
}

func (r memSharedAccess) ListForUser(_ context.Context, userID string, now time.Time) ([]*models.SharedFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.SharedFile
	for k, a := range r.access {
		if k[0] != userID {
			continue
		}
		sh, ok := r.shares[a.ShareID]
		if !ok || sh.IsExpired(now) {
			continue
		}
		uf := r.userFiles[sh.UserFileID]
		sf := &models.SharedFile{Access: *a, Share: copyShare(sh), Filename: uf.Filename, MimeType: uf.MimeType}
		if owner, ok := r.users[sh.OwnerID]; ok {
			sf.OwnerUserName = owner.UserName
		}
		if f, ok := r.files[uf.FileID]; ok {
			sf.SizeBytes = f.SizeBytes
		}
		out = append(out, sf)
	}
	slices.SortFunc(out, func(a, b *models.SharedFile) int {
		return b.Access.LastAccessedAt.Compare(a.Access.LastAccessedAt)
	})
	return out, nil
}

type fakeRepoManager struct{ store *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return memUsers{m.store} }
func (m *fakeRepoManager) Files(dbx.DBTX) files.Repository              { return memFiles{m.store} }
func (m *fakeRepoManager) UserFiles(dbx.DBTX) userfiles.Repository      { return memUserFiles{m.store} }
func (m *fakeRepoManager) Shares(dbx.DBTX) shares.Repository            { return memShares{m.store} }
func (m *fakeRepoManager) AccessLogs(dbx.DBTX) accesslogs.Repository    { return memAccessLogs{m.store} }
func (m *fakeRepoManager) RateLimits(dbx.DBTX) ratelimits.Repository    { return memRateLimits{m.store} }
func (m *fakeRepoManager) SharedAccess(dbx.DBTX) sharedaccess.Repository {
	return memSharedAccess{m.store}
}

// memBlobs is an in-memory blobstore.Store.
type memBlobs struct {
	mu      sync.Mutex
	data    map[string][]byte
	putErr  error
	signErr error
}

func newMemBlobs() *memBlobs { return &memBlobs{data: map[string][]byte{}} }

func (b *memBlobs) Put(_ context.Context, key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.putErr != nil {
		return b.putErr
	}
	b.data[key] = bytes.Clone(data)
	return nil
}

func (b *memBlobs) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.data[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return bytes.Clone(d), nil
}

func (b *memBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
	return nil
}

func (b *memBlobs) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	if b.signErr != nil {
		return "", b.signErr
	}
	return "https://blobs.test/" + key, nil
}

type fakeLimiter struct {
	mu      sync.Mutex
	deny    bool
	err     error
	calls   int
	tokens  []string
	sources []string
}

func (l *fakeLimiter) Allow(_ context.Context, token, source string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	l.tokens = append(l.tokens, token)
	l.sources = append(l.sources, source)
	if l.err != nil {
		return false, l.err
	}
	return !l.deny, nil
}

func testCryptoManager(t *testing.T) *cryptox.Manager {
	t.Helper()
	cfg := cryptox.DefaultConfig()
	cfg.KDF.Iterations = 1000
	m, err := cryptox.NewManager(cfg)
	require.NoError(t, err)
	return m
}

func testKeyring(t *testing.T) *cryptox.Keyring {
	t.Helper()
	k, err := cryptox.NewKeyring(bytes.Repeat([]byte{0x42}, 32))
	require.NoError(t, err)
	return k
}
