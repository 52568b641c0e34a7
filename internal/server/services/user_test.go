package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/vaultshare/internal/common"
	"github.com/dmitrijs2005/vaultshare/internal/dbx"
	"github.com/dmitrijs2005/vaultshare/internal/logging"
	"github.com/dmitrijs2005/vaultshare/internal/server/auth"
	"github.com/dmitrijs2005/vaultshare/internal/server/config"
	"github.com/dmitrijs2005/vaultshare/internal/server/models"
	usersrepo "github.com/dmitrijs2005/vaultshare/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T, rm *fakeRepoManager) *UserService {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "k"
	return NewUserService(nil, rm, cfg, logging.Nop{})
}

// brokenUsers fails every call with errBoom.
type brokenUsers struct{ usersrepo.Repository }

func (brokenUsers) Create(context.Context, *models.User) (*models.User, error) { return nil, errBoom{} }
func (brokenUsers) GetUserByLogin(context.Context, string) (*models.User, error) {
	return nil, errBoom{}
}

type brokenUsersManager struct{ *fakeRepoManager }

func (brokenUsersManager) Users(dbx.DBTX) usersrepo.Repository { return brokenUsers{} }

func TestRegister(t *testing.T) {
	rm := &fakeRepoManager{store: newMemStore()}
	s := newUserService(t, rm)

	u, err := s.Register(context.Background(), "  alice ", []byte("salt"), []byte("verifier"))
	require.NoError(t, err)
	assert.Equal(t, "alice", u.UserName)
	assert.Equal(t, int64(10*1024*1024), u.StorageQuota)

	_, err = s.Register(context.Background(), "alice", []byte("salt"), []byte("verifier"))
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = s.Register(context.Background(), "", nil, nil)
	var ve *common.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Problems, 3)

	_, err = s.Register(context.Background(), strings.Repeat("x", 65), []byte("s"), []byte("v"))
	assert.ErrorIs(t, err, common.ErrValidation)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	broken := NewUserService(nil, brokenUsersManager{rm}, cfg, logging.Nop{})
	_, err = broken.Register(context.Background(), "bob", []byte("s"), []byte("v"))
	assert.ErrorContains(t, err, "error creating user: boom")
}

func TestGetSalt(t *testing.T) {
	rm := &fakeRepoManager{store: newMemStore()}
	s := newUserService(t, rm)
	_, err := s.Register(context.Background(), "alice", []byte("SALT"), []byte("v"))
	require.NoError(t, err)

	salt, err := s.GetSalt(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []byte("SALT"), salt)

	ghost1, err := s.GetSalt(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Len(t, ghost1, 32)
	ghost2, err := s.GetSalt(context.Background(), "ghost")
	require.NoError(t, err)
	assert.NotEqual(t, ghost1, ghost2)

	broken := NewUserService(nil, brokenUsersManager{rm}, &config.Config{}, logging.Nop{})
	_, err = broken.GetSalt(context.Background(), "alice")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestLogin(t *testing.T) {
	rm := &fakeRepoManager{store: newMemStore()}
	s := newUserService(t, rm)
	u, err := s.Register(context.Background(), "alice", []byte("s"), []byte("right"))
	require.NoError(t, err)

	_, err = s.Login(context.Background(), "ghost", []byte("right"))
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.Login(context.Background(), "alice", []byte("wrong"))
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	token, err := s.Login(context.Background(), "alice", []byte("right"))
	require.NoError(t, err)
	id, err := auth.ParseToken(token, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, auth.Identity{UserID: u.ID, UserName: "alice"}, id)

	broken := NewUserService(nil, brokenUsersManager{rm}, &config.Config{AccessTokenValidityDuration: time.Minute}, logging.Nop{})
	_, err = broken.Login(context.Background(), "alice", []byte("right"))
	assert.ErrorIs(t, err, common.ErrorInternal)
}
