// Package services contains the CLI's application services. They sit
// between the command layer and the transport: key derivation and file
// encryption happen here, so nothing readable leaves the machine.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vaultshare/internal/client/client"
	"github.com/dmitrijs2005/vaultshare/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/vaultshare/internal/common"
	"github.com/dmitrijs2005/vaultshare/internal/cryptox"
)

// AuthService registers accounts and keeps the login session in the local
// session store. Sessions are bound to the server endpoint they came from.
type AuthService struct {
	client   client.Client
	sessions metadata.Repository
	endpoint string
	policy   cryptox.PasswordPolicy
}

func NewAuthService(c client.Client, sessions metadata.Repository, endpoint string) *AuthService {
	return &AuthService{client: c, sessions: sessions, endpoint: endpoint, policy: cryptox.DefaultPasswordPolicy()}
}

// Register derives a master key under a fresh salt and sends only the salt
// and the verifier to the server.
func (a *AuthService) Register(ctx context.Context, username string, password []byte) error {
	username = strings.TrimSpace(username)
	if err := a.policy.Validate(string(password)); err != nil {
		return err
	}

	salt := common.GenerateRandByteArray(cryptox.AccountKDFParams().SaltLength)
	key, err := cryptox.DeriveMasterKey(ctx, password, salt)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)

	return a.client.Register(ctx, username, salt, cryptox.MakeVerifier(key))
}

// Login proves knowledge of the password and stores the resulting session.
func (a *AuthService) Login(ctx context.Context, username string, password []byte) error {
	username = strings.TrimSpace(username)

	salt, err := a.client.GetSalt(ctx, username)
	if err != nil {
		return fmt.Errorf("get salt error: %w", err)
	}

	key, err := cryptox.DeriveMasterKey(ctx, password, salt)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)

	token, err := a.client.Login(ctx, username, cryptox.MakeVerifier(key))
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	return a.sessions.SaveSession(ctx, &metadata.Session{
		UserName:    username,
		AccessToken: token,
		Endpoint:    a.endpoint,
	})
}

// Restore reinstalls a saved session and returns its username. A session
// saved against another server counts as no session.
func (a *AuthService) Restore(ctx context.Context) (string, error) {
	s, err := a.sessions.LoadSession(ctx)
	if err != nil {
		return "", err
	}
	if s == nil || s.Endpoint != a.endpoint {
		return "", client.ErrNotLoggedIn
	}
	a.client.SetAccessToken(s.AccessToken)
	return s.UserName, nil
}

// Logout forgets the session locally; tokens simply expire server-side.
func (a *AuthService) Logout(ctx context.Context) error {
	a.client.SetAccessToken("")
	return a.sessions.ClearSession(ctx)
}

func (a *AuthService) Ping(ctx context.Context) (*client.ServerParams, error) {
	return a.client.Ping(ctx)
}
