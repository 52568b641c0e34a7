// Package services contains server-side business logic. This file implements
// UserService, which handles registration, the salt lookup that precedes
// login, and issuing access tokens.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/vaultshare/internal/common"
	"github.com/dmitrijs2005/vaultshare/internal/logging"
	"github.com/dmitrijs2005/vaultshare/internal/server/auth"
	"github.com/dmitrijs2005/vaultshare/internal/server/config"
	"github.com/dmitrijs2005/vaultshare/internal/server/models"
	"github.com/dmitrijs2005/vaultshare/internal/server/repositories/repomanager"
)

const maxUserNameLength = 64

type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	defaultQuota                int64
	saltLength                  int
	log                         logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		defaultQuota:                cfg.DefaultStorageQuota,
		saltLength:                  cfg.SaltLength,
		log:                         log.With("module", "users"),
	}
}

// Register creates a new user with the given username, salt and verifier.
// The verifier is computed client-side; the password never reaches the server.
func (s *UserService) Register(ctx context.Context, username string, salt, verifier []byte) (*models.User, error) {
	username = strings.TrimSpace(username)

	var problems []string
	if username == "" {
		problems = append(problems, "username is required")
	} else if len(username) > maxUserNameLength {
		problems = append(problems, fmt.Sprintf("username must be at most %d characters", maxUserNameLength))
	}
	if len(salt) == 0 {
		problems = append(problems, "salt is required")
	}
	if len(verifier) == 0 {
		problems = append(problems, "verifier is required")
	}
	if err := common.NewValidationError(problems); err != nil {
		return nil, err
	}

	user := &models.User{UserName: username, Salt: salt, Verifier: verifier, StorageQuota: s.defaultQuota}
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	s.log.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// GetSalt returns the user's stored salt or a random salt if the user is absent,
// to avoid leaking existence through timing.
func (s *UserService) GetSalt(ctx context.Context, userName string) ([]byte, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.GenerateRandByteArray(s.saltLength), nil
		}
		return nil, common.ErrorInternal
	}
	return user.Salt, nil
}

// Login verifies verifierCandidate against the stored verifier and, on
// success, returns a signed access token.
func (s *UserService) Login(ctx context.Context, userName string, verifierCandidate []byte) (string, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}
	if subtle.ConstantTimeCompare(user.Verifier, verifierCandidate) != 1 {
		s.log.Warn(ctx, "login rejected", "user_id", user.ID)
		return "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(auth.Identity{UserID: user.ID, UserName: user.UserName}, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}
