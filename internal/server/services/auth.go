// Package services contains server-side business logic. This file implements
// AuthService, which verifies credentials, mints access tokens and rotates
// single-use refresh tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// TokenPair bundles a short-lived access token and a single-use refresh token.
type TokenPair struct {
	UserID           string
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// TokenEncoder mints signed access tokens. Implemented by *auth.Engine.
type TokenEncoder interface {
	Encode(subject string, scopes []string, lifetime time.Duration) (string, time.Time, error)
}

// PasswordHasher hashes and verifies passwords. Implemented by *cryptox.Argon2Hasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// AuthService provides the token lifecycle:
// - Login: verify credentials and mint a token pair
// - Refresh: consume a refresh token and mint a new pair
type AuthService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	encoder                      TokenEncoder
	hasher                       PasswordHasher
	logger                       logging.Logger
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	now                          func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, enc TokenEncoder, h PasswordHasher, l logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                           db,
		repomanager:                  m,
		encoder:                      enc,
		hasher:                       h,
		logger:                       l.With("module", "auth"),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		now:                          time.Now,
	}
}

// Login verifies the password of the live user registered under email and,
// on success, returns a new TokenPair. An unknown email and a wrong password
// both yield common.ErrorUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.burnVerify(password)
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "error searching user", "error", err)
		return nil, common.ErrorInternal
	}

	ok, err := s.hasher.Verify(password, user.Password)
	if err != nil {
		s.logger.Error(ctx, "error verifying password", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	return s.generateTokenPair(ctx, user.ID, s.db)
}

// Refresh exchanges a refresh token for a new TokenPair. The presented token
// is deleted before the new pair is minted: if minting fails the caller is
// left without a live refresh token and has to log in again.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, common.ErrorUnauthorized
	}

	token, err := s.repomanager.RefreshTokens(s.db).Consume(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "error consuming refresh token", "error", err)
		return nil, common.ErrorInternal
	}

	if !token.ExpiresAt.After(s.now()) {
		s.logger.Info(ctx, "expired refresh token presented", "user_id", token.UserID)
		return nil, common.ErrorUnauthorized
	}

	if _, err := s.repomanager.Users(s.db).GetUserByID(ctx, token.UserID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "error searching user", "user_id", token.UserID, "error", err)
		return nil, common.ErrorInternal
	}

	return s.generateTokenPair(ctx, token.UserID, s.db)
}

// burnVerify runs a verification against a throwaway hash so that unknown
// emails take as long to reject as wrong passwords.
func (s *AuthService) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(uuid.NewString())
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}

func (s *AuthService) generateTokenPair(ctx context.Context, userID string, db dbx.DBTX) (*TokenPair, error) {
	scopes, err := s.repomanager.Scopes(db).ScopesOf(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "error reading scopes", "user_id", userID, "error", err)
		return nil, common.ErrorInternal
	}

	access, accessExp, err := s.encoder.Encode(userID, scopes, s.accessTokenValidityDuration)
	if err != nil {
		s.logger.Error(ctx, "error encoding access token", "user_id", userID, "error", err)
		return nil, common.ErrorInternal
	}

	refresh := &models.RefreshToken{
		ID:          uuid.NewString(),
		UserID:      userID,
		AccessToken: access,
		ExpiresAt:   s.now().Add(s.refreshTokenValidityDuration).UTC().Truncate(time.Second),
	}
	if err := s.repomanager.RefreshTokens(db).Create(ctx, refresh); err != nil {
		s.logger.Error(ctx, "error storing refresh token", "user_id", userID, "error", err)
		return nil, common.ErrorInternal
	}

	return &TokenPair{
		UserID:           userID,
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh.ID,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}
