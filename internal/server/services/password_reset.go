package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Notifier delivers a freshly issued reset token to its owner.
type Notifier interface {
	NotifyPasswordReset(ctx context.Context, user *models.User, reset *models.PasswordReset) error
}

// LogNotifier records that a reset was issued. The token never reaches the
// log; pair it with a real delivery channel in production.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(l logging.Logger) *LogNotifier {
	return &LogNotifier{logger: l.With("module", "notifier")}
}

func (n *LogNotifier) NotifyPasswordReset(ctx context.Context, user *models.User, reset *models.PasswordReset) error {
	n.logger.Info(ctx, "password reset issued", "user_id", user.ID, "expires_at", reset.ExpiresAt)
	return nil
}

// WriterNotifier prints the reset link to w. It is meant for development
// setups without a mail server and is only enabled explicitly.
type WriterNotifier struct {
	baseURL string
	w       io.Writer
	logger  logging.Logger
}

func NewWriterNotifier(baseURL string, w io.Writer, l logging.Logger) *WriterNotifier {
	return &WriterNotifier{baseURL: baseURL, w: w, logger: l.With("module", "notifier")}
}

func (n *WriterNotifier) NotifyPasswordReset(ctx context.Context, user *models.User, reset *models.PasswordReset) error {
	link, err := url.JoinPath(n.baseURL, reset.Token)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(n.w, "password reset for %s: %s (valid until %s)\n", user.Email, link, reset.ExpiresAt.Format(time.RFC3339)); err != nil {
		return err
	}
	n.logger.Info(ctx, "password reset issued", "user_id", user.ID, "expires_at", reset.ExpiresAt)
	return nil
}

// PasswordResetService issues and redeems password reset tokens.
type PasswordResetService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	hasher          PasswordHasher
	notifier        Notifier
	logger          logging.Logger
	defaultLifetime time.Duration
	now             func() time.Time
}

func NewPasswordResetService(db *sql.DB, m repomanager.RepositoryManager, h PasswordHasher, n Notifier, l logging.Logger, cfg *config.Config) *PasswordResetService {
	return &PasswordResetService{
		db:              db,
		repomanager:     m,
		hasher:          h,
		notifier:        n,
		logger:          l.With("module", "password_reset"),
		defaultLifetime: cfg.PasswordResetValidityDuration,
		now:             time.Now,
	}
}

// Issue creates a reset token for the user, replacing any outstanding one.
// A zero lifetime selects the configured default. The returned token
// is the only copy the caller gets.
func (s *PasswordResetService) Issue(ctx context.Context, userID string, lifetime time.Duration) (*models.PasswordReset, error) {
	user, err := s.repomanager.Users(s.db).GetUserByID(ctx, userID)
	if err != nil {
		return nil, s.mapLookupErr(ctx, err)
	}
	return s.issue(ctx, user, lifetime)
}

// IssueForEmail resolves the live user registered under email, issues a
// token and hands it to the notifier.
func (s *PasswordResetService) IssueForEmail(ctx context.Context, email string, lifetime time.Duration) (*models.PasswordReset, error) {
	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, s.mapLookupErr(ctx, err)
	}

	reset, err := s.issue(ctx, user, lifetime)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyPasswordReset(ctx, user, reset); err != nil {
		s.logger.Error(ctx, "error notifying user", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	return reset, nil
}

// Consume sets a new password for the owner of an unexpired token and
// deletes the token, both in one transaction. An unknown, expired or already
// used token yields common.ErrorNotFound.
func (s *PasswordResetService) Consume(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: empty password", common.ErrorValidation)
	}

	var userID string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		reset, err := s.repomanager.PasswordResets(tx).FindByToken(ctx, token, s.now())
		if err != nil {
			return err
		}
		userID = reset.UserID

		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return err
		}
		if err := s.repomanager.Users(tx).UpdatePassword(ctx, reset.UserID, hash); err != nil {
			return err
		}
		return s.repomanager.PasswordResets(tx).DeleteByUser(ctx, reset.UserID)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "error consuming reset token", "error", err)
		return common.ErrorInternal
	}

	// sessions opened with the old password end here
	if err := s.repomanager.RefreshTokens(s.db).DeleteByUser(ctx, userID); err != nil {
		s.logger.Warn(ctx, "error revoking refresh tokens", "user_id", userID, "error", err)
	}
	s.logger.Info(ctx, "password updated", "user_id", userID)
	return nil
}

func (s *PasswordResetService) issue(ctx context.Context, user *models.User, lifetime time.Duration) (*models.PasswordReset, error) {
	if lifetime == 0 {
		lifetime = s.defaultLifetime
	}
	reset := &models.PasswordReset{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(lifetime).UTC(),
	}
	if err := s.repomanager.PasswordResets(s.db).Upsert(ctx, reset); err != nil {
		s.logger.Error(ctx, "error storing reset token", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	return reset, nil
}

func (s *PasswordResetService) mapLookupErr(ctx context.Context, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	s.logger.Error(ctx, "error searching user", "error", err)
	return common.ErrorInternal
}
