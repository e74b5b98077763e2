package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// CreateUserInput carries the fields of a new account. Scopes must name
// existing scopes.
type CreateUserInput struct {
	Lastname  string   `validate:"required,max=100"`
	Firstname string   `validate:"required,max=100"`
	Email     string   `validate:"required,email,max=255"`
	Password  string   `validate:"min=8,max=256"`
	Scopes    []string `validate:"dive,scopeid"`
}

// UserService manages accounts and their scope assignments.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, h PasswordHasher, l logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      h,
		logger:      l.With("module", "users"),
	}
}

// Create validates in, stores the user with a hashed password and attaches
// the requested scopes in one transaction. The returned user carries no hash.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.logger.Error(ctx, "error hashing password", "error", err)
		return nil, common.ErrorInternal
	}

	user := &models.User{
		ID:        uuid.NewString(),
		Lastname:  in.Lastname,
		Firstname: in.Firstname,
		Email:     in.Email,
		Password:  hash,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).Create(ctx, user); err != nil {
			return err
		}
		scopes := s.repomanager.Scopes(tx)
		for _, id := range in.Scopes {
			if _, err := scopes.Get(ctx, id); err != nil {
				if errors.Is(err, common.ErrorNotFound) {
					return fmt.Errorf("%w: unknown scope %q", common.ErrorValidation, id)
				}
				return err
			}
			if err := scopes.AddToUser(ctx, user.ID, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorAlreadyExists), errors.Is(err, common.ErrorValidation):
			return nil, err
		}
		s.logger.Error(ctx, "error creating user", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user created", "user_id", user.ID)
	user.Password = ""
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetUserByID(ctx, id)
	if err != nil {
		return nil, s.mapErr(ctx, "error searching user", err)
	}
	user.Password = ""
	return user, nil
}

// List returns one page of live users and the total number of live users.
func (s *UserService) List(ctx context.Context, page models.Page) ([]models.User, int64, error) {
	repo := s.repomanager.Users(s.db)

	users, err := repo.List(ctx, page.Normalize())
	if err != nil {
		return nil, 0, s.mapErr(ctx, "error listing users", err)
	}
	total, err := repo.Count(ctx)
	if err != nil {
		return nil, 0, s.mapErr(ctx, "error counting users", err)
	}

	for i := range users {
		users[i].Password = ""
	}
	return users, total, nil
}

// Delete soft-deletes a user and drops its outstanding refresh and reset
// tokens. actingUserID is the subject of the caller's access token.
func (s *UserService) Delete(ctx context.Context, id, actingUserID string) error {
	if id == actingUserID {
		return common.ErrorSelfDeletion
	}

	if err := s.repomanager.Users(s.db).Delete(ctx, id); err != nil {
		return s.mapErr(ctx, "error deleting user", err)
	}

	if err := s.repomanager.RefreshTokens(s.db).DeleteByUser(ctx, id); err != nil {
		s.logger.Warn(ctx, "error revoking refresh tokens", "user_id", id, "error", err)
	}
	if err := s.repomanager.PasswordResets(s.db).DeleteByUser(ctx, id); err != nil {
		s.logger.Warn(ctx, "error dropping reset token", "user_id", id, "error", err)
	}

	s.logger.Info(ctx, "user deleted", "user_id", id, "by", actingUserID)
	return nil
}

// Scopes returns the ids of the live scopes assigned to a live user.
func (s *UserService) Scopes(ctx context.Context, userID string) ([]string, error) {
	if _, err := s.repomanager.Users(s.db).GetUserByID(ctx, userID); err != nil {
		return nil, s.mapErr(ctx, "error searching user", err)
	}
	scopes, err := s.repomanager.Scopes(s.db).ScopesOf(ctx, userID)
	if err != nil {
		return nil, s.mapErr(ctx, "error reading scopes", err)
	}
	return scopes, nil
}

// AddScope grants scopeID to userID. Granting a scope twice is a no-op.
// The change shows up in tokens minted from the next login or refresh.
func (s *UserService) AddScope(ctx context.Context, userID, scopeID string) error {
	if _, err := s.repomanager.Users(s.db).GetUserByID(ctx, userID); err != nil {
		return s.mapErr(ctx, "error searching user", err)
	}
	scopes := s.repomanager.Scopes(s.db)
	if _, err := scopes.Get(ctx, scopeID); err != nil {
		return s.mapErr(ctx, "error searching scope", err)
	}
	if err := scopes.AddToUser(ctx, userID, scopeID); err != nil {
		return s.mapErr(ctx, "error adding scope", err)
	}
	return nil
}

func (s *UserService) RemoveScope(ctx context.Context, userID, scopeID string) error {
	if err := s.repomanager.Scopes(s.db).RemoveFromUser(ctx, userID, scopeID); err != nil {
		return s.mapErr(ctx, "error removing scope", err)
	}
	return nil
}

func (s *UserService) mapErr(ctx context.Context, msg string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	s.logger.Error(ctx, msg, "error", err)
	return common.ErrorInternal
}
