package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// ScopeService manages the scope catalogue.
type ScopeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewScopeService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *ScopeService {
	return &ScopeService{db: db, repomanager: m, logger: l.With("module", "scopes")}
}

func (s *ScopeService) Create(ctx context.Context, id string) (*models.Scope, error) {
	if err := validateScopeID(id); err != nil {
		return nil, err
	}
	scope, err := s.repomanager.Scopes(s.db).Create(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		s.logger.Error(ctx, "error creating scope", "scope", id, "error", err)
		return nil, common.ErrorInternal
	}
	return scope, nil
}

func (s *ScopeService) List(ctx context.Context) ([]models.Scope, error) {
	scopes, err := s.repomanager.Scopes(s.db).List(ctx)
	if err != nil {
		s.logger.Error(ctx, "error listing scopes", "error", err)
		return nil, common.ErrorInternal
	}
	return scopes, nil
}

// Delete soft-deletes a scope. Users holding it lose it at their next login
// or refresh. The built-in scopes cannot be deleted.
func (s *ScopeService) Delete(ctx context.Context, id string) error {
	if id == auth.ScopeAdmin || id == auth.ScopeUsers {
		return fmt.Errorf("%w: scope %q is built in", common.ErrorValidation, id)
	}
	if err := s.repomanager.Scopes(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "error deleting scope", "scope", id, "error", err)
		return common.ErrorInternal
	}
	return nil
}
