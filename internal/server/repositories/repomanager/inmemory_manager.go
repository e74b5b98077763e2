package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/passwordresets"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/scopes"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// InMemoryRepositoryManager serves every repository from one memory.Store and
// ignores the handle it is given, transactions included.
type InMemoryRepositoryManager struct {
	store *memory.Store
}

var _ RepositoryManager = InMemoryRepositoryManager{}

func NewInMemoryRepositoryManager(store *memory.Store) InMemoryRepositoryManager {
	return InMemoryRepositoryManager{store: store}
}

func (m InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.store.Users()
}

func (m InMemoryRepositoryManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return m.store.RefreshTokens()
}

func (m InMemoryRepositoryManager) Scopes(dbx.DBTX) scopes.Repository {
	return m.store.Scopes()
}

func (m InMemoryRepositoryManager) PasswordResets(dbx.DBTX) passwordresets.Repository {
	return m.store.PasswordResets()
}
