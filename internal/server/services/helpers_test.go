package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		AccessTokenValidityDuration:   15 * time.Minute,
		RefreshTokenValidityDuration:  24 * time.Hour,
		PasswordResetValidityDuration: time.Hour,
		ResetBaseURL:                  "http://localhost/reset",
	}
}

func testEngine(t *testing.T) *auth.Engine {
	t.Helper()
	e, err := auth.NewEngine(auth.HS256, []byte("test-secret"), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

// plainHasher keeps tests fast; the argon2 hasher has its own tests.
type plainHasher struct {
	hashErr   error
	verifyErr error
}

func (h plainHasher) Hash(p string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "plain$" + p, nil
}

func (h plainHasher) Verify(p, encoded string) (bool, error) {
	if h.verifyErr != nil {
		return false, h.verifyErr
	}
	return encoded == "plain$"+p, nil
}

// --- in-memory store ---

func newStore() *memory.Store {
	return memory.NewStore(auth.ScopeAdmin, auth.ScopeUsers)
}

func managerFor(s *memory.Store) repomanager.RepositoryManager {
	return repomanager.NewInMemoryRepositoryManager(s)
}

// addUser stores a user whose password hashes under plainHasher.
func addUser(s *memory.Store, id, email, password string, scopeIDs ...string) {
	s.AddUser(models.User{ID: id, Email: email, Firstname: "F", Lastname: "L", Password: "plain$" + password}, scopeIDs...)
}

func userOf(t *testing.T, s *memory.Store, id string) models.User {
	t.Helper()
	u, ok := s.User(id)
	if !ok {
		t.Fatalf("user %s not stored", id)
	}
	return u
}

func hasReset(s *memory.Store, userID string) bool {
	_, ok := s.PasswordReset(userID)
	return ok
}
