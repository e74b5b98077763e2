// Package scopes stores the scope catalogue and scope assignments of users.
// A soft-deleted scope stops counting toward any user's scope set.
package scopes

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type Repository interface {
	// Create adds id to the catalogue, reviving it if it was soft-deleted.
	// A live scope with the same id yields common.ErrorAlreadyExists.
	Create(ctx context.Context, id string) (*models.Scope, error)
	Get(ctx context.Context, id string) (*models.Scope, error)
	List(ctx context.Context) ([]models.Scope, error)
	Delete(ctx context.Context, id string) error

	// ScopesOf returns the live scope ids assigned to userID, sorted.
	ScopesOf(ctx context.Context, userID string) ([]string, error)
	// AddToUser is idempotent.
	AddToUser(ctx context.Context, userID, scopeID string) error
	RemoveFromUser(ctx context.Context, userID, scopeID string) error
}
