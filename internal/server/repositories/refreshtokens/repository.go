// Package refreshtokens declares the server-side repository contract for
// refresh tokens and its PostgreSQL and Redis implementations.
package refreshtokens

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository defines operations for issuing and redeeming refresh tokens.
type Repository interface {
	// Create stores a new refresh token record.
	Create(ctx context.Context, token *models.RefreshToken) error

	// Consume atomically fetches and deletes the record with the given id.
	// Of any number of concurrent calls for one id at most one succeeds;
	// the others, like calls for unknown ids, get common.ErrorNotFound.
	// Expired records are returned as well; the caller decides.
	Consume(ctx context.Context, id string) (*models.RefreshToken, error)

	// DeleteByUser removes every refresh token of userID. Removing none is not an error.
	DeleteByUser(ctx context.Context, userID string) error
}
