// Package passwordresets stores outstanding password reset tokens, one per user.
package passwordresets

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type Repository interface {
	// Upsert stores reset as the only token of its user, replacing any previous one.
	Upsert(ctx context.Context, reset *models.PasswordReset) error
	// FindByToken returns the reset for token if it is still valid at now and
	// its user is live; otherwise common.ErrorNotFound.
	FindByToken(ctx context.Context, token string, now time.Time) (*models.PasswordReset, error)
	DeleteByUser(ctx context.Context, userID string) error
}
