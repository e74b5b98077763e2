// Package users declares the repository contract for user accounts and its
// PostgreSQL implementation. Soft-deleted users are invisible to every read.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type Repository interface {
	// Create inserts user. A live user with the same email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// UpdatePassword replaces the stored hash of a live user.
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	// Delete soft-deletes a live user.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page models.Page) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}
