// Package transport holds what the gRPC and REST front ends share: the use
// cases they call and the mapping from server records to wire messages.
package transport

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

type AuthUseCases interface {
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

type ResetUseCases interface {
	IssueForEmail(ctx context.Context, email string, lifetime time.Duration) (*models.PasswordReset, error)
	Consume(ctx context.Context, token, newPassword string) error
}

type UserUseCases interface {
	Create(ctx context.Context, in services.CreateUserInput) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, page models.Page) ([]models.User, int64, error)
	Delete(ctx context.Context, id, actingUserID string) error
	Scopes(ctx context.Context, userID string) ([]string, error)
	AddScope(ctx context.Context, userID, scopeID string) error
	RemoveScope(ctx context.Context, userID, scopeID string) error
}

type ScopeUseCases interface {
	Create(ctx context.Context, id string) (*models.Scope, error)
	List(ctx context.Context) ([]models.Scope, error)
	Delete(ctx context.Context, id string) error
}

// Services bundles the use cases exposed by a front end.
type Services struct {
	Auth   AuthUseCases
	Resets ResetUseCases
	Users  UserUseCases
	Scopes ScopeUseCases
}

func TokenPair(p *services.TokenPair) *api.TokenPair {
	return &api.TokenPair{
		UserID:                p.UserID,
		AccessToken:           p.AccessToken,
		AccessTokenExpiresAt:  p.AccessExpiresAt,
		RefreshToken:          p.RefreshToken,
		RefreshTokenExpiresAt: p.RefreshExpiresAt,
	}
}

func User(u *models.User) *api.User {
	return &api.User{
		ID:        u.ID,
		Lastname:  u.Lastname,
		Firstname: u.Firstname,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func Users(us []models.User) []api.User {
	out := make([]api.User, 0, len(us))
	for i := range us {
		out = append(out, *User(&us[i]))
	}
	return out
}

func Scope(s *models.Scope) *api.Scope {
	return &api.Scope{ID: s.ID, CreatedAt: s.CreatedAt}
}

func Scopes(ss []models.Scope) []api.Scope {
	out := make([]api.Scope, 0, len(ss))
	for i := range ss {
		out = append(out, *Scope(&ss[i]))
	}
	return out
}

func CreateUserInput(in *api.CreateUserRequest) services.CreateUserInput {
	return services.CreateUserInput{
		Lastname:  in.Lastname,
		Firstname: in.Firstname,
		Email:     in.Email,
		Password:  in.Password,
		Scopes:    in.Scopes,
	}
}

func Page(in *api.ListUsersRequest) models.Page {
	return models.Page{Number: in.Page, Size: in.Size, Sort: in.Sort, Desc: in.Desc}
}

// ActingUser returns the subject verified for this request, or "".
func ActingUser(ctx context.Context) string {
	if id, ok := auth.IdentityFromContext(ctx); ok {
		return id.Subject
	}
	return ""
}
