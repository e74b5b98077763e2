// Package cli implements the gophauth operator console: a small REPL that
// talks to the Auth service over gRPC and keeps the session's token pair
// fresh through the API client.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/admin"
	"github.com/dmitrijs2005/gophauth/internal/api"
)

// AuthClient is the part of *api.Client the console drives.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (*api.TokenPair, error)
	Refresh(ctx context.Context) (*api.TokenPair, error)
	ForgottenPassword(ctx context.Context, email string) (*api.ForgottenPasswordResponse, error)
	UpdatePassword(ctx context.Context, token, password string) error
	CreateUser(ctx context.Context, in *api.CreateUserRequest) (*api.User, error)
	GetUser(ctx context.Context, id string) (*api.User, error)
	ListUsers(ctx context.Context, in *api.ListUsersRequest) (*api.ListUsersResponse, error)
	DeleteUser(ctx context.Context, id string) error
	GetUserScopes(ctx context.Context, id string) ([]string, error)
	AddUserScope(ctx context.Context, userID, scopeID string) error
	RemoveUserScope(ctx context.Context, userID, scopeID string) error
	CreateScope(ctx context.Context, id string) (*api.Scope, error)
	ListScopes(ctx context.Context) ([]api.Scope, error)
	DeleteScope(ctx context.Context, id string) error
	SetTokens(access, refresh string)
	Close() error
}

type App struct {
	client AuthClient
	reader *bufio.Reader
	out    io.Writer

	// password reads a secret without echo; replaced in tests
	password func(prompt string) (string, error)

	email  string
	userID string
}

func NewApp(endpointAddr string) (*App, error) {
	c, err := api.NewClient(endpointAddr)
	if err != nil {
		return nil, err
	}
	return newApp(c, bufio.NewReader(os.Stdin), os.Stdout), nil
}

func newApp(c AuthClient, r *bufio.Reader, w io.Writer) *App {
	a := &App{client: c, reader: r, out: w}
	a.password = func(prompt string) (string, error) {
		return admin.GetPassword(prompt, a.out)
	}
	return a
}

func (a *App) isLoggedIn() bool {
	return a.userID != ""
}

func (a *App) status() string {
	if !a.isLoggedIn() {
		return "gophauth> "
	}
	return fmt.Sprintf("gophauth (%s)> ", a.email)
}

// Run serves the console until the input ends or the operator quits.
func (a *App) Run(ctx context.Context) {
	defer a.client.Close()

	fmt.Fprintln(a.out, "Welcome to gophauth console (type 'help' for commands)")
	runREPL(ctx, a, a.reader)
}
