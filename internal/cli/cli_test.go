package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/admin"
	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*************
 * Fake client
 *************/

type fakeClient struct {
	calls []string

	loginErr  error
	listErr   error
	scopesErr error
	deleteErr error

	created *api.CreateUserRequest
	access  string
	refresh string
	closed  bool
}

func (f *fakeClient) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (*api.TokenPair, error) {
	f.record("login %s %s", email, password)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.access, f.refresh = "A1", "R1"
	return &api.TokenPair{UserID: "u1", AccessToken: "A1", RefreshToken: "R1", RefreshTokenExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeClient) Refresh(ctx context.Context) (*api.TokenPair, error) {
	f.record("refresh")
	return &api.TokenPair{UserID: "u1", AccessTokenExpiresAt: time.Now().Add(time.Minute)}, nil
}

func (f *fakeClient) ForgottenPassword(ctx context.Context, email string) (*api.ForgottenPasswordResponse, error) {
	f.record("forgot %s", email)
	return &api.ForgottenPasswordResponse{ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeClient) UpdatePassword(ctx context.Context, token, password string) error {
	f.record("reset %s %s", token, password)
	return nil
}

func (f *fakeClient) CreateUser(ctx context.Context, in *api.CreateUserRequest) (*api.User, error) {
	f.record("adduser %s", in.Email)
	f.created = in
	return &api.User{ID: "u9", Email: in.Email}, nil
}

func (f *fakeClient) GetUser(ctx context.Context, id string) (*api.User, error) {
	f.record("user %s", id)
	return &api.User{ID: id, Email: "bob@example.com", Firstname: "Bob", Lastname: "Builder"}, nil
}

func (f *fakeClient) ListUsers(ctx context.Context, in *api.ListUsersRequest) (*api.ListUsersResponse, error) {
	f.record("users %d %d", in.Page, in.Size)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &api.ListUsersResponse{Data: []api.User{{ID: "u1", Email: "ann@example.com"}}, Total: 3}, nil
}

func (f *fakeClient) DeleteUser(ctx context.Context, id string) error {
	f.record("deluser %s", id)
	return f.deleteErr
}

func (f *fakeClient) GetUserScopes(ctx context.Context, id string) ([]string, error) {
	f.record("userscopes %s", id)
	return []string{"users"}, nil
}

func (f *fakeClient) AddUserScope(ctx context.Context, userID, scopeID string) error {
	f.record("grant %s %s", userID, scopeID)
	return nil
}

func (f *fakeClient) RemoveUserScope(ctx context.Context, userID, scopeID string) error {
	f.record("revoke %s %s", userID, scopeID)
	return nil
}

func (f *fakeClient) CreateScope(ctx context.Context, id string) (*api.Scope, error) {
	f.record("addscope %s", id)
	return &api.Scope{ID: id}, nil
}

func (f *fakeClient) ListScopes(ctx context.Context) ([]api.Scope, error) {
	f.record("scopes")
	if f.scopesErr != nil {
		return nil, f.scopesErr
	}
	return []api.Scope{{ID: "admin"}, {ID: "users"}}, nil
}

func (f *fakeClient) DeleteScope(ctx context.Context, id string) error {
	f.record("delscope %s", id)
	return nil
}

func (f *fakeClient) SetTokens(access, refresh string) {
	f.access, f.refresh = access, refresh
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

// newTestApp wires an App to fc, feeding input as stdin and answering
// password prompts from pws in order.
func newTestApp(fc *fakeClient, input string, pws ...string) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	a := newApp(fc, bufio.NewReader(strings.NewReader(input)), &out)
	i := 0
	a.password = func(string) (string, error) {
		if i >= len(pws) {
			return "", errors.New("no more input")
		}
		pw := pws[i]
		i++
		return pw, nil
	}
	return a, &out
}

/*************
 * REPL tests
 *************/

func TestRun_LoginThenManage(t *testing.T) {
	fc := &fakeClient{}
	input := strings.Join([]string{
		"login",
		"ann@example.com",
		"users 2 10",
		"user u2",
		"grant u2 admin",
		"revoke u2 admin",
		"scopes",
		"addscope reports",
		"delscope reports",
		"deluser u2",
		"refresh",
		"exit",
	}, "\n") + "\n"
	a, out := newTestApp(fc, input, "secret123")

	a.Run(context.Background())

	assert.Equal(t, []string{
		"login ann@example.com secret123",
		"users 2 10",
		"user u2",
		"userscopes u2",
		"grant u2 admin",
		"revoke u2 admin",
		"scopes",
		"addscope reports",
		"delscope reports",
		"deluser u2",
		"refresh",
	}, fc.calls)
	assert.True(t, fc.closed)
	assert.Contains(t, out.String(), "Logged in as u1")
	assert.Contains(t, out.String(), "1 of 3 users")
	assert.Contains(t, out.String(), "scopes: users")
	assert.Contains(t, out.String(), "gophauth (ann@example.com)> ")
	assert.Contains(t, out.String(), "Bye!")
}

func TestRun_ProtectedCommandsNeedLogin(t *testing.T) {
	fc := &fakeClient{}
	a, out := newTestApp(fc, "users\nscopes\n")

	a.Run(context.Background())

	assert.Empty(t, fc.calls)
	assert.Equal(t, 2, strings.Count(out.String(), "Please login first"))
}

func TestRun_UsageAndUnknownCommands(t *testing.T) {
	fc := &fakeClient{}
	a, out := newTestApp(fc, "forgot\nfrobnicate\n\n")

	a.Run(context.Background())

	assert.Empty(t, fc.calls)
	assert.Contains(t, out.String(), "Usage: forgot <email>")
	assert.Contains(t, out.String(), "Unknown command: frobnicate")
}

func TestRun_PublicPasswordCommands(t *testing.T) {
	fc := &fakeClient{}
	a, out := newTestApp(fc, "forgot ann@example.com\nreset tok-1\nreset tok-2\n", "newpassword", "newpassword", "one", "two")

	a.Run(context.Background())

	assert.Equal(t, []string{"forgot ann@example.com", "reset tok-1 newpassword"}, fc.calls)
	assert.Contains(t, out.String(), "Reset link sent")
	assert.Contains(t, out.String(), "Password updated")
	assert.Contains(t, out.String(), admin.ErrPasswordMismatch.Error())
}

func TestRun_AddUser(t *testing.T) {
	fc := &fakeClient{}
	input := "login\nann@example.com\nadduser\nHopper\nGrace\ngrace@example.com\nusers, admin ,users\n"
	a, out := newTestApp(fc, input, "secret123", "longenough", "longenough")

	a.Run(context.Background())

	require.NotNil(t, fc.created)
	assert.Equal(t, "Hopper", fc.created.Lastname)
	assert.Equal(t, "Grace", fc.created.Firstname)
	assert.Equal(t, "longenough", fc.created.Password)
	assert.Equal(t, []string{"users", "admin"}, fc.created.Scopes)
	assert.Contains(t, out.String(), "User grace@example.com created with id u9")
}

func TestRun_ReportsErrors(t *testing.T) {
	fc := &fakeClient{
		listErr:   fmt.Errorf("%w: unauthorized", api.ErrUnauthorized),
		scopesErr: api.ErrUnavailable,
		deleteErr: errors.New("rpc error: boom"),
	}
	a, out := newTestApp(fc, "login\nann@example.com\nusers\nscopes\ndeluser u2\nusers x\n", "secret123")

	a.Run(context.Background())

	assert.Contains(t, out.String(), "Not authorized.")
	assert.Contains(t, out.String(), "Server unavailable")
	assert.Contains(t, out.String(), "Error: rpc error: boom")
	assert.Contains(t, out.String(), "page must be a number")
}

func TestRun_LoginFailureKeepsLoggedOut(t *testing.T) {
	fc := &fakeClient{loginErr: api.ErrUnauthorized}
	a, out := newTestApp(fc, "login\nann@example.com\nusers\n", "wrong")

	a.Run(context.Background())

	assert.False(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Not authorized.")
	assert.Contains(t, out.String(), "Please login first")
}

func TestRun_Logout(t *testing.T) {
	fc := &fakeClient{}
	a, out := newTestApp(fc, "login\nann@example.com\nlogout\nusers\n", "secret123")

	a.Run(context.Background())

	assert.False(t, a.isLoggedIn())
	assert.Empty(t, fc.access)
	assert.Empty(t, fc.refresh)
	assert.Contains(t, out.String(), "Logged out")
	assert.Contains(t, out.String(), "Please login first")
}

func TestHelp_DependsOnSession(t *testing.T) {
	fc := &fakeClient{}
	a, out := newTestApp(fc, "help\n")
	a.Run(context.Background())
	assert.Contains(t, out.String(), "login")
	assert.NotContains(t, out.String(), "deluser <id>")

	a, out = newTestApp(fc, "login\nann@example.com\nhelp\n", "secret123")
	a.Run(context.Background())
	assert.Contains(t, out.String(), "deluser <id>")
	assert.Contains(t, out.String(), "grant <user id> <scope>")
}
