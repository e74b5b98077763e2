package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/server/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ---- fakes ----

type fakeAuth struct {
	loginResp *services.TokenPair
	loginErr  error
	lastEmail string
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*services.TokenPair, error) {
	f.lastEmail = email
	return f.loginResp, f.loginErr
}
func (f *fakeAuth) Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	return f.loginResp, f.loginErr
}

type fakeResets struct {
	reset      *models.PasswordReset
	err        error
	lastToken  string
	lastPasswd string
}

func (f *fakeResets) IssueForEmail(ctx context.Context, email string, lifetime time.Duration) (*models.PasswordReset, error) {
	return f.reset, f.err
}
func (f *fakeResets) Consume(ctx context.Context, token, newPassword string) error {
	f.lastToken, f.lastPasswd = token, newPassword
	return f.err
}

type fakeUsers struct {
	err        error
	lastPage   models.Page
	lastActing string
	users      []models.User
}

func (f *fakeUsers) Create(ctx context.Context, in services.CreateUserInput) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: "new", Email: in.Email}, nil
}
func (f *fakeUsers) Get(ctx context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: id}, nil
}
func (f *fakeUsers) List(ctx context.Context, page models.Page) ([]models.User, int64, error) {
	f.lastPage = page
	return f.users, int64(len(f.users)), f.err
}
func (f *fakeUsers) Delete(ctx context.Context, id, actingUserID string) error {
	f.lastActing = actingUserID
	return f.err
}
func (f *fakeUsers) Scopes(ctx context.Context, userID string) ([]string, error) {
	return []string{auth.ScopeUsers}, f.err
}
func (f *fakeUsers) AddScope(ctx context.Context, userID, scopeID string) error    { return f.err }
func (f *fakeUsers) RemoveScope(ctx context.Context, userID, scopeID string) error { return f.err }

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{common.ErrorUnauthorized, codes.Unauthenticated},
		{fmt.Errorf("%w: bad", common.ErrorUnauthorized), codes.Unauthenticated},
		{common.ErrorNotFound, codes.NotFound},
		{fmt.Errorf("%w: invalid field", common.ErrorValidation), codes.InvalidArgument},
		{common.ErrorSelfDeletion, codes.InvalidArgument},
		{common.ErrorAlreadyExists, codes.AlreadyExists},
		{common.ErrorInternal, codes.Internal},
		{errors.New("pq: connection refused"), codes.Internal},
	}
	for _, tt := range tests {
		st := status.Convert(toStatus(tt.err))
		assert.Equal(t, tt.code, st.Code(), tt.err.Error())
	}

	// store details stay on the server
	assert.Equal(t, "internal error", status.Convert(toStatus(errors.New("pq: connection refused"))).Message())
}

func TestLogin_MapsTokens(t *testing.T) {
	exp := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fa := &fakeAuth{loginResp: &services.TokenPair{UserID: "u1", AccessToken: "a", AccessExpiresAt: exp, RefreshToken: "r", RefreshExpiresAt: exp.Add(time.Hour)}}
	s := NewGRPCServer("", nopLogger{}, nil, transport.Services{Auth: fa})

	resp, err := s.Login(context.Background(), &api.LoginRequest{Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", fa.lastEmail)
	assert.Equal(t, &api.TokenPair{UserID: "u1", AccessToken: "a", AccessTokenExpiresAt: exp, RefreshToken: "r", RefreshTokenExpiresAt: exp.Add(time.Hour)}, resp)

	fa.loginErr = common.ErrorUnauthorized
	_, err = s.Login(context.Background(), &api.LoginRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestForgottenPassword_DoesNotReturnToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).UTC()
	fr := &fakeResets{reset: &models.PasswordReset{UserID: "u1", Token: "secret-token", ExpiresAt: exp}}
	s := NewGRPCServer("", nopLogger{}, nil, transport.Services{Resets: fr})

	resp, err := s.ForgottenPassword(context.Background(), &api.ForgottenPasswordRequest{Email: "ann@example.com"})
	require.NoError(t, err)
	assert.Equal(t, &api.ForgottenPasswordResponse{ExpiresAt: exp}, resp)

	fr.err = common.ErrorNotFound
	_, err = s.ForgottenPassword(context.Background(), &api.ForgottenPasswordRequest{Email: "x@example.com"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestUpdatePassword_PassesThrough(t *testing.T) {
	fr := &fakeResets{}
	s := NewGRPCServer("", nopLogger{}, nil, transport.Services{Resets: fr})

	_, err := s.UpdatePassword(context.Background(), &api.UpdatePasswordRequest{Token: "t", Password: "newpw"})
	require.NoError(t, err)
	assert.Equal(t, "t", fr.lastToken)
	assert.Equal(t, "newpw", fr.lastPasswd)
}

func TestDeleteUser_UsesCallerIdentity(t *testing.T) {
	fu := &fakeUsers{}
	s := NewGRPCServer("", nopLogger{}, nil, transport.Services{Users: fu})
	ctx := auth.WithIdentity(context.Background(), &auth.Identity{Subject: "admin"})

	_, err := s.DeleteUser(ctx, &api.UserIDRequest{ID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "admin", fu.lastActing)

	fu.err = common.ErrorSelfDeletion
	_, err = s.DeleteUser(ctx, &api.UserIDRequest{ID: "admin"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestListUsers_MapsPage(t *testing.T) {
	fu := &fakeUsers{users: []models.User{{ID: "u1", Password: "hash"}, {ID: "u2"}}}
	s := NewGRPCServer("", nopLogger{}, nil, transport.Services{Users: fu})

	resp, err := s.ListUsers(context.Background(), &api.ListUsersRequest{Page: 2, Size: 5, Sort: "email", Desc: true})
	require.NoError(t, err)
	assert.Equal(t, models.Page{Number: 2, Size: 5, Sort: "email", Desc: true}, fu.lastPage)
	assert.EqualValues(t, 2, resp.Total)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "u1", resp.Data[0].ID)
}
