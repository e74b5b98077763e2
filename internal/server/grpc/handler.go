package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/transport"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps a service error to a gRPC status. Internal details never
// leave the server; services have already logged them.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrorSelfDeletion):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	default:
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.TokenPair, error) {

	tokens, err := s.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}

	return transport.TokenPair(tokens), nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.TokenPair, error) {

	tokens, err := s.auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(err)
	}

	return transport.TokenPair(tokens), nil
}

func (s *GRPCServer) ForgottenPassword(ctx context.Context, req *api.ForgottenPasswordRequest) (*api.ForgottenPasswordResponse, error) {

	reset, err := s.resets.IssueForEmail(ctx, req.Email, 0)
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.ForgottenPasswordResponse{ExpiresAt: reset.ExpiresAt}, nil
}

func (s *GRPCServer) UpdatePassword(ctx context.Context, req *api.UpdatePasswordRequest) (*api.Empty, error) {

	if err := s.resets.Consume(ctx, req.Token, req.Password); err != nil {
		return nil, toStatus(err)
	}

	return &api.Empty{}, nil
}

func (s *GRPCServer) CreateUser(ctx context.Context, req *api.CreateUserRequest) (*api.User, error) {

	u, err := s.users.Create(ctx, transport.CreateUserInput(req))
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "user created", "user_id", u.ID, "by", transport.ActingUser(ctx))
	return transport.User(u), nil
}

func (s *GRPCServer) GetUser(ctx context.Context, req *api.UserIDRequest) (*api.User, error) {

	u, err := s.users.Get(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}

	return transport.User(u), nil
}

func (s *GRPCServer) ListUsers(ctx context.Context, req *api.ListUsersRequest) (*api.ListUsersResponse, error) {

	users, total, err := s.users.List(ctx, transport.Page(req))
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.ListUsersResponse{Data: transport.Users(users), Total: total}, nil
}

func (s *GRPCServer) DeleteUser(ctx context.Context, req *api.UserIDRequest) (*api.Empty, error) {

	if err := s.users.Delete(ctx, req.ID, transport.ActingUser(ctx)); err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "user deleted", "user_id", req.ID, "by", transport.ActingUser(ctx))
	return &api.Empty{}, nil
}

func (s *GRPCServer) GetUserScopes(ctx context.Context, req *api.UserIDRequest) (*api.ScopesResponse, error) {

	scopes, err := s.users.Scopes(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.ScopesResponse{Scopes: scopes}, nil
}

func (s *GRPCServer) AddUserScope(ctx context.Context, req *api.UserScopeRequest) (*api.Empty, error) {

	if err := s.users.AddScope(ctx, req.UserID, req.ScopeID); err != nil {
		return nil, toStatus(err)
	}

	return &api.Empty{}, nil
}

func (s *GRPCServer) RemoveUserScope(ctx context.Context, req *api.UserScopeRequest) (*api.Empty, error) {

	if err := s.users.RemoveScope(ctx, req.UserID, req.ScopeID); err != nil {
		return nil, toStatus(err)
	}

	return &api.Empty{}, nil
}

func (s *GRPCServer) CreateScope(ctx context.Context, req *api.ScopeRequest) (*api.Scope, error) {

	sc, err := s.scopes.Create(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}

	return transport.Scope(sc), nil
}

func (s *GRPCServer) ListScopes(ctx context.Context, _ *api.Empty) (*api.ListScopesResponse, error) {

	scopes, err := s.scopes.List(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.ListScopesResponse{Data: transport.Scopes(scopes)}, nil
}

func (s *GRPCServer) DeleteScope(ctx context.Context, req *api.ScopeRequest) (*api.Empty, error) {

	if err := s.scopes.Delete(ctx, req.ID); err != nil {
		return nil, toStatus(err)
	}

	return &api.Empty{}, nil
}
