package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "gophauth.v1.Auth"

// Method names of the Auth service.
const (
	MethodLogin             = "Login"
	MethodRefreshToken      = "RefreshToken"
	MethodForgottenPassword = "ForgottenPassword"
	MethodUpdatePassword    = "UpdatePassword"
	MethodCreateUser        = "CreateUser"
	MethodGetUser           = "GetUser"
	MethodListUsers         = "ListUsers"
	MethodDeleteUser        = "DeleteUser"
	MethodGetUserScopes     = "GetUserScopes"
	MethodAddUserScope      = "AddUserScope"
	MethodRemoveUserScope   = "RemoveUserScope"
	MethodCreateScope       = "CreateScope"
	MethodListScopes        = "ListScopes"
	MethodDeleteScope       = "DeleteScope"
)

// FullMethod returns the "/service/method" path gRPC routes on.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// AuthServer is the server API of the Auth service.
type AuthServer interface {
	Login(context.Context, *LoginRequest) (*TokenPair, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*TokenPair, error)
	ForgottenPassword(context.Context, *ForgottenPasswordRequest) (*ForgottenPasswordResponse, error)
	UpdatePassword(context.Context, *UpdatePasswordRequest) (*Empty, error)

	CreateUser(context.Context, *CreateUserRequest) (*User, error)
	GetUser(context.Context, *UserIDRequest) (*User, error)
	ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error)
	DeleteUser(context.Context, *UserIDRequest) (*Empty, error)
	GetUserScopes(context.Context, *UserIDRequest) (*ScopesResponse, error)
	AddUserScope(context.Context, *UserScopeRequest) (*Empty, error)
	RemoveUserScope(context.Context, *UserScopeRequest) (*Empty, error)

	CreateScope(context.Context, *ScopeRequest) (*Scope, error)
	ListScopes(context.Context, *Empty) (*ListScopesResponse, error)
	DeleteScope(context.Context, *ScopeRequest) (*Empty, error)
}

// UnimplementedAuthServer answers every method with codes.Unimplemented.
// Embed it to implement a subset of AuthServer.
type UnimplementedAuthServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedAuthServer) Login(context.Context, *LoginRequest) (*TokenPair, error) {
	return nil, unimplemented(MethodLogin)
}
func (UnimplementedAuthServer) RefreshToken(context.Context, *RefreshTokenRequest) (*TokenPair, error) {
	return nil, unimplemented(MethodRefreshToken)
}
func (UnimplementedAuthServer) ForgottenPassword(context.Context, *ForgottenPasswordRequest) (*ForgottenPasswordResponse, error) {
	return nil, unimplemented(MethodForgottenPassword)
}
func (UnimplementedAuthServer) UpdatePassword(context.Context, *UpdatePasswordRequest) (*Empty, error) {
	return nil, unimplemented(MethodUpdatePassword)
}
func (UnimplementedAuthServer) CreateUser(context.Context, *CreateUserRequest) (*User, error) {
	return nil, unimplemented(MethodCreateUser)
}
func (UnimplementedAuthServer) GetUser(context.Context, *UserIDRequest) (*User, error) {
	return nil, unimplemented(MethodGetUser)
}
func (UnimplementedAuthServer) ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error) {
	return nil, unimplemented(MethodListUsers)
}
func (UnimplementedAuthServer) DeleteUser(context.Context, *UserIDRequest) (*Empty, error) {
	return nil, unimplemented(MethodDeleteUser)
}
func (UnimplementedAuthServer) GetUserScopes(context.Context, *UserIDRequest) (*ScopesResponse, error) {
	return nil, unimplemented(MethodGetUserScopes)
}
func (UnimplementedAuthServer) AddUserScope(context.Context, *UserScopeRequest) (*Empty, error) {
	return nil, unimplemented(MethodAddUserScope)
}
func (UnimplementedAuthServer) RemoveUserScope(context.Context, *UserScopeRequest) (*Empty, error) {
	return nil, unimplemented(MethodRemoveUserScope)
}
func (UnimplementedAuthServer) CreateScope(context.Context, *ScopeRequest) (*Scope, error) {
	return nil, unimplemented(MethodCreateScope)
}
func (UnimplementedAuthServer) ListScopes(context.Context, *Empty) (*ListScopesResponse, error) {
	return nil, unimplemented(MethodListScopes)
}
func (UnimplementedAuthServer) DeleteScope(context.Context, *ScopeRequest) (*Empty, error) {
	return nil, unimplemented(MethodDeleteScope)
}

// ServiceDesc describes the Auth service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodLogin, AuthServer.Login),
		unary(MethodRefreshToken, AuthServer.RefreshToken),
		unary(MethodForgottenPassword, AuthServer.ForgottenPassword),
		unary(MethodUpdatePassword, AuthServer.UpdatePassword),
		unary(MethodCreateUser, AuthServer.CreateUser),
		unary(MethodGetUser, AuthServer.GetUser),
		unary(MethodListUsers, AuthServer.ListUsers),
		unary(MethodDeleteUser, AuthServer.DeleteUser),
		unary(MethodGetUserScopes, AuthServer.GetUserScopes),
		unary(MethodAddUserScope, AuthServer.AddUserScope),
		unary(MethodRemoveUserScope, AuthServer.RemoveUserScope),
		unary(MethodCreateScope, AuthServer.CreateScope),
		unary(MethodListScopes, AuthServer.ListScopes),
		unary(MethodDeleteScope, AuthServer.DeleteScope),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophauth/v1/auth",
}

// RegisterAuthServer registers srv on s.
func RegisterAuthServer(s grpc.ServiceRegistrar, srv AuthServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary adapts a typed AuthServer method to a grpc.MethodDesc, running the
// server's interceptor chain when one is installed.
func unary[Req, Resp any](name string, call func(AuthServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AuthServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AuthServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
