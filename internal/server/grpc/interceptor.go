package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// methodScopes lists the scopes each protected method requires. Methods not
// listed here (login, refresh, password reset, health) are public.
var methodScopes = map[string][]string{
	api.FullMethod(api.MethodCreateUser):      {auth.ScopeUsers},
	api.FullMethod(api.MethodGetUser):         {auth.ScopeUsers},
	api.FullMethod(api.MethodListUsers):       {auth.ScopeUsers},
	api.FullMethod(api.MethodDeleteUser):      {auth.ScopeUsers},
	api.FullMethod(api.MethodGetUserScopes):   {auth.ScopeUsers},
	api.FullMethod(api.MethodAddUserScope):    {auth.ScopeUsers},
	api.FullMethod(api.MethodRemoveUserScope): {auth.ScopeUsers},
	api.FullMethod(api.MethodCreateScope):     {auth.ScopeAdmin},
	api.FullMethod(api.MethodListScopes):      {auth.ScopeAdmin},
	api.FullMethod(api.MethodDeleteScope):     {auth.ScopeAdmin},
}

func bearerFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(common.AuthorizationHeaderName)
	if len(values) == 0 {
		return ""
	}
	return auth.BearerToken(values[0])
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	required, protected := methodScopes[info.FullMethod]
	if !protected {
		return handler(ctx, req)
	}

	identity, err := s.guard.Check(bearerFromMetadata(ctx), required)
	if err != nil {
		// an expired token is routine; anything else may be probing
		if errors.Is(err, common.ErrTokenExpired) {
			s.logger.Info(ctx, "access token expired", "method", info.FullMethod)
		} else {
			s.logger.Warn(ctx, "access denied", "method", info.FullMethod, "error", err)
		}
		return nil, status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	}

	return handler(auth.WithIdentity(ctx, identity), req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "rpc handled",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}
