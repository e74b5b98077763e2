package api

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// publicMethods never carry an access token.
var publicMethods = map[string]bool{
	FullMethod(MethodLogin):             true,
	FullMethod(MethodRefreshToken):      true,
	FullMethod(MethodForgottenPassword): true,
	FullMethod(MethodUpdatePassword):    true,
}

// IsPublicMethod reports whether fullMethod is callable without a token.
func IsPublicMethod(fullMethod string) bool {
	return publicMethods[fullMethod]
}

// Client calls the Auth service. After Login it attaches the access token to
// every protected call and, when the server rejects it as unauthenticated,
// exchanges the refresh token once and retries. The server does not say why
// a token was rejected, so a call lacking scope costs one extra rotation.
type Client struct {
	endpointURL string
	conn        *grpc.ClientConn
	cc          grpc.ClientConnInterface

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func NewClient(endpointURL string, opts ...grpc.DialOption) (*Client, error) {
	c := &Client{endpointURL: endpointURL}
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.cc = conn
	return c, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Tokens returns the current access and refresh tokens.
func (c *Client) Tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// SetTokens replaces the stored tokens, e.g. with a pair obtained elsewhere.
func (c *Client) SetTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = access
	c.refreshToken = refresh
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (c *Client) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if IsPublicMethod(method) {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	access, refresh := c.Tokens()
	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated {
		return err
	}
	if refresh == "" {
		return err
	}

	pair := &TokenPair{}
	if rerr := c.cc.Invoke(ctx, FullMethod(MethodRefreshToken), &RefreshTokenRequest{RefreshToken: refresh}, pair); rerr != nil {
		return rerr
	}
	c.SetTokens(pair.AccessToken, pair.RefreshToken)

	return invoker(withAccessToken(ctx, pair.AccessToken), method, req, reply, cc, opts...)
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out); err != nil {
		return mapError(err)
	}
	return nil
}

// Login stores the returned tokens for subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	out := &TokenPair{}
	if err := c.invoke(ctx, MethodLogin, &LoginRequest{Email: email, Password: password}, out); err != nil {
		return nil, err
	}
	c.SetTokens(out.AccessToken, out.RefreshToken)
	return out, nil
}

// Refresh exchanges the stored refresh token explicitly.
func (c *Client) Refresh(ctx context.Context) (*TokenPair, error) {
	_, refresh := c.Tokens()
	out := &TokenPair{}
	if err := c.invoke(ctx, MethodRefreshToken, &RefreshTokenRequest{RefreshToken: refresh}, out); err != nil {
		return nil, err
	}
	c.SetTokens(out.AccessToken, out.RefreshToken)
	return out, nil
}

func (c *Client) ForgottenPassword(ctx context.Context, email string) (*ForgottenPasswordResponse, error) {
	out := &ForgottenPasswordResponse{}
	if err := c.invoke(ctx, MethodForgottenPassword, &ForgottenPasswordRequest{Email: email}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdatePassword(ctx context.Context, token, password string) error {
	return c.invoke(ctx, MethodUpdatePassword, &UpdatePasswordRequest{Token: token, Password: password}, &Empty{})
}

func (c *Client) CreateUser(ctx context.Context, in *CreateUserRequest) (*User, error) {
	out := &User{}
	if err := c.invoke(ctx, MethodCreateUser, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	out := &User{}
	if err := c.invoke(ctx, MethodGetUser, &UserIDRequest{ID: id}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListUsers(ctx context.Context, in *ListUsersRequest) (*ListUsersResponse, error) {
	out := &ListUsersResponse{}
	if err := c.invoke(ctx, MethodListUsers, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.invoke(ctx, MethodDeleteUser, &UserIDRequest{ID: id}, &Empty{})
}

func (c *Client) GetUserScopes(ctx context.Context, id string) ([]string, error) {
	out := &ScopesResponse{}
	if err := c.invoke(ctx, MethodGetUserScopes, &UserIDRequest{ID: id}, out); err != nil {
		return nil, err
	}
	return out.Scopes, nil
}

func (c *Client) AddUserScope(ctx context.Context, userID, scopeID string) error {
	return c.invoke(ctx, MethodAddUserScope, &UserScopeRequest{UserID: userID, ScopeID: scopeID}, &Empty{})
}

func (c *Client) RemoveUserScope(ctx context.Context, userID, scopeID string) error {
	return c.invoke(ctx, MethodRemoveUserScope, &UserScopeRequest{UserID: userID, ScopeID: scopeID}, &Empty{})
}

func (c *Client) CreateScope(ctx context.Context, id string) (*Scope, error) {
	out := &Scope{}
	if err := c.invoke(ctx, MethodCreateScope, &ScopeRequest{ID: id}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListScopes(ctx context.Context) ([]Scope, error) {
	out := &ListScopesResponse{}
	if err := c.invoke(ctx, MethodListScopes, &Empty{}, out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) DeleteScope(ctx context.Context, id string) error {
	return c.invoke(ctx, MethodDeleteScope, &ScopeRequest{ID: id}, &Empty{})
}

// mapError collapses transport failures into ErrUnauthorized and
// ErrUnavailable; other statuses are wrapped unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
