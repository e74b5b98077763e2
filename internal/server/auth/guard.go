package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// TokenDecoder verifies an access token. *Engine implements it.
type TokenDecoder interface {
	Decode(token string) (*Claims, error)
}

// Identity is the verified caller attached to a request.
type Identity struct {
	Subject string
	Scopes  []string
}

// Guard is the single authorization check shared by every transport.
type Guard struct {
	decoder TokenDecoder
}

func NewGuard(d TokenDecoder) *Guard {
	return &Guard{decoder: d}
}

// Check verifies bearer and evaluates required against its scopes. Every
// failure is common.ErrorUnauthorized; the underlying cause (for instance
// common.ErrTokenExpired) stays in the chain for logging only.
func (g *Guard) Check(bearer string, required []string) (*Identity, error) {
	if bearer == "" {
		return nil, fmt.Errorf("%w: missing token", common.ErrorUnauthorized)
	}

	claims, err := g.decoder.Decode(bearer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	if !Authorize(claims.Scopes, required) {
		return nil, fmt.Errorf("%w: insufficient scope", common.ErrorUnauthorized)
	}

	return &Identity{Subject: claims.Subject, Scopes: claims.Scopes}, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// value. Anything else yields "".
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < len(common.BearerPrefix) || !strings.EqualFold(header[:len(common.BearerPrefix)], common.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(common.BearerPrefix):])
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}
