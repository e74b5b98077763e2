// Package auth mints and verifies access tokens and evaluates scope
// requirements. The Engine signs with one configured algorithm; the Guard
// turns a bearer token plus a required scope set into an Identity.
package auth

import (
	"bytes"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the access token payload:
//
//	{"sub": "...", "exp": 0, "iat": 0, "nbf": 0, "user_id": "...", "scopes": ["..."]}
//
// user_id duplicates sub. Scopes may contain duplicates and are treated as a set.
type Claims struct {
	jwt.RegisteredClaims
	UserID string   `json:"user_id"`
	Scopes []string `json:"scopes"`
}

// Engine signs and verifies access tokens with a single algorithm. Keys are
// parsed once in NewEngine; the Engine is immutable and safe for concurrent use.
type Engine struct {
	alg       Algorithm
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
	now       func() time.Time
}

// NewEngine validates the algorithm/key pairing and parses the key material.
//
// HS* algorithms take a shared secret; when both keys are given they must be
// identical. Asymmetric algorithms take a PEM private key for encoding and a
// PEM public key for decoding, of the family matching the algorithm. Either
// side may be omitted to build a sign-only or verify-only engine, but not both.
func NewEngine(alg Algorithm, encodingKey, decodingKey []byte) (*Engine, error) {
	method := alg.method()
	if method == nil {
		return nil, fmt.Errorf("%w: unsupported jwt algorithm %q", common.ErrConfiguration, alg)
	}
	if len(encodingKey) == 0 && len(decodingKey) == 0 {
		return nil, fmt.Errorf("%w: no key material for %s", common.ErrConfiguration, alg)
	}

	e := &Engine{alg: alg, method: method, now: time.Now}

	if alg.family() == familyHMAC {
		secret := encodingKey
		if len(secret) == 0 {
			secret = decodingKey
		}
		if len(encodingKey) > 0 && len(decodingKey) > 0 && !bytes.Equal(encodingKey, decodingKey) {
			return nil, fmt.Errorf("%w: %s uses one shared secret for both sides", common.ErrConfiguration, alg)
		}
		if bytes.HasPrefix(bytes.TrimSpace(secret), []byte("-----BEGIN")) {
			return nil, fmt.Errorf("%w: %s expects a shared secret, got a PEM block", common.ErrConfiguration, alg)
		}
		e.signKey, e.verifyKey = secret, secret
		return e, nil
	}

	if len(encodingKey) > 0 {
		k, err := parsePrivateKey(alg, encodingKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %s private key: %v", common.ErrConfiguration, alg, err)
		}
		e.signKey = k
	}
	if len(decodingKey) > 0 {
		k, err := parsePublicKey(alg, decodingKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %s public key: %v", common.ErrConfiguration, alg, err)
		}
		e.verifyKey = k
	}
	return e, nil
}

// Algorithm returns the configured signing algorithm.
func (e *Engine) Algorithm() Algorithm { return e.alg }

// Encode mints a token for subject carrying scopes. iat and nbf are now and
// exp is now+lifetime, all at second precision. The returned time is exp.
func (e *Engine) Encode(subject string, scopes []string, lifetime time.Duration) (string, time.Time, error) {
	if e.signKey == nil {
		return "", time.Time{}, fmt.Errorf("%w: engine has no encoding key", common.ErrEncoding)
	}
	if scopes == nil {
		scopes = []string{}
	}

	now := e.now().Truncate(time.Second)
	exp := now.Add(lifetime)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID: subject,
		Scopes: scopes,
	}

	token, err := jwt.NewWithClaims(e.method, claims).SignedString(e.signKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", common.ErrEncoding, err)
	}
	return token, exp, nil
}

// Decode verifies signature, algorithm and temporal claims of token.
// An expired token yields common.ErrTokenExpired; any other defect
// (malformed, bad signature, other algorithm, not yet valid) yields
// common.ErrInvalidToken. A verification key unusable for the configured
// algorithm yields common.ErrDecoding.
func (e *Engine) Decode(token string) (*Claims, error) {
	if e.verifyKey == nil {
		return nil, fmt.Errorf("%w: engine has no decoding key", common.ErrConfiguration)
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return e.verifyKey, nil },
		jwt.WithValidMethods([]string{e.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(e.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		// the verification key does not fit the pinned method
		if errors.Is(err, jwt.ErrInvalidKeyType) {
			return nil, fmt.Errorf("%w: %v", common.ErrDecoding, err)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", common.ErrInvalidToken)
	}
	return claims, nil
}

func parsePrivateKey(alg Algorithm, pemBytes []byte) (any, error) {
	switch alg.family() {
	case familyEC:
		k, err := jwt.ParseECPrivateKeyFromPEM(pemBytes)
		if err != nil {
			return nil, err
		}
		return k, checkCurve(alg, &k.PublicKey)
	case familyRSA:
		return jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
	case familyEd25519:
		return jwt.ParseEdPrivateKeyFromPEM(pemBytes)
	default:
		return nil, errors.New("not an asymmetric algorithm")
	}
}

func parsePublicKey(alg Algorithm, pemBytes []byte) (any, error) {
	switch alg.family() {
	case familyEC:
		k, err := jwt.ParseECPublicKeyFromPEM(pemBytes)
		if err != nil {
			return nil, err
		}
		return k, checkCurve(alg, k)
	case familyRSA:
		return jwt.ParseRSAPublicKeyFromPEM(pemBytes)
	case familyEd25519:
		return jwt.ParseEdPublicKeyFromPEM(pemBytes)
	default:
		return nil, errors.New("not an asymmetric algorithm")
	}
}

// checkCurve rejects e.g. a P-384 key configured for ES256; the signer would
// otherwise fail on every call.
func checkCurve(alg Algorithm, k *ecdsa.PublicKey) error {
	m, ok := alg.method().(*jwt.SigningMethodECDSA)
	if !ok {
		return nil
	}
	if k.Curve.Params().BitSize != m.CurveBits {
		return fmt.Errorf("curve %s does not match %s", k.Curve.Params().Name, alg)
	}
	return nil
}
