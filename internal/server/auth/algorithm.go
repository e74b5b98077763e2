package auth

import (
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Algorithm is a JWT signing algorithm the engine can be configured with.
type Algorithm string

const (
	HS256 Algorithm = "HS256"
	HS384 Algorithm = "HS384"
	HS512 Algorithm = "HS512"
	ES256 Algorithm = "ES256"
	ES384 Algorithm = "ES384"
	ES512 Algorithm = "ES512"
	RS256 Algorithm = "RS256"
	RS384 Algorithm = "RS384"
	RS512 Algorithm = "RS512"
	PS256 Algorithm = "PS256"
	PS384 Algorithm = "PS384"
	PS512 Algorithm = "PS512"
	EdDSA Algorithm = "EdDSA"
)

type keyFamily int

const (
	familyHMAC keyFamily = iota
	familyEC
	familyRSA
	familyEd25519
)

// ParseAlgorithm resolves a configured algorithm name. Names are case sensitive
// and match the JWT "alg" header values.
func ParseAlgorithm(name string) (Algorithm, error) {
	a := Algorithm(name)
	if a.method() == nil {
		return "", fmt.Errorf("%w: unsupported jwt algorithm %q", common.ErrConfiguration, name)
	}
	return a, nil
}

func (a Algorithm) String() string { return string(a) }

func (a Algorithm) method() jwt.SigningMethod {
	switch a {
	case HS256:
		return jwt.SigningMethodHS256
	case HS384:
		return jwt.SigningMethodHS384
	case HS512:
		return jwt.SigningMethodHS512
	case ES256:
		return jwt.SigningMethodES256
	case ES384:
		return jwt.SigningMethodES384
	case ES512:
		return jwt.SigningMethodES512
	case RS256:
		return jwt.SigningMethodRS256
	case RS384:
		return jwt.SigningMethodRS384
	case RS512:
		return jwt.SigningMethodRS512
	case PS256:
		return jwt.SigningMethodPS256
	case PS384:
		return jwt.SigningMethodPS384
	case PS512:
		return jwt.SigningMethodPS512
	case EdDSA:
		return jwt.SigningMethodEdDSA
	default:
		return nil
	}
}

func (a Algorithm) family() keyFamily {
	switch a {
	case ES256, ES384, ES512:
		return familyEC
	case RS256, RS384, RS512, PS256, PS384, PS512:
		return familyRSA
	case EdDSA:
		return familyEd25519
	default:
		return familyHMAC
	}
}
