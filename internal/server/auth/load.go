package auth

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// KeyLoader fetches key material by location (file path or s3://bucket/key).
type KeyLoader interface {
	Load(ctx context.Context, location string) ([]byte, error)
}

// EngineSettings is the configuration slice LoadEngine needs.
type EngineSettings struct {
	Algorithm      string
	Secret         string
	PrivateKeyPath string
	PublicKeyPath  string
}

// LoadEngine builds an Engine from configuration: the shared secret for HS*
// algorithms, otherwise the PEM keys read through loader.
func LoadEngine(ctx context.Context, s EngineSettings, loader KeyLoader) (*Engine, error) {
	alg, err := ParseAlgorithm(s.Algorithm)
	if err != nil {
		return nil, err
	}

	if alg.family() == familyHMAC {
		return NewEngine(alg, []byte(s.Secret), nil)
	}

	if s.PrivateKeyPath == "" && s.PublicKeyPath == "" {
		return nil, fmt.Errorf("%w: %s requires a private and/or public key location", common.ErrConfiguration, alg)
	}

	var priv, pub []byte
	if s.PrivateKeyPath != "" {
		if priv, err = loader.Load(ctx, s.PrivateKeyPath); err != nil {
			return nil, fmt.Errorf("%w: load private key: %v", common.ErrConfiguration, err)
		}
	}
	if s.PublicKeyPath != "" {
		if pub, err = loader.Load(ctx, s.PublicKeyPath); err != nil {
			return nil, fmt.Errorf("%w: load public key: %v", common.ErrConfiguration, err)
		}
	}

	return NewEngine(alg, priv, pub)
}
