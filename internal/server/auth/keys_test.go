package auth

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type pemPair struct {
	private []byte
	public  []byte
}

var (
	rsaOnce sync.Once
	rsaPair pemPair
)

func encodePair(t *testing.T, priv crypto.PrivateKey, pub crypto.PublicKey) pemPair {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	pubDer, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)
	return pemPair{
		private: pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}),
		public:  pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDer}),
	}
}

func ecKeys(t *testing.T, curve elliptic.Curve) pemPair {
	t.Helper()
	k, err := ecdsa.GenerateKey(curve, rand.Reader)
	require.NoError(t, err)
	return encodePair(t, k, &k.PublicKey)
}

// RSA generation is slow, one pair serves the whole package.
func rsaKeys(t *testing.T) pemPair {
	t.Helper()
	rsaOnce.Do(func() {
		k, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		rsaPair = encodePair(t, k, &k.PublicKey)
	})
	return rsaPair
}

func edKeys(t *testing.T) pemPair {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return encodePair(t, priv, pub)
}

// keysFor returns matching key material for alg: the secret twice for HS*.
func keysFor(t *testing.T, alg Algorithm) pemPair {
	t.Helper()
	switch alg {
	case ES256:
		return ecKeys(t, elliptic.P256())
	case ES384:
		return ecKeys(t, elliptic.P384())
	case ES512:
		return ecKeys(t, elliptic.P521())
	case RS256, RS384, RS512, PS256, PS384, PS512:
		return rsaKeys(t)
	case EdDSA:
		return edKeys(t)
	default:
		return pemPair{private: []byte("super-secret"), public: []byte("super-secret")}
	}
}
