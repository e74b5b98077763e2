package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the suite fast
var testParams = Params{Time: 1, Memory: 1024, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestArgon2Hasher_HashAndVerify(t *testing.T) {
	h := NewArgon2Hasher(testParams)

	encoded, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := h.Verify("correct horse", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong horse", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2Hasher_SaltIsRandom(t *testing.T) {
	h := NewArgon2Hasher(testParams)

	a, err := h.Hash("same-password")
	require.NoError(t, err)
	b, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestArgon2Hasher_VerifyUsesEncodedParams(t *testing.T) {
	old := NewArgon2Hasher(testParams)
	encoded, err := old.Hash("pa55word")
	require.NoError(t, err)

	stronger := NewArgon2Hasher(Params{Time: 2, Memory: 2048, Parallelism: 2, SaltLength: 16, KeyLength: 32})
	ok, err := stronger.Verify("pa55word", encoded)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArgon2Hasher_VerifyMalformed(t *testing.T) {
	h := NewArgon2Hasher(testParams)

	cases := []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$garbage$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=0,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$",
	}
	for _, c := range cases {
		ok, err := h.Verify("x", c)
		assert.ErrorIs(t, err, ErrInvalidHash, c)
		assert.False(t, ok)
	}
}
