package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKDF(t *testing.T) {
	k, err := ParseKDF("argon2id")
	require.NoError(t, err)
	assert.Equal(t, KDFArgon2id, k)

	k, err = ParseKDF("pbkdf2-sha256")
	require.NoError(t, err)
	assert.Equal(t, KDFPBKDF2SHA256, k)

	_, err = ParseKDF("md5")
	require.Error(t, err)
}

func TestNewSalt_LengthAndEntropy(t *testing.T) {
	a := NewSalt()
	b := NewSalt()
	require.Len(t, a, SaltSize)
	require.Len(t, b, SaltSize)
	if bytes.Equal(a, b) {
		t.Logf("warning: two salts are identical; extremely unlikely")
	}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	for _, kdf := range []KDF{KDFArgon2id, KDFPBKDF2SHA256} {
		t.Run(string(kdf), func(t *testing.T) {
			salt := []byte("fixed-salt-16byt")

			k1, err := DeriveKey(kdf, []byte("secret-password"), salt)
			require.NoError(t, err)
			k2, err := DeriveKey(kdf, []byte("secret-password"), salt)
			require.NoError(t, err)

			assert.Len(t, k1, KeySize)
			assert.True(t, Equal(k1, k2), "same inputs must give the same key")
		})
	}
}

func TestDeriveKey_DifferentInputs(t *testing.T) {
	for _, kdf := range []KDF{KDFArgon2id, KDFPBKDF2SHA256} {
		t.Run(string(kdf), func(t *testing.T) {
			k1, err := DeriveKey(kdf, []byte("pw"), []byte("salt-1"))
			require.NoError(t, err)
			k2, err := DeriveKey(kdf, []byte("pw"), []byte("salt-2"))
			require.NoError(t, err)
			k3, err := DeriveKey(kdf, []byte("pw2"), []byte("salt-1"))
			require.NoError(t, err)

			assert.False(t, Equal(k1, k2), "different salts must give different keys")
			assert.False(t, Equal(k1, k3), "different passwords must give different keys")
		})
	}
}

func TestDeriveKey_AlgorithmsDiffer(t *testing.T) {
	salt := []byte("fixed-salt-16byt")
	a, err := DeriveKey(KDFArgon2id, []byte("pw"), salt)
	require.NoError(t, err)
	p, err := DeriveKey(KDFPBKDF2SHA256, []byte("pw"), salt)
	require.NoError(t, err)
	assert.False(t, Equal(a, p))
}

func TestDeriveKey_UnknownKDF(t *testing.T) {
	_, err := DeriveKey("scrypt", []byte("pw"), []byte("salt"))
	require.Error(t, err)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal([]byte("abc"), []byte("abc")))
	assert.False(t, Equal([]byte("abc"), []byte("abd")))
	assert.False(t, Equal([]byte("abc"), []byte("abcd")))
}
