// Package cryptox holds the password key-derivation functions and the
// one-time code generator used by the credential store and the MFA gate.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"github.com/dmitrijs2005/securebank/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// KDF names a password key-derivation function. The name is persisted next
// to each hash so a user is always verified with the function that produced
// their hash.
type KDF string

const (
	KDFArgon2id     KDF = "argon2id"
	KDFPBKDF2SHA256 KDF = "pbkdf2-sha256"
)

const (
	// SaltSize is the per-user salt length in bytes.
	SaltSize = 16
	// KeySize is the derived key length in bytes.
	KeySize = 32
	// PBKDF2Iterations is the PBKDF2-HMAC-SHA256 work factor.
	PBKDF2Iterations = 100_000

	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
)

// ParseKDF validates a configured KDF name.
func ParseKDF(s string) (KDF, error) {
	switch k := KDF(s); k {
	case KDFArgon2id, KDFPBKDF2SHA256:
		return k, nil
	default:
		return "", fmt.Errorf("unknown kdf %q", s)
	}
}

// NewSalt returns SaltSize bytes from the system CSPRNG.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// DeriveKey stretches password with salt using kdf and returns a KeySize key.
func DeriveKey(kdf KDF, password, salt []byte) ([]byte, error) {
	switch kdf {
	case KDFArgon2id:
		return argon2.IDKey(password, salt, argon2Time, argon2Memory, argon2Threads, KeySize), nil
	case KDFPBKDF2SHA256:
		return pbkdf2.Key(password, salt, PBKDF2Iterations, KeySize, sha256.New), nil
	default:
		return nil, fmt.Errorf("unknown kdf %q", kdf)
	}
}

// Equal compares two secrets in constant time.
func Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
