package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"math/big"
	"strings"
)

// MinCodeDigits is the shortest one-time code GenerateCode will produce.
const MinCodeDigits = 6

// GenerateCode returns a uniformly random decimal code with the given number
// of digits (leading zeros kept). Values below MinCodeDigits are raised.
func GenerateCode(digits int) (string, error) {
	if digits < MinCodeDigits {
		digits = MinCodeDigits
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	s := n.String()
	return strings.Repeat("0", digits-len(s)) + s, nil
}

// DigestCode returns the SHA-256 digest of a one-time code. Pending
// challenges keep only the digest.
func DigestCode(code string) []byte {
	sum := sha256.Sum256([]byte(code))
	return sum[:]
}
