// Package auth mints and validates the signed session tokens handed to
// callers after a completed MFA login.
package auth

import (
	"fmt"

	"github.com/dmitrijs2005/securebank/internal/bank/models"
	"github.com/dmitrijs2005/securebank/internal/common"
	"github.com/dmitrijs2005/securebank/internal/timex"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the session id (jti) and the username the session belongs to.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"usr"`
}

type TokenIssuer struct {
	secret []byte
	clock  timex.Clock
}

func NewTokenIssuer(secret []byte, clock timex.Clock) *TokenIssuer {
	return &TokenIssuer{secret: secret, clock: clock}
}

// Issue signs an HS256 token for s.
func (i *TokenIssuer) Issue(s *models.Session) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			Subject:   s.Username,
			IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
		Username: s.Username,
	})

	return token.SignedString(i.secret)
}

// Parse validates signature, algorithm and expiry against the issuer's clock.
// Every failure is reported as common.ErrInvalidSession.
func (i *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidSession, err)
	}
	if !token.Valid || claims.ID == "" || claims.Username == "" {
		return nil, common.ErrInvalidSession
	}

	return claims, nil
}
