package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the validity window of an issued admin session token.
const TokenTTL = 24 * time.Hour

var (
	// ErrSecretNotConfigured means the admin passkey is not set server-side.
	// Requests must fail closed on it, never get treated as authorized.
	ErrSecretNotConfigured = errors.New("server configuration error: admin passkey not set")
	ErrNoToken             = errors.New("no token provided")
	ErrInvalidToken        = errors.New("token validation failed")
)

var _ Checker = (*TokenChecker)(nil)

// Checker reports whether a bearer token grants admin access.
type Checker interface {
	CheckToken(token string) error
}

// TokenChecker verifies HS256 signed admin session tokens issued by the
// Verifier under the same shared secret.
type TokenChecker struct {
	secret string
	// ability to inject the clock for token expiry tests
	Now func() time.Time
}

func NewTokenChecker(secret string) *TokenChecker {
	return &TokenChecker{
		secret: secret,
		Now:    time.Now,
	}
}

// CheckToken returns nil only if the token signature verifies under the
// shared secret, the token is not expired, and the admin claim is true.
// Expired and forged tokens both come back as ErrInvalidToken - the caller
// must not be able to tell them apart.
func (c *TokenChecker) CheckToken(tokenString string) error {
	if c.secret == "" {
		return ErrSecretNotConfigured
	}
	if tokenString == "" {
		return ErrNoToken
	}

	token, err := jwt.Parse(
		tokenString,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(c.secret), nil
		},
		jwt.WithTimeFunc(func() time.Time { return c.Now() }),
	)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ErrInvalidToken
	}

	if isAdmin, ok := claims["admin"].(bool); !ok || !isAdmin {
		return ErrInvalidToken
	}

	return nil
}
