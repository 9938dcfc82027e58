package auth

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks a candidate passkey against the configured admin passkey
// and issues signed session tokens on a match. It keeps no state between
// calls - tokens are self-verifying and there is no session table.
type Verifier struct {
	secret string
	// ability to inject the clock for token expiry tests
	Now func() time.Time
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: secret,
		Now:    time.Now,
	}
}

// Verify compares the candidate passkey to the configured one, by exact
// equality (case-sensitive, no trimming). A mismatch is a normal outcome,
// not an error. A missing server-side passkey is a configuration fault and
// fails distinctly, never as a wildcard match.
func (v *Verifier) Verify(passkey string) (token string, ok bool, err error) {
	if v.secret == "" {
		return "", false, ErrSecretNotConfigured
	}

	if subtle.ConstantTimeCompare([]byte(passkey), []byte(v.secret)) != 1 {
		return "", false, nil
	}

	now := v.Now()
	claims := jwt.MapClaims{
		"admin": true,
		// issuance timestamp with nanos, so that two tokens issued within
		// the same second still differ
		"ts":  now.UnixNano(),
		"iat": now.Unix(),
		"exp": now.Add(TokenTTL).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(v.secret))
	if err != nil {
		return "", false, fmt.Errorf("sign session token: %w", err)
	}

	return signed, true, nil
}
