// Package auth issues and verifies the HS256 tokens that gate the upload socket.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails parsing, signature or expiry checks.
var ErrInvalidToken = errors.New("invalid or expired token")

// DefaultTTL is used when Issue is called with a non-positive ttl.
const DefaultTTL = 30 * 24 * time.Hour

// Issuer signs and verifies tokens with a shared secret.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

// NewIssuer creates an Issuer for the given secret.
func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret), now: time.Now}
}

// Issue creates a signed token for subject.
func (i *Issuer) Issue(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("issue token: empty subject")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := i.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses raw and returns its subject.
func (i *Issuer) Verify(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
