// Package auth issues and verifies the bearer tokens that carry a caller's
// identity.
package auth

import (
	"errors"
	"fmt"
	"time"

	model "auction-escrow/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "auction-escrow"

var (
	ErrMissingSecret = errors.New("token secret not configured")
	ErrInvalidToken  = errors.New("invalid or expired token")
)

// Claims identify the caller of an auction operation
type Claims struct {
	jwt.RegisteredClaims
}

// Identity returns the caller identity carried in the subject
func (c *Claims) Identity() model.Identity {
	return model.Identity(c.Subject)
}

// NewToken signs an HS256 token for subject valid for ttl
func NewToken(secret []byte, subject model.Identity, ttl time.Duration) (string, time.Time, error) {
	if len(secret) == 0 {
		return "", time.Time{}, ErrMissingSecret
	}
	if subject == "" {
		return "", time.Time{}, fmt.Errorf("new token: empty subject")
	}

	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(subject),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("new token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken verifies a signed token and returns its claims
func ParseToken(secret []byte, tokenString string) (*Claims, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}
	return claims, nil
}
