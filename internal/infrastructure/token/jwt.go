// Package token implements the bearer-token issuer on top of golang-jwt.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/apiauth/account-service/internal/core/domain"
)

const defaultTTL = 24 * time.Hour

// JWTIssuer issues HS256-signed tokens carrying the user's identity and role
// claims. The same secret is used by the auth middleware to verify them.
type JWTIssuer struct {
	secret string
	ttl    time.Duration
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &JWTIssuer{secret: secret, ttl: ttl}
}

// Issue produces a signed token for the given user.
func (i *JWTIssuer) Issue(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(i.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(i.secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
