package auth

import (
	"context"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/logistics-console/internal/domain"
)

var (
	// ErrMalformedToken is returned for tokens that cannot be decoded.
	ErrMalformedToken = errors.New("malformed backend token")
	// ErrTokenExpired is returned for tokens past their exp claim.
	ErrTokenExpired = errors.New("backend token expired")
)

// Claims is the payload of a backend-issued JWT.
type Claims struct {
	UserID string      `json:"id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// AccountID returns the user id, falling back to the sub claim.
func (c *Claims) AccountID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// Expiry returns the exp claim or the zero time when absent.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// DecodeClaims reads the claims of a backend token without verifying its
// signature. The backend verifies every call made with the token; the
// console only needs the identity to route and gate requests.
func DecodeClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, errors.Join(ErrMalformedToken, err)
	}
	if claims.AccountID() == "" || !claims.Role.Valid() {
		return nil, ErrMalformedToken
	}
	return claims, nil
}

// TokenValidator rejects malformed or expired backend tokens before they
// are presented to the push transport.
type TokenValidator struct {
	Now func() time.Time
}

// Check implements channel.TokenCheck.
func (v TokenValidator) Check(_ context.Context, token string) error {
	claims, err := DecodeClaims(token)
	if err != nil {
		return err
	}
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	if exp := claims.Expiry(); !exp.IsZero() && !now().Before(exp) {
		return ErrTokenExpired
	}
	return nil
}
