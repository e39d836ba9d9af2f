package auth

import (
	"context"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/logistics-console/internal/domain"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestDecodeClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signToken(t, jwt.MapClaims{
		"id":    "u-1",
		"email": "ana@example.com",
		"role":  "driver",
		"exp":   exp.Unix(),
	})

	claims, err := DecodeClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.AccountID())
	assert.Equal(t, domain.RoleDriver, claims.Role)
	assert.True(t, claims.Expiry().Equal(exp))
}

func TestDecodeClaimsFallsBackToSubject(t *testing.T) {
	claims, err := DecodeClaims(signToken(t, jwt.MapClaims{"sub": "u-9", "role": "user"}))
	require.NoError(t, err)
	assert.Equal(t, "u-9", claims.AccountID())
	assert.True(t, claims.Expiry().IsZero())
}

func TestDecodeClaimsRejectsMalformed(t *testing.T) {
	for name, token := range map[string]string{
		"garbage":      "not-a-jwt",
		"missing id":   signToken(t, jwt.MapClaims{"role": "user"}),
		"unknown role": signToken(t, jwt.MapClaims{"id": "u-1", "role": "root"}),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeClaims(token)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}

func TestTokenValidator(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	validator := TokenValidator{Now: func() time.Time { return now }}

	fresh := signToken(t, jwt.MapClaims{"id": "u-1", "role": "user", "exp": now.Add(time.Minute).Unix()})
	stale := signToken(t, jwt.MapClaims{"id": "u-1", "role": "user", "exp": now.Add(-time.Minute).Unix()})

	assert.NoError(t, validator.Check(context.Background(), fresh))
	assert.ErrorIs(t, validator.Check(context.Background(), stale), ErrTokenExpired)
	assert.ErrorIs(t, validator.Check(context.Background(), "x.y"), ErrMalformedToken)
}

func TestHashSessionID(t *testing.T) {
	id := NewSessionID()
	assert.Len(t, HashSessionID(id), 64)
	assert.Equal(t, HashSessionID(id), HashSessionID(id))
	assert.NotEqual(t, HashSessionID(id), HashSessionID(NewSessionID()))
	assert.NotContains(t, HashSessionID(id), id)
}
