package jwt

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken_RoundTrip(t *testing.T) {
	svc, err := NewJWTService("test-secret", "15m")
	require.NoError(t, err)

	token, expiresAt, err := svc.GenerateAccessToken("user-1", "staff-1", user.RoleManager)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Positive(t, expiresAt)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)

	p, err := PrincipalFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, user.Principal{UserID: "user-1", StaffID: "staff-1", Role: user.RoleManager}, p)
}

func TestNewJWTService_RejectsBadDuration(t *testing.T) {
	_, err := NewJWTService("secret", "soon")
	assert.Error(t, err)
}

func TestPrincipalFromClaims_RejectsOtherTokenTypes(t *testing.T) {
	_, err := PrincipalFromClaims(map[string]interface{}{
		"type": "refresh", "user_id": "u", "role": "employee",
	})
	assert.ErrorIs(t, err, user.ErrInvalidToken)

	_, err = PrincipalFromClaims(map[string]interface{}{"type": "access", "role": "employee"})
	assert.ErrorIs(t, err, user.ErrInvalidToken)
}
