package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masjid/pkg/domain"
	dErrors "masjid/pkg/domain-errors"
)

var (
	tokens    = New("test-signing-key", "test-issuer")
	member    = domain.Principal{UserID: 41, Role: domain.RoleAuthenticated}
	moderator = domain.Principal{UserID: 7, Role: domain.RoleModerator}
)

func Test_GenerateAccessToken(t *testing.T) {
	signed, err := tokens.GenerateAccessToken(moderator, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	p, err := tokens.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, moderator, p)
}

func Test_GenerateAccessToken_RejectsGuest(t *testing.T) {
	_, err := tokens.GenerateAccessToken(domain.Guest, time.Hour)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := tokens.ValidateToken("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Equal(t, "invalid token", dErrors.MessageOf(err))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	signed, err := tokens.GenerateAccessToken(member, -time.Hour)
	require.NoError(t, err)

	_, err = tokens.ValidateToken(signed)
	require.Error(t, err)
	assert.Equal(t, "token has expired", dErrors.MessageOf(err))
}

func Test_ValidateToken_WrongIssuer(t *testing.T) {
	other := New("test-signing-key", "someone-else")
	signed, err := other.GenerateAccessToken(member, time.Hour)
	require.NoError(t, err)

	_, err = tokens.ValidateToken(signed)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	other := New("another-key", "test-issuer")
	signed, err := other.GenerateAccessToken(member, time.Hour)
	require.NoError(t, err)

	_, err = tokens.ValidateToken(signed)
	require.Error(t, err)
}

func Test_ValidateToken_UnknownRole(t *testing.T) {
	now := time.Now()
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: "superuser",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "41",
			Issuer:    "test-issuer",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	signed, err := raw.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = tokens.ValidateToken(signed)
	require.Error(t, err)
	assert.Equal(t, "invalid token role", dErrors.MessageOf(err))
}

func Test_ValidateToken_BadSubject(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-number",
			Issuer:    "test-issuer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := raw.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = tokens.ValidateToken(signed)
	require.Error(t, err)
	assert.Equal(t, "invalid token subject", dErrors.MessageOf(err))
}
