package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseAccessToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "unit-test-secret")

	token, tokenID, err := GenerateAccessToken("64f0c2...abc", "sita@example.com", "", "user")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, tokenID)

	claims, err := ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "64f0c2...abc", claims.UserID)
	assert.Equal(t, "sita@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, tokenID, claims.ID)
}

func TestParseAccessTokenRejectsTampering(t *testing.T) {
	t.Setenv("JWT_SECRET", "unit-test-secret")

	token, _, err := GenerateAccessToken("abc", "", "9000000000", "admin")
	require.NoError(t, err)

	// corrupt the payload segment
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	parts[1] = parts[1][:len(parts[1])-2] + "xx"
	_, err = ParseAccessToken(strings.Join(parts, "."))
	assert.Error(t, err)

	// token signed with a different secret
	t.Setenv("JWT_SECRET", "another-secret")
	_, err = ParseAccessToken(token)
	assert.Error(t, err)
}

func TestGenerateRefreshTokenIsOpaqueAndUnique(t *testing.T) {
	t1, err := GenerateRefreshToken()
	require.NoError(t, err)
	t2, err := GenerateRefreshToken()
	require.NoError(t, err)

	assert.NotEqual(t, t1, t2)
	assert.GreaterOrEqual(t, len(t1), 43) // 32 random bytes, base64
}
