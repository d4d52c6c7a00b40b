package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/ahmadsobohhh/UnityPlatform/pkg/domain-errors"
)

var tokenService = NewService("test-signing-key", "test-issuer", time.Hour)

func Test_GenerateSessionToken(t *testing.T) {
	token, err := tokenService.GenerateSessionToken("uid-123", "ada@students.example")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tokenService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-123", claims.UserID)
	assert.Equal(t, "ada@students.example", claims.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := tokenService.ValidateToken("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_NewService_ZeroTTLDefaults(t *testing.T) {
	svc := NewService("test-signing-key", "test-issuer", 0)

	token, err := svc.GenerateSessionToken("uid-123", "ada@students.example")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultTTL), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	expired := NewService("test-signing-key", "test-issuer", -time.Hour)

	token, err := expired.GenerateSessionToken("uid-123", "ada@students.example")
	require.NoError(t, err)

	_, err = tokenService.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	other := NewService("other-key", "test-issuer", time.Hour)

	token, err := other.GenerateSessionToken("uid-123", "ada@students.example")
	require.NoError(t, err)

	_, err = tokenService.ValidateToken(token)
	require.Error(t, err)
}

func Test_ServiceAdapter(t *testing.T) {
	token, err := tokenService.GenerateSessionToken("uid-123", "ada@students.example")
	require.NoError(t, err)

	adapter := NewServiceAdapter(tokenService)
	claims, err := adapter.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-123", claims.UserID)
	assert.Equal(t, "ada@students.example", claims.Email)
}
