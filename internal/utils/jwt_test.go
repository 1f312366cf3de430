package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken(testSecret, userID, "admin", time.Hour)
	require.NoError(t, err)

	parsedID, role, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsedID)
	assert.Equal(t, "admin", role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, uuid.New(), "user", time.Hour)
	require.NoError(t, err)

	_, _, err = ParseToken("other-secret", token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpiredToken(t *testing.T) {
	token, err := GenerateToken(testSecret, uuid.New(), "user", -time.Minute)
	require.NoError(t, err)

	_, _, err = ParseToken(testSecret, token)
	assert.Error(t, err)
}

func TestResetTokenRoundTrip(t *testing.T) {
	token, err := GenerateResetToken(testSecret, "user@example.com", time.Hour)
	require.NoError(t, err)

	email, err := ParseResetToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", email)
}

func TestResetTokenRejectedAsIdentityToken(t *testing.T) {
	token, err := GenerateResetToken(testSecret, "user@example.com", time.Hour)
	require.NoError(t, err)

	_, _, err = ParseToken(testSecret, token)
	assert.ErrorIs(t, err, ErrWrongTokenPurpose)
}

func TestIdentityTokenRejectedAsResetToken(t *testing.T) {
	token, err := GenerateToken(testSecret, uuid.New(), "user", time.Hour)
	require.NoError(t, err)

	_, err = ParseResetToken(testSecret, token)
	assert.ErrorIs(t, err, ErrWrongTokenPurpose)
}
