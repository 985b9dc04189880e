package jwt_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillora/skillora-server/internal/utils/jwt"
)

func TestRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := jwt.GenerateToken(userID, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := jwt.VerifyToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestWrongSecret(t *testing.T) {
	token, err := jwt.GenerateToken(uuid.New(), "secret", time.Hour)
	require.NoError(t, err)

	_, err = jwt.VerifyToken(token, "other-secret")
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	token, err := jwt.GenerateToken(uuid.New(), "secret", -time.Minute)
	require.NoError(t, err)

	_, err = jwt.VerifyToken(token, "secret")
	assert.ErrorIs(t, err, jwt.ErrExpiredToken)
}

func TestGarbageToken(t *testing.T) {
	_, err := jwt.VerifyToken("not-a-token", "secret")
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}
