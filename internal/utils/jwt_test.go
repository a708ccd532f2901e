package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")
	userID := uuid.New().String()

	token, err := svc.GenerateToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	extracted, err := svc.ExtractUserID(token)
	require.NoError(t, err)
	assert.Equal(t, userID, extracted)
}

func TestJWTService_WrongSecret(t *testing.T) {
	svc := NewJWTService("test-secret")
	token, err := svc.GenerateToken(uuid.New().String())
	require.NoError(t, err)

	other := NewJWTService("another-secret")
	_, err = other.ExtractUserID(token)
	assert.Error(t, err)
}

func TestJWTService_GarbageToken(t *testing.T) {
	svc := NewJWTService("test-secret")
	_, err := svc.ExtractUserID("not-a-token")
	assert.Error(t, err)
}
