package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"attendance-tracker/internal/model"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestHashPasswordSalts(t *testing.T) {
	first, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)
	second, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHashPasswordBadCostFallsBack(t *testing.T) {
	hash, err := HashPassword("pw", 99)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestCheckPasswordRejectsGarbageHash(t *testing.T) {
	assert.False(t, CheckPassword("plaintext", "plaintext"))
}

func TestHashPasswordTooLongIsValidation(t *testing.T) {
	_, err := HashPassword(strings.Repeat("é", 40), bcrypt.MinCost)
	assert.ErrorIs(t, err, model.ErrValidation)
}
