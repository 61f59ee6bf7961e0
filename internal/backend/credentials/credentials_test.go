package credentials

import (
	"testing"

	"github.com/matthieukhl/doemart/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheck(t *testing.T) {
	hash, err := HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := CheckPassword(hash, "secret123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "wrong-password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordTooShort(t *testing.T) {
	_, err := HashPassword("abc", bcrypt.MinCost)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestNormalizeEmail(t *testing.T) {
	email, err := NormalizeEmail("  Asha@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", email)

	_, err = NormalizeEmail("not an email")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestNewTokenUnique(t *testing.T) {
	a, err := NewToken()
	require.NoError(t, err)
	b, err := NewToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
