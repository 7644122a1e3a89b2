package encrypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashAndCheckPassword(t *testing.T) {
	hashed, err := HashPassword("securePassword1")
	assert.NoError(t, err)
	assert.NotEqual(t, "securePassword1", hashed)

	assert.NoError(t, CheckPassword(hashed, "securePassword1"))
	assert.ErrorIs(t, CheckPassword(hashed, "wrongPassword1"), ErrPasswordMismatch)
}

func TestHashPassword_RejectsWeakPassword(t *testing.T) {
	_, err := HashPassword("short")
	assert.Error(t, err)
}
