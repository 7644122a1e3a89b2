package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateAndParseJWT(t *testing.T) {
	tokenStr, err := GenerateJWT(42, "alice", "chat_service")
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenStr)

	claims, err := ParseJWT(tokenStr)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "chat_service", claims.Issuer)
}

func TestParseJWT_Invalid(t *testing.T) {
	_, err := ParseJWT("not-a-token")
	assert.Error(t, err)

	// A token signed with another secret must not verify.
	orig := JWTSecret
	JWTSecret = []byte("other_secret")
	foreign, err := GenerateJWT(1, "bob", "chat_service")
	assert.NoError(t, err)
	JWTSecret = orig

	_, err = ParseJWT(foreign)
	assert.Error(t, err)
}
