// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lexica/internal/platform/sec"
)

func newTokenService(t *testing.T, issuer string) *sec.TokenService {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return sec.NewTokenServiceFromKeys(key, &key.PublicKey, issuer)
}

/*
TestTokenService_RoundTrip signs a session token and reads the claims back.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTokenService(t, "lexica.test")

	token, err := service.GenerateAccessToken("user-1", "philologist", string(sec.RoleAdmin), time.Hour)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "philologist", claims.Username)
	assert.True(t, claims.IsAdmin())
}

func TestTokenService_Expired(t *testing.T) {
	service := newTokenService(t, "lexica.test")

	token, err := service.GenerateAccessToken("user-1", "philologist", string(sec.RoleMember), -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	assert.Error(t, err)
}

func TestTokenService_ForeignKeyRejected(t *testing.T) {
	signer := newTokenService(t, "lexica.test")
	verifier := newTokenService(t, "lexica.test")

	token, err := signer.GenerateAccessToken("user-1", "philologist", string(sec.RoleMember), time.Hour)
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.Error(t, err)
}

func TestTokenService_WrongIssuer(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signer := sec.NewTokenServiceFromKeys(key, &key.PublicKey, "someone.else")
	verifier := sec.NewTokenServiceFromKeys(key, &key.PublicKey, "lexica.test")

	token, err := signer.GenerateAccessToken("user-1", "philologist", string(sec.RoleMember), time.Hour)
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := sec.HashPassword("arma virumque cano")
	require.NoError(t, err)

	assert.True(t, sec.CheckPasswordHash("arma virumque cano", hash))
	assert.False(t, sec.CheckPasswordHash("arma virumque", hash))
}

func TestUserRole(t *testing.T) {
	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleMember))
	assert.False(t, sec.RoleMember.AtLeast(sec.RoleAdmin))
	assert.False(t, sec.UserRole("moderator").Valid())

	var anonymous *sec.AuthClaims
	assert.False(t, anonymous.IsAdmin())
}
