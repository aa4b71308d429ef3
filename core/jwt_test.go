package core_test

import (
	"testing"
	"time"

	"tastebook/core"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func testConfig() *core.Config {
	config := core.DefaultConfig()
	config.Auth.AccessSecret = "test-access-secret-for-tests-only"
	config.Auth.RefreshSecret = "test-refresh-secret-for-tests-only"
	config.Auth.EncryptionKey = "12345678901234567890123456789012"
	return config
}

func TestIssueAccessToken_VerifyRoundTrip(t *testing.T) {
	issuer := core.NewTokenIssuer(testConfig())
	userID := uuid.New()

	token, err := issuer.IssueAccessToken(userID)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	gotID, err := issuer.VerifyAccessToken(token)
	assert.NoError(t, err)
	assert.Equal(t, userID, gotID)
}

func TestIssueRefreshToken_VerifyRoundTrip(t *testing.T) {
	issuer := core.NewTokenIssuer(testConfig())
	userID := uuid.New()

	token, err := issuer.IssueRefreshToken(userID)
	assert.NoError(t, err)

	gotID, err := issuer.VerifyRefreshToken(token)
	assert.NoError(t, err)
	assert.Equal(t, userID, gotID)
}

func TestVerify_SecretsAreIndependent(t *testing.T) {
	issuer := core.NewTokenIssuer(testConfig())
	userID := uuid.New()

	accessToken, err := issuer.IssueAccessToken(userID)
	assert.NoError(t, err)
	refreshToken, err := issuer.IssueRefreshToken(userID)
	assert.NoError(t, err)

	// An access token must not verify as a refresh token, nor vice versa.
	_, err = issuer.VerifyRefreshToken(accessToken)
	assert.ErrorIs(t, err, core.ErrInvalidToken)

	_, err = issuer.VerifyAccessToken(refreshToken)
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestVerifyAccessToken_Malformed(t *testing.T) {
	issuer := core.NewTokenIssuer(testConfig())

	_, err := issuer.VerifyAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	config := testConfig()
	config.Auth.AccessTokenTTLSeconds = -60
	issuer := core.NewTokenIssuer(config)

	token, err := issuer.IssueAccessToken(uuid.New())
	assert.NoError(t, err)

	_, err = issuer.VerifyAccessToken(token)
	assert.ErrorIs(t, err, core.ErrExpiredToken)
}

func TestVerifyAccessToken_WrongSecret(t *testing.T) {
	issuer := core.NewTokenIssuer(testConfig())

	otherConfig := testConfig()
	otherConfig.Auth.AccessSecret = "a-different-secret-entirely"
	otherIssuer := core.NewTokenIssuer(otherConfig)

	token, err := otherIssuer.IssueAccessToken(uuid.New())
	assert.NoError(t, err)

	_, err = issuer.VerifyAccessToken(token)
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestAccessTokenTTL_FromConfig(t *testing.T) {
	config := testConfig()
	config.Auth.AccessTokenTTLSeconds = 300
	config.Auth.RefreshTokenTTLSeconds = 86400

	assert.Equal(t, 5*time.Minute, config.AccessTokenTTL())
	assert.Equal(t, 24*time.Hour, config.RefreshTokenTTL())
}
