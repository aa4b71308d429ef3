package core_test

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"

	"tastebook/cache"
	"tastebook/core"
	"tastebook/core/providers"
	"tastebook/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	auth     *core.AuthService
	repo     *storage.MockRepository
	cache    *cache.MemoryCache
	provider *providers.MockProvider
	tokens   *core.TokenIssuer
}

func setupAuthService(t *testing.T) *authFixture {
	t.Helper()

	config := testConfig()
	repo := storage.NewMockRepository()
	memCache := cache.NewMemoryCache()
	provider := providers.NewMockProvider()
	tokens := core.NewTokenIssuer(config)
	crypto, err := core.NewCryptoService(config.Auth.EncryptionKey)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &authFixture{
		auth:     core.NewAuthService(repo, memCache, tokens, crypto, provider, logger),
		repo:     repo,
		cache:    memCache,
		provider: provider,
		tokens:   tokens,
	}
}

func TestRegister_Success(t *testing.T) {
	f := setupAuthService(t)
	ctx := context.Background()

	user, err := f.auth.Register(ctx, "a@x.com", "Aa1!aaaa", "Ada Lovelace")
	assert.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "Aa1!aaaa", user.PasswordHash)

	profile, err := f.repo.FindProfile(ctx, user.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", profile.Name)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := setupAuthService(t)
	ctx := context.Background()

	first, err := f.auth.Register(ctx, "a@x.com", "Aa1!aaaa", "Ada")
	require.NoError(t, err)

	_, err = f.auth.Register(ctx, "a@x.com", "Bb2?bbbb", "Someone Else")
	assert.ErrorIs(t, err, core.ErrDuplicateEmail)

	// The existing account is untouched
	unchanged, err := f.repo.FindUserByEmail(ctx, "a@x.com")
	assert.NoError(t, err)
	assert.Equal(t, first.ID, unchanged.ID)
	assert.Equal(t, first.PasswordHash, unchanged.PasswordHash)
	assert.Equal(t, 1, f.repo.UserCount())
}

func TestLogin_Success(t *testing.T) {
	f := setupAuthService(t)
	ctx := context.Background()

	registered, err := f.auth.Register(ctx, "a@x.com", "Aa1!aaaa", "Ada")
	require.NoError(t, err)

	user, pair, err := f.auth.Login(ctx, "a@x.com", "Aa1!aaaa")
	assert.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	// The access token decodes to the same account that logged in
	gotID, err := f.tokens.VerifyAccessToken(pair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, registered.ID, gotID)
}

func TestLogin_UniformFailureMessage(t *testing.T) {
	f := setupAuthService(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, "a@x.com", "Aa1!aaaa", "Ada")
	require.NoError(t, err)

	// Unknown email and wrong password fail with the same sentinel so the
	// endpoint cannot be used to enumerate accounts.
	_, _, err = f.auth.Login(ctx, "nobody@x.com", "Aa1!aaaa")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)

	_, _, err = f.auth.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
}

func TestRefresh_Success(t *testing.T) {
	f := setupAuthService(t)
	ctx := context.Background()

	user, err := f.auth.Register(ctx, "a@x.com", "Aa1!aaaa", "Ada")
	require.NoError(t, err)
	_, pair, err := f.auth.Login(ctx, "a@x.com", "Aa1!aaaa")
	require.NoError(t, err)

	accessToken, err := f.auth.Refresh(ctx, user.ID, pair.RefreshToken)
	assert.NoError(t, err)

	gotID, err := f.tokens.VerifyAccessToken(accessToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, gotID)
}

func TestRefresh_WithoutPriorLogin(t *testing.T) {
	f := setupAuthService(t)
	ctx := context.Background()

	user, err := f.auth.Register(ctx, "a@x.com", "Aa1!aaaa", "Ada")
	require.NoError(t, err)

	token, err := f.tokens.IssueRefreshToken(user.ID)
	require.NoError(t, err)

	_, err = f.auth.Refresh(ctx, user.ID, token)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestRefresh_MismatchedToken(t *testing.T) {
	f := setupAuthService(t)
	ctx := context.Background()

	user, err := f.auth.Register(ctx, "a@x.com", "Aa1!aaaa", "Ada")
	require.NoError(t, err)
	_, first, err := f.auth.Login(ctx, "a@x.com", "Aa1!aaaa")
	require.NoError(t, err)

	// A second login overwrites the cached token; the earlier refresh
	// token becomes unusable (single active session per account).
	_, second, err := f.auth.Login(ctx, "a@x.com", "Aa1!aaaa")
	require.NoError(t, err)

	if first.RefreshToken != second.RefreshToken {
		_, err = f.auth.Refresh(ctx, user.ID, first.RefreshToken)
		assert.ErrorIs(t, err, core.ErrUnauthorized)
	}

	_, err = f.auth.Refresh(ctx, user.ID, second.RefreshToken)
	assert.NoError(t, err)
}

func TestLogout_Idempotent(t *testing.T) {
	f := setupAuthService(t)
	ctx := context.Background()

	user, err := f.auth.Register(ctx, "a@x.com", "Aa1!aaaa", "Ada")
	require.NoError(t, err)
	_, pair, err := f.auth.Login(ctx, "a@x.com", "Aa1!aaaa")
	require.NoError(t, err)

	assert.NoError(t, f.auth.Logout(ctx, user.ID))
	assert.NoError(t, f.auth.Logout(ctx, user.ID))

	// The old refresh token no longer refreshes
	_, err = f.auth.Refresh(ctx, user.ID, pair.RefreshToken)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestGoogleAuthorize_StoresState(t *testing.T) {
	f := setupAuthService(t)
	ctx := context.Background()

	authURL, err := f.auth.GoogleAuthorize(ctx)
	assert.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	assert.NotEmpty(t, state)
}

func TestGoogleCallback_Success(t *testing.T) {
	f := setupAuthService(t)
	ctx := context.Background()

	authURL, err := f.auth.GoogleAuthorize(ctx)
	require.NoError(t, err)
	parsed, _ := url.Parse(authURL)
	state := parsed.Query().Get("state")

	user, pair, err := f.auth.GoogleCallback(ctx, providers.ValidCode1, state)
	assert.NoError(t, err)
	assert.Equal(t, providers.Profile1.Email, user.Email)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	// Profile provisioned from the provider fields
	profile, err := f.repo.FindProfile(ctx, user.ID)
	assert.NoError(t, err)
	assert.Equal(t, providers.Profile1.Name, profile.Name)
	assert.Equal(t, core.GenderMale, profile.Gender)
	assert.Equal(t, providers.Profile1.AvatarURL, profile.AvatarURL)
	assert.Greater(t, profile.Age, 0)
}

func TestGoogleCallback_StateMismatch(t *testing.T) {
	f := setupAuthService(t)
	ctx := context.Background()

	_, _, err := f.auth.GoogleCallback(ctx, providers.ValidCode1, "bogus-state")
	assert.ErrorIs(t, err, core.ErrStateMismatch)

	// No account was created
	assert.Equal(t, 0, f.repo.UserCount())
	assert.Equal(t, 0, f.provider.ExchangeCodeCalls)
}

func TestGoogleCallback_StateIsSingleUse(t *testing.T) {
	f := setupAuthService(t)
	ctx := context.Background()

	authURL, err := f.auth.GoogleAuthorize(ctx)
	require.NoError(t, err)
	parsed, _ := url.Parse(authURL)
	state := parsed.Query().Get("state")

	_, _, err = f.auth.GoogleCallback(ctx, providers.ValidCode1, state)
	require.NoError(t, err)

	_, _, err = f.auth.GoogleCallback(ctx, providers.ValidCode2, state)
	assert.ErrorIs(t, err, core.ErrStateMismatch)
}

func TestGoogleCallback_ExistingAccountIsReused(t *testing.T) {
	f := setupAuthService(t)
	ctx := context.Background()

	registered, err := f.auth.Register(ctx, providers.Profile1.Email, "Aa1!aaaa", "Ada")
	require.NoError(t, err)

	authURL, err := f.auth.GoogleAuthorize(ctx)
	require.NoError(t, err)
	parsed, _ := url.Parse(authURL)
	state := parsed.Query().Get("state")

	user, _, err := f.auth.GoogleCallback(ctx, providers.ValidCode1, state)
	assert.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, 1, f.repo.UserCount())
}

func TestGoogleCallback_NoEmail(t *testing.T) {
	f := setupAuthService(t)
	ctx := context.Background()

	authURL, err := f.auth.GoogleAuthorize(ctx)
	require.NoError(t, err)
	parsed, _ := url.Parse(authURL)
	state := parsed.Query().Get("state")

	_, _, err = f.auth.GoogleCallback(ctx, providers.NoEmailCode, state)
	assert.ErrorIs(t, err, core.ErrNoProviderEmail)
	assert.Equal(t, 0, f.repo.UserCount())
}

func TestLogout_RevokesFederatedGrant(t *testing.T) {
	f := setupAuthService(t)
	ctx := context.Background()

	authURL, err := f.auth.GoogleAuthorize(ctx)
	require.NoError(t, err)
	parsed, _ := url.Parse(authURL)
	state := parsed.Query().Get("state")

	user, _, err := f.auth.GoogleCallback(ctx, providers.ValidCode1, state)
	require.NoError(t, err)

	assert.NoError(t, f.auth.Logout(ctx, user.ID))
	assert.Equal(t, 1, f.provider.RevokeCalls)
	assert.Equal(t, []string{providers.Tokens1.AccessToken}, f.provider.RevokedTokens)

	// Second logout finds no cached grant and does not revoke again
	assert.NoError(t, f.auth.Logout(ctx, user.ID))
	assert.Equal(t, 1, f.provider.RevokeCalls)
}

func TestLogout_RevokeFailureDoesNotBlock(t *testing.T) {
	f := setupAuthService(t)
	ctx := context.Background()

	authURL, err := f.auth.GoogleAuthorize(ctx)
	require.NoError(t, err)
	parsed, _ := url.Parse(authURL)
	state := parsed.Query().Get("state")

	user, _, err := f.auth.GoogleCallback(ctx, providers.ValidCode1, state)
	require.NoError(t, err)

	f.provider.RevokeErr = core.ErrProviderRevoke
	assert.NoError(t, f.auth.Logout(ctx, user.ID))
}

func TestGoogleRevoke_NoGrantIsNotAnError(t *testing.T) {
	f := setupAuthService(t)
	ctx := context.Background()

	user, err := f.auth.Register(ctx, "a@x.com", "Aa1!aaaa", "Ada")
	require.NoError(t, err)

	assert.NoError(t, f.auth.GoogleRevoke(ctx, user.ID))
	assert.Equal(t, 0, f.provider.RevokeCalls)
}

func TestFederatedAccount_CannotPasswordLogin(t *testing.T) {
	f := setupAuthService(t)
	ctx := context.Background()

	authURL, err := f.auth.GoogleAuthorize(ctx)
	require.NoError(t, err)
	parsed, _ := url.Parse(authURL)
	state := parsed.Query().Get("state")

	user, _, err := f.auth.GoogleCallback(ctx, providers.ValidCode1, state)
	require.NoError(t, err)

	// The placeholder password is random and discarded
	_, _, err = f.auth.Login(ctx, user.Email, "")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
	_, _, err = f.auth.Login(ctx, user.Email, strings.Repeat("a", 32))
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
}
