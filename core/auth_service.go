package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrStateMismatch      = errors.New("state mismatch")
)

// oauthStateTTL bounds the window between authorize and callback.
const oauthStateTTL = 10 * time.Minute

// Cached federated tokens outlive the provider's own access token by design:
// the access token entry is what revoke needs, the refresh token entry lets a
// later session refresh the grant.
const (
	googleAccessTokenTTL  = time.Hour
	googleRefreshTokenTTL = 24 * time.Hour
)

// TokenPair is the session credential set issued on login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthService struct {
	repo   Repository
	cache  TokenCache
	tokens *TokenIssuer
	crypto *CryptoService
	google IdentityProvider
	logger *slog.Logger
}

func NewAuthService(repo Repository, cache TokenCache, tokens *TokenIssuer, crypto *CryptoService, google IdentityProvider, logger *slog.Logger) *AuthService {
	return &AuthService{
		repo:   repo,
		cache:  cache,
		tokens: tokens,
		crypto: crypto,
		google: google,
		logger: logger,
	}
}

// Register creates an account with a hashed password and lazily provisions
// the profile with the supplied display name.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (*User, error) {
	// 1. Reject duplicate emails up front
	_, err := s.repo.FindUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	// 2. Hash the password and persist the account
	hash, err := s.crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	// 3. Provision the profile with the display name
	if err := s.repo.UpsertProfile(ctx, &Profile{
		UserID: user.ID,
		Name:   fullName,
		Gender: GenderOther,
	}); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return user, nil
}

// Login authenticates a password account and issues the session token pair.
// Unknown email and wrong password fail identically so the endpoint cannot
// be used to enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*User, *TokenPair, error) {
	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.crypto.VerifyPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// issueTokenPair signs both tokens and mirrors the refresh token in the
// cache. The cached copy is the sole source of truth for revocation; a
// concurrent login simply overwrites it, invalidating the earlier session.
func (s *AuthService) issueTokenPair(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	accessToken, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, err := s.tokens.IssueRefreshToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	if err := s.cache.Put(ctx, refreshTokenKey(userID.String()), refreshToken, s.tokens.refreshTTL); err != nil {
		return nil, fmt.Errorf("failed to cache refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh reissues the access token for a holder of the current refresh
// token. The presented token must exactly match the cached one: any
// mismatch or absence means the session was revoked or replaced.
// The refresh token itself is not rotated here.
func (s *AuthService) Refresh(ctx context.Context, userID uuid.UUID, presentedToken string) (string, error) {
	cached, err := s.cache.Get(ctx, refreshTokenKey(userID.String()))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("failed to read cached refresh token: %w", err)
	}

	if cached != presentedToken {
		return "", ErrUnauthorized
	}

	accessToken, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}

	return accessToken, nil
}

// Logout revokes the cached refresh token and, when the session originated
// from federation, best-effort revokes the provider grant. Idempotent:
// nothing here fails on a second call.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.cache.Delete(ctx, refreshTokenKey(userID.String())); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	federated, err := s.cache.Exists(ctx, googleAccessKey(userID.String()))
	if err != nil {
		return fmt.Errorf("failed to check federated session: %w", err)
	}
	if federated {
		s.revokeGoogleGrant(ctx, userID)
	}

	return nil
}

// GoogleAuthorize stores a fresh single-use state and returns the provider
// authorization URL embedding it.
func (s *AuthService) GoogleAuthorize(ctx context.Context) (string, error) {
	state, err := GenerateState()
	if err != nil {
		return "", err
	}

	if err := s.cache.Put(ctx, googleStateKey(state), "1", oauthStateTTL); err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}

	return s.google.AuthCodeURL(state), nil
}

// GoogleCallback completes the federation flow: the state is consumed
// (single use, deleted whatever the outcome), the code is exchanged, a
// local account is found or provisioned, and a session pair is issued
// exactly as in Login.
func (s *AuthService) GoogleCallback(ctx context.Context, code, state string) (*User, *TokenPair, error) {
	// 1. Consume the state
	ok, err := s.consumeState(ctx, state)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrStateMismatch
	}

	// 2. Exchange the authorization code
	providerTokens, err := s.google.ExchangeCode(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	// 3. Fetch the provider profile; an email is the one hard requirement
	profile, err := s.google.FetchProfile(ctx, providerTokens.AccessToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch provider profile: %w", err)
	}
	if profile.Email == "" {
		return nil, nil, ErrNoProviderEmail
	}

	// 4. Find or create the local account
	user, err := s.findOrCreateFederatedUser(ctx, profile)
	if err != nil {
		return nil, nil, err
	}

	// 5. Cache the provider token pair for later revocation
	if providerTokens.AccessToken != "" && providerTokens.RefreshToken != "" {
		if err := s.cacheGoogleTokens(ctx, user.ID, providerTokens); err != nil {
			return nil, nil, err
		}
	}

	// 6. Issue the session pair
	pair, err := s.issueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// GoogleRevoke revokes the cached provider grant for the account.
// A missing grant is not an error.
func (s *AuthService) GoogleRevoke(ctx context.Context, userID uuid.UUID) error {
	s.revokeGoogleGrant(ctx, userID)
	return nil
}

func (s *AuthService) consumeState(ctx context.Context, state string) (bool, error) {
	exists, err := s.cache.Exists(ctx, googleStateKey(state))
	if err != nil {
		return false, fmt.Errorf("failed to check oauth state: %w", err)
	}
	if exists {
		if err := s.cache.Delete(ctx, googleStateKey(state)); err != nil {
			return false, fmt.Errorf("failed to delete oauth state: %w", err)
		}
	}
	return exists, nil
}

func (s *AuthService) findOrCreateFederatedUser(ctx context.Context, profile *ProviderProfile) (*User, error) {
	user, err := s.repo.FindUserByEmail(ctx, profile.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// The placeholder password is random and discarded, so the account
	// cannot be used for password login.
	placeholder, err := GeneratePlaceholderPassword()
	if err != nil {
		return nil, err
	}
	hash, err := s.crypto.HashPassword(placeholder)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user = &User{
		ID:           uuid.New(),
		Email:        profile.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	bd := profile.Birthday
	if err := s.repo.UpsertProfile(ctx, &Profile{
		UserID:    user.ID,
		Name:      profile.Name,
		Age:       AgeFromBirthday(bd.Year, bd.Month, bd.Day, now),
		Gender:    ParseGender(profile.Gender),
		AvatarURL: profile.AvatarURL,
	}); err != nil {
		return nil, fmt.Errorf("failed to provision profile: %w", err)
	}

	return user, nil
}

func (s *AuthService) cacheGoogleTokens(ctx context.Context, userID uuid.UUID, tokens *ProviderTokens) error {
	encryptedRefresh, err := s.crypto.EncryptToken(tokens.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt provider refresh token: %w", err)
	}
	encryptedAccess, err := s.crypto.EncryptToken(tokens.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt provider access token: %w", err)
	}

	if err := s.cache.Put(ctx, googleRefreshKey(userID.String()), encryptedRefresh, googleRefreshTokenTTL); err != nil {
		return fmt.Errorf("failed to cache provider refresh token: %w", err)
	}
	if err := s.cache.Put(ctx, googleAccessKey(userID.String()), encryptedAccess, googleAccessTokenTTL); err != nil {
		return fmt.Errorf("failed to cache provider access token: %w", err)
	}

	return nil
}

// revokeGoogleGrant is best-effort: a revoke failure must never block
// local logout, so failures are logged and swallowed.
func (s *AuthService) revokeGoogleGrant(ctx context.Context, userID uuid.UUID) {
	encrypted, err := s.cache.Get(ctx, googleAccessKey(userID.String()))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("failed to read cached provider token", "user_id", userID, "error", err)
		}
		return
	}

	accessToken, err := s.crypto.DecryptToken(encrypted)
	if err != nil {
		s.logger.Warn("failed to decrypt cached provider token", "user_id", userID, "error", err)
		return
	}

	if err := s.google.Revoke(ctx, accessToken); err != nil {
		s.logger.Warn("failed to revoke provider token", "user_id", userID, "error", err)
	}

	if err := s.cache.Delete(ctx, googleAccessKey(userID.String())); err != nil {
		s.logger.Warn("failed to clear cached provider access token", "user_id", userID, "error", err)
	}
	if err := s.cache.Delete(ctx, googleRefreshKey(userID.String())); err != nil {
		s.logger.Warn("failed to clear cached provider refresh token", "user_id", userID, "error", err)
	}
}
