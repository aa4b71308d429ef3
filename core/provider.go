package core

import (
	"context"
	"errors"
)

var (
	ErrProviderTokenExchange = errors.New("provider token exchange failed")
	ErrProviderProfile       = errors.New("provider profile request failed")
	ErrProviderRevoke        = errors.New("provider token revoke failed")
	ErrScopeNotGranted       = errors.New("required scopes not granted")
	ErrNoProviderEmail       = errors.New("provider returned no email")
)

// ProviderTokens represents the tokens granted by an identity provider.
type ProviderTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	Scope        string
}

// Birthday is a provider-reported birth date; zero fields mean unknown.
type Birthday struct {
	Year  int
	Month int
	Day   int
}

// ProviderProfile is the subset of the provider's profile used to
// provision a local account.
type ProviderProfile struct {
	Email     string
	Name      string
	Gender    string
	Birthday  Birthday
	AvatarURL string
}

// IdentityProvider is the federation seam: building the authorization URL,
// exchanging the callback code, fetching the profile, and revoking grants.
type IdentityProvider interface {
	AuthCodeURL(state string) string

	// ExchangeCode fails with ErrScopeNotGranted when the granted scope set
	// does not cover the configured required scopes.
	ExchangeCode(ctx context.Context, code string) (*ProviderTokens, error)

	FetchProfile(ctx context.Context, accessToken string) (*ProviderProfile, error)

	Revoke(ctx context.Context, accessToken string) error
}
