package providers

import (
	"context"
	"net/url"

	"tastebook/core"
)

// Predefined test authorization codes
const (
	ValidCode1  = "mock_auth_code_1"
	ValidCode2  = "mock_auth_code_2"
	NoEmailCode = "mock_auth_code_no_email"
)

// Predefined test provider tokens
var (
	Tokens1 = &core.ProviderTokens{
		AccessToken:  "mock_access_token_1",
		RefreshToken: "mock_refresh_token_1",
		ExpiresIn:    3600,
	}

	Tokens2 = &core.ProviderTokens{
		AccessToken:  "mock_access_token_2",
		RefreshToken: "mock_refresh_token_2",
		ExpiresIn:    3600,
	}

	TokensNoEmail = &core.ProviderTokens{
		AccessToken:  "mock_access_token_no_email",
		RefreshToken: "mock_refresh_token_no_email",
		ExpiresIn:    3600,
	}
)

// Predefined test provider profiles
var (
	Profile1 = &core.ProviderProfile{
		Email:     "user1@mock.test",
		Name:      "Mock User One",
		Gender:    "male",
		Birthday:  core.Birthday{Year: 1990, Month: 6, Day: 15},
		AvatarURL: "https://mock.test/avatar1.jpg",
	}

	Profile2 = &core.ProviderProfile{
		Email:     "user2@mock.test",
		Name:      "Mock User Two",
		Gender:    "unspecified",
		AvatarURL: "https://mock.test/avatar2.jpg",
	}

	ProfileNoEmail = &core.ProviderProfile{
		Name: "Mock User Without Email",
	}
)

// MockProvider is a test implementation of core.IdentityProvider
type MockProvider struct {
	codeToTokens    map[string]*core.ProviderTokens
	accessToProfile map[string]*core.ProviderProfile

	// track method calls for verification
	ExchangeCodeCalls int
	FetchProfileCalls int
	RevokeCalls       int
	RevokedTokens     []string
	RevokeErr         error
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		codeToTokens: map[string]*core.ProviderTokens{
			ValidCode1:  Tokens1,
			ValidCode2:  Tokens2,
			NoEmailCode: TokensNoEmail,
		},

		accessToProfile: map[string]*core.ProviderProfile{
			Tokens1.AccessToken:       Profile1,
			Tokens2.AccessToken:       Profile2,
			TokensNoEmail.AccessToken: ProfileNoEmail,
		},
	}
}

func (m *MockProvider) AuthCodeURL(state string) string {
	return "https://mock.test/oauth/authorize?state=" + url.QueryEscape(state)
}

func (m *MockProvider) ExchangeCode(ctx context.Context, code string) (*core.ProviderTokens, error) {
	m.ExchangeCodeCalls++

	tokens, ok := m.codeToTokens[code]
	if !ok {
		return nil, core.ErrProviderTokenExchange
	}

	return tokens, nil
}

func (m *MockProvider) FetchProfile(ctx context.Context, accessToken string) (*core.ProviderProfile, error) {
	m.FetchProfileCalls++

	profile, ok := m.accessToProfile[accessToken]
	if !ok {
		return nil, core.ErrProviderProfile
	}

	return profile, nil
}

func (m *MockProvider) Revoke(ctx context.Context, accessToken string) error {
	m.RevokeCalls++
	m.RevokedTokens = append(m.RevokedTokens, accessToken)
	return m.RevokeErr
}
