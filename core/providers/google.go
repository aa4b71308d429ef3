package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tastebook/core"
)

const peoplePersonFields = "emailAddresses,names,genders,birthdays,photos"

type GoogleProvider struct {
	config     *core.GoogleConfig
	httpClient *http.Client
}

func NewGoogleProvider(config *core.GoogleConfig) *GoogleProvider {
	return &GoogleProvider{
		config:     config,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type googleTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
}

type googlePersonResponse struct {
	EmailAddresses []struct {
		Value string `json:"value"`
	} `json:"emailAddresses"`
	Names []struct {
		DisplayName string `json:"displayName"`
	} `json:"names"`
	Genders []struct {
		Value string `json:"value"`
	} `json:"genders"`
	Birthdays []struct {
		Metadata struct {
			Source struct {
				Type string `json:"type"`
			} `json:"source"`
		} `json:"metadata"`
		Date struct {
			Year  int `json:"year"`
			Month int `json:"month"`
			Day   int `json:"day"`
		} `json:"date"`
	} `json:"birthdays"`
	Photos []struct {
		URL string `json:"url"`
	} `json:"photos"`
}

// AuthCodeURL builds the provider authorization URL embedding the state and
// the configured scope set. Offline access so a refresh token is granted.
func (g *GoogleProvider) AuthCodeURL(state string) string {
	params := url.Values{}
	params.Set("client_id", g.config.ClientID)
	params.Set("redirect_uri", g.config.RedirectURI)
	params.Set("response_type", "code")
	params.Set("access_type", "offline")
	params.Set("include_granted_scopes", "true")
	params.Set("scope", strings.Join(g.config.Scopes, " "))
	params.Set("state", state)

	return g.config.AuthBaseURL + "/auth?" + params.Encode()
}

func (g *GoogleProvider) ExchangeCode(ctx context.Context, code string) (*core.ProviderTokens, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("client_id", g.config.ClientID)
	data.Set("client_secret", g.config.ClientSecret)
	data.Set("redirect_uri", g.config.RedirectURI)

	tokenURL := g.config.OAuthBaseURL + "/token"
	req, err := http.NewRequestWithContext(
		ctx,
		"POST",
		tokenURL,
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrProviderTokenExchange, err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrProviderTokenExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", core.ErrProviderTokenExchange, resp.StatusCode, string(body))
	}

	var tokenResp googleTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrProviderTokenExchange, err)
	}

	if !g.scopesGranted(tokenResp.Scope) {
		return nil, core.ErrScopeNotGranted
	}

	return &core.ProviderTokens{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		ExpiresIn:    tokenResp.ExpiresIn,
		Scope:        tokenResp.Scope,
	}, nil
}

// scopesGranted checks the granted set covers every configured scope.
func (g *GoogleProvider) scopesGranted(granted string) bool {
	for _, scope := range g.config.Scopes {
		if !strings.Contains(granted, scope) {
			return false
		}
	}
	return true
}

func (g *GoogleProvider) FetchProfile(ctx context.Context, accessToken string) (*core.ProviderProfile, error) {
	profileURL := g.config.PeopleAPIBaseURL + "/v1/people/me?personFields=" + peoplePersonFields

	req, err := http.NewRequestWithContext(ctx, "GET", profileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrProviderProfile, err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrProviderProfile, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", core.ErrProviderProfile, resp.StatusCode, string(body))
	}

	var person googlePersonResponse
	if err := json.NewDecoder(resp.Body).Decode(&person); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrProviderProfile, err)
	}

	profile := &core.ProviderProfile{}
	if len(person.EmailAddresses) > 0 {
		profile.Email = person.EmailAddresses[0].Value
	}
	if len(person.Names) > 0 {
		profile.Name = person.Names[0].DisplayName
	}
	if len(person.Genders) > 0 {
		profile.Gender = person.Genders[0].Value
	}
	if len(person.Photos) > 0 {
		profile.AvatarURL = person.Photos[0].URL
	}
	// The ACCOUNT-sourced birthday carries the full date.
	for _, b := range person.Birthdays {
		if b.Metadata.Source.Type == "ACCOUNT" {
			profile.Birthday = core.Birthday{
				Year:  b.Date.Year,
				Month: b.Date.Month,
				Day:   b.Date.Day,
			}
			break
		}
	}

	return profile, nil
}

func (g *GoogleProvider) Revoke(ctx context.Context, accessToken string) error {
	data := url.Values{}
	data.Set("token", accessToken)

	revokeURL := g.config.OAuthBaseURL + "/revoke"
	req, err := http.NewRequestWithContext(
		ctx,
		"POST",
		revokeURL,
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrProviderRevoke, err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrProviderRevoke, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", core.ErrProviderRevoke, resp.StatusCode, string(body))
	}

	return nil
}
