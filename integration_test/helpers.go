package integration_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

type envelope struct {
	OK      bool                `json:"ok"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

// newBrowserClient behaves like a browser session: it keeps cookies but does
// not follow redirects, so OAuth callback responses can be inspected.
func newBrowserClient() *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{
		Jar:     jar,
		Timeout: 5 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postJSON(client *http.Client, rawURL string, body interface{}) (*http.Response, error) {
	jsonBody, _ := json.Marshal(body)
	return client.Post(rawURL, "application/json", bytes.NewReader(jsonBody))
}

func parseEnvelope(resp *http.Response) (*envelope, error) {
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}
	return &env, nil
}

func jarCookie(client *http.Client, baseURL, name string) *http.Cookie {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	for _, c := range client.Jar.Cookies(u) {
		if c.Name == name {
			return c
		}
	}
	return nil
}
