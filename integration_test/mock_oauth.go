package integration_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
)

const (
	fullScope = "https://www.googleapis.com/auth/userinfo.email https://www.googleapis.com/auth/userinfo.profile"

	aliceCode   = "alice_code"
	bobCode     = "bob_code"
	noScopeCode = "no_scope_code"
)

type mockPerson struct {
	Email    string
	Name     string
	Gender   string
	Birthday [3]int // year, month, day; zero when unset
	Photo    string
	Scope    string
}

var mockPeople = map[string]mockPerson{
	aliceCode: {
		Email:    "alice@example.com",
		Name:     "Alice Example",
		Gender:   "female",
		Birthday: [3]int{1992, 3, 14},
		Photo:    "https://example.com/alice.jpg",
		Scope:    fullScope,
	},
	bobCode: {
		Email:  "bob@example.com",
		Name:   "Bob Example",
		Gender: "unspecified",
		Photo:  "https://example.com/bob.jpg",
		Scope:  fullScope,
	},
	noScopeCode: {
		Email: "narrow@example.com",
		Name:  "Narrow Grant",
		Scope: "https://www.googleapis.com/auth/userinfo.email",
	},
}

// MockOAuthServer impersonates the Google token, People API and revocation
// endpoints so the real provider client can be exercised end to end.
type MockOAuthServer struct {
	server *httptest.Server

	mu            sync.Mutex
	tokenCalls    int
	revokedTokens []string
}

func NewMockOAuthServer() *MockOAuthServer {
	m := &MockOAuthServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", m.handleToken)
	mux.HandleFunc("/v1/people/me", m.handlePeople)
	mux.HandleFunc("/revoke", m.handleRevoke)

	m.server = httptest.NewServer(mux)
	return m
}

func (m *MockOAuthServer) URL() string {
	return m.server.URL
}

func (m *MockOAuthServer) Close() {
	m.server.Close()
}

func (m *MockOAuthServer) TokenCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokenCalls
}

func (m *MockOAuthServer) RevokedTokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.revokedTokens...)
}

func (m *MockOAuthServer) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body := make([]byte, r.ContentLength)
	r.Body.Read(body)
	params, _ := url.ParseQuery(string(body))

	m.mu.Lock()
	m.tokenCalls++
	m.mu.Unlock()

	code := params.Get("code")
	person, ok := mockPeople[code]
	if params.Get("grant_type") != "authorization_code" || !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"access_token":  "access_" + code,
		"refresh_token": "refresh_" + code,
		"expires_in":    3600,
		"token_type":    "Bearer",
		"scope":         person.Scope,
	})
}

func (m *MockOAuthServer) handlePeople(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	code := strings.TrimPrefix(auth[7:], "access_")

	person, ok := mockPeople[code]
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid_token"})
		return
	}

	resp := map[string]interface{}{
		"emailAddresses": []map[string]string{{"value": person.Email}},
		"names":          []map[string]string{{"displayName": person.Name}},
		"photos":         []map[string]string{{"url": person.Photo}},
	}
	if person.Gender != "" {
		resp["genders"] = []map[string]string{{"value": person.Gender}}
	}
	if person.Birthday[0] != 0 {
		resp["birthdays"] = []map[string]interface{}{
			{
				"metadata": map[string]interface{}{
					"source": map[string]string{"type": "ACCOUNT"},
				},
				"date": map[string]int{
					"year":  person.Birthday[0],
					"month": person.Birthday[1],
					"day":   person.Birthday[2],
				},
			},
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (m *MockOAuthServer) handleRevoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body := make([]byte, r.ContentLength)
	r.Body.Read(body)
	params, _ := url.ParseQuery(string(body))

	m.mu.Lock()
	m.revokedTokens = append(m.revokedTokens, params.Get("token"))
	m.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}
