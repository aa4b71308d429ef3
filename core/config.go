package core

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr  string `yaml:"listen_addr" env:"LISTEN_ADDR"`
	Production  bool   `yaml:"production" env:"PRODUCTION"`
	FrontendURL string `yaml:"frontend_url" env:"FRONTEND_URL"`

	Auth   AuthConfig   `yaml:"auth"`
	DB     DBConfig     `yaml:"db"`
	Redis  RedisConfig  `yaml:"redis"`
	Google GoogleConfig `yaml:"google"`
}

type AuthConfig struct {
	// Independent signing secrets: a leaked access secret cannot forge
	// refresh tokens and vice versa.
	AccessSecret  string `yaml:"access_secret" env:"AUTH_SECRET"`
	RefreshSecret string `yaml:"refresh_secret" env:"AUTH_REFRESH_SECRET"`

	AccessTokenTTLSeconds  int `yaml:"access_token_ttl_seconds" env:"AUTH_ACCESS_TOKEN_TTL_SECONDS"`
	RefreshTokenTTLSeconds int `yaml:"refresh_token_ttl_seconds" env:"AUTH_REFRESH_TOKEN_TTL_SECONDS"`

	// Key for encrypting cached federated provider tokens, 32 bytes.
	EncryptionKey string `yaml:"encryption_key" env:"AUTH_ENCRYPTION_KEY"`
}

type DBConfig struct {
	SQLitePath string `yaml:"sqlite_path" env:"DB_SQLITE_PATH"`
}

type RedisConfig struct {
	URL                string `yaml:"url" env:"REDIS_URL"`
	DialTimeoutSeconds int    `yaml:"dial_timeout_seconds" env:"REDIS_DIAL_TIMEOUT_SECONDS"`
}

type GoogleConfig struct {
	ClientID     string   `yaml:"client_id" env:"GOOGLE_OAUTH_CLIENT_ID"`
	ClientSecret string   `yaml:"client_secret" env:"GOOGLE_OAUTH_CLIENT_SECRET"`
	RedirectURI  string   `yaml:"redirect_uri" env:"GOOGLE_OAUTH_REDIRECT_URI"`
	Scopes       []string `yaml:"scopes" env:"GOOGLE_OAUTH_SCOPES" envSeparator:","`

	// Endpoint bases are configurable so tests can point at a local server.
	AuthBaseURL      string `yaml:"auth_base_url" env:"GOOGLE_OAUTH_AUTH_BASE_URL"`
	OAuthBaseURL     string `yaml:"oauth_base_url" env:"GOOGLE_OAUTH_BASE_URL"`
	PeopleAPIBaseURL string `yaml:"people_api_base_url" env:"GOOGLE_PEOPLE_API_BASE_URL"`
}

func DefaultConfig() *Config {
	return &Config{
		ListenAddr:  ":8080",
		FrontendURL: "http://localhost:3000",
		Auth: AuthConfig{
			AccessTokenTTLSeconds:  300,   // 5 minutes
			RefreshTokenTTLSeconds: 86400, // 24 hours
		},
		DB: DBConfig{
			SQLitePath: "tastebook.db",
		},
		Redis: RedisConfig{
			URL:                "redis://localhost:6379/0",
			DialTimeoutSeconds: 10,
		},
		Google: GoogleConfig{
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			AuthBaseURL:      "https://accounts.google.com/o/oauth2/v2",
			OAuthBaseURL:     "https://oauth2.googleapis.com",
			PeopleAPIBaseURL: "https://people.googleapis.com",
		},
	}
}

// LoadConfig builds the process configuration: defaults, then an optional
// YAML file, then environment variables on top.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, nil
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.Auth.AccessTokenTTLSeconds) * time.Second
}

func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.Auth.RefreshTokenTTLSeconds) * time.Second
}

func (c *Config) RedisDialTimeout() time.Duration {
	return time.Duration(c.Redis.DialTimeoutSeconds) * time.Second
}
