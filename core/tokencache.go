package core

import (
	"context"
	"time"
)

// TokenCache is a TTL-bound key-value store for short-lived auth state:
// the current refresh token per account, cached federated provider tokens,
// and single-use OAuth states. Absence after TTL is the only eviction.
type TokenCache interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns ErrNotFound for absent or expired keys.
	Get(ctx context.Context, key string) (string, error)

	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)
}

// Cache key namespaces. Keys are prefixed by purpose so refresh tokens,
// provider tokens and OAuth states never collide.
const (
	refreshTokenKeyPrefix  = "user-refresh-token:"
	googleRefreshKeyPrefix = "user-gg-refresh-token:"
	googleAccessKeyPrefix  = "user-gg-access-token:"
	googleStateKeyPrefix   = "google-authorization-state:"
)

func refreshTokenKey(userID string) string  { return refreshTokenKeyPrefix + userID }
func googleRefreshKey(userID string) string { return googleRefreshKeyPrefix + userID }
func googleAccessKey(userID string) string  { return googleAccessKeyPrefix + userID }
func googleStateKey(state string) string    { return googleStateKeyPrefix + state }
