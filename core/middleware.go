package core

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey int

const accountIDKey contextKey = iota

// AccountIDFromContext returns the verified account id attached by the
// session middleware.
func AccountIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(accountIDKey).(uuid.UUID)
	return id, ok
}

func withAccountID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, accountIDKey, id)
}

// RequireAccessToken guards protected routes. It extracts the access token
// from the cookie store, verifies it against the access secret, and attaches
// the account id to the request context. Missing or bad tokens reject with 401.
func (s *Server) RequireAccessToken(next http.Handler) http.Handler {
	return s.requireToken(next, CookieAccessToken, s.auth.tokens.VerifyAccessToken)
}

// RequireRefreshToken is the refresh-flow variant: same shape, refresh
// cookie and refresh secret. It does not confirm the token is still the
// currently-valid one; the orchestrator checks that against the cache.
func (s *Server) RequireRefreshToken(next http.Handler) http.Handler {
	return s.requireToken(next, CookieRefreshToken, s.auth.tokens.VerifyRefreshToken)
}

func (s *Server) requireToken(next http.Handler, cookieName string, verify func(string) (uuid.UUID, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(cookieName)
		if err != nil || cookie.Value == "" {
			s.respondUnauthorized(w, "No Access")
			return
		}

		userID, err := verify(cookie.Value)
		if err != nil {
			s.respondUnauthorized(w, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withAccountID(r.Context(), userID)))
	})
}
