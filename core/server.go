package core

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Session cookie names, shared with the frontend.
const (
	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"
)

type Server struct {
	auth   *AuthService
	users  *UserService
	config *Config
	logger *slog.Logger
}

func NewServer(auth *AuthService, users *UserService, config *Config, logger *slog.Logger) *Server {
	return &Server{
		auth:   auth,
		users:  users,
		config: config,
		logger: logger,
	}
}

// Router assembles the HTTP surface. Auth routes mirror the public API
// contract; user routes require a verified access token.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.HandleHealth)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.HandleRegister)
		r.Post("/login", s.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.RequireAccessToken)
			r.Post("/logout", s.HandleLogout)
			r.Get("/google/oauth/revoke", s.HandleGoogleRevoke)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.RequireRefreshToken)
			r.Post("/refresh-token", s.HandleRefreshToken)
		})

		r.Get("/google/oauth/authorize", s.HandleGoogleAuthorize)
		r.Get("/google/oauth/redirect-uri", s.HandleGoogleCallback)
	})

	r.Route("/api/user", func(r chi.Router) {
		r.Use(s.RequireAccessToken)
		r.Get("/get/{userId}", s.HandleGetUser)
		r.Get("/profile/{userId}", s.HandleGetProfile)
		r.Put("/profile/{userId}", s.HandleUpdateProfile)
	})

	return r
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Cookie helpers. HttpOnly always; secure and sameSite follow the
// production flag (strict in development, none+secure in production).

func (s *Server) setAuthCookies(w http.ResponseWriter, pair *TokenPair) {
	s.setCookie(w, CookieAccessToken, pair.AccessToken, int(s.config.AccessTokenTTL().Seconds()))
	s.setCookie(w, CookieRefreshToken, pair.RefreshToken, int(s.config.RefreshTokenTTL().Seconds()))
}

func (s *Server) setAccessCookie(w http.ResponseWriter, accessToken string) {
	s.setCookie(w, CookieAccessToken, accessToken, int(s.config.AccessTokenTTL().Seconds()))
}

func (s *Server) clearAuthCookies(w http.ResponseWriter) {
	s.setCookie(w, CookieAccessToken, "", -1)
	s.setCookie(w, CookieRefreshToken, "", -1)
}

func (s *Server) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	sameSite := http.SameSiteStrictMode
	if s.config.Production {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.config.Production,
		SameSite: sameSite,
	})
}

// Response helpers

type envelope struct {
	OK      bool        `json:"ok"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  FieldErrors `json:"errors,omitempty"`
}

func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) respondSuccess(w http.ResponseWriter, data interface{}, message string) {
	respondJSON(w, http.StatusOK, envelope{OK: true, Message: message, Data: data})
}

func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, envelope{OK: false, Message: message})
}

func (s *Server) respondUnauthorized(w http.ResponseWriter, message string) {
	s.respondError(w, http.StatusUnauthorized, message)
}

func (s *Server) respondValidationErrors(w http.ResponseWriter, errs FieldErrors) {
	respondJSON(w, http.StatusUnprocessableEntity, envelope{
		OK:      false,
		Message: "Validation error",
		Errors:  errs,
	})
}

// respondInternal logs the cause server-side and returns a generic message;
// internals never reach the client.
func (s *Server) respondInternal(w http.ResponseWriter, message string, err error) {
	s.logger.Error(message, "error", err)
	s.respondError(w, http.StatusInternalServerError, message)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		respondJSON(w, http.StatusBadRequest, envelope{OK: false, Message: "Invalid request body"})
		return false
	}
	return true
}
