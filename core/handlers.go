package core

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type registerRequest struct {
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8,password"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	FullName             string `json:"fullname" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	Name      string `json:"name" validate:"required"`
	Age       int    `json:"age" validate:"gte=0,lte=150"`
	Gender    string `json:"gender" validate:"required,oneof=MALE FEMALE OTHER"`
	Bio       string `json:"bio" validate:"max=1000"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

func (s *Server) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := ValidateStruct(&req); errs != nil {
		s.respondValidationErrors(w, errs)
		return
	}

	user, err := s.auth.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			s.respondError(w, http.StatusBadRequest, "Email is already in use.")
			return
		}
		s.respondInternal(w, "Registration failed.", err)
		return
	}

	s.respondSuccess(w, map[string]interface{}{
		"id":    user.ID,
		"email": user.Email,
	}, "User successfully registered.")
}

func (s *Server) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := ValidateStruct(&req); errs != nil {
		s.respondValidationErrors(w, errs)
		return
	}

	user, pair, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.respondUnauthorized(w, "Invalid email or password.")
			return
		}
		s.respondInternal(w, "Login failed.", err)
		return
	}

	s.setAuthCookies(w, pair)
	s.respondSuccess(w, map[string]interface{}{
		"id":    user.ID,
		"email": user.Email,
	}, "Login successful.")
}

func (s *Server) HandleLogout(w http.ResponseWriter, r *http.Request) {
	userID, ok := AccountIDFromContext(r.Context())
	if !ok {
		s.respondUnauthorized(w, "No Access")
		return
	}

	if err := s.auth.Logout(r.Context(), userID); err != nil {
		s.respondInternal(w, "Logout failed.", err)
		return
	}

	s.clearAuthCookies(w)
	s.respondSuccess(w, nil, "Logged out successfully.")
}

func (s *Server) HandleRefreshToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := AccountIDFromContext(r.Context())
	if !ok {
		s.respondUnauthorized(w, "No Access")
		return
	}

	cookie, err := r.Cookie(CookieRefreshToken)
	if err != nil {
		s.respondUnauthorized(w, "No refresh token provided")
		return
	}

	accessToken, err := s.auth.Refresh(r.Context(), userID, cookie.Value)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			s.respondUnauthorized(w, "Invalid refresh token")
			return
		}
		s.respondInternal(w, "Failed to refresh token", err)
		return
	}

	s.setAccessCookie(w, accessToken)
	s.respondSuccess(w, nil, "Access token refreshed successfully")
}

func (s *Server) HandleGoogleAuthorize(w http.ResponseWriter, r *http.Request) {
	authURL, err := s.auth.GoogleAuthorize(r.Context())
	if err != nil {
		s.respondInternal(w, "Failed to generate authorization URL", err)
		return
	}

	s.respondSuccess(w, authURL, "Google OAuth authorization URL generated.")
}

func (s *Server) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if errParam := q.Get("error"); errParam != "" {
		s.logger.Warn("provider returned error on callback", "error", errParam)
		s.respondError(w, http.StatusBadRequest, "Authorization was denied.")
		return
	}

	code := q.Get("code")
	if code == "" {
		s.respondError(w, http.StatusBadRequest, "Invalid or missing authorization code.")
		return
	}

	_, pair, err := s.auth.GoogleCallback(r.Context(), code, q.Get("state"))
	if err != nil {
		if errors.Is(err, ErrStateMismatch) {
			s.respondError(w, http.StatusBadRequest, "State mismatch. Possible CSRF attack")
			return
		}
		s.respondInternal(w, "Failed to retrieve user profile.", err)
		return
	}

	s.setAuthCookies(w, pair)
	http.Redirect(w, r, s.config.FrontendURL+"/", http.StatusFound)
}

func (s *Server) HandleGoogleRevoke(w http.ResponseWriter, r *http.Request) {
	userID, ok := AccountIDFromContext(r.Context())
	if !ok {
		s.respondUnauthorized(w, "No Access")
		return
	}

	if err := s.auth.GoogleRevoke(r.Context(), userID); err != nil {
		s.respondInternal(w, "Failed to revoke token", err)
		return
	}

	s.respondSuccess(w, nil, "Token revoked.")
}

// User/profile surface

func (s *Server) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userIDParam(w, r)
	if !ok {
		return
	}

	user, err := s.users.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "User not found")
			return
		}
		s.respondInternal(w, "Internal server error", err)
		return
	}

	s.respondSuccess(w, map[string]interface{}{"user": user}, "success")
}

func (s *Server) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userIDParam(w, r)
	if !ok {
		return
	}

	profile, err := s.users.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "User not found")
			return
		}
		s.respondInternal(w, "Internal server error", err)
		return
	}

	s.respondSuccess(w, profile, "success")
}

func (s *Server) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userIDParam(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := ValidateStruct(&req); errs != nil {
		s.respondValidationErrors(w, errs)
		return
	}

	profile, err := s.users.UpdateProfile(r.Context(), &Profile{
		UserID:    userID,
		Name:      req.Name,
		Age:       req.Age,
		Gender:    Gender(req.Gender),
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "User not found")
			return
		}
		s.respondInternal(w, "Internal server error", err)
		return
	}

	s.respondSuccess(w, map[string]interface{}{"profile": profile}, "Profile updated successfully")
}

func (s *Server) userIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid user id")
		return uuid.Nil, false
	}
	return userID, true
}
