package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-bookshelf-client/auth"
	apperrors "github.com/jrsteele09/go-bookshelf-client/internal/errors"
	"github.com/jrsteele09/go-bookshelf-client/server/onetimetoken"
	"github.com/jrsteele09/go-bookshelf-client/users"
	"github.com/rs/zerolog/log"
)

type authResponse struct {
	User         *users.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

func (s *Server) issueTokens(user *users.User) (*authResponse, error) {
	access, err := s.accessTokens.CreateAccessToken(user.ID, user.Email, user.RoleNames())
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.refreshTokens.Create(user.ID)
	if err != nil {
		return nil, err
	}
	return &authResponse{User: user, AccessToken: access, RefreshToken: refreshToken}, nil
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := auth.ValidateLogin(req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		user, err := users.Authenticate(s.repos.Users, req.Email, req.Password)
		if apperrors.Is(err, apperrors.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		if err != nil {
			log.Err(err).Msg("login lookup failed")
			writeError(w, http.StatusInternalServerError, "Login failed")
			return
		}
		if user.Blocked {
			writeError(w, http.StatusForbidden, "Account blocked")
			return
		}

		s.stateLock.Lock()
		user.LastLogin = time.Now().UTC()
		err = s.repos.Users.Upsert(user)
		s.stateLock.Unlock()
		if err != nil {
			log.Err(err).Str("user", user.ID).Msg("failed to record login")
		}

		resp, err := s.issueTokens(user)
		if err != nil {
			log.Err(err).Msg("failed to issue tokens")
			writeError(w, http.StatusInternalServerError, "Failed to issue tokens")
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.RegisterRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := auth.ValidateRegister(req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := users.ValidatePasswordStrength(req.Password); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		hash, err := users.HashPassword(req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}
		user := &users.User{
			Email:        strings.TrimSpace(req.Email),
			Name:         strings.TrimSpace(req.Name),
			PasswordHash: hash,
			Roles:        []users.RoleType{users.RoleReader},
			DateJoined:   time.Now().UTC(),
		}
		if err := s.repos.Users.Create(user); apperrors.Is(err, apperrors.ErrUserExists) {
			writeError(w, http.StatusConflict, "User already exists")
			return
		} else if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		resp, err := s.issueTokens(user)
		if err != nil {
			log.Err(err).Msg("failed to issue tokens")
			writeError(w, http.StatusInternalServerError, "Failed to issue tokens")
			return
		}
		s.issueVerification(user.Email)
		writeJSON(w, http.StatusCreated, resp)
	}
}

// RefreshHandler rotates the refresh token: the presented token is spent and
// a new pair is returned.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.RefreshRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.RefreshToken == "" {
			writeError(w, http.StatusBadRequest, "refreshToken is required")
			return
		}
		userID, newRefresh, err := s.refreshTokens.Rotate(req.RefreshToken)
		switch {
		case apperrors.Is(err, apperrors.ErrRefreshTokenExpired):
			writeError(w, http.StatusUnauthorized, "Refresh token expired")
			return
		case err != nil:
			writeError(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		user, err := s.repos.Users.GetByID(userID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "User no longer exists")
			return
		}
		access, err := s.accessTokens.CreateAccessToken(user.ID, user.Email, user.RoleNames())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to issue tokens")
			return
		}
		writeJSON(w, http.StatusOK, auth.RefreshResponse{AccessToken: access, RefreshToken: newRefresh})
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		if err := s.refreshTokens.Revoke(user.ID); err != nil {
			log.Err(err).Str("user", user.ID).Msg("failed to revoke refresh tokens")
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
	}
}

func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) UpdateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		var req struct {
			Name        *string            `json:"name"`
			Avatar      *string            `json:"avatar"`
			Preferences *users.Preferences `json:"preferences"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
			writeError(w, http.StatusUnprocessableEntity, "name must not be empty")
			return
		}

		s.stateLock.Lock()
		defer s.stateLock.Unlock()
		if req.Name != nil {
			user.Name = strings.TrimSpace(*req.Name)
		}
		if req.Avatar != nil {
			user.Avatar = *req.Avatar
		}
		if req.Preferences != nil {
			user.Preferences = *req.Preferences
		}
		if err := s.repos.Users.Upsert(user); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to update profile")
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		var req auth.ChangePasswordRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if !user.CheckPassword(req.OldPassword) {
			writeError(w, http.StatusBadRequest, "Current password is incorrect")
			return
		}
		if !s.setPassword(w, user, req.NewPassword) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed"})
	}
}

func (s *Server) setPassword(w http.ResponseWriter, user *users.User, password string) bool {
	if err := users.ValidatePasswordStrength(password); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	hash, err := users.HashPassword(password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return false
	}
	s.stateLock.Lock()
	defer s.stateLock.Unlock()
	user.PasswordHash = hash
	if err := s.repos.Users.Upsert(user); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update password")
		return false
	}
	return true
}

// ForgotPasswordHandler always answers 200 so account existence is not
// revealed. The reset token is logged in place of sending an email.
func (s *Server) ForgotPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if _, err := s.repos.Users.GetByEmail(req.Email); err == nil {
			if tok, err := s.oneTimeTokens.issue(req.Email, onetimetoken.PurposeReset); err == nil {
				log.Info().Str("email", req.Email).Str("token", tok).Msg("password reset requested")
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "If the account exists a reset email has been sent"})
	}
}

func (s *Server) ResetPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.ResetPasswordRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		email, ok := s.oneTimeTokens.consume(req.Token, onetimetoken.PurposeReset)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid or expired reset token")
			return
		}
		user, err := s.repos.Users.GetByEmail(email)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid or expired reset token")
			return
		}
		if !s.setPassword(w, user, req.NewPassword) {
			return
		}
		if err := s.refreshTokens.Revoke(user.ID); err != nil {
			log.Err(err).Str("user", user.ID).Msg("failed to revoke refresh tokens")
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset"})
	}
}

func (s *Server) VerifyEmailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Token string `json:"token"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		email, ok := s.oneTimeTokens.consume(req.Token, onetimetoken.PurposeVerify)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid or expired verification token")
			return
		}
		if err := s.repos.Users.SetVerified(email, true); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid or expired verification token")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Email verified"})
	}
}

func (s *Server) ResendVerificationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		if user.Verified {
			writeError(w, http.StatusConflict, "Email already verified")
			return
		}
		s.issueVerification(user.Email)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Verification email sent"})
	}
}

func (s *Server) issueVerification(email string) {
	tok, err := s.oneTimeTokens.issue(email, onetimetoken.PurposeVerify)
	if err != nil {
		log.Err(err).Msg("failed to issue verification token")
		return
	}
	log.Info().Str("email", email).Str("token", tok).Msg("verification email")
}
