package server

import (
	"context"
	"net/http"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-bookshelf-client/internal/errors"
	"github.com/jrsteele09/go-bookshelf-client/token/jwt"
	"github.com/jrsteele09/go-bookshelf-client/users"
)

const claimsKey contextKey = "claims"

// RequireAuth rejects requests without a valid bearer access token with 401.
func (s *Server) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		claims, err := s.accessTokens.Verify(raw)
		if apperrors.Is(err, jwtlib.ErrTokenExpired) {
			writeError(w, http.StatusUnauthorized, "Token expired")
			return
		}
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

func claimsFrom(r *http.Request) *jwt.Claims {
	claims, _ := r.Context().Value(claimsKey).(*jwt.Claims)
	return claims
}

// currentUser loads the user behind the request's access token. A deleted
// or blocked account is reported to the caller as 401 or 403.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (*users.User, bool) {
	claims := claimsFrom(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	user, err := s.repos.Users.GetByID(claims.Subject)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "User no longer exists")
		return nil, false
	}
	if user.Blocked {
		writeError(w, http.StatusForbidden, "Account blocked")
		return nil, false
	}
	return user, true
}
