// Package auth is the session API: login, registration, logout and the
// password and email flows, storing tokens in the client's token store.
package auth

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-bookshelf-client/apiclient"
	"github.com/jrsteele09/go-bookshelf-client/endpoints"
	apperrors "github.com/jrsteele09/go-bookshelf-client/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) (*Service, error) {
	if client == nil {
		return nil, errors.New("[auth.NewService] client is required")
	}
	return &Service{client: client}, nil
}

// Login authenticates and stores the returned token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*Response, error) {
	req := LoginRequest{Email: email, Password: password}
	if err := ValidateLogin(req); err != nil {
		return nil, err
	}
	return s.authenticate(ctx, endpoints.AuthLogin, req)
}

// Register creates an account and signs it in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Response, error) {
	if err := ValidateRegister(req); err != nil {
		return nil, err
	}
	return s.authenticate(ctx, endpoints.AuthRegister, req)
}

func (s *Service) authenticate(ctx context.Context, path string, body any) (*Response, error) {
	resp, err := apiclient.Post[Response](ctx, s.client, path, body, apiclient.WithSkipAuth())
	if err != nil {
		return nil, errors.Wrapf(err, "[authenticate] %s failed", path)
	}
	if resp.Data.AccessToken == "" {
		return nil, ErrNoTokensReturned
	}
	if err := s.client.SetTokens(ctx, resp.Data.AccessToken, resp.Data.RefreshToken); err != nil {
		return nil, errors.Wrap(err, "[authenticate] failed to store tokens")
	}
	return &resp.Data, nil
}

// Logout tells the backend and clears the local tokens. The tokens are
// cleared even when the backend call fails; only a failure to clear them is
// returned.
func (s *Service) Logout(ctx context.Context) error {
	if _, err := s.client.Post(ctx, endpoints.AuthLogout, nil, apiclient.WithRetries(0)); err != nil {
		log.Warn().Err(err).Msg("logout request failed, clearing local session anyway")
	}
	return errors.Wrap(s.client.ClearAuth(ctx), "[Logout] failed to clear tokens")
}

// Refresh exchanges the stored refresh token for a new pair. The client does
// this on its own after a 401; this is for callers that want to refresh early.
func (s *Service) Refresh(ctx context.Context) error {
	refreshToken, err := s.client.Tokens().RefreshToken(ctx)
	if err != nil {
		return errors.Wrap(err, "[Refresh] failed to read refresh token")
	}
	if refreshToken == "" {
		return apperrors.ErrNoRefreshToken
	}
	resp, err := apiclient.Post[RefreshResponse](ctx, s.client, endpoints.AuthRefresh,
		RefreshRequest{RefreshToken: refreshToken}, apiclient.WithSkipAuth(), apiclient.WithRetries(0))
	if err != nil {
		return errors.Wrap(err, "[Refresh] failed")
	}
	if resp.Data.AccessToken == "" {
		return ErrNoTokensReturned
	}
	return errors.Wrap(s.client.SetTokens(ctx, resp.Data.AccessToken, resp.Data.RefreshToken), "[Refresh] failed to store tokens")
}

func (s *Service) Profile(ctx context.Context) (*User, error) {
	resp, err := apiclient.Get[User](ctx, s.client, endpoints.AuthProfile)
	if err != nil {
		return nil, errors.Wrap(err, "[Profile] failed")
	}
	return &resp.Data, nil
}

func (s *Service) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	resp, err := apiclient.Put[User](ctx, s.client, endpoints.UsersProfile, req)
	if err != nil {
		return nil, errors.Wrap(err, "[UpdateProfile] failed")
	}
	return &resp.Data, nil
}

func (s *Service) Preferences(ctx context.Context) (*Preferences, error) {
	resp, err := apiclient.Get[Preferences](ctx, s.client, endpoints.UsersPreferences)
	if err != nil {
		return nil, errors.Wrap(err, "[Preferences] failed")
	}
	return &resp.Data, nil
}

func (s *Service) UpdatePreferences(ctx context.Context, prefs Preferences) (*Preferences, error) {
	resp, err := apiclient.Put[Preferences](ctx, s.client, endpoints.UsersPreferences, prefs)
	if err != nil {
		return nil, errors.Wrap(err, "[UpdatePreferences] failed")
	}
	return &resp.Data, nil
}

// DeleteAccount deletes the signed in account and clears the local tokens.
func (s *Service) DeleteAccount(ctx context.Context) error {
	if _, err := s.client.Delete(ctx, endpoints.UsersAccount, apiclient.WithRetries(0)); err != nil {
		return errors.Wrap(err, "[DeleteAccount] failed")
	}
	return errors.Wrap(s.client.ClearAuth(ctx), "[DeleteAccount] failed to clear tokens")
}

func (s *Service) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if oldPassword == newPassword {
		return ErrPasswordsMatch
	}
	_, err := s.client.Post(ctx, endpoints.AuthChangePassword, ChangePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword})
	return errors.Wrap(err, "[ChangePassword] failed")
}

func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	_, err := s.client.Post(ctx, endpoints.AuthForgotPassword, map[string]string{"email": email}, apiclient.WithSkipAuth())
	return errors.Wrap(err, "[RequestPasswordReset] failed")
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	_, err := s.client.Post(ctx, endpoints.AuthResetPassword, ResetPasswordRequest{Token: token, NewPassword: newPassword}, apiclient.WithSkipAuth())
	return errors.Wrap(err, "[ResetPassword] failed")
}

func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	_, err := s.client.Post(ctx, endpoints.AuthVerifyEmail, map[string]string{"token": token}, apiclient.WithSkipAuth())
	return errors.Wrap(err, "[VerifyEmail] failed")
}

func (s *Service) ResendVerification(ctx context.Context) error {
	_, err := s.client.Post(ctx, endpoints.AuthResendVerification, nil)
	return errors.Wrap(err, "[ResendVerification] failed")
}

func (s *Service) IsAuthenticated(ctx context.Context) bool {
	return s.client.IsAuthenticated(ctx)
}

// IsUnauthorized reports whether err is a rejected login or an expired session.
func IsUnauthorized(err error) bool {
	return apiclient.IsStatus(err, http.StatusUnauthorized)
}
