package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-bookshelf-client/apiclient"
	"github.com/jrsteele09/go-bookshelf-client/auth"
	catalogfakerepo "github.com/jrsteele09/go-bookshelf-client/catalog/repofake"
	"github.com/jrsteele09/go-bookshelf-client/internal/config"
	apperrors "github.com/jrsteele09/go-bookshelf-client/internal/errors"
	"github.com/jrsteele09/go-bookshelf-client/server"
	"github.com/jrsteele09/go-bookshelf-client/token"
	refreshrepofake "github.com/jrsteele09/go-bookshelf-client/token/refresh/repofake"
	tokenfakerepo "github.com/jrsteele09/go-bookshelf-client/token/repofake"
	fakeuserrepo "github.com/jrsteele09/go-bookshelf-client/users/repofake"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	demoEmail    = "reader@bookshelf.dev"
	demoPassword = "Bookworm42"
)

func newService(t *testing.T) (*auth.Service, *apiclient.Client, *token.Store) {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("DEMO_EMAIL", demoEmail)
	t.Setenv("DEMO_PASSWORD", demoPassword)

	s, err := server.New(config.New(), server.Repos{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		Catalog:       catalogfakerepo.NewFakeCatalogRepo(),
		RefreshTokens: refreshrepofake.NewFakeRefreshTokenRepo(),
	})
	require.NoError(t, err)
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)

	cfg := apiclient.DefaultConfig()
	cfg.BaseURL = ts.URL + server.APIPrefix
	cfg.RetryDelay = 5 * time.Millisecond
	store := token.NewStore(tokenfakerepo.NewFakeTokensRepo())
	client, err := apiclient.New(cfg, apiclient.WithTokenStore(store), apiclient.WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	svc, err := auth.NewService(client)
	require.NoError(t, err)
	return svc, client, store
}

func TestNewService_RequiresClient(t *testing.T) {
	_, err := auth.NewService(nil)
	require.Error(t, err)
}

func TestLoginStoresTokens(t *testing.T) {
	svc, _, store := newService(t)
	ctx := context.Background()
	require.False(t, svc.IsAuthenticated(ctx))

	resp, err := svc.Login(ctx, demoEmail, demoPassword)
	require.NoError(t, err)
	require.Equal(t, demoEmail, resp.User.Email)
	require.True(t, svc.IsAuthenticated(ctx))

	refreshToken, err := store.RefreshToken(ctx)
	require.NoError(t, err)
	require.Equal(t, resp.RefreshToken, refreshToken)

	profile, err := svc.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, demoEmail, profile.Email)
	require.True(t, profile.Verified)
}

func TestLoginFailures(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, demoEmail, "wrong")
	require.Error(t, err)
	require.True(t, auth.IsUnauthorized(err))
	require.False(t, svc.IsAuthenticated(ctx))

	_, err = svc.Login(ctx, "", "")
	require.ErrorIs(t, err, auth.ErrMissingCredentials)

	_, err = svc.Login(ctx, "not-an-email", "x")
	require.ErrorIs(t, err, auth.ErrInvalidEmail)
}

func TestRegisterAndVerify(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterRequest{Email: "new@bookshelf.dev", Password: "Passw0rdX"})
	require.ErrorIs(t, err, auth.ErrMissingName)

	resp, err := svc.Register(ctx, auth.RegisterRequest{Email: "new@bookshelf.dev", Password: "Passw0rdX", Name: "New Reader"})
	require.NoError(t, err)
	require.Equal(t, "New Reader", resp.User.Name)
	require.True(t, svc.IsAuthenticated(ctx))

	_, err = svc.Register(ctx, auth.RegisterRequest{Email: "new@bookshelf.dev", Password: "Passw0rdX", Name: "Again"})
	require.True(t, apiclient.IsStatus(err, http.StatusConflict))

	require.NoError(t, svc.ResendVerification(ctx))
	err = svc.VerifyEmail(ctx, "not-a-token")
	require.True(t, apiclient.IsStatus(err, http.StatusBadRequest))
}

func TestLogoutClearsEvenWhenServerFails(t *testing.T) {
	svc, client, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Login(ctx, demoEmail, demoPassword)
	require.NoError(t, err)

	require.NoError(t, client.SetBaseURL("http://127.0.0.1:1/api"))
	require.NoError(t, svc.Logout(ctx))
	require.False(t, svc.IsAuthenticated(ctx))
}

func TestExplicitRefresh(t *testing.T) {
	svc, _, store := newService(t)
	ctx := context.Background()
	require.ErrorIs(t, svc.Refresh(ctx), apperrors.ErrNoRefreshToken)

	_, err := svc.Login(ctx, demoEmail, demoPassword)
	require.NoError(t, err)
	before, err := store.RefreshToken(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Refresh(ctx))
	after, err := store.RefreshToken(ctx)
	require.NoError(t, err)
	require.NotEqual(t, before, after)
}

// A rejected access token is refreshed and the call replayed; a rejected
// refresh token ends the session and notifies subscribers.
func TestExpiredSessionRecovery(t *testing.T) {
	svc, client, store := newService(t)
	ctx := context.Background()
	_, err := svc.Login(ctx, demoEmail, demoPassword)
	require.NoError(t, err)

	var lost atomic.Int32
	client.OnAuthError(func() { lost.Add(1) })

	require.NoError(t, store.SetAccessToken(ctx, "forged"))
	profile, err := svc.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, demoEmail, profile.Email)
	require.Zero(t, lost.Load())

	require.NoError(t, store.SetTokens(ctx, "forged", "spent"))
	_, err = svc.Profile(ctx)
	require.True(t, auth.IsUnauthorized(err))
	require.Equal(t, int32(1), lost.Load())
	require.False(t, svc.IsAuthenticated(ctx))
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Login(ctx, demoEmail, demoPassword)
	require.NoError(t, err)

	require.ErrorIs(t, svc.ChangePassword(ctx, demoPassword, demoPassword), auth.ErrPasswordsMatch)
	require.NoError(t, svc.ChangePassword(ctx, demoPassword, "Sh3lfLife"))

	_, err = svc.Login(ctx, demoEmail, "Sh3lfLife")
	require.NoError(t, err)
}

func TestPasswordResetRequest(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	require.ErrorIs(t, svc.RequestPasswordReset(ctx, "nope"), auth.ErrInvalidEmail)
	require.NoError(t, svc.RequestPasswordReset(ctx, "ghost@bookshelf.dev"))

	err := svc.ResetPassword(ctx, "bogus", "Passw0rdX")
	require.True(t, apiclient.IsStatus(err, http.StatusBadRequest))
}

func TestProfileAndPreferences(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Login(ctx, demoEmail, demoPassword)
	require.NoError(t, err)

	name := "Night Reader"
	user, err := svc.UpdateProfile(ctx, auth.UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, name, user.Name)

	prefs, err := svc.UpdatePreferences(ctx, auth.Preferences{Genres: []string{"memoir"}, Languages: []string{"en"}})
	require.NoError(t, err)
	require.Equal(t, []string{"memoir"}, prefs.Genres)

	prefs, err = svc.Preferences(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"memoir"}, prefs.Genres)
}

func TestDeleteAccount(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, auth.RegisterRequest{Email: "leaving@bookshelf.dev", Password: "Passw0rdX", Name: "Leaving"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx))
	require.False(t, svc.IsAuthenticated(ctx))

	_, err = svc.Login(ctx, "leaving@bookshelf.dev", "Passw0rdX")
	require.True(t, auth.IsUnauthorized(err))
}
