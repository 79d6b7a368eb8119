package token

import (
	"context"
	"time"

	apperrors "github.com/jrsteele09/go-bookshelf-client/internal/errors"
	"github.com/jrsteele09/go-bookshelf-client/token/jwt"
	"golang.org/x/oauth2"
)

// Store is the single source of truth for the access/refresh token pair.
type Store struct {
	repo    Repo
	nowFunc func() time.Time
}

// NewStore creates a Store persisting through repo.
func NewStore(repo Repo) *Store {
	return &Store{
		repo:    repo,
		nowFunc: time.Now,
	}
}

// WithClock replaces the clock used for expiry checks. Intended for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.nowFunc = now
	return s
}

// AccessToken returns the stored access token or "" when none is stored.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, AccessTokenKey)
}

func (s *Store) SetAccessToken(ctx context.Context, token string) error {
	return s.set(ctx, AccessTokenKey, token)
}

// RefreshToken returns the stored refresh token or "" when none is stored.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, RefreshTokenKey)
}

func (s *Store) SetRefreshToken(ctx context.Context, token string) error {
	return s.set(ctx, RefreshTokenKey, token)
}

// SetTokens stores an access token and, when non-empty, a refresh token.
func (s *Store) SetTokens(ctx context.Context, access, refresh string) error {
	if err := s.SetAccessToken(ctx, access); err != nil {
		return err
	}
	if refresh == "" {
		return nil
	}
	return s.SetRefreshToken(ctx, refresh)
}

// Clear removes both tokens. Clearing an empty store succeeds.
func (s *Store) Clear(ctx context.Context) error {
	return apperrors.Wrapf(s.repo.Delete(ctx, AccessTokenKey, RefreshTokenKey), "failed to clear tokens")
}

// HasValidToken reports whether an access token is stored and its exp claim
// lies in the future. Storage and decode failures count as "no valid token".
func (s *Store) HasValidToken(ctx context.Context) bool {
	access, err := s.AccessToken(ctx)
	if err != nil || access == "" {
		return false
	}
	exp, err := jwt.ExpiresAt(access)
	if err != nil {
		return false
	}
	return exp.After(s.nowFunc())
}

// Token returns the stored pair as an oauth2 token. It fails with
// ErrNoAccessToken when nothing is stored and ErrTokenExpired when the access
// token is no longer valid.
func (s *Store) Token(ctx context.Context) (*oauth2.Token, error) {
	access, err := s.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	if access == "" {
		return nil, apperrors.ErrNoAccessToken
	}
	exp, err := jwt.ExpiresAt(access)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "%v", err)
	}
	if !exp.After(s.nowFunc()) {
		return nil, apperrors.ErrTokenExpired
	}
	refresh, err := s.RefreshToken(ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken:  access,
		TokenType:    "Bearer",
		RefreshToken: refresh,
		Expiry:       exp,
	}, nil
}

// TokenSource adapts the store to oauth2.TokenSource, bound to ctx.
func (s *Store) TokenSource(ctx context.Context) oauth2.TokenSource {
	return storeTokenSource{ctx: ctx, store: s}
}

type storeTokenSource struct {
	ctx   context.Context
	store *Store
}

func (ts storeTokenSource) Token() (*oauth2.Token, error) {
	return ts.store.Token(ts.ctx)
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	v, err := s.repo.Get(ctx, key)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.Wrapf(err, "failed to read %s", key)
	}
	return v, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	if value == "" {
		return apperrors.Wrapf(s.repo.Delete(ctx, key), "failed to delete %s", key)
	}
	return apperrors.Wrapf(s.repo.Set(ctx, key, value), "failed to store %s", key)
}
