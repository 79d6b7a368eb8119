package refresh

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-bookshelf-client/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Manager handles refresh token creation, validation, and rotation
type Manager struct {
	repo        Repo
	tokenLength int
	expiry      time.Duration
}

// NewManager creates a new refresh token manager
func NewManager(repo Repo, tokenLength int, expiry time.Duration) *Manager {
	if tokenLength <= 0 {
		tokenLength = 32
	}
	if expiry <= 0 {
		expiry = 7 * 24 * time.Hour
	}
	return &Manager{
		repo:        repo,
		tokenLength: tokenLength,
		expiry:      expiry,
	}
}

// Create generates a new refresh token for userID and stores it
func (m *Manager) Create(userID string) (string, error) {
	tokenBytes := make([]byte, m.tokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.repo.Upsert(&StoredRefreshToken{
		Token:  tokenStr,
		UserID: userID,
		Iat:    NowTimeFunc(),
	}); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return tokenStr, nil
}

// Rotate validates token, deletes it and issues a replacement for the same user.
func (m *Manager) Rotate(token string) (userID string, newToken string, err error) {
	rt, err := m.repo.Get(token)
	if err != nil {
		return "", "", apperrors.ErrInvalidRefreshToken
	}
	if err := m.repo.Delete(token); err != nil {
		return "", "", fmt.Errorf("failed to delete refresh token: %w", err)
	}
	if m.IsExpired(rt) {
		return "", "", apperrors.ErrRefreshTokenExpired
	}

	newToken, err = m.Create(rt.UserID)
	if err != nil {
		return "", "", err
	}
	return rt.UserID, newToken, nil
}

// Revoke removes every refresh token issued to userID
func (m *Manager) Revoke(userID string) error {
	return m.repo.DeleteByUserID(userID)
}

// IsExpired checks if a refresh token has expired
func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	return NowTimeFunc().Sub(rt.Iat) > m.expiry
}
