package refresh_test

import (
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-bookshelf-client/internal/errors"
	"github.com/jrsteele09/go-bookshelf-client/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-bookshelf-client/token/refresh/repofake"
	"github.com/stretchr/testify/require"
)

func TestManager_Rotate(t *testing.T) {
	m := refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), 16, time.Hour)

	first, err := m.Create("user-1")
	require.NoError(t, err)
	require.Len(t, first, 32)

	userID, second, err := m.Rotate(first)
	require.NoError(t, err)
	require.Equal(t, "user-1", userID)
	require.NotEqual(t, first, second)

	_, _, err = m.Rotate(first)
	require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestManager_RotateExpired(t *testing.T) {
	orig := refresh.NowTimeFunc
	t.Cleanup(func() { refresh.NowTimeFunc = orig })

	m := refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), 0, time.Minute)
	refresh.NowTimeFunc = func() time.Time { return orig().Add(-time.Hour) }
	tok, err := m.Create("user-1")
	require.NoError(t, err)

	refresh.NowTimeFunc = orig
	_, _, err = m.Rotate(tok)
	require.ErrorIs(t, err, apperrors.ErrRefreshTokenExpired)
}

func TestManager_Revoke(t *testing.T) {
	m := refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), 0, 0)
	tok, err := m.Create("user-1")
	require.NoError(t, err)

	require.NoError(t, m.Revoke("user-1"))
	_, _, err = m.Rotate(tok)
	require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}
