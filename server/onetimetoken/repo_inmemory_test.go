package onetimetoken_test

import (
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-bookshelf-client/internal/errors"
	"github.com/jrsteele09/go-bookshelf-client/server/onetimetoken"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepo(t *testing.T) {
	repo := onetimetoken.NewInMemoryRepo()
	now := time.Now()
	ticket := onetimetoken.Ticket{Email: "a@b.dev", Purpose: onetimetoken.PurposeReset, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}

	require.NoError(t, repo.Upsert(onetimetoken.PurposeReset, "tok", ticket))
	require.Error(t, repo.Upsert("", "tok", ticket))
	require.Error(t, repo.Upsert(onetimetoken.PurposeReset, "", ticket))

	got, err := repo.Get(onetimetoken.PurposeReset, "tok")
	require.NoError(t, err)
	require.Equal(t, "a@b.dev", got.Email)
	require.False(t, got.Expired(now))
	require.True(t, got.Expired(now.Add(time.Hour)))

	_, err = repo.Get(onetimetoken.PurposeVerify, "tok")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, repo.Delete(onetimetoken.PurposeReset, "tok"))
	require.NoError(t, repo.Delete(onetimetoken.PurposeReset, "tok"))
	_, err = repo.Get(onetimetoken.PurposeReset, "tok")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
