package jwt_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-bookshelf-client/token/jwt"
	"github.com/stretchr/testify/require"
)

func TestCreatorRoundTrip(t *testing.T) {
	c := jwt.NewCreator("secret", "bookshelf-test", 10*time.Minute)

	raw, err := c.CreateAccessToken("user-1", "reader@example.com", []string{"reader"})
	require.NoError(t, err)

	claims, err := c.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "reader@example.com", claims.Email)
	require.Equal(t, []string{"reader"}, claims.Roles)
	require.WithinDuration(t, time.Now().Add(10*time.Minute), claims.ExpiresAt, 2*time.Second)
}

func TestVerify_WrongSecret(t *testing.T) {
	raw, err := jwt.NewCreator("one", "", time.Minute).CreateAccessToken("u", "", nil)
	require.NoError(t, err)

	_, err = jwt.NewCreator("two", "", time.Minute).Verify(raw)
	require.ErrorIs(t, err, jwt.ErrInvalidSignature)
}

func TestVerify_Expired(t *testing.T) {
	orig := jwt.NowTimeFunc
	t.Cleanup(func() { jwt.NowTimeFunc = orig })

	jwt.NowTimeFunc = func() time.Time { return time.Now().Add(-time.Hour) }
	c := jwt.NewCreator("secret", "", time.Minute)
	raw, err := c.CreateAccessToken("u", "", nil)
	require.NoError(t, err)

	jwt.NowTimeFunc = orig
	_, err = c.Verify(raw)
	require.ErrorIs(t, err, jwtlib.ErrTokenExpired)
}

func TestDecode(t *testing.T) {
	t.Run("garbage", func(t *testing.T) {
		_, err := jwt.Decode("abc.def")
		require.ErrorIs(t, err, jwt.ErrMalformedToken)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := jwt.Decode("  ")
		require.ErrorIs(t, err, jwt.ErrMalformedToken)
	})

	t.Run("missing exp", func(t *testing.T) {
		raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{"sub": "x"}).SignedString([]byte("k"))
		require.NoError(t, err)
		_, err = jwt.Decode(raw)
		require.ErrorIs(t, err, jwt.ErrMissingExpiry)
	})

	t.Run("signature is not checked", func(t *testing.T) {
		raw, err := jwt.NewCreator("whatever", "", time.Minute).CreateAccessToken("u", "", nil)
		require.NoError(t, err)
		exp, err := jwt.ExpiresAt(raw)
		require.NoError(t, err)
		require.True(t, exp.After(time.Now()))
	})
}
