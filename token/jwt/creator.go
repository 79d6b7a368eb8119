package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var ErrInvalidSignature = errors.New("invalid token signature")

// Creator signs and verifies HS256 access tokens for the mock book API.
type Creator struct {
	secret []byte
	expiry time.Duration
	issuer string
}

// NewCreator creates a new JWT creator
func NewCreator(secret, issuer string, expiry time.Duration) *Creator {
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &Creator{
		secret: []byte(secret),
		expiry: expiry,
		issuer: issuer,
	}
}

// CreateAccessToken creates a signed access token for a user
func (c *Creator) CreateAccessToken(userID, email string, roles []string) (string, error) {
	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		"iss":   c.issuer,
		"sub":   userID,
		"email": email,
		"roles": roles,
		"iat":   now.Unix(),
		"exp":   now.Add(c.expiry).Unix(),
		"jti":   uuid.New().String(), // unique per token so refreshes never collide
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of rawToken and returns its claims.
func (c *Creator) Verify(rawToken string) (*Claims, error) {
	parser := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(NowTimeFunc),
	)
	token, err := parser.Parse(rawToken, func(t *jwtlib.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidSignature
	}
	return Decode(rawToken)
}
