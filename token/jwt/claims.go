package jwt

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformedToken = errors.New("malformed token")
	ErrMissingExpiry  = errors.New("token has no exp claim")
)

// Claims is the subset of access token claims the client cares about.
// The token is decoded without signature verification; the server remains
// the authority on whether a token is acceptable.
type Claims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
	IssuedAt  time.Time
	Roles     []string
}

// Decode parses rawToken without verifying its signature.
func Decode(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, ErrMalformedToken
	}

	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Join(ErrMalformedToken, err)
	}

	mc, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, ErrMalformedToken
	}

	exp, err := mc.GetExpirationTime()
	if err != nil {
		return nil, errors.Join(ErrMalformedToken, err)
	}
	if exp == nil {
		return nil, ErrMissingExpiry
	}

	c := &Claims{ExpiresAt: exp.Time}
	c.Subject, _ = mc.GetSubject()
	c.Email, _ = mc["email"].(string)
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	if roles, ok := mc["roles"].([]any); ok {
		for _, r := range roles {
			if s, ok := r.(string); ok {
				c.Roles = append(c.Roles, s)
			}
		}
	}
	return c, nil
}

// ExpiresAt returns the exp claim of rawToken.
func ExpiresAt(rawToken string) (time.Time, error) {
	c, err := Decode(rawToken)
	if err != nil {
		return time.Time{}, err
	}
	return c.ExpiresAt, nil
}
