package auth

import "errors"

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrMissingName        = errors.New("name is required")
	ErrNoTokensReturned   = errors.New("server returned no access token")
	ErrPasswordsMatch     = errors.New("new password must differ from the old one")
)
