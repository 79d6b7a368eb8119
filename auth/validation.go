package auth

import (
	"net/mail"
	"strings"
)

// ValidateLogin checks a login request before it is sent.
func ValidateLogin(req LoginRequest) error {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return ErrMissingCredentials
	}
	return ValidateEmail(req.Email)
}

func ValidateRegister(req RegisterRequest) error {
	if err := ValidateLogin(LoginRequest{Email: req.Email, Password: req.Password}); err != nil {
		return err
	}
	if strings.TrimSpace(req.Name) == "" {
		return ErrMissingName
	}
	return nil
}

// ValidateEmail accepts a bare address, not a "Name <address>" form.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return ErrInvalidEmail
	}
	return nil
}
