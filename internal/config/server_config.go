package config

import (
	"os"
	"time"
)

// ServerConfig configures the mock book API.
type ServerConfig interface {
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetTokenIssuer() string
	GetDemoUser() (email, password string)
}

type Server struct{}

var _ ServerConfig = Server{}

func (Server) GetAccessTokenExpiry() time.Duration {
	return GetEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute)
}

func (Server) GetRefreshTokenExpiry() time.Duration {
	return GetEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour)
}

func (Server) GetTokenIssuer() string {
	return GetEnv("TOKEN_ISSUER", "bookshelf-mock-api")
}

// GetDemoUser is the account seeded at startup. DEMO_EMAIL set to an empty
// value disables seeding.
func (Server) GetDemoUser() (email, password string) {
	email, ok := os.LookupEnv("DEMO_EMAIL")
	if !ok {
		email = "reader@bookshelf.dev"
	}
	return email, GetEnv("DEMO_PASSWORD", "Bookworm42")
}
