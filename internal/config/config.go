package config

import "github.com/joho/godotenv"

type Config interface {
	EnvConfig
	CorsConfig
	ClientConfig
	StorageConfig
	ServerConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetJWTSecret() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Client
	Storage
	Server
}

// New returns the environment backed configuration. A .env file in the
// working directory, when present, is loaded first; variables already set in
// the process environment win.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}

// NewFromFiles is New with explicit .env files.
func NewFromFiles(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		return nil, err
	}
	return mainConfig{}, nil
}
