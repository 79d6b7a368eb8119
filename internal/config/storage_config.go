package config

import (
	"os"
	"path/filepath"
	"time"
)

type TokenStoreKind string

const (
	TokenStoreMemory TokenStoreKind = "memory"
	TokenStoreFile   TokenStoreKind = "file"
	TokenStoreRedis  TokenStoreKind = "redis"
)

type StorageConfig interface {
	GetTokenStore() TokenStoreKind
	GetTokenFile() string
	GetRedisURL() string
	GetRedisKeyPrefix() string
	GetRedisTokenTTL() time.Duration
}

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetTokenStore() TokenStoreKind {
	switch k := TokenStoreKind(GetEnv("BOOKSHELF_TOKEN_STORE", string(TokenStoreFile))); k {
	case TokenStoreMemory, TokenStoreFile, TokenStoreRedis:
		return k
	default:
		return TokenStoreFile
	}
}

func (Storage) GetTokenFile() string {
	if f := os.Getenv("BOOKSHELF_TOKEN_FILE"); f != "" {
		return f
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".bookshelf-tokens.json"
	}
	return filepath.Join(dir, "bookshelf", "tokens.json")
}

func (Storage) GetRedisURL() string {
	return GetEnv("REDIS_URL", "redis://localhost:6379/0")
}

func (Storage) GetRedisKeyPrefix() string {
	return GetEnv("BOOKSHELF_REDIS_PREFIX", "bookshelf:")
}

// GetRedisTokenTTL bounds how long tokens live in redis; zero keeps them until cleared.
func (Storage) GetRedisTokenTTL() time.Duration {
	return GetEnvDuration("BOOKSHELF_REDIS_TTL", 0)
}
