package main

import (
	"context"
	"io"

	"github.com/jrsteele09/go-bookshelf-client/internal/config"
	"github.com/jrsteele09/go-bookshelf-client/token"
	"github.com/jrsteele09/go-bookshelf-client/token/filerepo"
	"github.com/jrsteele09/go-bookshelf-client/token/redisrepo"
	tokenfakerepo "github.com/jrsteele09/go-bookshelf-client/token/repofake"
	"github.com/pkg/errors"
)

// openTokenStore builds the configured token store. The closer is nil unless
// the store holds a connection.
func openTokenStore(ctx context.Context, kind config.TokenStoreKind, cfg config.StorageConfig) (*token.Store, io.Closer, error) {
	switch kind {
	case config.TokenStoreMemory:
		return token.NewStore(tokenfakerepo.NewFakeTokensRepo()), nil, nil
	case config.TokenStoreFile:
		return token.NewStore(filerepo.New(cfg.GetTokenFile())), nil, nil
	case config.TokenStoreRedis:
		repo, err := redisrepo.Dial(ctx, cfg.GetRedisURL(), cfg.GetRedisKeyPrefix(), cfg.GetRedisTokenTTL())
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to connect to redis token store")
		}
		return token.NewStore(repo), repo, nil
	default:
		return nil, nil, errors.Errorf("unknown token store %q", kind)
	}
}
