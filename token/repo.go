package token

import "context"

// Storage keys for the token pair.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// Repo is the durable key-value storage a Store persists tokens through.
// Get returns errors.ErrNotFound (internal/errors) for a missing key.
// Delete of a missing key is not an error.
type Repo interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
