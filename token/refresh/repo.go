package refresh

import (
	"time"
)

// StoredRefreshToken is the mock API's server side record of an issued refresh token.
// The client only ever sees Token.
type StoredRefreshToken struct {
	Token  string
	UserID string
	Iat    time.Time
}

// Repo keeps refresh token records keyed by the token string.
type Repo interface {
	Upsert(refreshToken *StoredRefreshToken) error
	Delete(token string) error
	Get(token string) (*StoredRefreshToken, error)
	DeleteByUserID(userID string) error
}
