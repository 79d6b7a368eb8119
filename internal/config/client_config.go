package config

import "time"

const (
	apiURLVar     = "BOOKSHELF_API_URL"
	timeoutVar    = "BOOKSHELF_TIMEOUT"
	retriesVar    = "BOOKSHELF_RETRIES"
	retryDelayVar = "BOOKSHELF_RETRY_DELAY"
	rateLimitVar  = "BOOKSHELF_RATE_LIMIT"
	rateBurstVar  = "BOOKSHELF_RATE_BURST"
	refreshVar    = "BOOKSHELF_REFRESH_PATH"
)

type ClientConfig interface {
	GetBaseURL() string
	GetTimeout() time.Duration
	GetRetryAttempts() int
	GetRetryDelay() time.Duration
	GetRefreshPath() string
	GetRateLimit() float64
	GetRateBurst() int
}

type Client struct{}

var _ ClientConfig = Client{}

func (Client) GetBaseURL() string {
	return GetEnv(apiURLVar, "http://localhost:3000/api")
}

func (Client) GetTimeout() time.Duration {
	return GetEnvDuration(timeoutVar, 10*time.Second)
}

func (Client) GetRetryAttempts() int {
	return GetEnvInt(retriesVar, 3)
}

func (Client) GetRetryDelay() time.Duration {
	return GetEnvDuration(retryDelayVar, 1*time.Second)
}

func (Client) GetRefreshPath() string {
	return GetEnv(refreshVar, "/auth/refresh")
}

// GetRateLimit is requests per second; zero disables client side limiting.
func (Client) GetRateLimit() float64 {
	return GetEnvFloat(rateLimitVar, 0)
}

func (Client) GetRateBurst() int {
	return GetEnvInt(rateBurstVar, 1)
}
