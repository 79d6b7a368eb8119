package apiclient

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-bookshelf-client/internal/config"
	"github.com/jrsteele09/go-bookshelf-client/token"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL     = "http://localhost:3000/api"
	DefaultTimeout     = 10 * time.Second
	DefaultRetries     = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultRefreshPath = "/auth/refresh"
	DefaultUserAgent   = "bookshelf-client"
	RequestIDHeader    = "X-Request-ID"
)

// Config configures a Client. Use DefaultConfig() as a baseline.
type Config struct {
	// BaseURL prefixes every relative path. Per call overrides use WithBaseURL.
	BaseURL string

	// Timeout bounds a single attempt, including reading the response body.
	Timeout time.Duration

	// RetryAttempts is the number of retries after the first attempt.
	RetryAttempts int

	// RetryDelay is the first backoff delay; it doubles on each retry.
	RetryDelay time.Duration

	// RefreshPath is POSTed with the stored refresh token after a 401.
	RefreshPath string

	UserAgent string

	// RequestIDHeader carries a generated uuid on every request. Empty disables it.
	RequestIDHeader string

	// CoalesceRefresh makes concurrent 401 recoveries share one refresh call.
	CoalesceRefresh bool

	// ReplayAfterRefresh replays the original call once after a successful
	// refresh. When false the call fails with a 401 *APIError whose
	// TokenRefreshed field is set, and the caller decides.
	ReplayAfterRefresh bool
}

// DefaultConfig returns the configuration the web and mobile apps ship with.
func DefaultConfig() Config {
	return Config{
		BaseURL:            DefaultBaseURL,
		Timeout:            DefaultTimeout,
		RetryAttempts:      DefaultRetries,
		RetryDelay:         DefaultRetryDelay,
		RefreshPath:        DefaultRefreshPath,
		UserAgent:          DefaultUserAgent,
		RequestIDHeader:    RequestIDHeader,
		CoalesceRefresh:    true,
		ReplayAfterRefresh: true,
	}
}

// ConfigFrom maps the environment backed client configuration onto a Config.
func ConfigFrom(cc config.ClientConfig) Config {
	cfg := DefaultConfig()
	cfg.BaseURL = cc.GetBaseURL()
	cfg.Timeout = cc.GetTimeout()
	cfg.RetryAttempts = cc.GetRetryAttempts()
	cfg.RetryDelay = cc.GetRetryDelay()
	cfg.RefreshPath = cc.GetRefreshPath()
	return cfg
}

type Option func(*Client)

// WithTokenStore sets the token store. Without it the client keeps tokens in memory.
func WithTokenStore(store *token.Store) Option {
	return func(c *Client) { c.store = store }
}

// WithTransport replaces the RoundTripper used for every attempt.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient.Transport = rt }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithRateLimit throttles outgoing attempts to r per second with the given burst.
func WithRateLimit(r float64, burst int) Option {
	return func(c *Client) {
		if r <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}
