package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"

	apperrors "github.com/jrsteele09/go-bookshelf-client/internal/errors"
	"github.com/jrsteele09/go-bookshelf-client/token"
	tokenfakerepo "github.com/jrsteele09/go-bookshelf-client/token/repofake"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Client executes requests against the bookshelf backend. A Client is safe
// for concurrent use; all calls share one token store and subscriber registry.
type Client struct {
	httpClient *http.Client
	cfg        Config

	mu      sync.RWMutex
	baseURL string

	store        *token.Store
	logger       zerolog.Logger
	limiter      *rate.Limiter
	subscribers  *subscribers
	refreshGroup singleflight.Group
}

// New creates a Client. The base URL must be absolute.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := validateBaseURL(cfg.BaseURL); err != nil {
		return nil, err
	}
	defaults := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.RetryAttempts < 0 {
		cfg.RetryAttempts = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaults.RetryDelay
	}
	if cfg.RefreshPath == "" {
		cfg.RefreshPath = defaults.RefreshPath
	}

	c := &Client{
		httpClient:  &http.Client{Transport: DefaultTransport()},
		cfg:         cfg,
		baseURL:     cfg.BaseURL,
		logger:      log.Logger,
		subscribers: newSubscribers(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = token.NewStore(tokenfakerepo.NewFakeTokensRepo())
	}
	return c, nil
}

// DefaultTransport returns a clone of http.DefaultTransport.
func DefaultTransport() *http.Transport {
	return http.DefaultTransport.(*http.Transport).Clone()
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "invalid base url %q: %v", raw, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "base url %q must be absolute", raw)
	}
	return nil
}

func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL changes the base URL used by subsequent calls.
func (c *Client) SetBaseURL(raw string) error {
	if err := validateBaseURL(raw); err != nil {
		return err
	}
	c.mu.Lock()
	c.baseURL = raw
	c.mu.Unlock()
	return nil
}

// Tokens exposes the token store shared by the client.
func (c *Client) Tokens() *token.Store {
	return c.store
}

func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Response[any], error) {
	return c.Do(ctx, c.newRequest(http.MethodGet, path, opts))
}

func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response[any], error) {
	return c.Do(ctx, c.newRequest(http.MethodDelete, path, opts))
}

// Post sends body serialized as JSON. A nil body sends no payload.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Response[any], error) {
	return c.withBody(ctx, http.MethodPost, path, body, opts)
}

func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Response[any], error) {
	return c.withBody(ctx, http.MethodPut, path, body, opts)
}

func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) (*Response[any], error) {
	return c.withBody(ctx, http.MethodPatch, path, body, opts)
}

func (c *Client) withBody(ctx context.Context, method, path string, body any, opts []RequestOption) (*Response[any], error) {
	r := c.newRequest(method, path, opts)
	if err := r.setJSONBody(body); err != nil {
		return nil, err
	}
	return c.Do(ctx, r)
}

// Do runs r through the full pipeline and decodes a successful body as JSON.
func (c *Client) Do(ctx context.Context, r *Request) (*Response[any], error) {
	return send[any](ctx, c, r)
}

// FormFile is the file part of a multipart upload.
type FormFile struct {
	// Field is the form field name, "file" when empty.
	Field   string
	Name    string
	Content io.Reader

	// Fields are extra form values sent alongside the file.
	Fields map[string]string
}

// Upload POSTs f as multipart/form-data. The form is buffered so retries can
// resend it.
func (c *Client) Upload(ctx context.Context, path string, f FormFile, opts ...RequestOption) (*Response[any], error) {
	body, contentType, err := encodeMultipart(f)
	if err != nil {
		return nil, &APIError{Message: err.Error(), Category: CategoryRequest, Method: http.MethodPost, URL: path, Cause: err}
	}
	r := c.newRequest(http.MethodPost, path, opts)
	r.Body = body
	r.contentType = contentType
	return c.Do(ctx, r)
}

func encodeMultipart(f FormFile) ([]byte, string, error) {
	if f.Content == nil {
		return nil, "", fmt.Errorf("upload %q has no content", f.Name)
	}
	field := f.Field
	if field == "" {
		field = "file"
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range f.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	part, err := w.CreateFormFile(field, f.Name)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f.Content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// Download GETs path and returns the raw body bytes.
func (c *Client) Download(ctx context.Context, path string, opts ...RequestOption) (*Response[[]byte], error) {
	return send[[]byte](ctx, c, c.newRequest(http.MethodGet, path, opts))
}

// IsAuthenticated reports whether a non-expired access token is stored.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	return c.store.HasValidToken(ctx)
}

// HasSession reports whether a call needing auth can succeed without a new
// login: the access token is valid or a refresh token is stored.
func (c *Client) HasSession(ctx context.Context) bool {
	if c.store.HasValidToken(ctx) {
		return true
	}
	rt, err := c.store.RefreshToken(ctx)
	return err == nil && rt != ""
}

// SetAuthToken stores an access token, leaving the refresh token untouched.
func (c *Client) SetAuthToken(ctx context.Context, accessToken string) error {
	return c.store.SetAccessToken(ctx, accessToken)
}

func (c *Client) SetTokens(ctx context.Context, accessToken, refreshToken string) error {
	return c.store.SetTokens(ctx, accessToken, refreshToken)
}

// ClearAuth removes both tokens. It does not notify auth error subscribers.
func (c *Client) ClearAuth(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// OnAuthError registers fn to run whenever the session is lost. The returned
// handle removes it again through OffAuthError.
func (c *Client) OnAuthError(fn func()) Subscription {
	return c.subscribers.add(fn)
}

// OffAuthError removes a subscription. It reports whether it was registered.
func (c *Client) OffAuthError(s Subscription) bool {
	return c.subscribers.remove(s)
}

func (c *Client) resolveURL(r *Request) (string, error) {
	if r.Path == "" {
		return "", apperrors.ErrEmptyPath
	}
	if u, err := url.Parse(r.Path); err == nil && u.IsAbs() && u.Host != "" {
		return r.Path, nil
	}
	base := r.BaseURL
	if base == "" {
		base = c.BaseURL()
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(r.Path, "/"), nil
}
