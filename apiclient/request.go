package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Request describes one logical call. Retries and the post refresh replay
// rebuild the *http.Request from it, so the body is kept as bytes.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Query  url.Values
	Body   []byte

	// Timeout overrides Config.Timeout for every attempt of this call.
	Timeout time.Duration
	// Retries overrides Config.RetryAttempts when set.
	Retries *int
	// SkipAuth sends the call without an Authorization header.
	SkipAuth bool
	// BaseURL overrides the client's base URL.
	BaseURL string

	contentType string
}

type RequestOption func(*Request)

func WithTimeout(d time.Duration) RequestOption {
	return func(r *Request) { r.Timeout = d }
}

func WithRetries(n int) RequestOption {
	return func(r *Request) {
		if n < 0 {
			n = 0
		}
		r.Retries = &n
	}
}

func WithSkipAuth() RequestOption {
	return func(r *Request) { r.SkipAuth = true }
}

func WithBaseURL(base string) RequestOption {
	return func(r *Request) { r.BaseURL = base }
}

// WithHeader sets a header. Caller headers win over the client defaults.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) { r.Header.Set(key, value) }
}

func WithHeaders(h map[string]string) RequestOption {
	return func(r *Request) {
		for k, v := range h {
			r.Header.Set(k, v)
		}
	}
}

func WithQueryParam(key, value string) RequestOption {
	return func(r *Request) { r.Query.Add(key, value) }
}

// NewRequest creates a Request with the given options applied.
func NewRequest(method, path string, opts ...RequestOption) *Request {
	r := &Request{
		Method: method,
		Path:   path,
		Header: make(http.Header),
		Query:  make(url.Values),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (c *Client) newRequest(method, path string, opts []RequestOption) *Request {
	return NewRequest(method, path, opts...)
}

func (r *Request) setJSONBody(body any) error {
	if body == nil {
		return nil
	}
	if raw, ok := body.([]byte); ok {
		r.Body = raw
		return nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return &APIError{Message: err.Error(), Category: CategoryRequest, Method: r.Method, URL: r.Path, Cause: err}
	}
	r.Body = raw
	return nil
}

// SetJSONBody serializes body as the JSON payload of r.
func (r *Request) SetJSONBody(body any) error {
	return r.setJSONBody(body)
}

func (r *Request) retries(cfg Config) int {
	if r.Retries != nil {
		return *r.Retries
	}
	return cfg.RetryAttempts
}

func (r *Request) timeout(cfg Config) time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return cfg.Timeout
}

// build creates the *http.Request for one attempt. The bearer token is read
// from the store on every attempt so a refreshed token is picked up.
func (c *Client) build(ctx context.Context, r *Request) (*http.Request, string, error) {
	target, err := c.resolveURL(r)
	if err != nil {
		return nil, "", err
	}
	if len(r.Query) > 0 {
		u, err := url.Parse(target)
		if err != nil {
			return nil, "", err
		}
		q := u.Query()
		for k, vs := range r.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
		target = u.String()
	}

	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, "", err
	}

	contentType := r.contentType
	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	requestID := ""
	if c.cfg.RequestIDHeader != "" {
		requestID = uuid.NewString()
		req.Header.Set(c.cfg.RequestIDHeader, requestID)
	}
	for k, vs := range r.Header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.cfg.RequestIDHeader != "" {
		requestID = req.Header.Get(c.cfg.RequestIDHeader)
	}

	if !r.SkipAuth && c.store.HasValidToken(ctx) {
		if tok, err := c.store.Token(ctx); err == nil {
			tok.SetAuthHeader(req)
		}
	}
	return req, requestID, nil
}
