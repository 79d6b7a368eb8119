package apiclient

import (
	"context"
	"net/http"
	"time"
)

// Get performs a GET and decodes the body into T.
func Get[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (*Response[T], error) {
	return send[T](ctx, c, NewRequest(http.MethodGet, path, opts...))
}

func Delete[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (*Response[T], error) {
	return send[T](ctx, c, NewRequest(http.MethodDelete, path, opts...))
}

func Post[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (*Response[T], error) {
	return sendBody[T](ctx, c, http.MethodPost, path, body, opts)
}

func Put[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (*Response[T], error) {
	return sendBody[T](ctx, c, http.MethodPut, path, body, opts)
}

func Patch[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (*Response[T], error) {
	return sendBody[T](ctx, c, http.MethodPatch, path, body, opts)
}

// Send runs r through the pipeline and decodes the body into T.
func Send[T any](ctx context.Context, c *Client, r *Request) (*Response[T], error) {
	return send[T](ctx, c, r)
}

func sendBody[T any](ctx context.Context, c *Client, method, path string, body any, opts []RequestOption) (*Response[T], error) {
	r := NewRequest(method, path, opts...)
	if err := r.setJSONBody(body); err != nil {
		return nil, err
	}
	return send[T](ctx, c, r)
}

func send[T any](ctx context.Context, c *Client, r *Request) (*Response[T], error) {
	raw, err := withRetry(ctx, r.retries(c.cfg), c.cfg.RetryDelay, c.logRetry(r), func() (*rawResponse, error) {
		return c.attempt(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	return decodeResponse[T](raw)
}

// attempt is one pass of build, execute, normalize and classify. After a
// successful refresh it replays the call once when configured to.
func (c *Client) attempt(ctx context.Context, r *Request) (*rawResponse, error) {
	raw, err := c.normalized(ctx, r)
	if err == nil {
		return raw, nil
	}
	outcome, err := c.classify(ctx, err, r, true)
	if outcome != OutcomeRetryAfterRefresh || !c.cfg.ReplayAfterRefresh {
		return nil, err
	}

	raw, err = c.normalized(ctx, r)
	if err == nil {
		return raw, nil
	}
	_, err = c.classify(ctx, err, r, false)
	return nil, err
}

func (c *Client) normalized(ctx context.Context, r *Request) (*rawResponse, error) {
	raw, err := c.execute(ctx, r)
	if err != nil {
		return nil, err
	}
	if err := raw.statusError(); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) logRetry(r *Request) func(int, time.Duration, error) {
	return func(attempt int, delay time.Duration, err error) {
		c.logger.Info().
			Str("method", r.Method).
			Str("path", r.Path).
			Int("retry", attempt).
			Dur("delay", delay).
			Err(err).
			Msg("retrying request")
	}
}
