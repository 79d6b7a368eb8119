package apiclient

import (
	"context"
	"errors"
	"io"
	"net"
	"time"
)

// execute performs one attempt under its own timeout budget. The attempt
// context is cancelled on every exit path so an abandoned transport call is
// released. Transport failures come back as *APIError.
func (c *Client) execute(ctx context.Context, r *Request) (*rawResponse, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.timeout(c.cfg))
	defer cancel()

	req, requestID, err := c.build(attemptCtx, r)
	if err != nil {
		return nil, &APIError{
			Message:  err.Error(),
			Category: CategoryRequest,
			Method:   r.Method,
			URL:      r.Path,
			Cause:    err,
		}
	}
	failed := func(err error) *APIError {
		ae := transportError(ctx, attemptCtx, err)
		ae.Method = req.Method
		ae.URL = req.URL.String()
		ae.RequestID = requestID
		return ae
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(attemptCtx); err != nil {
			if ctx.Err() == nil && attemptCtx.Err() == nil {
				// The limiter refuses waits that cannot finish inside the budget.
				err = context.DeadlineExceeded
			}
			return nil, failed(err)
		}
	}

	start := time.Now()
	c.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("request_id", requestID).
		Msg("api request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, failed(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failed(err)
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api response")

	return &rawResponse{
		status:    resp.StatusCode,
		header:    resp.Header,
		body:      body,
		method:    req.Method,
		url:       req.URL.String(),
		requestID: requestID,
	}, nil
}

// transportError maps a failure without a usable response. The caller's own
// cancellation is kept apart from the attempt's deadline firing.
func transportError(parent, attemptCtx context.Context, err error) *APIError {
	if parentErr := parent.Err(); parentErr != nil {
		return &APIError{
			Message:  parentErr.Error(),
			Category: CategoryCanceled,
			Cause:    parentErr,
		}
	}
	if isTimeout(attemptCtx, err) {
		return &APIError{
			Message:  MsgTimeout,
			Status:   408,
			Category: CategoryTimeout,
			Details:  map[string]any{"originalError": err.Error()},
			Cause:    err,
		}
	}
	return &APIError{
		Message:  MsgNetworkFailure,
		Category: CategoryNetwork,
		Details:  map[string]any{"originalError": err.Error()},
		Cause:    err,
	}
}

func isTimeout(attemptCtx context.Context, err error) bool {
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
