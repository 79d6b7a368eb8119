package apiclient

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
)

// Outcome is what the pipeline should do after a failed attempt.
type Outcome int

const (
	OutcomeFail Outcome = iota
	OutcomeRetryAfterRefresh
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRetryAfterRefresh:
		return "retry_after_refresh"
	default:
		return "fail"
	}
}

// classify logs a failure and runs 401 recovery. It never swallows err: the
// result is either err itself or, after a successful refresh, a 401 signal
// with TokenRefreshed set.
func (c *Client) classify(ctx context.Context, err error, r *Request, allowRefresh bool) (Outcome, error) {
	ae, ok := AsAPIError(err)
	if !ok {
		return OutcomeFail, err
	}
	c.logFailure(ae)

	// Unauthenticated calls (login, refresh, password reset) own their 401s.
	if ae.Status != http.StatusUnauthorized || r.SkipAuth {
		return OutcomeFail, err
	}

	if allowRefresh {
		switch c.tryRefresh(ctx) {
		case refreshStored:
			signal := *ae
			signal.Message = MsgTokenRefreshed
			signal.TokenRefreshed = true
			return OutcomeRetryAfterRefresh, &signal
		case refreshAbandoned:
			return OutcomeFail, canceledError(ctx, ae)
		}
	}

	c.loseSession(ctx)
	return OutcomeFail, err
}

// canceledError reports the caller giving up while recovering from ae.
func canceledError(ctx context.Context, ae *APIError) *APIError {
	cause := ctx.Err()
	if cause == nil {
		cause = context.Canceled
	}
	return &APIError{
		Message:   cause.Error(),
		Category:  CategoryCanceled,
		Method:    ae.Method,
		URL:       ae.URL,
		RequestID: ae.RequestID,
		Cause:     cause,
	}
}

// loseSession clears the stored tokens and synchronously notifies every
// auth error subscriber.
func (c *Client) loseSession(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Err(err).Msg("failed to clear tokens after authentication loss")
	}
	c.subscribers.notify(c.logger)
}

func (c *Client) logFailure(ae *APIError) {
	var ev *zerolog.Event
	switch ae.Category {
	case CategoryServer, CategoryNetwork, CategoryDecode, CategoryRequest:
		ev = c.logger.Error()
	case CategoryCanceled, CategoryNotFound:
		ev = c.logger.Debug()
	default:
		ev = c.logger.Warn()
	}
	ev.Str("category", string(ae.Category)).
		Int("status", ae.Status).
		Str("method", ae.Method).
		Str("url", ae.URL).
		Str("request_id", ae.RequestID).
		Msg(ae.Message)
}
