package apiclient

import (
	"context"
	"net/http"
	"time"
)

// IsRetryable reports whether err is worth another attempt: network
// failures, timeouts, 429 and 5xx. Auth failures and other 4xx are final.
func IsRetryable(err error) bool {
	ae, ok := AsAPIError(err)
	if !ok {
		return false
	}
	switch ae.Category {
	case CategoryCanceled, CategoryRequest, CategoryDecode:
		return false
	}
	s := ae.Status
	if s == http.StatusUnauthorized || s == http.StatusForbidden {
		return false
	}
	if s >= 400 && s < 500 && s != http.StatusRequestTimeout && s != http.StatusTooManyRequests {
		return false
	}
	return true
}

// Backoff returns the delay before retry number attempt (1 based):
// base, 2*base, 4*base and so on.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		if d > time.Duration(1<<62)/2 {
			return d
		}
		d *= 2
	}
	return d
}

// withRetry runs fn once plus up to retries more times while the failure is
// retryable. It always returns the last failure.
func withRetry[T any](ctx context.Context, retries int, base time.Duration, logger func(attempt int, delay time.Duration, err error), fn func() (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		v, err := fn()
		if err == nil {
			return v, nil
		}
		if attempt >= retries || !IsRetryable(err) {
			return zero, err
		}
		delay := Backoff(base, attempt+1)
		if logger != nil {
			logger(attempt+1, delay, err)
		}
		if !sleep(ctx, delay) {
			return zero, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
