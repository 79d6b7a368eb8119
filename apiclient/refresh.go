package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// refreshResult is how a refresh cycle ended for the caller waiting on it.
type refreshResult int

const (
	refreshFailed refreshResult = iota
	refreshStored
	// refreshAbandoned means the caller's context ended first. Nothing is
	// known about the session, so it must not be treated as lost.
	refreshAbandoned
)

// tryRefresh runs one refresh cycle. With CoalesceRefresh concurrent callers
// share the in-flight cycle, which keeps running after any one of them leaves.
func (c *Client) tryRefresh(ctx context.Context) refreshResult {
	if !c.cfg.CoalesceRefresh {
		return c.refreshOnce(ctx)
	}
	ch := c.refreshGroup.DoChan("refresh", func() (any, error) {
		return c.refreshOnce(context.WithoutCancel(ctx)), nil
	})
	select {
	case res := <-ch:
		result, _ := res.Val.(refreshResult)
		return result
	case <-ctx.Done():
		return refreshAbandoned
	}
}

// refreshOnce POSTs the stored refresh token without an Authorization header.
// It is a single attempt: no retries and no 401 recovery of its own.
func (c *Client) refreshOnce(ctx context.Context) refreshResult {
	refreshToken, err := c.store.RefreshToken(ctx)
	if err != nil || refreshToken == "" {
		if ctx.Err() != nil {
			return refreshAbandoned
		}
		c.logger.Debug().Msg("no refresh token stored")
		return refreshFailed
	}

	r := NewRequest(http.MethodPost, c.cfg.RefreshPath, WithSkipAuth())
	if err := r.setJSONBody(refreshRequest{RefreshToken: refreshToken}); err != nil {
		return refreshFailed
	}
	raw, err := c.execute(ctx, r)
	if err == nil {
		err = raw.statusError()
	}
	if err != nil {
		if ae, ok := AsAPIError(err); ok && ae.Category == CategoryCanceled {
			return refreshAbandoned
		}
		c.logger.Warn().Err(err).Msg("token refresh failed")
		return refreshFailed
	}

	var out refreshResponse
	if err := json.Unmarshal(raw.body, &out); err != nil || out.AccessToken == "" {
		c.logger.Warn().Msg("token refresh returned no access token")
		return refreshFailed
	}
	if err := c.store.SetTokens(ctx, out.AccessToken, out.RefreshToken); err != nil {
		c.logger.Err(err).Msg("failed to store refreshed tokens")
		return refreshFailed
	}
	c.logger.Debug().Msg("access token refreshed")
	return refreshStored
}
