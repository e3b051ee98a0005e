// ABOUTME: Silent access-token refresh via the HTTP-only refresh cookie
// ABOUTME: Concurrent 401s share one in-flight refresh through singleflight

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

const refreshEndpoint = "/auth/refresh"

var bearerPrefix = regexp.MustCompile(`(?i)^Bearer\s+`)

// Refresh asks the backend for a new access token using the refresh
// cookie. On success the token is stored in the session and returned in
// Data as {"accessToken": ...}. When no token comes back the session is
// cleared and a 401 result is returned.
func (c *Client) Refresh(ctx context.Context) Result {
	token, err := c.refreshToken(ctx)
	if err != nil {
		return c.transportResult(ctx, refreshEndpoint, err)
	}
	if token == "" {
		c.session.Clear()
		return classify(http.StatusUnauthorized, nil)
	}
	data, _ := json.Marshal(map[string]string{"accessToken": token})
	return Result{Success: true, Status: http.StatusOK, Data: data}
}

// refreshToken returns the new token, "" when the backend issued none,
// or an error when the refresh request itself could not be completed.
// Callers arriving while a refresh is in flight wait for its outcome but
// still honour their own context.
func (c *Client) refreshToken(ctx context.Context) (string, error) {
	ch := c.refreshGroup.DoChan("refresh", func() (interface{}, error) {
		// Detached so one caller's cancellation does not fail every waiter
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
		defer cancel()
		return c.doRefresh(rctx)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// doRefresh calls POST /auth/refresh with cookies only: no body and no
// bearer header.
func (c *Client) doRefresh(ctx context.Context) (string, error) {
	req := encodedRequest{
		method:    http.MethodPost,
		target:    c.baseURL + refreshEndpoint,
		requestID: uuid.NewString(),
	}

	ex, err := c.send(ctx, req, "")
	if err != nil {
		return "", err
	}
	if ex.status < 200 || ex.status >= 300 {
		return "", nil
	}

	token := extractAccessToken(ex)
	if token != "" {
		c.session.SetToken(token)
	}
	return token, nil
}

// extractAccessToken prefers data.accessToken from the body and falls
// back to an Authorization response header.
func extractAccessToken(ex *exchange) string {
	if len(ex.body) > 0 {
		var body struct {
			Data struct {
				AccessToken string `json:"accessToken"`
			} `json:"data"`
		}
		if err := json.Unmarshal(ex.body, &body); err == nil && body.Data.AccessToken != "" {
			return body.Data.AccessToken
		}
	}
	if h := ex.header.Get("Authorization"); h != "" {
		return bearerPrefix.ReplaceAllString(h, "")
	}
	return ""
}
