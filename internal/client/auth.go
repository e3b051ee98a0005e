// ABOUTME: Login and logout endpoints
// ABOUTME: Successful login stores the token and user in the session

package client

import (
	"context"
	"log/slog"
	"net/http"
)

// AuthAPI wraps /auth endpoints.
type AuthAPI struct {
	c *Client
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates with email and password. The backend also sets the
// refresh cookie, which lands in the client's jar.
func (a *AuthAPI) Login(ctx context.Context, email, password string) Result {
	res := a.c.Call(ctx, "/auth/login", Options{
		Method: http.MethodPost,
		Body:   JSON(loginRequest{Email: email, Password: password}),
		Public: true,
	})
	if !res.Success {
		return res
	}

	var login LoginResponse
	if err := res.Decode(&login); err != nil {
		slog.Debug("Login response not decodable", "error", err)
		return res
	}
	if login.AccessToken != "" {
		a.c.session.Set(login.AccessToken, login.User)
	}
	return res
}

// Logout revokes the refresh cookie server-side and clears local state
// once the backend confirms.
func (a *AuthAPI) Logout(ctx context.Context) Result {
	res := a.c.Call(ctx, "/auth/logout", Options{Method: http.MethodPost})
	if res.Success {
		a.c.session.Clear()
	}
	return res
}
