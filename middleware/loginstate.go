// ABOUTME: Login-state detection from backend cookies
// ABOUTME: Lets page routes redirect signed-in users away from login and signup

package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/cozyrim/3-bella-han-comunity-frontend/internal/token"
)

type loggedInKey struct{}

// LoginState marks the request as logged in when it carries a JSESSIONID
// cookie or an accessToken cookie. A JWT access token that has already
// expired does not count; opaque tokens are trusted as present.
// The backend remains the only authority; this only steers page routing.
func LoginState(now func() time.Time) Middleware {
	if now == nil {
		now = time.Now
	}
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			loggedIn := hasCookie(r, SessionCookieName)
			if !loggedIn {
				if c, err := r.Cookie(AccessTokenCookieName); err == nil && c.Value != "" {
					info, err := token.Inspect(c.Value)
					loggedIn = err != nil || !info.Expired(now())
				}
			}
			next(w, r.WithContext(context.WithValue(r.Context(), loggedInKey{}, loggedIn)))
		}
	}
}

// IsLoggedIn reports the state recorded by LoginState.
func IsLoggedIn(r *http.Request) bool {
	v, _ := r.Context().Value(loggedInKey{}).(bool)
	return v
}

func hasCookie(r *http.Request, name string) bool {
	c, err := r.Cookie(name)
	return err == nil && c.Value != ""
}
