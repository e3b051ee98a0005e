// ABOUTME: Read-only inspection of bearer tokens issued by the backend
// ABOUTME: Decodes JWT claims without verifying the signature (display and hints only)

package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned when the token is opaque rather than a JWT.
var ErrNotJWT = errors.New("token is not a JWT")

// Info describes what the client can learn from a token without the
// signing key. It must never be used for authorization decisions.
type Info struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HasExpiry reports whether the token carried an exp claim.
func (i Info) HasExpiry() bool {
	return !i.ExpiresAt.IsZero()
}

// Expired reports whether exp lies before now. Tokens without exp never expire.
func (i Info) Expired(now time.Time) bool {
	return i.HasExpiry() && now.After(i.ExpiresAt)
}

// Inspect decodes the registered claims of a JWT.
func Inspect(raw string) (Info, error) {
	if raw == "" {
		return Info{}, ErrNotJWT
	}

	claims := jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(raw, &claims)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}

	info := Info{Subject: claims.Subject}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
