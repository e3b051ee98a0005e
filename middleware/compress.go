// ABOUTME: Response compression via klauspost gzhttp
// ABOUTME: Small bodies and already-compressed content types are left alone

package middleware

import (
	"fmt"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// compressMinSize skips compression for responses smaller than this.
const compressMinSize = 1024

// Compress returns gzip middleware.
func Compress() (Middleware, error) {
	wrap, err := gzhttp.NewWrapper(gzhttp.MinSize(compressMinSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip wrapper: %w", err)
	}
	return func(next http.HandlerFunc) http.HandlerFunc {
		return wrap(next)
	}, nil
}
