// middleware/sizelimit.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/dalemusser/eventdesk/httputil"
)

// LimitBodySize caps request bodies at maxBytes. maxBytes <= 0 disables it.
func LimitBodySize(maxBytes int64) func(next http.Handler) http.Handler {
	if maxBytes <= 0 {
		return passthrough
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// RequireJSON rejects requests that carry a body without a JSON
// Content-Type ("application/json" or any "+json" type) with 415.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}
		ct := r.Header.Get("Content-Type")
		if i := strings.IndexByte(ct, ';'); i >= 0 {
			ct = ct[:i]
		}
		ct = strings.ToLower(strings.TrimSpace(ct))
		if ct != "application/json" && !strings.HasSuffix(ct, "+json") {
			httputil.JSONError(w, http.StatusUnsupportedMediaType,
				"unsupported_media_type", "Content-Type must be application/json")
			return
		}
		next.ServeHTTP(w, r)
	})
}
