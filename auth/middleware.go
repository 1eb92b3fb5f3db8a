// auth/middleware.go
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/eventdesk/httputil"
)

type ctxKey struct{}

// WithClaims returns ctx carrying c.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the caller's claims, if the request was signed in.
func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok && c != nil
}

// tokenFrom reads a bearer token, falling back to the session cookie.
func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
		return ""
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Middleware attaches claims for requests that carry a valid token. It
// never rejects; RequireRole and RequireAdmin do that. A token that is
// present but invalid is treated as absent.
func (i *Issuer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := tokenFrom(r); tok != "" {
			if c, err := i.Parse(tok); err == nil {
				r = r.WithContext(WithClaims(r.Context(), c))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole answers 401 without claims and 403 when the caller's role
// is not one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return requireClaims(func(c *Claims) bool {
		for _, r := range roles {
			if c.Role == r {
				return true
			}
		}
		return false
	})
}

// RequireAdmin admits only faculty flagged as administrators.
func RequireAdmin(next http.Handler) http.Handler {
	return requireClaims(func(c *Claims) bool { return c.Role == RoleFaculty && c.Admin })(next)
}

// RequireSignedIn admits any valid token.
func RequireSignedIn(next http.Handler) http.Handler {
	return requireClaims(func(*Claims) bool { return true })(next)
}

func requireClaims(allow func(*Claims) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := FromContext(r.Context())
			if !ok {
				httputil.JSONError(w, http.StatusUnauthorized, "unauthorized", "Sign in to continue")
				return
			}
			if !allow(c) {
				httputil.JSONError(w, http.StatusForbidden, "forbidden", "You do not have access to this resource")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
