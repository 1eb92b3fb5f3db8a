package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/eventdesk/config"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestSecurityHeaders_Defaults(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(DefaultSecurityHeadersOptions())(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	tests := []struct {
		header string
		want   string
	}{
		{"X-Frame-Options", "SAMEORIGIN"},
		{"X-Content-Type-Options", "nosniff"},
		{"Referrer-Policy", "strict-origin-when-cross-origin"},
		{"Content-Security-Policy", DefaultCSP},
		{"Strict-Transport-Security", ""},
	}
	for _, tt := range tests {
		if got := rec.Header().Get(tt.header); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestSecurityHeaders_HSTSOnlyOverTLS(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://events.example.edu/", nil)
	req.TLS = &tls.ConnectionState{}
	rec := httptest.NewRecorder()
	SecurityHeaders(DefaultSecurityHeadersOptions())(ok).ServeHTTP(rec, req)

	want := "max-age=31536000; includeSubDomains"
	if got := rec.Header().Get("Strict-Transport-Security"); got != want {
		t.Errorf("HSTS = %q, want %q", got, want)
	}
}

func TestSecurityHeadersFromConfig(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		cfg := &config.CoreConfig{}
		rec := httptest.NewRecorder()
		SecurityHeadersFromConfig(cfg)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if got := rec.Header().Get("X-Frame-Options"); got != "" {
			t.Errorf("X-Frame-Options = %q, want none", got)
		}
	})

	t.Run("custom csp", func(t *testing.T) {
		cfg := &config.CoreConfig{}
		cfg.Security.EnableSecurityHeaders = true
		cfg.Security.ContentSecurityPolicy = "default-src 'none'"
		rec := httptest.NewRecorder()
		SecurityHeadersFromConfig(cfg)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if got := rec.Header().Get("Content-Security-Policy"); got != "default-src 'none'" {
			t.Errorf("CSP = %q", got)
		}
	})

	t.Run("nil config", func(t *testing.T) {
		rec := httptest.NewRecorder()
		SecurityHeadersFromConfig(nil)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
	})
}
