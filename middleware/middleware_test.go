package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/eventdesk/httputil"
)

func TestRequireJSON(t *testing.T) {
	h := RequireJSON(ok)

	tests := []struct {
		name string
		ct   string
		body string
		want int
	}{
		{"json", "application/json", `{}`, http.StatusOK},
		{"json with charset", "application/json; charset=utf-8", `{}`, http.StatusOK},
		{"problem json", "application/problem+json", `{}`, http.StatusOK},
		{"form", "application/x-www-form-urlencoded", "a=b", http.StatusUnsupportedMediaType},
		{"no body", "", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.ct != "" {
				req.Header.Set("Content-Type", tt.ct)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestLimitBodySize(t *testing.T) {
	var readErr error
	h := LimitBodySize(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("too long")))
	if readErr == nil {
		t.Error("expected read error for oversized body")
	}
}

func TestNotFoundHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFoundHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	var body httputil.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "not_found" {
		t.Errorf("error = %q", body.Error)
	}
}
