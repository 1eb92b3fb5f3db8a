package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func get(t *testing.T, h http.Handler) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, resp
}

func TestHandler_Liveness(t *testing.T) {
	code, resp := get(t, Handler(nil, 0, nil))
	if code != http.StatusOK || resp.Status != "ok" || resp.Checks != nil {
		t.Fatalf("got %d %+v", code, resp)
	}
}

func TestHandler_Checks(t *testing.T) {
	checks := map[string]Check{
		"db":   func(context.Context) error { return nil },
		"mail": nil,
	}
	code, resp := get(t, Handler(checks, 0, nil))
	if code != http.StatusOK {
		t.Fatalf("code = %d", code)
	}
	if resp.Checks["db"] != "ok" || resp.Checks["mail"] != "ok" {
		t.Fatalf("checks = %v", resp.Checks)
	}

	checks["db"] = func(context.Context) error { return errors.New("connection refused") }
	code, resp = get(t, Handler(checks, 0, nil))
	if code != http.StatusServiceUnavailable || resp.Status != "error" {
		t.Fatalf("got %d %+v", code, resp)
	}
	if resp.Checks["db"] != "error: connection refused" {
		t.Fatalf("db = %q", resp.Checks["db"])
	}
}

func TestHandler_Timeout(t *testing.T) {
	checks := map[string]Check{
		"slow": func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}
	start := time.Now()
	code, _ := get(t, Handler(checks, 20*time.Millisecond, nil))
	if code != http.StatusServiceUnavailable {
		t.Fatalf("code = %d", code)
	}
	if time.Since(start) > time.Second {
		t.Fatal("check was not bounded by the timeout")
	}
}
