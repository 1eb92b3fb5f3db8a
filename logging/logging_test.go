package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestIsValidLogLevel(t *testing.T) {
	for _, lvl := range []string{"debug", "INFO", "Warn", "error"} {
		if !IsValidLogLevel(lvl) {
			t.Errorf("IsValidLogLevel(%q) = false", lvl)
		}
	}
	if IsValidLogLevel("verbose") {
		t.Error("verbose should be invalid")
	}
}

func TestBuildLogger_BadLevelFallsBackToInfo(t *testing.T) {
	logger, err := BuildLogger("verbose", "prod")
	if err != nil {
		t.Fatalf("BuildLogger: %v", err)
	}
	if logger.Core().Enabled(zap.DebugLevel) {
		t.Error("debug should be disabled at the info fallback")
	}
	if !logger.Core().Enabled(zap.InfoLevel) {
		t.Error("info should be enabled")
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/register", nil))

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusCreated) {
		t.Errorf("status = %v, want 201", fields["status"])
	}
	if fields["path"] != "/register" {
		t.Errorf("path = %v, want /register", fields["path"])
	}
}

func TestRecoverer(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := Recoverer(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Error("panic was not logged")
	}
}
