// health/health.go
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/eventdesk/httputil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Check probes one dependency and returns nil when it is usable.
type Check func(ctx context.Context) error

// Response is the JSON body of the health endpoint.
type Response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DefaultTimeout bounds each probe when the handler is built with zero.
const DefaultTimeout = 2 * time.Second

// Handler runs checks on every request. Any failing check turns the whole
// response into a 503 with status "error". With no checks it is a plain
// liveness probe.
func Handler(checks map[string]Check, timeout time.Duration, logger *zap.Logger) http.Handler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(checks) == 0 {
			httputil.WriteJSON(w, http.StatusOK, Response{Status: "ok"})
			return
		}

		results := make(map[string]string, len(checks))
		failed := false
		for name, check := range checks {
			if check == nil {
				results[name] = "ok"
				continue
			}
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			err := check(ctx)
			cancel()
			if err != nil {
				failed = true
				results[name] = "error: " + err.Error()
				logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
				continue
			}
			results[name] = "ok"
		}

		if failed {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, Response{Status: "error", Checks: results})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, Response{Status: "ok", Checks: results})
	})
}

// Mount attaches GET /health.
func Mount(r chi.Router, checks map[string]Check, logger *zap.Logger) {
	r.Method(http.MethodGet, "/health", Handler(checks, 0, logger))
}
