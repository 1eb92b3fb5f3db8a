// middleware/notfound.go
package middleware

import (
	"net/http"

	"github.com/dalemusser/eventdesk/httputil"
	"go.uber.org/zap"
)

// NotFoundHandler logs the miss and answers with a JSON 404.
func NotFoundHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logMiss(logger, "not_found", r)
		httputil.JSONError(w, http.StatusNotFound, "not_found", "The requested resource was not found")
	}
}

// MethodNotAllowedHandler logs the request and answers with a JSON 405.
func MethodNotAllowedHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logMiss(logger, "method_not_allowed", r)
		httputil.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed",
			"The requested HTTP method is not allowed for this resource")
	}
}

func logMiss(logger *zap.Logger, event string, r *http.Request) {
	if logger == nil {
		return
	}
	logger.Info(event,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("remote_ip", r.RemoteAddr),
	)
}
