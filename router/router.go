// router/router.go
package router

import (
	"github.com/dalemusser/eventdesk/config"
	"github.com/dalemusser/eventdesk/logging"
	"github.com/dalemusser/eventdesk/metrics"
	"github.com/dalemusser/eventdesk/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// New returns a chi.Router carrying the middleware every eventdesk route
// shares. Ordering matters: recovery wraps everything below it, and the
// metrics middleware must run inside routing so it sees the route pattern.
//
// Health, metrics and application routes are mounted by the caller.
func New(coreCfg *config.CoreConfig, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.Recoverer(logger))
	r.Use(middleware.LimitBodySize(coreCfg.MaxRequestBodyBytes))
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))
	r.Use(middleware.CORSFromConfig(coreCfg))
	r.Use(middleware.CompressFromConfig(coreCfg))
	r.Use(metrics.HTTPMetrics)
	r.Use(logging.RequestLogger(logger))

	r.NotFound(middleware.NotFoundHandler(logger))
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler(logger))

	return r
}
