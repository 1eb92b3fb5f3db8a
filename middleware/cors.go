// middleware/cors.go
package middleware

import (
	"net/http"

	"github.com/dalemusser/eventdesk/config"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// CORSFromConfig wraps go-chi/cors with the configured policy. It is a
// pass-through unless enable_cors is set.
func CORSFromConfig(coreCfg *config.CoreConfig) func(next http.Handler) http.Handler {
	if coreCfg == nil || !coreCfg.CORS.EnableCORS {
		return passthrough
	}
	c := coreCfg.CORS
	return cors.Handler(cors.Options{
		AllowedOrigins:   c.CORSAllowedOrigins,
		AllowedMethods:   c.CORSAllowedMethods,
		AllowedHeaders:   c.CORSAllowedHeaders,
		ExposedHeaders:   c.CORSExposedHeaders,
		AllowCredentials: c.CORSAllowCredentials,
		MaxAge:           c.CORSMaxAge,
	})
}

// compressibleTypes are the content types worth gzipping. The attendance
// workbook is already zip-compressed and is left alone.
var compressibleTypes = []string{
	"text/html",
	"text/css",
	"text/plain",
	"application/json",
	"application/javascript",
}

// CompressFromConfig returns chi's gzip/deflate middleware at level 5 when
// enable_compression is set.
func CompressFromConfig(coreCfg *config.CoreConfig) func(next http.Handler) http.Handler {
	if coreCfg == nil || !coreCfg.EnableCompression {
		return passthrough
	}
	return middleware.Compress(5, compressibleTypes...)
}
