// metrics/metrics.go
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Form submission outcomes.
const (
	OutcomeAccepted    = "accepted"
	OutcomeRejected    = "rejected"
	OutcomeUnconfirmed = "unconfirmed"
)

var (
	reqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: []float64{0.01, 0.1, 0.3, 1.2, 5},
		},
		[]string{"path", "method", "status"},
	)

	formSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventdesk_form_submissions_total",
			Help: "Form submissions by form and outcome.",
		},
		[]string{"form", "outcome"},
	)

	mailSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventdesk_mail_sent_total",
			Help: "Outgoing mail by delivery status.",
		},
		[]string{"status"},
	)
)

// RegisterDefault registers the Go and process collectors plus the service
// metrics. Calling it more than once is harmless.
func RegisterDefault(logger *zap.Logger) {
	mustRegister(logger, "Go collector", collectors.NewGoCollector())
	mustRegister(logger, "process collector", collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mustRegister(logger, "HTTP request histogram", reqDuration)
	mustRegister(logger, "form submission counter", formSubmissions)
	mustRegister(logger, "mail counter", mailSent)
}

func mustRegister(logger *zap.Logger, name string, c prometheus.Collector) {
	err := prometheus.Register(c)
	if err == nil {
		return
	}
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return
	}
	if logger != nil {
		logger.Fatal("failed to register "+name, zap.Error(err))
	}
	panic("metrics: failed to register " + name + ": " + err.Error())
}

// FormSubmitted counts one submission of form with the given outcome.
func FormSubmitted(form, outcome string) {
	formSubmissions.WithLabelValues(form, outcome).Inc()
}

// MailDelivered counts one delivery attempt; status is "sent" or "failed".
func MailDelivered(status string) {
	mailSent.WithLabelValues(status).Inc()
}

const maxPathLabelLength = 256

// HTTPMetrics records request durations labeled by chi route pattern, so
// "/api/events/{id}" is one series no matter which id was requested.
func HTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		protoMajor := r.ProtoMajor
		if protoMajor < 1 {
			protoMajor = 1
		}
		ww := middleware.NewWrapResponseWriter(w, protoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if status < 100 || status > 599 {
			status = http.StatusInternalServerError
		}

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		if len(path) > maxPathLabelLength {
			path = truncateUTF8(path, maxPathLabelLength-3) + "..."
		}

		reqDuration.WithLabelValues(path, r.Method, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

// truncateUTF8 cuts s to at most maxBytes without splitting a rune.
func truncateUTF8(s string, maxBytes int) string {
	if maxBytes <= 0 {
		return ""
	}
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
