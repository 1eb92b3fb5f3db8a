package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetrics_UsesRoutePattern(t *testing.T) {
	RegisterDefault(nil)

	r := chi.NewRouter()
	r.Use(HTTPMetrics)
	r.Get("/api/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	before := testutil.CollectAndCount(reqDuration)
	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/events/"+id, nil))
	}
	after := testutil.CollectAndCount(reqDuration)
	if after-before != 1 {
		t.Errorf("got %d new series, want 1", after-before)
	}
}

func TestFormSubmitted(t *testing.T) {
	FormSubmitted("registration", OutcomeRejected)
	FormSubmitted("registration", OutcomeRejected)
	got := testutil.ToFloat64(formSubmissions.WithLabelValues("registration", OutcomeRejected))
	if got < 2 {
		t.Errorf("counter = %v, want >= 2", got)
	}
}

func TestTruncateUTF8(t *testing.T) {
	s := strings.Repeat("é", 10) // 2 bytes each
	got := truncateUTF8(s, 5)
	if got != "éé" {
		t.Errorf("truncateUTF8 = %q, want %q", got, "éé")
	}
	if truncateUTF8("abc", 10) != "abc" {
		t.Error("short strings must be unchanged")
	}
}
