package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetricsUsesRoutePattern(t *testing.T) {
	m := NewHTTPMetrics(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Wrap)
	r.Get("/api/v1/payments/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/payments/"+id, nil))
	}

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues(http.MethodGet, "/api/v1/payments/{id}", "418")); got != 3 {
		t.Fatalf("expected 3 requests on the route pattern, got %v", got)
	}
	if got := testutil.CollectAndCount(m.requestDuration); got != 1 {
		t.Fatalf("expected one duration series, got %d", got)
	}
	if got := testutil.ToFloat64(m.requestsInFlight); got != 0 {
		t.Fatalf("expected no requests in flight, got %v", got)
	}
}

func TestHTTPMetricsUnmatchedRoute(t *testing.T) {
	m := NewHTTPMetrics(prometheus.NewRegistry())

	m.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")); got != 1 {
		t.Fatalf("expected unmatched request to be counted, got %v", got)
	}
}
