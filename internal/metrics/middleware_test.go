package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newRouter(skip ...string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(Middleware(skip...))
	r.Post("/search", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	})
	r.Post("/index/rebuild", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	r.Get("/index/status", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	r.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# scrape"))
	})
	return r
}

func serve(t *testing.T, h http.Handler, method, path string) int {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, http.NoBody))
	return rr.Code
}

func TestMiddleware_RecordsByRoute(t *testing.T) {
	r := newRouter()
	counter := httpRequestsTotal.WithLabelValues("POST", "/search", "200")
	before := testutil.ToFloat64(counter)

	if code := serve(t, r, "POST", "/search"); code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", code)
	}

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("expected 1 recorded request, got %f", got)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
	if v := testutil.ToFloat64(httpRequestsInFlight); v != 0 {
		t.Errorf("in-flight gauge = %f after request completed", v)
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := newRouter()

	tests := []struct {
		method string
		path   string
		status string
	}{
		{"POST", "/index/rebuild", "409"},
		{"GET", "/index/status", "503"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			counter := httpRequestsTotal.WithLabelValues(tc.method, tc.path, tc.status)
			before := testutil.ToFloat64(counter)
			serve(t, r, tc.method, tc.path)
			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("expected 1 request with status %s, got %f", tc.status, got)
			}
		})
	}
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	r := newRouter()
	counter := httpRequestsTotal.WithLabelValues("GET", unmatchedRoute, "404")
	before := testutil.ToFloat64(counter)

	if code := serve(t, r, "GET", "/items/abc123"); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("expected unmatched request recorded once, got %f", got)
	}
}

func TestMiddleware_SkipsPaths(t *testing.T) {
	r := newRouter("/metrics")
	counter := httpRequestsTotal.WithLabelValues("GET", "/metrics", "200")
	before := testutil.ToFloat64(counter)

	if code := serve(t, r, "GET", "/metrics"); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if got := testutil.ToFloat64(counter) - before; got != 0 {
		t.Errorf("skipped path was recorded %f times", got)
	}
}

func TestRouteLabel_NoRouteContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/search", http.NoBody)
	if got := routeLabel(req); got != unmatchedRoute {
		t.Errorf("routeLabel = %q, want %q", got, unmatchedRoute)
	}
}
