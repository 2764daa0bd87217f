package trace

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"ledgerdash/internal/core"
)

func TestMiddlewareRequestID(t *testing.T) {
	var seen string
	h := NewMiddleware(nil, nil, nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if !strings.HasPrefix(seen, "req_") {
		t.Fatalf("expected generated id, got %q", seen)
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("response header %q does not match %q", rec.Header().Get(RequestIDHeader), seen)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "abc-123" {
		t.Fatalf("expected caller id to be kept, got %q", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "bad id\n")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen == "bad id\n" {
		t.Fatalf("unsafe request id must be replaced")
	}
}

func TestMiddlewareRecordsRouteMetrics(t *testing.T) {
	metrics := NewMetrics("test")
	r := chi.NewRouter()
	r.Use(NewMiddleware(nil, nil, metrics).Middleware)
	r.Get("/types", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/types?plCode=", nil))
	}
	got := testutil.ToFloat64(metrics.requests.WithLabelValues("/types", http.MethodGet, "400"))
	if got != 2 {
		t.Fatalf("expected 2 requests recorded, got %v", got)
	}
}

func TestObserveFetch(t *testing.T) {
	m := NewMetrics("")
	m.ObserveFetch("ledger", 10*time.Millisecond, 42, nil)
	m.ObserveFetch("ledger", time.Millisecond, 0, core.ErrSourceUnavailable)
	m.ObserveFetch("bank", time.Millisecond, 0, errors.New("other"))
	m.ObserveLogin(true)
	m.ObserveLogin(false)

	if got := testutil.ToFloat64(m.fetchRows.WithLabelValues("ledger")); got != 42 {
		t.Fatalf("expected 42 rows gauge, got %v", got)
	}
	if n := testutil.CollectAndCount(m.fetches); n != 3 {
		t.Fatalf("expected 3 fetch series, got %d", n)
	}
	if got := testutil.ToFloat64(m.logins.WithLabelValues("failure")); got != 1 {
		t.Fatalf("expected one failed login, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "ledgerdash_source_rows") {
		t.Fatalf("exposition missing source_rows:\n%s", rec.Body.String())
	}
}
