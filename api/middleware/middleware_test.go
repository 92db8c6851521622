package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/angelmondragon/warehouse-backend/pkg/logger"
	"github.com/angelmondragon/warehouse-backend/pkg/metrics"
)

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	var seen string
	handler := RequestID(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = w.Header().Get(requestIDHeader)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || resp.Header().Get(requestIDHeader) != seen {
		t.Fatalf("expected generated request id, got %q", resp.Header().Get(requestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-1")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if got := resp.Header().Get(requestIDHeader); got != "req-1" {
		t.Fatalf("expected caller request id preserved, got %q", got)
	}
}

func TestRequestIDReplacesUnusableCallerIDs(t *testing.T) {
	handler := RequestID(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, bad := range []string{"has space", "line\nbreak", string(bytes.Repeat([]byte("a"), maxRequestIDLength+1))} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, bad)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		got := resp.Header().Get(requestIDHeader)
		if got == "" || got == bad {
			t.Fatalf("expected %q to be replaced, got %q", bad, got)
		}
	}
}

func TestRecovererLogsOrderContext(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})

	r := chi.NewRouter()
	r.Use(Recoverer(logg))
	r.Delete("/api/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/api/orders/ORD-00007", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
	for _, want := range []string{`"panic.recovered"`, `"order_id":"ORD-00007"`, `"route":"/api/orders/{id}"`, `"method":"DELETE"`} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Fatalf("expected %s in log output %s", want, buf.String())
		}
	}
	if bytes.Contains(buf.Bytes(), []byte("item_id")) {
		t.Fatalf("order routes must not log item_id")
	}
}

func TestRecovererReturnsInternalError(t *testing.T) {
	handler := Recoverer(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestLoggingObservesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(reg)

	r := chi.NewRouter()
	r.Use(Logging(logger.Nop(), httpMetrics))
	r.Get("/api/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/orders/ORD-00001", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/orders/ORD-00002", nil))

	count, err := testutil.GatherAndCount(reg, "warehouse_http_requests_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one series keyed by pattern, got %d", count)
	}
}
