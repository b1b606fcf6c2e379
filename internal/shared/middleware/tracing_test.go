package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/transactions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func TestRouteLabel(t *testing.T) {
	routes := newTestRoutes()

	tests := []struct {
		path string
		want string
	}{
		{"/health", "/health"},
		{"/api/transactions/65a1f0c2e4b0a1b2c3d4e5f6", "/api/transactions/{id}"},
		{"/api/transactions/another-id", "/api/transactions/{id}"},
		{"/wp-admin/setup.php", unmatchedRoute},
		{"/api/unknown/123", unmatchedRoute},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if got := routeLabel(routes, req); got != tt.want {
				t.Errorf("routeLabel(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestTracing_SpansNamedByPattern(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	handler := traced(newTestRoutes(), provider.Tracer("test"))

	paths := []string{
		"/api/transactions/aaa",
		"/api/transactions/bbb",
		"/api/transactions/broken",
		"/no/such/route",
	}
	for _, p := range paths {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	spans := recorder.Ended()
	if len(spans) != len(paths) {
		t.Fatalf("ended spans = %d, want %d", len(spans), len(paths))
	}

	want := []struct {
		name   string
		status int64
	}{
		{"GET /api/transactions/{id}", http.StatusOK},
		{"GET /api/transactions/{id}", http.StatusOK},
		{"GET /api/transactions/{id}", http.StatusInternalServerError},
		{"GET unmatched", http.StatusNotFound},
	}
	for i, s := range spans {
		if s.Name() != want[i].name {
			t.Errorf("span[%d] name = %q, want %q", i, s.Name(), want[i].name)
		}
		attrs := map[attribute.Key]attribute.Value{}
		for _, kv := range s.Attributes() {
			attrs[kv.Key] = kv.Value
		}
		if got := attrs["http.response.status_code"].AsInt64(); got != want[i].status {
			t.Errorf("span[%d] status = %d, want %d", i, got, want[i].status)
		}
		if _, ok := attrs["http.target"]; ok {
			t.Errorf("span[%d] carries the raw path", i)
		}
	}
}

func TestTracing_PassesThroughResponse(t *testing.T) {
	rr := httptest.NewRecorder()
	Tracing(newTestRoutes()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}
