package middleware

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// unmatchedRoute labels every request that no registered pattern serves.
const unmatchedRoute = "unmatched"

var apiMeter = otel.Meter("findash/http")

var (
	apiRequestSeconds, _ = apiMeter.Float64Histogram("findash.api.request.duration",
		metric.WithDescription("API request latency by route pattern"),
		metric.WithUnit("s"),
	)
	apiRequests, _ = apiMeter.Int64Counter("findash.api.requests",
		metric.WithDescription("API requests by route pattern and status"),
	)
)

// Tracing opens one server span per request and counts it against the mux
// pattern that serves it (e.g. "/api/transactions/{id}"), never the raw path.
func Tracing(routes *http.ServeMux) http.Handler {
	return traced(routes, otel.Tracer("findash/http"))
}

func traced(routes *http.ServeMux, tracer trace.Tracer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := routeLabel(routes, r)
		ctx, span := tracer.Start(r.Context(), r.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("http.route", route),
			),
		)
		defer span.End()

		began := time.Now()
		rw := wrapResponseWriter(w)
		routes.ServeHTTP(rw, r.WithContext(ctx))

		code := rw.status
		if code == 0 {
			code = http.StatusOK
		}
		span.SetAttributes(attribute.Int("http.response.status_code", code))
		if code >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(code))
		}

		labels := metric.WithAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", code),
		)
		apiRequestSeconds.Record(ctx, time.Since(began).Seconds(), labels)
		apiRequests.Add(ctx, 1, labels)
	})
}

// routeLabel resolves the pattern routes would dispatch r to.
func routeLabel(routes *http.ServeMux, r *http.Request) string {
	if _, pattern := routes.Handler(r); pattern != "" {
		return pattern
	}
	return unmatchedRoute
}
