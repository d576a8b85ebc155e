package observe

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// RouteUnmatched labels requests no route pattern matched.
const RouteUnmatched = "unmatched"

// statusRecorder captures the status code and body size written downstream.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.written += int64(n)
	return n, err
}

// Unwrap lets [http.ResponseController] reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// Middleware instruments the Orator HTTP surface. For every request it
// continues or starts a W3C trace, sets X-Correlation-ID from the trace ID,
// records orator.http.request.duration and logs one completion line.
//
// Requests are labelled by the [http.ServeMux] pattern that served them, with
// the method stripped ("/api/v2/analyze"), so label cardinality stays bounded
// whatever paths clients send. Uploads record their declared body size.
// Successful GETs (health checks, scrapes) log at debug.
func Middleware(m *Metrics) func(http.Handler) http.Handler {
	prop := propagation.TraceContext{}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := prop.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			attrs := []attribute.KeyValue{
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.URLPath(r.URL.Path),
			}
			if r.ContentLength > 0 {
				attrs = append(attrs, semconv.HTTPRequestBodySize(int(r.ContentLength)))
			}
			ctx, span := StartSpan(ctx, "HTTP "+r.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			cid := CorrelationID(ctx)
			if cid != "" {
				w.Header().Set("X-Correlation-ID", cid)
			}
			prop.Inject(ctx, propagation.HeaderCarrier(w.Header()))

			// The mux records the matched pattern on this request value.
			r = r.WithContext(ctx)
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := Route(r)
			duration := time.Since(start)
			m.HTTPRequestDuration.Record(ctx, duration.Seconds(),
				metric.WithAttributes(
					attribute.String("method", r.Method),
					attribute.String("route", route),
					attribute.Int("status", rec.statusCode),
				),
			)

			span.SetName("HTTP " + r.Method + " " + route)
			span.SetAttributes(
				semconv.HTTPRoute(route),
				semconv.HTTPResponseStatusCode(rec.statusCode),
				semconv.HTTPResponseBodySize(int(rec.written)),
			)

			level := slog.LevelInfo
			if r.Method == http.MethodGet && rec.statusCode < http.StatusBadRequest {
				level = slog.LevelDebug
			}
			logAttrs := []slog.Attr{
				slog.String("trace_id", cid),
				slog.String("method", r.Method),
				slog.String("route", route),
				slog.Int("status", rec.statusCode),
				slog.Duration("duration", duration),
			}
			if r.ContentLength > 0 {
				logAttrs = append(logAttrs, slog.Int64("upload_bytes", r.ContentLength))
			}
			slog.LogAttrs(ctx, level, "request completed", logAttrs...)
		})
	}
}

// Route returns the path part of the pattern that served r, or
// [RouteUnmatched] when none did.
func Route(r *http.Request) string {
	p := r.Pattern
	if p == "" {
		return RouteUnmatched
	}
	if _, path, ok := strings.Cut(p, " "); ok {
		return path
	}
	return p
}
