package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emberforge-labs/asset-ledger/internal/observability/metrics"
	"github.com/emberforge-labs/asset-ledger/internal/observability/tracing"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// tracingMiddleware attaches a fresh trace id to the request context logger
// and echoes it back so callers can quote it in bug reports.
func tracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, traceID := tracing.InjectTraceID(r.Context())
		w.Header().Set("X-Trace-Id", traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// metricsMiddleware times every request, labeled by the matched chi route
// pattern rather than the raw path to keep label cardinality bounded.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		observe := metrics.StartHttpRequestDurationTimer(r.Method)
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		observe(chi.RouteContext(r.Context()).RoutePattern(), recorder.status)
	})
}
