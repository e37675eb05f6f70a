package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// unmatchedRoute labels requests that no route pattern matched.
const unmatchedRoute = "unmatched"

// Metrics records the request count, latency, response size and in-flight
// requests of every request, labelled by chi route pattern.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HTTPRequestInFlight.Inc()
		defer HTTPRequestInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		observeRequest(r, ww.Status(), ww.BytesWritten(), time.Since(start))
	})
}

func observeRequest(r *http.Request, status, bytesWritten int, elapsed time.Duration) {
	// Handlers that never call WriteHeader answer 200
	if status == 0 {
		status = http.StatusOK
	}
	route := routePattern(r)

	HTTPRequestTotals.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
	HTTPResponseSize.WithLabelValues(r.Method, route).Observe(float64(bytesWritten))
}

// routePattern keeps label cardinality bounded: "/v1/prescriptions/{row}"
// rather than one series per row number.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.RoutePattern() == "" {
		return unmatchedRoute
	}
	return rctx.RoutePattern()
}
