package middleware

import (
	"net/http"
	"time"

	"trustmap/internal/metrics"

	"github.com/gorilla/mux"
)

// Metrics records request counts and latency labelled by route template, so
// path parameters never explode label cardinality.
func Metrics(m *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrap(w)
			next.ServeHTTP(wrapped, r)
			m.ObserveRequest(routeName(r), r.Method, wrapped.statusCode, time.Since(start))
		})
	}
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
