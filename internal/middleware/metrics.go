package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"cat-shelter-api/internal/metrics"
)

// Metrics registra contador y latencia por request. Usa el route pattern de
// chi ("/cats/{catID}/adopt") como label para no explotar la cardinalidad
// con ids concretos.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}

			m.ObserveRequest(r.Method, route, strconv.Itoa(wrapped.status), time.Since(start))
		})
	}
}
