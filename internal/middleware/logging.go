package middleware

import (
	"net/http"
	"time"

	"cat-shelter-api/internal/platform/logger"
)

// responseWriter envuelve http.ResponseWriter para capturar el status.
type responseWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.status = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.status = http.StatusOK
		rw.written = true
	}
	return rw.ResponseWriter.Write(b)
}

// Logging loguea método, path, status y duración de cada request, con el
// request id si RequestID corre antes en la cadena.
func Logging(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			fields := map[string]any{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   wrapped.status,
				"duration": time.Since(start).String(),
				"remote":   r.RemoteAddr,
			}
			if id := GetRequestID(r.Context()); id != "" {
				fields["request_id"] = id
			}
			log.Info("http request", fields)
		})
	}
}
