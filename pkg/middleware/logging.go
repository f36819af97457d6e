package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// statusRecorder captures the status code and response size for logging
// and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// Logging logs one start and one completion line per request with payload
// size and duration tracking.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			logger.Info("request started", appendLoggerFields(r.Context(),
				"method", r.Method,
				"path", r.URL.Path,
				"peer", r.RemoteAddr,
				"request_size_bytes", r.ContentLength,
			)...)

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			duration := time.Since(start)
			fields := appendLoggerFields(r.Context(),
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", duration.String(),
				"duration_ms", duration.Milliseconds(),
				"response_size_bytes", rec.bytes,
			)

			if rec.status >= http.StatusInternalServerError {
				logger.Error("request failed", fields...)
			} else {
				logger.Info("request completed", fields...)
			}
		})
	}
}

func appendLoggerFields(ctx context.Context, base ...any) []any {
	if requestID, ok := RequestIDFromContext(ctx); ok && requestID != "" {
		base = append(base, "request_id", requestID)
	}
	return base
}
