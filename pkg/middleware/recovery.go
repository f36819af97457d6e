package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/roamio/roamio-api/internal/types"
)

// Recovery converts panics into a 500 envelope instead of killing the
// connection.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", appendLoggerFields(r.Context(),
						"panic", rec,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)...)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(types.Fail("internal server error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
