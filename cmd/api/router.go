package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/roamio/roamio-api/pkg/middleware"
)

// SetupRouter configures all routes and returns the HTTP handler.
func SetupRouter(deps *Dependencies) http.Handler {
	router := mux.NewRouter()

	var limiter *rate.Limiter
	if deps.Config.Server.RateLimitPerSecond > 0 && deps.Config.Server.RateLimitBurst > 0 {
		limiter = rate.NewLimiter(
			rate.Limit(float64(deps.Config.Server.RateLimitPerSecond)),
			deps.Config.Server.RateLimitBurst,
		)
	}

	// Middleware chain: request-id first so every later stage logs it.
	router.Use(
		middleware.RequestID,
		middleware.Recovery(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.RateLimit(limiter),
		middleware.Metrics,
	)

	registerPlanRoutes(router, deps)
	registerUtilityRoutes(router, deps)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
	})

	return corsHandler.Handler(router)
}

func registerPlanRoutes(router *mux.Router, deps *Dependencies) {
	router.HandleFunc("/plan", deps.TripHandler.CreatePlan).Methods(http.MethodPost)
	router.HandleFunc("/api/plan-complete", deps.TripHandler.PlanComplete).Methods(http.MethodPost)
	router.HandleFunc("/api/trip-data", deps.TripHandler.TripData).Methods(http.MethodGet)
	router.HandleFunc("/api/plan/{id}/pdf", deps.TripHandler.PlanPDF).Methods(http.MethodGet)
	router.HandleFunc("/api/cities", deps.CityHandler.ListCities).Methods(http.MethodGet)

	deps.Logger.Info("plan routes configured")
}

// registerUtilityRoutes registers health check, readiness and metrics.
func registerUtilityRoutes(router *mux.Router, deps *Dependencies) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := deps.Store.Health(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("cache unhealthy"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}).Methods(http.MethodGet)

	if deps.Config.Observability.MetricsEnabled {
		router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
		deps.Logger.Info("registered metrics endpoint", "path", "/metrics")
	}
}
