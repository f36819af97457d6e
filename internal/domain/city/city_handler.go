package city

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/roamio/roamio-api/internal/types"
)

// Handler exposes the catalog listing endpoint.
type Handler struct {
	svc    Service
	logger *slog.Logger
}

func NewHandler(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// ListCities handles GET /api/cities.
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	cities := h.svc.All(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(types.OK(map[string]any{
		"cities": cities,
		"count":  len(cities),
	}))
}
