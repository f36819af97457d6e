package trip

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/roamio/roamio-api/internal/types"
)

// Handler exposes the trip-planning endpoints.
type Handler struct {
	svc    Service
	logger *slog.Logger
}

func NewHandler(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// CreatePlan handles POST /plan. It accepts form or JSON bodies and returns
// the route plans without stop enrichment unless include_details is set.
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	req, err := ParsePlanRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	plan, err := h.svc.PlanTrip(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.OK(plan))
}

// PlanComplete handles POST /api/plan-complete: JSON only, and every stop
// is enriched regardless of the include_details flag.
func (h *Handler) PlanComplete(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		h.writeError(w, r, fmt.Errorf("plan-complete requires a JSON body: %w", types.ErrBadRequest))
		return
	}

	req, err := ParsePlanRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	req.Enrich = true

	plan, err := h.svc.PlanTrip(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.OK(plan))
}

// TripData handles GET /api/trip-data?id=<uuid>&format=json|csv.
func (h *Handler) TripData(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		h.writeError(w, r, fmt.Errorf("id query parameter is required: %w", types.ErrBadRequest))
		return
	}

	plan, err := h.svc.TripData(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, types.OK(plan))
	case "csv":
		b, err := ExportCSV(plan)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="trip-`+plan.ID+`.csv"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	default:
		h.writeError(w, r, fmt.Errorf("unsupported format %q: %w", format, types.ErrBadRequest))
	}
}

// PlanPDF handles GET /api/plan/{id}/pdf.
func (h *Handler) PlanPDF(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	plan, err := h.svc.TripData(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	b, err := ExportPDF(plan)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="trip-`+plan.ID+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrBadRequest), errors.Is(err, types.ErrInvalidStrategy):
		status = http.StatusBadRequest
	case errors.Is(err, types.ErrCityNotFound):
		status = http.StatusBadRequest
	case errors.Is(err, types.ErrPlanExpired), errors.Is(err, types.ErrNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		// Internal detail stays in the log, not the envelope.
		writeJSON(w, status, types.Fail("internal server error"))
		return
	}
	writeJSON(w, status, types.Fail(err.Error()))
}

func writeJSON(w http.ResponseWriter, status int, payload types.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
