package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/roamio/roamio-api/internal/types"
	"github.com/roamio/roamio-api/pkg/config"
)

// OpenRoute wraps the OpenRouteService directions API. It enriches locally
// estimated routes with real driving distance, duration and geometry.
type OpenRoute struct {
	cfg    config.ProviderConfig
	hc     *http.Client
	logger *slog.Logger
}

func NewOpenRoute(cfg config.ProviderConfig, timeout time.Duration, logger *slog.Logger) *OpenRoute {
	return &OpenRoute{cfg: cfg, hc: newHTTPClient(timeout), logger: logger}
}

// Configured reports whether an API key is present.
func (c *OpenRoute) Configured() bool { return c.cfg.APIKey != "" }

type orsDirectionsRequest struct {
	Coordinates [][2]float64 `json:"coordinates"`
}

type orsDirectionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"` // meters
			Duration float64 `json:"duration"` // seconds
		} `json:"summary"`
		Segments []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"segments"`
		Geometry string `json:"geometry"`
	} `json:"routes"`
}

// Directions returns one RouteLeg per consecutive stop pair. ORS expects
// lon,lat coordinate order.
func (c *OpenRoute) Directions(ctx context.Context, stops []types.City) ([]types.RouteLeg, error) {
	if !c.Configured() {
		return nil, types.ErrNotConfigured
	}
	if len(stops) < 2 {
		return nil, fmt.Errorf("directions need at least two stops: %w", types.ErrBadRequest)
	}

	coords := make([][2]float64, len(stops))
	for i, s := range stops {
		coords[i] = [2]float64{s.Longitude, s.Latitude}
	}
	payload, err := json.Marshal(orsDirectionsRequest{Coordinates: coords})
	if err != nil {
		return nil, fmt.Errorf("encoding directions request: %w", err)
	}

	var resp orsDirectionsResponse
	err = doJSON(ctx, c.hc, "openroute", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.cfg.BaseURL+"/v2/directions/driving-car", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", c.cfg.APIKey)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, &resp)
	if err != nil {
		return nil, err
	}

	if len(resp.Routes) == 0 {
		return nil, fmt.Errorf("openroute returned no routes: %w", types.ErrUnavailable)
	}
	route := resp.Routes[0]
	if len(route.Segments) != len(stops)-1 {
		return nil, fmt.Errorf("openroute returned %d segments for %d stops: %w",
			len(route.Segments), len(stops), types.ErrUnavailable)
	}

	legs := make([]types.RouteLeg, len(route.Segments))
	for i, seg := range route.Segments {
		legs[i] = types.RouteLeg{
			From:          stops[i].Name,
			To:            stops[i+1].Name,
			DistanceKm:    seg.Distance / 1000,
			DurationHours: seg.Duration / 3600,
		}
	}
	// ORS returns one polyline for the whole route; attach it to the first
	// leg rather than duplicating it per leg.
	legs[0].Geometry = route.Geometry

	return legs, nil
}
