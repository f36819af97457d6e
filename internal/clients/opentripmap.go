package clients

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/roamio/roamio-api/internal/types"
	"github.com/roamio/roamio-api/pkg/config"
)

// OpenTripMap wraps the OpenTripMap radius search, used as the primary
// attraction source.
type OpenTripMap struct {
	cfg    config.ProviderConfig
	hc     *http.Client
	logger *slog.Logger
}

func NewOpenTripMap(cfg config.ProviderConfig, timeout time.Duration, logger *slog.Logger) *OpenTripMap {
	return &OpenTripMap{cfg: cfg, hc: newHTTPClient(timeout), logger: logger}
}

func (c *OpenTripMap) Name() string     { return "opentripmap" }
func (c *OpenTripMap) Configured() bool { return c.cfg.APIKey != "" }

type otmPlace struct {
	Name  string  `json:"name"`
	Kinds string  `json:"kinds"`
	Rate  float64 `json:"rate"`
	Dist  float64 `json:"dist"`
}

// Search returns rated attractions within 5km of the city center.
func (c *OpenTripMap) Search(ctx context.Context, city types.City) ([]types.Place, error) {
	if !c.Configured() {
		return nil, types.ErrNotConfigured
	}

	var resp []otmPlace
	err := doJSON(ctx, c.hc, "opentripmap", func(ctx context.Context) (*http.Request, error) {
		q := url.Values{}
		q.Set("radius", "5000")
		q.Set("lat", fmt.Sprintf("%.4f", city.Latitude))
		q.Set("lon", fmt.Sprintf("%.4f", city.Longitude))
		q.Set("rate", "2")
		q.Set("format", "json")
		q.Set("limit", "10")
		q.Set("apikey", c.cfg.APIKey)
		return http.NewRequestWithContext(ctx, http.MethodGet,
			c.cfg.BaseURL+"/0.1/en/places/radius?"+q.Encode(), nil)
	}, &resp)
	if err != nil {
		return nil, err
	}

	places := make([]types.Place, 0, len(resp))
	for _, p := range resp {
		if p.Name == "" {
			continue
		}
		places = append(places, types.Place{
			Name:     p.Name,
			Category: primaryKind(p.Kinds),
			// OTM rates 1-3h; map the 1-3 numeric part onto 0-5.
			Rating:   minFloat(p.Rate*5/3, 5),
			Distance: p.Dist,
		})
	}
	return places, nil
}

// primaryKind extracts the first of OTM's comma-separated kind tags.
func primaryKind(kinds string) string {
	if kinds == "" {
		return "attraction"
	}
	first, _, _ := strings.Cut(kinds, ",")
	return strings.ReplaceAll(first, "_", " ")
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
