package clients

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/roamio/roamio-api/internal/types"
	"github.com/roamio/roamio-api/pkg/config"
)

// GooglePlaces wraps the Places text-search API. It serves as the secondary
// source for both restaurants and attractions when the primary provider is
// unconfigured or failing.
type GooglePlaces struct {
	cfg    config.ProviderConfig
	hc     *http.Client
	logger *slog.Logger
}

func NewGooglePlaces(cfg config.ProviderConfig, timeout time.Duration, logger *slog.Logger) *GooglePlaces {
	return &GooglePlaces{cfg: cfg, hc: newHTTPClient(timeout), logger: logger}
}

func (c *GooglePlaces) Configured() bool { return c.cfg.APIKey != "" }

type googleTextSearchResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Name             string   `json:"name"`
		FormattedAddress string   `json:"formatted_address"`
		Rating           float64  `json:"rating"`
		Types            []string `json:"types"`
	} `json:"results"`
}

func (c *GooglePlaces) textSearch(ctx context.Context, query, fallbackCategory string) ([]types.Place, error) {
	if !c.Configured() {
		return nil, types.ErrNotConfigured
	}

	var resp googleTextSearchResponse
	err := doJSON(ctx, c.hc, "googleplaces", func(ctx context.Context) (*http.Request, error) {
		q := url.Values{}
		q.Set("query", query)
		q.Set("key", c.cfg.APIKey)
		return http.NewRequestWithContext(ctx, http.MethodGet,
			c.cfg.BaseURL+"/maps/api/place/textsearch/json?"+q.Encode(), nil)
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Status != "OK" && resp.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("google places status %s: %w", resp.Status, types.ErrUnavailable)
	}

	places := make([]types.Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		category := fallbackCategory
		if len(r.Types) > 0 {
			category = r.Types[0]
		}
		places = append(places, types.Place{
			Name:     r.Name,
			Category: category,
			Rating:   r.Rating,
			Address:  r.FormattedAddress,
		})
		if len(places) == 8 {
			break
		}
	}
	return places, nil
}

// GoogleRestaurants adapts GooglePlaces to the restaurant provider contract.
type GoogleRestaurants struct{ *GooglePlaces }

func (g GoogleRestaurants) Name() string { return "googleplaces" }

func (g GoogleRestaurants) Search(ctx context.Context, city types.City) ([]types.Place, error) {
	return g.textSearch(ctx, "restaurants in "+city.Name+", "+city.Country, "restaurant")
}

// GoogleAttractions adapts GooglePlaces to the attraction provider contract.
type GoogleAttractions struct{ *GooglePlaces }

func (g GoogleAttractions) Name() string { return "googleplaces" }

func (g GoogleAttractions) Search(ctx context.Context, city types.City) ([]types.Place, error) {
	return g.textSearch(ctx, "tourist attractions in "+city.Name+", "+city.Country, "attraction")
}
