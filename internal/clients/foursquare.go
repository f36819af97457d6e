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

// foursquareFoodCategory is the Foursquare v3 category id for restaurants.
const foursquareFoodCategory = "13065"

// Foursquare wraps the Foursquare Places search API, used as the primary
// restaurant source.
type Foursquare struct {
	cfg    config.ProviderConfig
	hc     *http.Client
	logger *slog.Logger
}

func NewFoursquare(cfg config.ProviderConfig, timeout time.Duration, logger *slog.Logger) *Foursquare {
	return &Foursquare{cfg: cfg, hc: newHTTPClient(timeout), logger: logger}
}

func (c *Foursquare) Name() string     { return "foursquare" }
func (c *Foursquare) Configured() bool { return c.cfg.APIKey != "" }

type foursquareSearchResponse struct {
	Results []struct {
		Name       string `json:"name"`
		Distance   int    `json:"distance"`
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
		Location struct {
			FormattedAddress string `json:"formatted_address"`
		} `json:"location"`
		Rating float64 `json:"rating"`
	} `json:"results"`
}

// Search returns restaurants near the city center.
func (c *Foursquare) Search(ctx context.Context, city types.City) ([]types.Place, error) {
	if !c.Configured() {
		return nil, types.ErrNotConfigured
	}

	var resp foursquareSearchResponse
	err := doJSON(ctx, c.hc, "foursquare", func(ctx context.Context) (*http.Request, error) {
		q := url.Values{}
		q.Set("ll", fmt.Sprintf("%.4f,%.4f", city.Latitude, city.Longitude))
		q.Set("categories", foursquareFoodCategory)
		q.Set("sort", "RATING")
		q.Set("limit", "8")
		q.Set("fields", "name,distance,categories,location,rating")
		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			c.cfg.BaseURL+"/v3/places/search?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", c.cfg.APIKey)
		req.Header.Set("Accept", "application/json")
		return req, nil
	}, &resp)
	if err != nil {
		return nil, err
	}

	places := make([]types.Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		category := "Restaurant"
		if len(r.Categories) > 0 {
			category = r.Categories[0].Name
		}
		places = append(places, types.Place{
			Name:     r.Name,
			Category: category,
			// Foursquare rates 0-10; normalize to the 0-5 scale used
			// everywhere else in the response.
			Rating:   r.Rating / 2,
			Address:  r.Location.FormattedAddress,
			Distance: float64(r.Distance),
		})
	}
	return places, nil
}
