package clients

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/roamio/roamio-api/internal/types"
	"github.com/roamio/roamio-api/pkg/config"
)

// Amadeus wraps the Amadeus hotel APIs. The OAuth2 client-credentials token
// is cached under a mutex and refreshed shortly before expiry.
type Amadeus struct {
	cfg    config.AmadeusConfig
	hc     *http.Client
	logger *slog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewAmadeus(cfg config.AmadeusConfig, timeout time.Duration, logger *slog.Logger) *Amadeus {
	return &Amadeus{cfg: cfg, hc: newHTTPClient(timeout), logger: logger}
}

func (c *Amadeus) Name() string { return "amadeus" }

func (c *Amadeus) Configured() bool {
	return c.cfg.ClientID != "" && c.cfg.ClientSecret != ""
}

func (c *Amadeus) refreshToken(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	err := doJSON(ctx, c.hc, "amadeus", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.cfg.BaseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}, &result)
	if err != nil {
		return fmt.Errorf("amadeus token: %w", err)
	}

	c.mu.Lock()
	c.accessToken = result.AccessToken
	// Refresh 30s early so in-flight requests never race expiry.
	c.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn-30) * time.Second)
	c.mu.Unlock()
	return nil
}

func (c *Amadeus) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.accessToken
	expired := token == "" || time.Now().After(c.tokenExpiry)
	c.mu.Unlock()

	if expired {
		if err := c.refreshToken(ctx); err != nil {
			return "", err
		}
		c.mu.Lock()
		token = c.accessToken
		c.mu.Unlock()
	}
	return token, nil
}

func (c *Amadeus) get(ctx context.Context, path string, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}
	return doJSON(ctx, c.hc, "amadeus", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return req, nil
	}, out)
}

type amadeusHotelListResponse struct {
	Data []struct {
		HotelID string `json:"hotelId"`
		Name    string `json:"name"`
	} `json:"data"`
}

type amadeusHotelOffersResponse struct {
	Data []struct {
		Hotel struct {
			HotelID string `json:"hotelId"`
			Name    string `json:"name"`
			Address struct {
				Lines    []string `json:"lines"`
				CityName string   `json:"cityName"`
			} `json:"address"`
			Rating string `json:"rating"`
		} `json:"hotel"`
		Available bool `json:"available"`
		Offers    []struct {
			Price struct {
				Total    string `json:"total"`
				Currency string `json:"currency"`
			} `json:"price"`
		} `json:"offers"`
	} `json:"data"`
}

// Search lists available hotels near the city center: hotel ids by geocode,
// then best-rate offers for the first batch.
func (c *Amadeus) Search(ctx context.Context, city types.City) ([]types.Hotel, error) {
	if !c.Configured() {
		return nil, types.ErrNotConfigured
	}

	var list amadeusHotelListResponse
	path := fmt.Sprintf("/v1/reference-data/locations/hotels/by-geocode?latitude=%.4f&longitude=%.4f&radius=10&radiusUnit=KM",
		city.Latitude, city.Longitude)
	if err := c.get(ctx, path, &list); err != nil {
		return nil, fmt.Errorf("hotel list: %w", err)
	}
	if len(list.Data) == 0 {
		return nil, fmt.Errorf("no hotels near %s: %w", city.Name, types.ErrNotFound)
	}

	ids := make([]string, 0, len(list.Data))
	for _, h := range list.Data {
		ids = append(ids, h.HotelID)
		// The offers endpoint rejects long id lists; 20 is plenty.
		if len(ids) == 20 {
			break
		}
	}

	checkIn := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	checkOut := time.Now().AddDate(0, 0, 8).Format("2006-01-02")

	var offers amadeusHotelOffersResponse
	path = fmt.Sprintf("/v3/shopping/hotel-offers?hotelIds=%s&checkInDate=%s&checkOutDate=%s&adults=2&roomQuantity=1&currency=EUR&bestRateOnly=true",
		url.QueryEscape(strings.Join(ids, ",")), checkIn, checkOut)
	if err := c.get(ctx, path, &offers); err != nil {
		return nil, fmt.Errorf("hotel offers: %w", err)
	}

	hotels := make([]types.Hotel, 0, len(offers.Data))
	for _, item := range offers.Data {
		if !item.Available || len(item.Offers) == 0 {
			continue
		}
		price, err := strconv.ParseFloat(item.Offers[0].Price.Total, 64)
		if err != nil || price <= 0 {
			continue
		}
		address := item.Hotel.Address.CityName
		if len(item.Hotel.Address.Lines) > 0 {
			address = item.Hotel.Address.Lines[0] + ", " + address
		}
		hotels = append(hotels, types.Hotel{
			Name:          item.Hotel.Name,
			PricePerNight: price,
			Currency:      item.Offers[0].Price.Currency,
			Rating:        parseStarRating(item.Hotel.Rating),
			Address:       address,
			Provider:      c.Name(),
		})
	}
	return hotels, nil
}

// parseStarRating converts the Amadeus 1-5 star string. Unknown or missing
// ratings default to 4.0.
func parseStarRating(s string) float64 {
	r, err := strconv.ParseFloat(s, 64)
	if err != nil || r <= 0 {
		return 4.0
	}
	if r > 5 {
		r = 5
	}
	return r
}
