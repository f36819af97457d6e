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

// Booking wraps the Booking.com search exposed through RapidAPI. It is the
// secondary hotel source behind Amadeus.
type Booking struct {
	cfg    config.ProviderConfig
	hc     *http.Client
	logger *slog.Logger
}

func NewBooking(cfg config.ProviderConfig, timeout time.Duration, logger *slog.Logger) *Booking {
	return &Booking{cfg: cfg, hc: newHTTPClient(timeout), logger: logger}
}

func (c *Booking) Name() string     { return "booking" }
func (c *Booking) Configured() bool { return c.cfg.APIKey != "" }

type bookingSearchResponse struct {
	Result []struct {
		HotelName     string  `json:"hotel_name"`
		ReviewScore   float64 `json:"review_score"`
		MinTotalPrice float64 `json:"min_total_price"`
		Currency      string  `json:"currencycode"`
		Address       string  `json:"address"`
		City          string  `json:"city"`
	} `json:"result"`
}

// Search lists hotels around the city center for a one-night stay a week
// out, the same synthetic window the Amadeus client uses.
func (c *Booking) Search(ctx context.Context, city types.City) ([]types.Hotel, error) {
	if !c.Configured() {
		return nil, types.ErrNotConfigured
	}

	checkIn := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	checkOut := time.Now().AddDate(0, 0, 8).Format("2006-01-02")

	var resp bookingSearchResponse
	err := doJSON(ctx, c.hc, "booking", func(ctx context.Context) (*http.Request, error) {
		q := url.Values{}
		q.Set("latitude", fmt.Sprintf("%.4f", city.Latitude))
		q.Set("longitude", fmt.Sprintf("%.4f", city.Longitude))
		q.Set("checkin_date", checkIn)
		q.Set("checkout_date", checkOut)
		q.Set("adults_number", "2")
		q.Set("room_number", "1")
		q.Set("order_by", "popularity")
		q.Set("units", "metric")
		q.Set("filter_by_currency", "EUR")
		q.Set("locale", "en-gb")
		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			c.cfg.BaseURL+"/v1/hotels/search-by-coordinates?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-RapidAPI-Key", c.cfg.APIKey)
		req.Header.Set("X-RapidAPI-Host", "booking-com.p.rapidapi.com")
		return req, nil
	}, &resp)
	if err != nil {
		return nil, err
	}

	hotels := make([]types.Hotel, 0, len(resp.Result))
	for _, r := range resp.Result {
		if r.MinTotalPrice <= 0 {
			continue
		}
		address := r.Address
		if address == "" {
			address = r.City
		}
		hotels = append(hotels, types.Hotel{
			Name:          r.HotelName,
			PricePerNight: r.MinTotalPrice,
			Currency:      r.Currency,
			// Booking scores 0-10; normalize to 0-5.
			Rating:   r.ReviewScore / 2,
			Address:  address,
			Provider: c.Name(),
		})
		if len(hotels) == 8 {
			break
		}
	}
	return hotels, nil
}
