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

// OpenWeather wraps the OpenWeatherMap current-conditions and 5-day
// forecast endpoints.
type OpenWeather struct {
	cfg    config.ProviderConfig
	hc     *http.Client
	logger *slog.Logger
}

func NewOpenWeather(cfg config.ProviderConfig, timeout time.Duration, logger *slog.Logger) *OpenWeather {
	return &OpenWeather{cfg: cfg, hc: newHTTPClient(timeout), logger: logger}
}

func (c *OpenWeather) Configured() bool { return c.cfg.APIKey != "" }

type owmCurrentResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Name string `json:"name"`
	Dt   int64  `json:"dt"`
}

// Current fetches current conditions for a coordinate, metric units.
func (c *OpenWeather) Current(ctx context.Context, lat, lon float64) (types.Weather, error) {
	if !c.Configured() {
		return types.Weather{}, types.ErrNotConfigured
	}

	var resp owmCurrentResponse
	err := doJSON(ctx, c.hc, "openweather", func(ctx context.Context) (*http.Request, error) {
		q := url.Values{}
		q.Set("lat", fmt.Sprintf("%.4f", lat))
		q.Set("lon", fmt.Sprintf("%.4f", lon))
		q.Set("units", "metric")
		q.Set("appid", c.cfg.APIKey)
		return http.NewRequestWithContext(ctx, http.MethodGet,
			c.cfg.BaseURL+"/data/2.5/weather?"+q.Encode(), nil)
	}, &resp)
	if err != nil {
		return types.Weather{}, err
	}

	conditions := ""
	if len(resp.Weather) > 0 {
		conditions = resp.Weather[0].Description
	}
	return types.Weather{
		City:        resp.Name,
		Temperature: resp.Main.Temp,
		FeelsLike:   resp.Main.FeelsLike,
		Conditions:  conditions,
		Humidity:    resp.Main.Humidity,
		WindSpeed:   resp.Wind.Speed,
		Timestamp:   time.Unix(resp.Dt, 0).UTC(),
	}, nil
}

type owmForecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"list"`
}

// Forecast fetches the 5-day/3-hour forecast, thinned to one entry per day
// (the midday slot).
func (c *OpenWeather) Forecast(ctx context.Context, lat, lon float64) ([]types.ForecastEntry, error) {
	if !c.Configured() {
		return nil, types.ErrNotConfigured
	}

	var resp owmForecastResponse
	err := doJSON(ctx, c.hc, "openweather", func(ctx context.Context) (*http.Request, error) {
		q := url.Values{}
		q.Set("lat", fmt.Sprintf("%.4f", lat))
		q.Set("lon", fmt.Sprintf("%.4f", lon))
		q.Set("units", "metric")
		q.Set("appid", c.cfg.APIKey)
		return http.NewRequestWithContext(ctx, http.MethodGet,
			c.cfg.BaseURL+"/data/2.5/forecast?"+q.Encode(), nil)
	}, &resp)
	if err != nil {
		return nil, err
	}

	var entries []types.ForecastEntry
	for _, item := range resp.List {
		at := time.Unix(item.Dt, 0).UTC()
		if at.Hour() != 12 {
			continue
		}
		conditions := ""
		if len(item.Weather) > 0 {
			conditions = item.Weather[0].Description
		}
		entries = append(entries, types.ForecastEntry{
			At:          at,
			Temperature: item.Main.Temp,
			Conditions:  conditions,
		})
	}
	return entries, nil
}
