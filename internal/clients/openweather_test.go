package clients

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamio/roamio-api/internal/types"
	"github.com/roamio/roamio-api/pkg/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newOpenWeatherAgainst(srv *httptest.Server) *OpenWeather {
	return NewOpenWeather(config.ProviderConfig{APIKey: "test-key", BaseURL: srv.URL},
		5*time.Second, discardLogger())
}

func TestOpenWeatherCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "48.8566", r.URL.Query().Get("lat"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"weather":[{"main":"Clouds","description":"scattered clouds"}],
			"main":{"temp":18.3,"feels_like":17.9,"humidity":62},
			"wind":{"speed":4.1},
			"name":"Paris",
			"dt":1755000000
		}`))
	}))
	defer srv.Close()

	c := newOpenWeatherAgainst(srv)
	w, err := c.Current(context.Background(), 48.8566, 2.3522)
	require.NoError(t, err)

	assert.Equal(t, "Paris", w.City)
	assert.Equal(t, 18.3, w.Temperature)
	assert.Equal(t, "scattered clouds", w.Conditions)
	assert.Equal(t, 62, w.Humidity)
	assert.Equal(t, time.Unix(1755000000, 0).UTC(), w.Timestamp)
}

func TestOpenWeatherForecastKeepsMiddaySlots(t *testing.T) {
	midday := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC).Unix()
	morning := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC).Unix()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/forecast", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"list":[
			{"dt":` + strconv.FormatInt(morning, 10) + `,"main":{"temp":15.0},"weather":[{"description":"mist"}]},
			{"dt":` + strconv.FormatInt(midday, 10) + `,"main":{"temp":22.5},"weather":[{"description":"clear sky"}]}
		]}`))
	}))
	defer srv.Close()

	c := newOpenWeatherAgainst(srv)
	entries, err := c.Forecast(context.Background(), 48.8566, 2.3522)
	require.NoError(t, err)

	require.Len(t, entries, 1, "only the midday slot survives thinning")
	assert.Equal(t, 22.5, entries[0].Temperature)
	assert.Equal(t, "clear sky", entries[0].Conditions)
}

func TestOpenWeatherNotConfigured(t *testing.T) {
	c := NewOpenWeather(config.ProviderConfig{}, time.Second, discardLogger())
	assert.False(t, c.Configured())

	_, err := c.Current(context.Background(), 48.8566, 2.3522)
	assert.ErrorIs(t, err, types.ErrNotConfigured)
}

func TestDoJSONRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	err := doJSON(context.Background(), srv.Client(), "test", func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	}, &out)

	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDoJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"error":"bad key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := doJSON(context.Background(), srv.Client(), "test", func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx responses are permanent")
}
