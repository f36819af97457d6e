package trip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/roamio/roamio-api/internal/cache"
	"github.com/roamio/roamio-api/internal/domain/city"
	"github.com/roamio/roamio-api/internal/domain/routing"
	"github.com/roamio/roamio-api/internal/types"
	"github.com/roamio/roamio-api/pkg/config"
	"github.com/roamio/roamio-api/pkg/observability"
)

// MockWeatherProvider is a mock implementation of WeatherProvider.
type MockWeatherProvider struct {
	mock.Mock
}

func (m *MockWeatherProvider) Current(ctx context.Context, lat, lon float64) (types.Weather, error) {
	args := m.Called(ctx, lat, lon)
	return args.Get(0).(types.Weather), args.Error(1)
}

func (m *MockWeatherProvider) Forecast(ctx context.Context, lat, lon float64) ([]types.ForecastEntry, error) {
	args := m.Called(ctx, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ForecastEntry), args.Error(1)
}

func (m *MockWeatherProvider) Configured() bool {
	return m.Called().Bool(0)
}

// MockHotelProvider is a mock implementation of HotelProvider.
type MockHotelProvider struct {
	mock.Mock
	name string
}

func (m *MockHotelProvider) Name() string { return m.name }

func (m *MockHotelProvider) Configured() bool {
	return m.Called().Bool(0)
}

func (m *MockHotelProvider) Search(ctx context.Context, c types.City) ([]types.Hotel, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Hotel), args.Error(1)
}

// MockPlaceProvider is a mock implementation of PlaceProvider.
type MockPlaceProvider struct {
	mock.Mock
	name string
}

func (m *MockPlaceProvider) Name() string { return m.name }

func (m *MockPlaceProvider) Configured() bool {
	return m.Called().Bool(0)
}

func (m *MockPlaceProvider) Search(ctx context.Context, c types.City) ([]types.Place, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Place), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTTLs() config.CacheConfig {
	return config.CacheConfig{
		WeatherTTL: time.Minute,
		PlacesTTL:  time.Minute,
		HotelsTTL:  time.Minute,
		RoutesTTL:  time.Minute,
		PlanTTL:    time.Minute,
	}
}

func newTestService(t *testing.T, providers Providers) *ServiceImpl {
	t.Helper()
	catalog, err := city.NewService(testLogger())
	require.NoError(t, err)
	planner := routing.NewService(catalog, nil, testLogger())
	return NewService(catalog, planner, providers, cache.NewMemory(time.Minute), testTTLs(), testLogger())
}

func TestPlanTripRoutesOnly(t *testing.T) {
	svc := newTestService(t, Providers{})

	plan, err := svc.PlanTrip(context.Background(), PlanRequest{Start: "Paris", End: "Rome"})
	require.NoError(t, err)

	assert.NotEmpty(t, plan.ID)
	assert.Len(t, plan.Routes, len(types.AllStrategies))
	assert.Empty(t, plan.Stops, "enrichment runs only when requested")
	for _, route := range plan.Routes {
		assert.GreaterOrEqual(t, route.DistanceKm, 0.0)
		assert.GreaterOrEqual(t, route.DurationHours, 0.0)
	}
}

func TestPlanTripUnknownCity(t *testing.T) {
	svc := newTestService(t, Providers{})

	_, err := svc.PlanTrip(context.Background(), PlanRequest{Start: "Atlantis", End: "Rome"})
	assert.ErrorIs(t, err, types.ErrCityNotFound)
}

func TestPlanTripValidation(t *testing.T) {
	svc := newTestService(t, Providers{})

	t.Run("missing end city", func(t *testing.T) {
		_, err := svc.PlanTrip(context.Background(), PlanRequest{Start: "Paris"})
		assert.ErrorIs(t, err, types.ErrBadRequest)
	})

	t.Run("unknown strategy name", func(t *testing.T) {
		_, err := svc.PlanTrip(context.Background(), PlanRequest{
			Start: "Paris", End: "Rome", StrategyNames: []string{"teleport"},
		})
		assert.ErrorIs(t, err, types.ErrBadRequest)
	})
}

func TestPlanTripEnrichmentLive(t *testing.T) {
	weather := new(MockWeatherProvider)
	weather.On("Configured").Return(true)
	weather.On("Current", mock.Anything, mock.Anything, mock.Anything).
		Return(types.Weather{Temperature: 19.5, Conditions: "clear sky"}, nil)
	weather.On("Forecast", mock.Anything, mock.Anything, mock.Anything).
		Return([]types.ForecastEntry{{Temperature: 21}}, nil)

	hotels := &MockHotelProvider{name: "amadeus"}
	hotels.On("Configured").Return(true)
	hotels.On("Search", mock.Anything, mock.Anything).
		Return([]types.Hotel{{Name: "Hotel Test", PricePerNight: 120}}, nil)

	restaurants := &MockPlaceProvider{name: "foursquare"}
	restaurants.On("Configured").Return(true)
	restaurants.On("Search", mock.Anything, mock.Anything).
		Return([]types.Place{{Name: "Chez Test", Category: "restaurant"}}, nil)

	attractions := &MockPlaceProvider{name: "opentripmap"}
	attractions.On("Configured").Return(true)
	attractions.On("Search", mock.Anything, mock.Anything).
		Return([]types.Place{{Name: "Test Cathedral", Category: "monument"}}, nil)

	svc := newTestService(t, Providers{
		Weather:     weather,
		Hotels:      []HotelProvider{hotels},
		Restaurants: []PlaceProvider{restaurants},
		Attractions: []PlaceProvider{attractions},
	})

	plan, err := svc.PlanTrip(context.Background(), PlanRequest{
		Start: "Paris", End: "Berlin",
		StrategyNames: []string{"fastest"},
		Enrich:        true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, plan.Stops)

	for _, stop := range plan.Stops {
		require.NotNil(t, stop.Weather)
		require.NotNil(t, stop.Hotels)
		require.NotNil(t, stop.Restaurants)
		require.NotNil(t, stop.Attractions)

		assert.Equal(t, types.SourceLive, stop.Weather.Source)
		assert.Equal(t, types.SourceLive, stop.Hotels.Source)
		assert.Equal(t, types.SourceLive, stop.Restaurants.Source)
		assert.Equal(t, types.SourceLive, stop.Attractions.Source)
		assert.Equal(t, 19.5, stop.Weather.Current.Temperature)
	}
}

func TestPlanTripEnrichmentDegradesToFallback(t *testing.T) {
	weather := new(MockWeatherProvider)
	weather.On("Configured").Return(true)
	weather.On("Current", mock.Anything, mock.Anything, mock.Anything).
		Return(types.Weather{}, errors.New("upstream 503"))

	hotels := &MockHotelProvider{name: "amadeus"}
	hotels.On("Configured").Return(false)

	svc := newTestService(t, Providers{
		Weather: weather,
		Hotels:  []HotelProvider{hotels},
	})

	plan, err := svc.PlanTrip(context.Background(), PlanRequest{
		Start: "Paris", End: "Berlin",
		StrategyNames: []string{"fastest"},
		Enrich:        true,
	})
	require.NoError(t, err, "provider failures must never fail the plan")
	require.NotEmpty(t, plan.Stops)

	stop := plan.Stops[0]
	require.NotNil(t, stop.Weather)
	assert.Equal(t, types.SourceFallback, stop.Weather.Source)
	assert.NotEmpty(t, stop.Weather.Current.Conditions)

	require.NotNil(t, stop.Hotels)
	assert.Equal(t, types.SourceFallback, stop.Hotels.Source)
	assert.NotEmpty(t, stop.Hotels.Hotels)

	// No restaurant/attraction providers at all still yields fallbacks.
	require.NotNil(t, stop.Restaurants)
	assert.Equal(t, types.SourceFallback, stop.Restaurants.Source)
	assert.NotEmpty(t, stop.Restaurants.Places)
}

func TestWeatherFailureCountsErrorOutcome(t *testing.T) {
	weather := new(MockWeatherProvider)
	weather.On("Configured").Return(true)
	weather.On("Current", mock.Anything, mock.Anything, mock.Anything).
		Return(types.Weather{}, errors.New("upstream 503"))

	svc := newTestService(t, Providers{Weather: weather})

	paris, err := svc.catalog.Get(context.Background(), "Paris")
	require.NoError(t, err)

	errBefore := testutil.ToFloat64(observability.ProviderCallsTotal.WithLabelValues("openweather", observability.OutcomeError))
	fallbackBefore := testutil.ToFloat64(observability.ProviderCallsTotal.WithLabelValues("openweather", observability.OutcomeFallback))

	section := svc.weatherSection(context.Background(), paris)
	require.NotNil(t, section)
	assert.Equal(t, types.SourceFallback, section.Source)

	errAfter := testutil.ToFloat64(observability.ProviderCallsTotal.WithLabelValues("openweather", observability.OutcomeError))
	fallbackAfter := testutil.ToFloat64(observability.ProviderCallsTotal.WithLabelValues("openweather", observability.OutcomeFallback))
	assert.Equal(t, errBefore+1, errAfter, "provider failure is counted before falling back")
	assert.Equal(t, fallbackBefore+1, fallbackAfter)
}

func TestHotelProviderOrdering(t *testing.T) {
	primary := &MockHotelProvider{name: "amadeus"}
	primary.On("Configured").Return(true)
	primary.On("Search", mock.Anything, mock.Anything).
		Return(nil, errors.New("quota exhausted"))

	secondary := &MockHotelProvider{name: "booking"}
	secondary.On("Configured").Return(true)
	secondary.On("Search", mock.Anything, mock.Anything).
		Return([]types.Hotel{{Name: "Backup Inn", PricePerNight: 80, Provider: "booking"}}, nil)

	svc := newTestService(t, Providers{Hotels: []HotelProvider{primary, secondary}})

	paris, err := svc.catalog.Get(context.Background(), "Paris")
	require.NoError(t, err)

	section := svc.hotelSection(context.Background(), paris)
	require.NotNil(t, section)
	assert.Equal(t, types.SourceLive, section.Source)
	require.Len(t, section.Hotels, 1)
	assert.Equal(t, "Backup Inn", section.Hotels[0].Name)

	primary.AssertExpectations(t)
	secondary.AssertExpectations(t)
}

func TestTripDataRoundtrip(t *testing.T) {
	svc := newTestService(t, Providers{})
	ctx := context.Background()

	plan, err := svc.PlanTrip(ctx, PlanRequest{Start: "Paris", End: "Rome"})
	require.NoError(t, err)

	t.Run("stored plan is retrievable", func(t *testing.T) {
		got, err := svc.TripData(ctx, plan.ID)
		require.NoError(t, err)
		assert.Equal(t, plan.ID, got.ID)
		assert.Len(t, got.Routes, len(plan.Routes))
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := svc.TripData(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, types.ErrBadRequest)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.TripData(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, types.ErrPlanExpired)
	})
}

func TestRouteCaching(t *testing.T) {
	svc := newTestService(t, Providers{})
	ctx := context.Background()

	first, err := svc.PlanTrip(ctx, PlanRequest{Start: "Paris", End: "Rome", StrategyNames: []string{"scenic"}})
	require.NoError(t, err)
	second, err := svc.PlanTrip(ctx, PlanRequest{Start: "paris", End: "ROME", StrategyNames: []string{"scenic"}})
	require.NoError(t, err)

	// Same normalized pair and strategy set hits the cached routes.
	assert.Equal(t, first.Routes, second.Routes)
	assert.NotEqual(t, first.ID, second.ID, "each request still gets its own plan id")
}

func TestUniqueStops(t *testing.T) {
	a := types.City{Name: "A"}
	b := types.City{Name: "B"}
	mid := types.City{Name: "Mid"}

	routes := []types.RoutePlan{
		{Start: a, End: b, Waypoints: []types.City{mid}},
		{Start: a, End: b},
	}

	stops, truncated := uniqueStops(routes)
	require.Len(t, stops, 3)
	assert.False(t, truncated)
	assert.Equal(t, "A", stops[0].Name)
	assert.Equal(t, "Mid", stops[1].Name)
	assert.Equal(t, "B", stops[2].Name)
}

func TestUniqueStopsCapReported(t *testing.T) {
	a := types.City{Name: "A"}
	b := types.City{Name: "B"}
	waypoints := make([]types.City, maxEnrichedStops+3)
	for i := range waypoints {
		waypoints[i] = types.City{Name: fmt.Sprintf("Stop %d", i)}
	}

	stops, truncated := uniqueStops([]types.RoutePlan{{Start: a, End: b, Waypoints: waypoints}})
	assert.Len(t, stops, maxEnrichedStops)
	assert.True(t, truncated)
}

func TestPlanTripReportsPartialEnrichment(t *testing.T) {
	a := types.City{Name: "A", Latitude: 48, Longitude: 2}
	b := types.City{Name: "B", Latitude: 52, Longitude: 13}
	waypoints := make([]types.City, maxEnrichedStops+3)
	for i := range waypoints {
		waypoints[i] = types.City{Name: fmt.Sprintf("Stop %d", i), Latitude: 49, Longitude: 5}
	}

	stops, truncated := uniqueStops([]types.RoutePlan{{Start: a, End: b, Waypoints: waypoints}})
	svc := newTestService(t, Providers{})

	plan := &types.TripPlan{
		ID:             "test",
		Stops:          svc.enrichStops(context.Background(), stops),
		StopsTruncated: truncated,
	}
	assert.True(t, plan.StopsTruncated)
	assert.Len(t, plan.Stops, maxEnrichedStops)
	for _, stop := range plan.Stops {
		assert.NotNil(t, stop.Weather)
	}
}
