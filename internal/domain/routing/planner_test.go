package routing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/roamio/roamio-api/internal/domain/city"
	"github.com/roamio/roamio-api/internal/geo"
	"github.com/roamio/roamio-api/internal/types"
)

// MockDirectionsClient is a mock implementation of DirectionsClient.
type MockDirectionsClient struct {
	mock.Mock
}

func (m *MockDirectionsClient) Directions(ctx context.Context, stops []types.City) ([]types.RouteLeg, error) {
	args := m.Called(ctx, stops)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RouteLeg), args.Error(1)
}

func (m *MockDirectionsClient) Configured() bool {
	return m.Called().Bool(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCities(t *testing.T) (city.Service, types.City, types.City) {
	t.Helper()
	catalog, err := city.NewService(testLogger())
	require.NoError(t, err)

	paris, err := catalog.Get(context.Background(), "Paris")
	require.NoError(t, err)
	rome, err := catalog.Get(context.Background(), "Rome")
	require.NoError(t, err)
	return catalog, paris, rome
}

func TestPlanInvariants(t *testing.T) {
	catalog, paris, rome := testCities(t)
	svc := NewService(catalog, nil, testLogger())

	plans, err := svc.Plan(context.Background(), paris, rome, types.AllStrategies)
	require.NoError(t, err)
	require.Len(t, plans, len(types.AllStrategies))

	for _, plan := range plans {
		assert.GreaterOrEqual(t, plan.DistanceKm, 0.0)
		assert.GreaterOrEqual(t, plan.DurationHours, 0.0)
		assert.Greater(t, plan.CostEstimate, 0.0)
		assert.Equal(t, "estimated", plan.Source)
		assert.Len(t, plan.Legs, len(plan.Waypoints)+1)

		// No duplicate waypoints, and none equal to the endpoints.
		seen := map[string]bool{paris.Name: true, rome.Name: true}
		for _, w := range plan.Waypoints {
			assert.False(t, seen[w.Name], "strategy %s repeats waypoint %s", plan.Strategy, w.Name)
			seen[w.Name] = true
		}

		// Waypoints advance along the corridor.
		last := -1.0
		for _, w := range plan.Waypoints {
			p := geo.Progress(paris.Latitude, paris.Longitude, w.Latitude, w.Longitude, rome.Latitude, rome.Longitude)
			assert.Greater(t, p, last, "strategy %s waypoints out of order", plan.Strategy)
			last = p
		}

		// Leg chain is contiguous from start to end.
		require.NotEmpty(t, plan.Legs)
		assert.Equal(t, paris.Name, plan.Legs[0].From)
		assert.Equal(t, rome.Name, plan.Legs[len(plan.Legs)-1].To)
	}
}

func TestPlanStrategiesDiffer(t *testing.T) {
	catalog, paris, rome := testCities(t)
	svc := NewService(catalog, nil, testLogger())

	plans, err := svc.Plan(context.Background(), paris, rome,
		[]types.Strategy{types.StrategyFastest, types.StrategyScenic})
	require.NoError(t, err)
	require.Len(t, plans, 2)

	fastest, scenic := plans[0], plans[1]
	assert.LessOrEqual(t, len(fastest.Waypoints), len(scenic.Waypoints),
		"fastest should not detour through more cities than scenic")
	assert.LessOrEqual(t, fastest.DistanceKm, scenic.DistanceKm+1,
		"fastest should not be longer than scenic")
}

func TestPlanBudgetPrefersCheapCountries(t *testing.T) {
	catalog, err := city.NewService(testLogger())
	require.NoError(t, err)

	berlin, err := catalog.Get(context.Background(), "Berlin")
	require.NoError(t, err)
	budapest, err := catalog.Get(context.Background(), "Budapest")
	require.NoError(t, err)

	svc := NewService(catalog, nil, testLogger())
	plans, err := svc.Plan(context.Background(), berlin, budapest,
		[]types.Strategy{types.StrategyBudget, types.StrategyCultural})
	require.NoError(t, err)

	budget, cultural := plans[0], plans[1]
	assert.Less(t, budget.CostEstimate, cultural.CostEstimate)
}

func TestPlanRejectsBadInput(t *testing.T) {
	catalog, paris, rome := testCities(t)
	svc := NewService(catalog, nil, testLogger())

	t.Run("identical endpoints", func(t *testing.T) {
		_, err := svc.Plan(context.Background(), paris, paris, nil)
		assert.ErrorIs(t, err, types.ErrBadRequest)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := svc.Plan(context.Background(), paris, rome, []types.Strategy{"teleport"})
		assert.ErrorIs(t, err, types.ErrInvalidStrategy)
	})
}

func TestPlanDirectionsEnrichment(t *testing.T) {
	catalog, paris, rome := testCities(t)

	t.Run("live directions replace estimates", func(t *testing.T) {
		directions := new(MockDirectionsClient)
		directions.On("Configured").Return(true)
		directions.On("Directions", mock.Anything, mock.Anything).Return([]types.RouteLeg{
			{From: paris.Name, To: rome.Name, DistanceKm: 1420.5, DurationHours: 13.2},
		}, nil).Once()

		svc := NewService(catalog, directions, testLogger())
		plans, err := svc.Plan(context.Background(), paris, rome, []types.Strategy{types.StrategyFastest})
		require.NoError(t, err)
		require.Len(t, plans, 1)

		assert.Equal(t, types.SourceLive, plans[0].Source)
		assert.InDelta(t, 1420.5, plans[0].DistanceKm, 0.1)
		directions.AssertExpectations(t)
	})

	t.Run("directions failure keeps estimates", func(t *testing.T) {
		directions := new(MockDirectionsClient)
		directions.On("Configured").Return(true)
		directions.On("Directions", mock.Anything, mock.Anything).
			Return(nil, errors.New("upstream 502")).Once()

		svc := NewService(catalog, directions, testLogger())
		plans, err := svc.Plan(context.Background(), paris, rome, []types.Strategy{types.StrategyFastest})
		require.NoError(t, err)
		require.Len(t, plans, 1)

		assert.Equal(t, "estimated", plans[0].Source)
		assert.Greater(t, plans[0].DistanceKm, 0.0)
	})
}
