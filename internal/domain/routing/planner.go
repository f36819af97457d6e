// Package routing builds one itinerary per requested strategy: corridor
// candidates come from the city catalog, each strategy scores them
// differently, and legs are estimated locally then enriched from the
// directions provider when one is configured.
package routing

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/roamio/roamio-api/internal/domain/city"
	"github.com/roamio/roamio-api/internal/geo"
	"github.com/roamio/roamio-api/internal/types"
	"github.com/roamio/roamio-api/pkg/observability"
)

// fuelCostPerKm approximates European fuel spend for a mid-size car.
const fuelCostPerKm = 0.11

// drivingHoursPerDay decides how many overnight stays a route needs.
const drivingHoursPerDay = 6.0

// DirectionsClient is the slice of the OpenRouteService client the planner
// needs.
type DirectionsClient interface {
	Directions(ctx context.Context, stops []types.City) ([]types.RouteLeg, error)
	Configured() bool
}

type Service interface {
	Plan(ctx context.Context, start, end types.City, strategies []types.Strategy) ([]types.RoutePlan, error)
}

type ServiceImpl struct {
	logger     *slog.Logger
	catalog    city.Service
	directions DirectionsClient
}

var _ Service = (*ServiceImpl)(nil)

func NewService(catalog city.Service, directions DirectionsClient, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:     logger,
		catalog:    catalog,
		directions: directions,
	}
}

// Plan produces one RoutePlan per requested strategy. A directions-provider
// failure degrades that plan to local estimates, never fails it.
func (s *ServiceImpl) Plan(ctx context.Context, start, end types.City, strategies []types.Strategy) ([]types.RoutePlan, error) {
	ctx, span := otel.Tracer("RoutePlanner").Start(ctx, "Plan")
	defer span.End()

	if start.Name == end.Name {
		return nil, fmt.Errorf("start and end city are identical: %w", types.ErrBadRequest)
	}
	if len(strategies) == 0 {
		strategies = types.AllStrategies
	}

	plans := make([]types.RoutePlan, 0, len(strategies))
	for _, strategy := range strategies {
		p, ok := profiles[strategy]
		if !ok {
			span.SetStatus(codes.Error, "unknown strategy")
			return nil, fmt.Errorf("%q: %w", strategy, types.ErrInvalidStrategy)
		}
		plans = append(plans, s.planOne(ctx, start, end, strategy, p))
	}

	span.SetAttributes(attribute.Int("routes.count", len(plans)))
	return plans, nil
}

func (s *ServiceImpl) planOne(ctx context.Context, start, end types.City, strategy types.Strategy, p profile) types.RoutePlan {
	l := s.logger.With(slog.String("strategy", string(strategy)),
		slog.String("from", start.Name), slog.String("to", end.Name))

	direct := geo.Haversine(start.Latitude, start.Longitude, end.Latitude, end.Longitude)
	limit := int(math.Ceil(direct/1000)) * p.maxWaypointsPer1000Km
	if limit < 1 {
		limit = p.maxWaypointsPer1000Km
	}

	candidates := s.catalog.Corridor(ctx, start, end, p.maxDetourKm)
	waypoints := selectWaypoints(candidates, start, end, p, limit)

	plan := types.RoutePlan{
		Strategy:  strategy,
		Start:     start,
		End:       end,
		Waypoints: waypoints,
		Source:    "estimated",
	}

	stops := plan.Stops()
	plan.Legs = estimateLegs(stops, p)

	if s.directions != nil && s.directions.Configured() {
		if legs, err := s.directions.Directions(ctx, stops); err != nil {
			observability.ProviderCallsTotal.WithLabelValues("openroute", observability.OutcomeFallback).Inc()
			l.Warn("directions enrichment failed, keeping estimates", "error", err)
		} else {
			observability.ProviderCallsTotal.WithLabelValues("openroute", observability.OutcomeLive).Inc()
			plan.Legs = legs
			plan.Source = types.SourceLive
		}
	}

	for _, leg := range plan.Legs {
		plan.DistanceKm += leg.DistanceKm
		plan.DurationHours += leg.DurationHours
	}
	plan.DistanceKm = math.Round(plan.DistanceKm*10) / 10
	plan.DurationHours = math.Round(plan.DurationHours*10) / 10
	plan.CostEstimate = estimateCost(plan, p)

	return plan
}

// estimateLegs derives road distance and drive time from great-circle
// distance when no directions provider is available.
func estimateLegs(stops []types.City, p profile) []types.RouteLeg {
	legs := make([]types.RouteLeg, 0, len(stops)-1)
	for i := 0; i < len(stops)-1; i++ {
		dist := geo.Haversine(stops[i].Latitude, stops[i].Longitude,
			stops[i+1].Latitude, stops[i+1].Longitude) * p.roadFactor
		legs = append(legs, types.RouteLeg{
			From:          stops[i].Name,
			To:            stops[i+1].Name,
			DistanceKm:    math.Round(dist*10) / 10,
			DurationHours: math.Round(dist/p.avgSpeedKmh*10) / 10,
		})
	}
	return legs
}

// estimateCost combines fuel over the full distance with lodging for each
// overnight stay the drive time and waypoint count imply.
func estimateCost(plan types.RoutePlan, p profile) float64 {
	fuel := plan.DistanceKm * fuelCostPerKm
	nights := len(plan.Waypoints) + int(plan.DurationHours/drivingHoursPerDay)
	lodging := float64(nights) * p.nightlyRateEUR
	return math.Round(fuel + lodging)
}
