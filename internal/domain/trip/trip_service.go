// Package trip aggregates the route planner and every enrichment provider
// into the trip-plan API surface. Enrichment branches run concurrently per
// stop; a failing branch degrades to fallback data and never fails the plan.
package trip

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/roamio/roamio-api/internal/cache"
	"github.com/roamio/roamio-api/internal/clients"
	"github.com/roamio/roamio-api/internal/domain/city"
	"github.com/roamio/roamio-api/internal/domain/routing"
	"github.com/roamio/roamio-api/internal/types"
	"github.com/roamio/roamio-api/pkg/config"
	"github.com/roamio/roamio-api/pkg/observability"
)

// maxEnrichedStops caps the fan-out so a four-strategy plan across a long
// corridor cannot trigger dozens of provider calls.
const maxEnrichedStops = 12

// enrichConcurrency bounds simultaneous provider calls across all stops.
const enrichConcurrency = 8

// WeatherProvider is the slice of the OpenWeatherMap client the aggregator
// needs.
type WeatherProvider interface {
	Current(ctx context.Context, lat, lon float64) (types.Weather, error)
	Forecast(ctx context.Context, lat, lon float64) ([]types.ForecastEntry, error)
	Configured() bool
}

// HotelProvider is implemented by the Amadeus and Booking clients.
type HotelProvider interface {
	Name() string
	Configured() bool
	Search(ctx context.Context, city types.City) ([]types.Hotel, error)
}

// PlaceProvider is implemented by the Foursquare, OpenTripMap and Google
// Places clients.
type PlaceProvider interface {
	Name() string
	Configured() bool
	Search(ctx context.Context, city types.City) ([]types.Place, error)
}

// Providers bundles every enrichment source. Hotel and place providers are
// ordered: the first configured one that answers wins.
type Providers struct {
	Weather     WeatherProvider
	Hotels      []HotelProvider
	Restaurants []PlaceProvider
	Attractions []PlaceProvider
}

type Service interface {
	PlanTrip(ctx context.Context, req PlanRequest) (*types.TripPlan, error)
	TripData(ctx context.Context, id string) (*types.TripPlan, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	catalog   city.Service
	planner   routing.Service
	providers Providers
	store     cache.Store
	ttl       config.CacheConfig
	now       func() time.Time
}

var _ Service = (*ServiceImpl)(nil)

func NewService(catalog city.Service, planner routing.Service, providers Providers,
	store cache.Store, ttl config.CacheConfig, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		catalog:   catalog,
		planner:   planner,
		providers: providers,
		store:     store,
		ttl:       ttl,
		now:       time.Now,
	}
}

// PlanTrip validates the request, plans one route per strategy, optionally
// enriches every stop, and retains the finished plan for later retrieval.
func (s *ServiceImpl) PlanTrip(ctx context.Context, req PlanRequest) (*types.TripPlan, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "PlanTrip")
	defer span.End()

	l := s.logger.With(slog.String("method", "PlanTrip"),
		slog.String("start", req.Start), slog.String("end", req.End))

	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}

	start, err := s.catalog.Get(ctx, req.Start)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	end, err := s.catalog.Get(ctx, req.End)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	routes, err := s.routes(ctx, start, end, req.Strategies())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "route planning failed")
		return nil, fmt.Errorf("planning routes: %w", err)
	}

	plan := &types.TripPlan{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC(),
		Routes:    routes,
	}

	if req.Enrich {
		stops, truncated := uniqueStops(routes)
		plan.Stops = s.enrichStops(ctx, stops)
		plan.StopsTruncated = truncated
		if truncated {
			l.WarnContext(ctx, "enrichment capped", slog.Int("enriched", len(stops)))
		}
	}

	s.storePlan(ctx, plan)

	l.InfoContext(ctx, "trip plan ready",
		slog.String("plan_id", plan.ID),
		slog.Int("routes", len(plan.Routes)),
		slog.Int("enriched_stops", len(plan.Stops)))
	span.SetAttributes(
		attribute.String("plan.id", plan.ID),
		attribute.Int("plan.routes", len(plan.Routes)),
	)
	return plan, nil
}

// routes plans read-through: the same city pair and strategy set within the
// TTL window reuses the cached result.
func (s *ServiceImpl) routes(ctx context.Context, start, end types.City, strategies []types.Strategy) ([]types.RoutePlan, error) {
	names := make([]string, len(strategies))
	for i, st := range strategies {
		names[i] = string(st)
	}
	key := cache.Key("routes", city.Normalize(start.Name), city.Normalize(end.Name), strings.Join(names, ","))

	if b, ok := s.store.Get(ctx, key); ok {
		var cached []types.RoutePlan
		if err := json.Unmarshal(b, &cached); err == nil {
			return cached, nil
		}
		s.store.Delete(ctx, key)
	}

	routes, err := s.planner.Plan(ctx, start, end, strategies)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(routes); err == nil {
		s.store.Set(ctx, key, b, s.ttl.RoutesTTL)
	}
	return routes, nil
}

// uniqueStops merges the stop lists of all routes, keeps first-seen order,
// and caps the result. The second return reports whether the cap cut stops
// off, so the plan can say its enrichment is partial.
func uniqueStops(routes []types.RoutePlan) ([]types.City, bool) {
	seen := make(map[string]bool)
	var stops []types.City
	for _, r := range routes {
		for _, c := range r.Stops() {
			if seen[c.Name] {
				continue
			}
			seen[c.Name] = true
			stops = append(stops, c)
		}
	}
	if len(stops) > maxEnrichedStops {
		return stops[:maxEnrichedStops], true
	}
	return stops, false
}

// enrichStops fans out weather/hotels/restaurants/attractions per stop.
// Branches write disjoint fields, so no locking is needed beyond the group
// wait.
func (s *ServiceImpl) enrichStops(ctx context.Context, stops []types.City) []types.StopEnrichment {
	ctx, span := otel.Tracer("TripService").Start(ctx, "enrichStops")
	defer span.End()

	enriched := make([]types.StopEnrichment, len(stops))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)

	for i, stop := range stops {
		i, stop := i, stop
		enriched[i].City = stop

		g.Go(func() error {
			enriched[i].Weather = s.weatherSection(ctx, stop)
			return nil
		})
		g.Go(func() error {
			enriched[i].Hotels = s.hotelSection(ctx, stop)
			return nil
		})
		g.Go(func() error {
			enriched[i].Restaurants = s.placeSection(ctx, stop, "restaurants", s.providers.Restaurants, clients.FallbackRestaurants)
			return nil
		})
		g.Go(func() error {
			enriched[i].Attractions = s.placeSection(ctx, stop, "attractions", s.providers.Attractions, clients.FallbackAttractions)
			return nil
		})
	}

	// Branches degrade instead of erroring, so Wait only orders the writes.
	_ = g.Wait()

	span.SetAttributes(attribute.Int("stops.count", len(stops)))
	return enriched
}

func (s *ServiceImpl) weatherSection(ctx context.Context, stop types.City) *types.WeatherSection {
	key := cache.GeoKey("weather", stop.Latitude, stop.Longitude)
	if b, ok := s.store.Get(ctx, key); ok {
		var section types.WeatherSection
		if err := json.Unmarshal(b, &section); err == nil {
			return &section
		}
	}

	section := &types.WeatherSection{Source: types.SourceFallback}
	if s.providers.Weather != nil && s.providers.Weather.Configured() {
		current, err := s.providers.Weather.Current(ctx, stop.Latitude, stop.Longitude)
		if err == nil {
			section.Current = current
			section.Source = types.SourceLive
			// Forecast failure is tolerable; current conditions alone
			// still count as live data.
			if forecast, ferr := s.providers.Weather.Forecast(ctx, stop.Latitude, stop.Longitude); ferr == nil {
				section.Forecast = forecast
			}
		} else {
			s.logger.Warn("weather lookup failed", "city", stop.Name, "error", err)
			observability.ProviderCallsTotal.WithLabelValues("openweather", observability.OutcomeError).Inc()
		}
	}

	if section.Source == types.SourceFallback {
		section.Current = clients.FallbackWeather(stop, s.now())
		section.Forecast = clients.FallbackForecast(stop, s.now())
	}
	observability.ProviderCallsTotal.WithLabelValues("openweather", outcomeOf(section.Source)).Inc()

	if b, err := json.Marshal(section); err == nil {
		s.store.Set(ctx, key, b, s.ttl.WeatherTTL)
	}
	return section
}

func (s *ServiceImpl) hotelSection(ctx context.Context, stop types.City) *types.HotelSection {
	key := cache.GeoKey("hotels", stop.Latitude, stop.Longitude)
	if b, ok := s.store.Get(ctx, key); ok {
		var section types.HotelSection
		if err := json.Unmarshal(b, &section); err == nil {
			return &section
		}
	}

	section := &types.HotelSection{Source: types.SourceFallback}
	for _, provider := range s.providers.Hotels {
		if !provider.Configured() {
			continue
		}
		hotels, err := provider.Search(ctx, stop)
		if err != nil || len(hotels) == 0 {
			if err != nil {
				s.logger.Warn("hotel lookup failed", "provider", provider.Name(), "city", stop.Name, "error", err)
			}
			observability.ProviderCallsTotal.WithLabelValues(provider.Name(), observability.OutcomeError).Inc()
			continue
		}
		section.Hotels = hotels
		section.Source = types.SourceLive
		observability.ProviderCallsTotal.WithLabelValues(provider.Name(), observability.OutcomeLive).Inc()
		break
	}

	if section.Source == types.SourceFallback {
		section.Hotels = clients.FallbackHotels(stop)
	}
	sortHotelsByPrice(section.Hotels)

	if b, err := json.Marshal(section); err == nil {
		s.store.Set(ctx, key, b, s.ttl.HotelsTTL)
	}
	return section
}

func (s *ServiceImpl) placeSection(ctx context.Context, stop types.City, kind string,
	providers []PlaceProvider, fallback func(types.City) []types.Place) *types.PlaceSection {
	key := cache.GeoKeyf(kind, stop.Latitude, stop.Longitude, "v1")
	if b, ok := s.store.Get(ctx, key); ok {
		var section types.PlaceSection
		if err := json.Unmarshal(b, &section); err == nil {
			return &section
		}
	}

	section := &types.PlaceSection{Source: types.SourceFallback}
	for _, provider := range providers {
		if !provider.Configured() {
			continue
		}
		places, err := provider.Search(ctx, stop)
		if err != nil || len(places) == 0 {
			if err != nil {
				s.logger.Warn(kind+" lookup failed", "provider", provider.Name(), "city", stop.Name, "error", err)
			}
			observability.ProviderCallsTotal.WithLabelValues(provider.Name(), observability.OutcomeError).Inc()
			continue
		}
		section.Places = places
		section.Source = types.SourceLive
		observability.ProviderCallsTotal.WithLabelValues(provider.Name(), observability.OutcomeLive).Inc()
		break
	}

	if section.Source == types.SourceFallback {
		section.Places = fallback(stop)
	}

	if b, err := json.Marshal(section); err == nil {
		s.store.Set(ctx, key, b, s.ttl.PlacesTTL)
	}
	return section
}

// TripData returns a previously generated plan by id.
func (s *ServiceImpl) TripData(ctx context.Context, id string) (*types.TripPlan, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "TripData")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("malformed plan id %q: %w", id, types.ErrBadRequest)
	}

	b, ok := s.store.Get(ctx, cache.Key("plan", id))
	if !ok {
		span.SetStatus(codes.Error, "plan not found")
		return nil, types.ErrPlanExpired
	}

	var plan types.TripPlan
	if err := json.Unmarshal(b, &plan); err != nil {
		return nil, fmt.Errorf("decoding stored plan: %w", err)
	}
	return &plan, nil
}

func (s *ServiceImpl) storePlan(ctx context.Context, plan *types.TripPlan) {
	b, err := json.Marshal(plan)
	if err != nil {
		s.logger.Error("failed to encode plan for retention", "plan_id", plan.ID, "error", err)
		return
	}
	s.store.Set(ctx, cache.Key("plan", plan.ID), b, s.ttl.PlanTTL)
}

func sortHotelsByPrice(hotels []types.Hotel) {
	sort.Slice(hotels, func(i, j int) bool {
		return hotels[i].PricePerNight < hotels[j].PricePerNight
	})
}

func outcomeOf(source string) string {
	if source == types.SourceLive {
		return observability.OutcomeLive
	}
	return observability.OutcomeFallback
}
