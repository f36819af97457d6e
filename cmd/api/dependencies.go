package api

import (
	"fmt"
	"log/slog"

	"github.com/roamio/roamio-api/internal/cache"
	"github.com/roamio/roamio-api/internal/clients"
	"github.com/roamio/roamio-api/internal/domain/city"
	"github.com/roamio/roamio-api/internal/domain/routing"
	"github.com/roamio/roamio-api/internal/domain/trip"
	"github.com/roamio/roamio-api/pkg/config"
)

// Dependencies holds all application dependencies.
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Store cache.Store

	// Clients
	OpenRoute    *clients.OpenRoute
	OpenWeather  *clients.OpenWeather
	Amadeus      *clients.Amadeus
	Booking      *clients.Booking
	Foursquare   *clients.Foursquare
	OpenTripMap  *clients.OpenTripMap
	GooglePlaces *clients.GooglePlaces

	// Services
	CityCatalog city.Service
	Planner     routing.Service
	TripService trip.Service

	// Handlers
	TripHandler *trip.Handler
	CityHandler *city.Handler
}

// InitDependencies initializes all application dependencies.
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initCache()
	deps.initClients()

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initCache selects the configured backend; an unreachable Redis downgrades
// to the in-process store rather than blocking startup.
func (d *Dependencies) initCache() {
	if d.Config.Cache.Backend == "redis" {
		store, err := cache.NewRedis(d.Config.Cache.RedisAddr, d.Config.Cache.RedisPassword,
			d.Config.Cache.RedisDB, d.Logger)
		if err == nil {
			d.Store = store
			d.Logger.Info("cache backend ready", "backend", "redis", "addr", d.Config.Cache.RedisAddr)
			return
		}
		d.Logger.Warn("redis unreachable, falling back to in-process cache", "error", err)
	}

	d.Store = cache.NewMemory(d.Config.Cache.PlacesTTL)
	d.Logger.Info("cache backend ready", "backend", "memory")
}

func (d *Dependencies) initClients() {
	p := d.Config.Providers
	d.OpenRoute = clients.NewOpenRoute(p.OpenRoute, p.Timeout, d.Logger)
	d.OpenWeather = clients.NewOpenWeather(p.OpenWeather, p.Timeout, d.Logger)
	d.Amadeus = clients.NewAmadeus(p.Amadeus, p.Timeout, d.Logger)
	d.Booking = clients.NewBooking(p.RapidAPI, p.Timeout, d.Logger)
	d.Foursquare = clients.NewFoursquare(p.Foursquare, p.Timeout, d.Logger)
	d.OpenTripMap = clients.NewOpenTripMap(p.OpenTripMap, p.Timeout, d.Logger)
	d.GooglePlaces = clients.NewGooglePlaces(p.GooglePlaces, p.Timeout, d.Logger)

	for name, configured := range map[string]bool{
		"openroute":    d.OpenRoute.Configured(),
		"openweather":  d.OpenWeather.Configured(),
		"amadeus":      d.Amadeus.Configured(),
		"booking":      d.Booking.Configured(),
		"foursquare":   d.Foursquare.Configured(),
		"opentripmap":  d.OpenTripMap.Configured(),
		"googleplaces": d.GooglePlaces.Configured(),
	} {
		if !configured {
			d.Logger.Warn("provider not configured, fallback data will be served", "provider", name)
		}
	}
}

func (d *Dependencies) initServices() error {
	catalog, err := city.NewService(d.Logger)
	if err != nil {
		return fmt.Errorf("loading city catalog: %w", err)
	}
	d.CityCatalog = catalog

	d.Planner = routing.NewService(d.CityCatalog, d.OpenRoute, d.Logger)

	providers := trip.Providers{
		Weather: d.OpenWeather,
		Hotels:  []trip.HotelProvider{d.Amadeus, d.Booking},
		Restaurants: []trip.PlaceProvider{
			d.Foursquare,
			clients.GoogleRestaurants{GooglePlaces: d.GooglePlaces},
		},
		Attractions: []trip.PlaceProvider{
			d.OpenTripMap,
			clients.GoogleAttractions{GooglePlaces: d.GooglePlaces},
		},
	}
	d.TripService = trip.NewService(d.CityCatalog, d.Planner, providers, d.Store, d.Config.Cache, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

func (d *Dependencies) initHandlers() {
	d.TripHandler = trip.NewHandler(d.TripService, d.Logger)
	d.CityHandler = city.NewHandler(d.CityCatalog, d.Logger)
	d.Logger.Info("handlers initialized")
}
