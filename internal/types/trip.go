package types

import "time"

// Section sources distinguish live provider data from generated fallbacks.
const (
	SourceLive     = "live"
	SourceFallback = "fallback"
)

// Weather is a current-conditions snapshot for one stop.
type Weather struct {
	City        string    `json:"city"`
	Temperature float64   `json:"temperature_c"`
	FeelsLike   float64   `json:"feels_like_c"`
	Conditions  string    `json:"conditions"`
	Humidity    int       `json:"humidity"`
	WindSpeed   float64   `json:"wind_speed_ms"`
	Timestamp   time.Time `json:"timestamp"`
}

// ForecastEntry is one 3-hour slot of the 5-day forecast.
type ForecastEntry struct {
	At          time.Time `json:"at"`
	Temperature float64   `json:"temperature_c"`
	Conditions  string    `json:"conditions"`
}

// Hotel is a lodging option near a stop.
type Hotel struct {
	Name          string  `json:"name"`
	PricePerNight float64 `json:"price_per_night"`
	Currency      string  `json:"currency"`
	Rating        float64 `json:"rating"`
	Address       string  `json:"address"`
	Provider      string  `json:"provider,omitempty"`
}

// Place is a restaurant or attraction near a stop.
type Place struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Rating   float64 `json:"rating"`
	Address  string  `json:"address,omitempty"`
	Distance float64 `json:"distance_m,omitempty"`
}

// WeatherSection bundles conditions with their provenance.
type WeatherSection struct {
	Current  Weather         `json:"current"`
	Forecast []ForecastEntry `json:"forecast,omitempty"`
	Source   string          `json:"source"`
}

// HotelSection bundles lodging options with their provenance.
type HotelSection struct {
	Hotels []Hotel `json:"hotels"`
	Source string  `json:"source"`
}

// PlaceSection bundles restaurants or attractions with their provenance.
type PlaceSection struct {
	Places []Place `json:"places"`
	Source string  `json:"source"`
}

// StopEnrichment is everything gathered for a single stop. Each field is
// written by exactly one fan-out branch.
type StopEnrichment struct {
	City        City            `json:"city"`
	Weather     *WeatherSection `json:"weather,omitempty"`
	Hotels      *HotelSection   `json:"hotels,omitempty"`
	Restaurants *PlaceSection   `json:"restaurants,omitempty"`
	Attractions *PlaceSection   `json:"attractions,omitempty"`
}

// TripPlan is the aggregate response for one planning request.
type TripPlan struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Routes    []RoutePlan      `json:"routes"`
	Stops     []StopEnrichment `json:"stops,omitempty"`
	// StopsTruncated marks that the routes had more unique stops than the
	// enrichment cap and Stops covers only the first slice of them.
	StopsTruncated bool `json:"stops_truncated,omitempty"`
}
