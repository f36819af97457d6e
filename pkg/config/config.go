package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration. Values come from an
// optional config.yaml plus environment variables (ROAMIO_SERVER_PORT etc.);
// the environment wins.
type Config struct {
	Server        ServerConfig
	Cache         CacheConfig
	Providers     ProvidersConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Port               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	RateLimitPerSecond int
	RateLimitBurst     int
	AllowedOrigins     []string
}

type CacheConfig struct {
	// Backend selects "memory" or "redis".
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	WeatherTTL time.Duration
	PlacesTTL  time.Duration
	HotelsTTL  time.Duration
	RoutesTTL  time.Duration
	PlanTTL    time.Duration
}

// ProviderConfig is the common shape of a single upstream API entry.
// BaseURL is overridable so tests can point clients at a local server.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
}

type AmadeusConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
}

type ProvidersConfig struct {
	OpenRoute    ProviderConfig
	OpenWeather  ProviderConfig
	Foursquare   ProviderConfig
	OpenTripMap  ProviderConfig
	GooglePlaces ProviderConfig
	RapidAPI     ProviderConfig
	Amadeus      AmadeusConfig

	Timeout time.Duration
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	LogLevel       string
	LogJSON        bool
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

// Load reads config.yaml if present and overlays environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/roamio")

	v.SetEnvPrefix("roamio")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, the service can run on env vars alone.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readtimeout", 15*time.Second)
	v.SetDefault("server.writetimeout", 30*time.Second)
	v.SetDefault("server.shutdowntimeout", 10*time.Second)
	v.SetDefault("server.ratelimitpersecond", 50)
	v.SetDefault("server.ratelimitburst", 100)
	v.SetDefault("server.allowedorigins", []string{"http://localhost:3000", "http://localhost:5173"})

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redisaddr", "localhost:6379")
	v.SetDefault("cache.redisdb", 0)
	v.SetDefault("cache.weatherttl", 10*time.Minute)
	v.SetDefault("cache.placesttl", 6*time.Hour)
	v.SetDefault("cache.hotelsttl", time.Hour)
	v.SetDefault("cache.routesttl", time.Hour)
	v.SetDefault("cache.planttl", 24*time.Hour)

	v.SetDefault("providers.timeout", 15*time.Second)
	v.SetDefault("providers.openroute.baseurl", "https://api.openrouteservice.org")
	v.SetDefault("providers.openweather.baseurl", "https://api.openweathermap.org")
	v.SetDefault("providers.foursquare.baseurl", "https://api.foursquare.com")
	v.SetDefault("providers.opentripmap.baseurl", "https://api.opentripmap.com")
	v.SetDefault("providers.googleplaces.baseurl", "https://maps.googleapis.com")
	v.SetDefault("providers.rapidapi.baseurl", "https://booking-com.p.rapidapi.com")
	v.SetDefault("providers.amadeus.baseurl", "https://test.api.amadeus.com")

	v.SetDefault("observability.metricsenabled", true)
	v.SetDefault("observability.loglevel", "info")
	v.SetDefault("observability.logjson", true)
}
