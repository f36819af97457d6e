package clients

import (
	"hash/fnv"
	"math"
	"time"

	"github.com/roamio/roamio-api/internal/types"
)

// Fallback generators produce plausible, deterministic data when a provider
// is unconfigured or failing. Responses carrying this data are marked
// source=fallback so callers can tell it apart from live results.

// cityJitter derives a stable pseudo-random factor in [0,1) from the city
// name, so fallback numbers differ per city but never change between calls.
func cityJitter(name string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return float64(h.Sum32()%1000) / 1000
}

// FallbackWeather estimates conditions from latitude band and season.
func FallbackWeather(city types.City, now time.Time) types.Weather {
	// Rough European seasonal curve: peak mid-July, trough mid-January.
	dayOfYear := float64(now.YearDay())
	seasonal := 10 * math.Cos((dayOfYear-196)/365*2*math.Pi)

	// Colder the further north; ~22C baseline around the Mediterranean.
	base := 22 - (city.Latitude-40)*0.6
	temp := base + seasonal + cityJitter(city.Name)*3

	conditions := "partly cloudy"
	switch {
	case temp < 2:
		conditions = "light snow"
	case temp < 10:
		conditions = "overcast"
	case temp > 24:
		conditions = "clear sky"
	}

	return types.Weather{
		City:        city.Name,
		Temperature: round1(temp),
		FeelsLike:   round1(temp - 1.5),
		Conditions:  conditions,
		Humidity:    55 + int(cityJitter(city.Name)*30),
		WindSpeed:   round1(2 + cityJitter(city.Name)*5),
		Timestamp:   now.UTC(),
	}
}

// FallbackForecast extends the fallback weather over the next five days.
func FallbackForecast(city types.City, now time.Time) []types.ForecastEntry {
	current := FallbackWeather(city, now)
	entries := make([]types.ForecastEntry, 0, 5)
	for day := 1; day <= 5; day++ {
		at := now.AddDate(0, 0, day)
		at = time.Date(at.Year(), at.Month(), at.Day(), 12, 0, 0, 0, time.UTC)
		drift := math.Sin(float64(day)+cityJitter(city.Name)*10) * 2.5
		entries = append(entries, types.ForecastEntry{
			At:          at,
			Temperature: round1(current.Temperature + drift),
			Conditions:  current.Conditions,
		})
	}
	return entries
}

// FallbackHotels templates a small price-tier spread around a base rate
// scaled by city size.
func FallbackHotels(city types.City) []types.Hotel {
	base := 80.0
	if city.Population > 1000000 {
		base = 120
	} else if city.Population > 400000 {
		base = 95
	}
	base += cityJitter(city.Name) * 20

	tiers := []struct {
		name   string
		factor float64
		rating float64
	}{
		{"Grand Hotel " + city.Name, 2.1, 4.7},
		{"Hotel " + city.Name + " Central", 1.3, 4.4},
		{city.Name + " Boutique Residence", 1.1, 4.3},
		{"Ibis " + city.Name + " Centre", 0.8, 4.0},
		{city.Name + " City Hostel", 0.4, 3.8},
	}

	hotels := make([]types.Hotel, 0, len(tiers))
	for _, t := range tiers {
		hotels = append(hotels, types.Hotel{
			Name:          t.name,
			PricePerNight: math.Round(base * t.factor),
			Currency:      "EUR",
			Rating:        t.rating,
			Address:       "City Center, " + city.Name,
		})
	}
	return hotels
}

// FallbackRestaurants templates cuisine options typical for the country.
func FallbackRestaurants(city types.City) []types.Place {
	cuisines := []string{"Bistro", "Trattoria", "Brasserie", "Tavern", "Café"}
	places := make([]types.Place, 0, len(cuisines))
	for i, kind := range cuisines {
		places = append(places, types.Place{
			Name:     kind + " " + city.Name,
			Category: "restaurant",
			Rating:   round1(4.5 - float64(i)*0.2),
			Address:  "Old Town, " + city.Name,
		})
	}
	return places
}

// FallbackAttractions templates the stock sights every European city page
// lists.
func FallbackAttractions(city types.City) []types.Place {
	sights := []struct {
		name     string
		category string
	}{
		{city.Name + " Old Town", "historic district"},
		{city.Name + " Cathedral", "religious architecture"},
		{"Museum of " + city.Name, "museum"},
		{city.Name + " Castle", "castle"},
		{"Central Market Hall", "market"},
	}
	places := make([]types.Place, 0, len(sights))
	for i, s := range sights {
		places = append(places, types.Place{
			Name:     s.name,
			Category: s.category,
			Rating:   round1(4.6 - float64(i)*0.15),
			Address:  city.Name,
		})
	}
	return places
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
