package routing

import (
	"sort"

	"github.com/roamio/roamio-api/internal/geo"
	"github.com/roamio/roamio-api/internal/types"
)

// profile is the tunable knob set behind one route strategy.
type profile struct {
	// maxDetourKm bounds how far off the direct path a waypoint may pull
	// the route.
	maxDetourKm float64
	// maxWaypoints caps intermediate stops per 1000km of direct distance.
	maxWaypointsPer1000Km int
	avgSpeedKmh           float64
	// roadFactor inflates great-circle distance to a road estimate.
	roadFactor float64
	// nightlyRateEUR feeds the lodging part of the cost estimate.
	nightlyRateEUR float64
	score          func(c types.City) float64
}

var profiles = map[types.Strategy]profile{
	types.StrategyFastest: {
		maxDetourKm:           40,
		maxWaypointsPer1000Km: 1,
		avgSpeedKmh:           95,
		roadFactor:            1.2,
		nightlyRateEUR:        90,
		// Rest stops favor large, well-connected cities.
		score: func(c types.City) float64 {
			return float64(c.Population) / 1e6
		},
	},
	types.StrategyScenic: {
		maxDetourKm:           150,
		maxWaypointsPer1000Km: 4,
		avgSpeedKmh:           70,
		roadFactor:            1.35,
		nightlyRateEUR:        95,
		score: func(c types.City) float64 {
			s := 0.0
			for _, tag := range []string{"scenic", "alpine", "coastal"} {
				if c.HasTag(tag) {
					s += 2
				}
			}
			// Small towns over metropolises on the scenic road.
			if c.Population < 300000 {
				s += 1
			}
			return s
		},
	},
	types.StrategyCultural: {
		maxDetourKm:           120,
		maxWaypointsPer1000Km: 4,
		avgSpeedKmh:           80,
		roadFactor:            1.3,
		nightlyRateEUR:        100,
		score: func(c types.City) float64 {
			s := 0.0
			for _, tag := range []string{"heritage", "cultural", "museums"} {
				if c.HasTag(tag) {
					s += 2
				}
			}
			return s + float64(c.Population)/2e6
		},
	},
	types.StrategyBudget: {
		maxDetourKm:           100,
		maxWaypointsPer1000Km: 3,
		avgSpeedKmh:           75,
		roadFactor:            1.3,
		nightlyRateEUR:        55,
		score: func(c types.City) float64 {
			s := costIndexBonus(c.Country)
			if c.HasTag("budget") {
				s += 2
			}
			return s
		},
	},
}

// costIndexBonus rewards countries with cheaper lodging and fuel.
func costIndexBonus(country string) float64 {
	switch country {
	case "Czechia", "Slovakia", "Hungary", "Poland", "Croatia", "Slovenia":
		return 3
	case "Portugal", "Spain", "Italy":
		return 1.5
	case "Switzerland", "Denmark", "Luxembourg":
		return -2
	default:
		return 0
	}
}

// selection spacing: waypoints must land strictly between the endpoints and
// keep a minimum gap so they do not cluster around one highlight.
const (
	minProgress    = 0.08
	maxProgress    = 0.92
	minProgressGap = 0.12
)

// selectWaypoints picks up to limit corridor candidates by strategy score,
// enforcing spacing along the corridor, and returns them in travel order.
func selectWaypoints(candidates []types.City, a, b types.City, p profile, limit int) []types.City {
	if limit <= 0 || len(candidates) == 0 {
		return nil
	}

	scored := make([]types.City, len(candidates))
	copy(scored, candidates)
	sort.SliceStable(scored, func(i, j int) bool {
		return p.score(scored[i]) > p.score(scored[j])
	})

	progress := func(c types.City) float64 {
		return geo.Progress(a.Latitude, a.Longitude, c.Latitude, c.Longitude, b.Latitude, b.Longitude)
	}

	var picked []types.City
	for _, c := range scored {
		if len(picked) == limit {
			break
		}
		pr := progress(c)
		if pr < minProgress || pr > maxProgress {
			continue
		}
		tooClose := false
		for _, have := range picked {
			if diff := pr - progress(have); diff < minProgressGap && diff > -minProgressGap {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}
		picked = append(picked, c)
	}

	sort.Slice(picked, func(i, j int) bool {
		return progress(picked[i]) < progress(picked[j])
	})
	return picked
}
