package types

// Strategy names a waypoint-selection heuristic. The same start/end pair
// yields a different intermediate-city sequence per strategy.
type Strategy string

const (
	StrategyFastest  Strategy = "fastest"
	StrategyScenic   Strategy = "scenic"
	StrategyCultural Strategy = "cultural"
	StrategyBudget   Strategy = "budget"
)

// AllStrategies lists every supported strategy in presentation order.
var AllStrategies = []Strategy{StrategyFastest, StrategyScenic, StrategyCultural, StrategyBudget}

// ValidStrategy reports whether s names a known heuristic.
func ValidStrategy(s Strategy) bool {
	for _, known := range AllStrategies {
		if s == known {
			return true
		}
	}
	return false
}

// RouteLeg is one drive between consecutive stops.
type RouteLeg struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	DistanceKm    float64 `json:"distance_km"`
	DurationHours float64 `json:"duration_hours"`

	// Geometry is the encoded polyline from the directions provider,
	// empty when the leg was estimated locally.
	Geometry string `json:"geometry,omitempty"`
}

// RoutePlan is one itinerary produced by a single strategy.
type RoutePlan struct {
	Strategy      Strategy   `json:"strategy"`
	Start         City       `json:"start"`
	End           City       `json:"end"`
	Waypoints     []City     `json:"waypoints"`
	Legs          []RouteLeg `json:"legs"`
	DistanceKm    float64    `json:"distance_km"`
	DurationHours float64    `json:"duration_hours"`
	CostEstimate  float64    `json:"cost_estimate_eur"`

	// Source is "live" when leg geometry came from the directions
	// provider, "estimated" otherwise.
	Source string `json:"source"`
}

// Stops returns the full ordered stop list including start and end.
func (r RoutePlan) Stops() []City {
	stops := make([]City, 0, len(r.Waypoints)+2)
	stops = append(stops, r.Start)
	stops = append(stops, r.Waypoints...)
	stops = append(stops, r.End)
	return stops
}
