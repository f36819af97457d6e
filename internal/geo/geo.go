// Package geo holds the small amount of spherical geometry shared by the
// city catalog and the route planner.
package geo

import "math"

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance in kilometers between two
// WGS84 coordinates.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	la1 := lat1 * math.Pi / 180
	la2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Detour returns the extra distance of visiting via on the way from a to b,
// compared to driving a→b directly. Always >= 0 up to float error.
func Detour(aLat, aLon, viaLat, viaLon, bLat, bLon float64) float64 {
	direct := Haversine(aLat, aLon, bLat, bLon)
	viaDist := Haversine(aLat, aLon, viaLat, viaLon) + Haversine(viaLat, viaLon, bLat, bLon)
	return viaDist - direct
}

// Progress returns how far along the a→b axis a point sits, as the ratio
// of its distance from a to the direct a→b distance. Used to order
// waypoints by travel direction.
func Progress(aLat, aLon, pLat, pLon, bLat, bLon float64) float64 {
	direct := Haversine(aLat, aLon, bLat, bLon)
	if direct == 0 {
		return 0
	}
	return Haversine(aLat, aLon, pLat, pLon) / direct
}
