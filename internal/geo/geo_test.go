package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Paris and Berlin city-center coordinates.
const (
	parisLat  = 48.8566
	parisLon  = 2.3522
	berlinLat = 52.5200
	berlinLon = 13.4050
)

func TestHaversine(t *testing.T) {
	t.Run("known distance Paris-Berlin", func(t *testing.T) {
		d := Haversine(parisLat, parisLon, berlinLat, berlinLon)
		// Great-circle distance is ~878km.
		assert.InDelta(t, 878, d, 10)
	})

	t.Run("zero distance for identical points", func(t *testing.T) {
		assert.Equal(t, 0.0, Haversine(parisLat, parisLon, parisLat, parisLon))
	})

	t.Run("symmetric", func(t *testing.T) {
		ab := Haversine(parisLat, parisLon, berlinLat, berlinLon)
		ba := Haversine(berlinLat, berlinLon, parisLat, parisLon)
		assert.InDelta(t, ab, ba, 1e-9)
	})
}

func TestDetour(t *testing.T) {
	t.Run("on-path point adds almost nothing", func(t *testing.T) {
		// Frankfurt sits close to the Paris-Berlin corridor.
		d := Detour(parisLat, parisLon, 50.1109, 8.6821, berlinLat, berlinLon)
		assert.GreaterOrEqual(t, d, 0.0)
		assert.Less(t, d, 60.0)
	})

	t.Run("far point adds a lot", func(t *testing.T) {
		// Rome is nowhere near the Paris-Berlin corridor.
		d := Detour(parisLat, parisLon, 41.9028, 12.4964, berlinLat, berlinLon)
		assert.Greater(t, d, 500.0)
	})
}

func TestProgress(t *testing.T) {
	t.Run("start is zero, end is one", func(t *testing.T) {
		assert.InDelta(t, 0, Progress(parisLat, parisLon, parisLat, parisLon, berlinLat, berlinLon), 1e-9)
		assert.InDelta(t, 1, Progress(parisLat, parisLon, berlinLat, berlinLon, berlinLat, berlinLon), 1e-9)
	})

	t.Run("degenerate zero-length corridor", func(t *testing.T) {
		assert.Equal(t, 0.0, Progress(parisLat, parisLon, berlinLat, berlinLon, parisLat, parisLon))
	})
}
