// Package cache provides the TTL key/value store behind provider lookups
// and plan retention. Two backends exist: an in-process map and Redis.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcloughlin/geohash"
)

// Store is the minimal TTL cache contract used by services. Values are
// opaque JSON-encoded bytes.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Health(ctx context.Context) error
}

// geoPrecision is the geohash length used for coordinate-keyed entries.
// Five characters is a ~5km cell, so nearby lookups share an entry.
const geoPrecision = 5

// GeoKey builds a cache key for a coordinate-scoped lookup
// ("weather:u0haj" and similar).
func GeoKey(prefix string, lat, lon float64) string {
	return prefix + ":" + geohash.EncodeWithPrecision(lat, lon, geoPrecision)
}

// Key joins arbitrary parts into a prefixed key.
func Key(prefix string, parts ...string) string {
	if len(parts) == 0 {
		return prefix
	}
	return prefix + ":" + strings.Join(parts, ":")
}

// KeyPrefix extracts the prefix of a key for metric labels.
func KeyPrefix(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}

// GeoKeyf is GeoKey with an extra discriminator, for lookups that vary by
// more than the coordinate (for example radius or category).
func GeoKeyf(prefix string, lat, lon float64, format string, args ...any) string {
	return GeoKey(prefix, lat, lon) + ":" + fmt.Sprintf(format, args...)
}
