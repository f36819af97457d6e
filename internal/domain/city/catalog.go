// Package city holds the in-memory catalog of European cities the planner
// draws waypoints from. The catalog is loaded once from an embedded CSV
// and indexed by normalized name and by coordinate (R-tree).
package city

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/dhconnelly/rtreego"
	"github.com/jszwec/csvutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/roamio/roamio-api/internal/geo"
	"github.com/roamio/roamio-api/internal/types"
)

//go:embed cities.csv
var citiesCSV []byte

// Service is the catalog contract used by the planner and handlers.
type Service interface {
	Get(ctx context.Context, name string) (types.City, error)
	All(ctx context.Context) []types.City
	Nearest(ctx context.Context, lat, lon float64) (types.City, error)
	Corridor(ctx context.Context, a, b types.City, maxDetourKm float64) []types.City
}

type ServiceImpl struct {
	logger *slog.Logger
	byName map[string]types.City
	list   []types.City
	tree   *rtreego.Rtree
}

var _ Service = (*ServiceImpl)(nil)

// cityEntry adapts a catalog row to the rtreego spatial interface.
type cityEntry struct {
	city types.City
	rect rtreego.Rect
}

func (e *cityEntry) Bounds() rtreego.Rect { return e.rect }

var _ rtreego.Spatial = (*cityEntry)(nil)

// NewService parses the embedded CSV and builds the indexes.
func NewService(logger *slog.Logger) (*ServiceImpl, error) {
	var rows []types.City
	if err := csvutil.Unmarshal(citiesCSV, &rows); err != nil {
		return nil, fmt.Errorf("parsing embedded city catalog: %w", err)
	}

	s := &ServiceImpl{
		logger: logger,
		byName: make(map[string]types.City, len(rows)),
		list:   make([]types.City, 0, len(rows)),
		tree:   rtreego.NewTree(2, 25, 50),
	}

	for _, c := range rows {
		if !c.ValidCoordinates() {
			return nil, fmt.Errorf("city %q has coordinates outside WGS84 bounds", c.Name)
		}
		if c.RawTags != "" {
			c.Tags = strings.Split(c.RawTags, "|")
			// Tags is the canonical form; keeping the raw CSV column would
			// make catalog entries differ from their JSON roundtrip.
			c.RawTags = ""
		}

		rect, err := rtreego.NewRect(rtreego.Point{c.Latitude, c.Longitude}, []float64{1e-6, 1e-6})
		if err != nil {
			return nil, fmt.Errorf("indexing city %q: %w", c.Name, err)
		}
		s.tree.Insert(&cityEntry{city: c, rect: rect})
		s.byName[Normalize(c.Name)] = c
		s.list = append(s.list, c)
	}

	logger.Info("city catalog loaded", slog.Int("cities", len(s.list)))
	return s, nil
}

// Get looks a city up by name. Lookup is case-insensitive and tolerant of
// common accented characters.
func (s *ServiceImpl) Get(ctx context.Context, name string) (types.City, error) {
	_, span := otel.Tracer("CityCatalog").Start(ctx, "Get")
	defer span.End()

	c, ok := s.byName[Normalize(name)]
	if !ok {
		span.SetStatus(codes.Error, "city not found")
		return types.City{}, fmt.Errorf("%q: %w", name, types.ErrCityNotFound)
	}
	span.SetAttributes(attribute.String("city.name", c.Name))
	return c, nil
}

// All returns every catalog entry in CSV order.
func (s *ServiceImpl) All(context.Context) []types.City {
	out := make([]types.City, len(s.list))
	copy(out, s.list)
	return out
}

// Nearest returns the catalog city closest to the coordinate.
func (s *ServiceImpl) Nearest(ctx context.Context, lat, lon float64) (types.City, error) {
	_, span := otel.Tracer("CityCatalog").Start(ctx, "Nearest")
	defer span.End()

	hit := s.tree.NearestNeighbor(rtreego.Point{lat, lon})
	entry, ok := hit.(*cityEntry)
	if !ok {
		span.SetStatus(codes.Error, "empty catalog")
		return types.City{}, types.ErrCityNotFound
	}
	return entry.city, nil
}

// Corridor returns catalog cities whose detour over the direct a→b drive is
// at most maxDetourKm, excluding the endpoints, ordered by progress along
// the corridor. The R-tree narrows candidates to the bounding box around
// both endpoints before the exact detour check.
func (s *ServiceImpl) Corridor(ctx context.Context, a, b types.City, maxDetourKm float64) []types.City {
	_, span := otel.Tracer("CityCatalog").Start(ctx, "Corridor")
	defer span.End()

	// A degree of latitude is ~111km; pad the box by the allowed detour.
	pad := maxDetourKm / 111.0
	minLat := min(a.Latitude, b.Latitude) - pad
	minLon := min(a.Longitude, b.Longitude) - pad
	latSpan := max(a.Latitude, b.Latitude) + pad - minLat
	lonSpan := max(a.Longitude, b.Longitude) + pad - minLon

	rect, err := rtreego.NewRect(rtreego.Point{minLat, minLon}, []float64{latSpan, lonSpan})
	if err != nil {
		s.logger.Warn("corridor bounding box rejected", "from", a.Name, "to", b.Name, "error", err)
		return nil
	}

	var candidates []types.City
	for _, hit := range s.tree.SearchIntersect(rect) {
		entry, ok := hit.(*cityEntry)
		if !ok {
			continue
		}
		c := entry.city
		if c.Name == a.Name || c.Name == b.Name {
			continue
		}
		if geo.Detour(a.Latitude, a.Longitude, c.Latitude, c.Longitude, b.Latitude, b.Longitude) <= maxDetourKm {
			candidates = append(candidates, c)
		}
	}

	sortByProgress(candidates, a, b)
	span.SetAttributes(attribute.Int("corridor.candidates", len(candidates)))
	return candidates
}

func sortByProgress(cities []types.City, a, b types.City) {
	progress := func(c types.City) float64 {
		return geo.Progress(a.Latitude, a.Longitude, c.Latitude, c.Longitude, b.Latitude, b.Longitude)
	}
	sort.Slice(cities, func(i, j int) bool {
		return progress(cities[i]) < progress(cities[j])
	})
}

var accentReplacer = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ä", "a",
	"è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i",
	"ò", "o", "ó", "o", "ô", "o", "ö", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u",
	"ñ", "n", "ç", "c", "ß", "ss", "ł", "l",
)

// Normalize produces the catalog lookup key for a user-supplied city name.
func Normalize(name string) string {
	return accentReplacer.Replace(strings.ToLower(strings.TrimSpace(name)))
}
