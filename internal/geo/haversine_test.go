package geo

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	london = Point{Lat: 51.5074, Lng: -0.1278}
	paris  = Point{Lat: 48.8566, Lng: 2.3522}
)

func TestDistanceZeroForIdenticalPoints(t *testing.T) {
	for _, p := range []Point{london, paris, {Lat: 90, Lng: 0}, {Lat: -33.8688, Lng: 151.2093}} {
		assert.Equal(t, 0.0, Distance(p, p))
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	pairs := [][2]Point{
		{london, paris},
		{{Lat: 0, Lng: 179.9}, {Lat: 0, Lng: -179.9}},
		{{Lat: -45, Lng: 10}, {Lat: 45, Lng: -170}},
	}
	for _, p := range pairs {
		assert.InDelta(t, Distance(p[0], p[1]), Distance(p[1], p[0]), 1e-9)
	}
}

func TestDistanceKnownValues(t *testing.T) {
	assert.InDelta(t, 343.5, Distance(london, paris), 1.0)

	// a quarter of the equator
	quarter := math.Pi / 2 * EarthRadiusKm
	assert.InDelta(t, quarter, Distance(Point{0, 0}, Point{0, 90}), 1e-6)

	// antipodal points stay finite thanks to clamping
	d := Distance(Point{0, 0}, Point{0, 180})
	assert.False(t, math.IsNaN(d))
	assert.InDelta(t, math.Pi*EarthRadiusKm, d, 1e-6)
}

func TestWithinIsInclusive(t *testing.T) {
	d := Distance(london, paris)

	_, ok := Within(london, paris, d)
	assert.True(t, ok, "a point exactly on the radius is included")

	_, ok = Within(london, paris, d-0.001)
	assert.False(t, ok)
}

func TestFilterKeepsOnlyPointsInsideRadius(t *testing.T) {
	center := Point{Lat: 40.7128, Lng: -74.0060}
	candidates := []Candidate{
		{ID: 1, Point: Point{Lat: 40.7580, Lng: -73.9855}}, // ~5 km
		{ID: 2, Point: Point{Lat: 40.7128, Lng: -74.0060}}, // 0 km
		{ID: 3, Point: Point{Lat: 42.3601, Lng: -71.0589}}, // ~306 km
		{ID: 4, Point: Point{Lat: 40.6413, Lng: -73.7781}}, // ~21 km
	}

	matches := Filter(center, 25, candidates)

	ids := make([]uint, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
		assert.LessOrEqual(t, m.Distance, 25.0)
		assert.Equal(t, Distance(center, pointOf(candidates, m.ID)), m.Distance)
	}
	assert.Equal(t, []uint{2, 1, 4}, ids)
}

func TestFilterBreaksTiesByID(t *testing.T) {
	p := Point{Lat: 1, Lng: 1}
	matches := Filter(Point{}, 1000, []Candidate{{ID: 9, Point: p}, {ID: 3, Point: p}})
	assert.Equal(t, uint(3), matches[0].ID)
	assert.Equal(t, uint(9), matches[1].ID)
}

func TestBoundsContainsEveryPointWithinRadius(t *testing.T) {
	tests := []struct {
		name   string
		center Point
		radius float64
	}{
		{"New York", Point{Lat: 40.7128, Lng: -74.0060}, 50},
		{"Svalbard", Point{Lat: 75, Lng: 15}, 500},
		{"High Arctic", Point{Lat: 80, Lng: 0}, 500},
		{"Antarctic", Point{Lat: -80, Lng: 0}, 500},
		{"Equator", Point{Lat: 0, Lng: 0}, 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := Bounds(tt.center, tt.radius)
			require.True(t, box.LngBounded)

			for bearing := 0.0; bearing < 360; bearing++ {
				for _, dist := range []float64{tt.radius * 0.99, tt.radius} {
					p := Destination(tt.center, bearing, dist)
					assert.GreaterOrEqual(t, p.Lat, box.MinLat, "bearing %v", bearing)
					assert.LessOrEqual(t, p.Lat, box.MaxLat, "bearing %v", bearing)
					assert.GreaterOrEqual(t, p.Lng, box.MinLng, "bearing %v", bearing)
					assert.LessOrEqual(t, p.Lng, box.MaxLng, "bearing %v", bearing)
				}
			}
		})
	}
}

func TestBoundsDropsLongitudeNearPolesAndAntimeridian(t *testing.T) {
	assert.False(t, Bounds(Point{Lat: 89.9, Lng: 0}, 50).LngBounded)
	assert.False(t, Bounds(Point{Lat: 0, Lng: 179.9}, 50).LngBounded)
}

func TestSQLPredicateArguments(t *testing.T) {
	expr, args := SQLPredicate("events.latitude", "events.longitude", london, 10)

	assert.Equal(t, strings.Count(expr, "?"), len(args))
	assert.Equal(t, 10.0, args[len(args)-1])
	assert.Contains(t, expr, "LEAST(1.0, GREATEST(0.0,")
	assert.True(t, strings.HasSuffix(expr, "<= ?"))
}

func pointOf(cs []Candidate, id uint) Point {
	for _, c := range cs {
		if c.ID == id {
			return c.Point
		}
	}
	return Point{}
}
