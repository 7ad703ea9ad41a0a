// Package geo implements great-circle distance filtering for event locations.
//
// The same Haversine formula is available as a Go function for in-process
// filtering and as a SQL expression for evaluation inside PostgreSQL, so
// both paths agree on which events fall within a radius.
package geo

import (
	"math"
	"sort"
)

// EarthRadiusKm is the mean Earth radius used by every distance computation.
const EarthRadiusKm = 6371.0

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Valid reports whether the point lies within latitude/longitude bounds.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180 &&
		!math.IsNaN(p.Lat) && !math.IsNaN(p.Lng)
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Distance returns the great-circle distance between a and b in kilometres.
func Distance(a, b Point) float64 {
	dLat := deg2rad(b.Lat - a.Lat)
	dLng := deg2rad(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(deg2rad(a.Lat))*math.Cos(deg2rad(b.Lat))*sinLng*sinLng
	// rounding can push h marginally outside [0,1] for antipodal points
	h = math.Min(1, math.Max(0, h))

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Within returns the distance from center to p and whether it is inside the
// inclusive radius.
func Within(center, p Point, radiusKm float64) (float64, bool) {
	d := Distance(center, p)
	return d, d <= radiusKm
}

// Candidate is anything that can be located on the map.
type Candidate struct {
	ID    uint
	Point Point
}

// Match is a candidate inside the search radius.
type Match struct {
	ID       uint
	Distance float64
}

// Filter keeps the candidates within radiusKm of center, nearest first.
// Ties are broken by ID so results are stable across calls.
func Filter(center Point, radiusKm float64, candidates []Candidate) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		if d, ok := Within(center, c.Point, radiusKm); ok {
			matches = append(matches, Match{ID: c.ID, Distance: d})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance == matches[j].Distance {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Distance < matches[j].Distance
	})
	return matches
}
