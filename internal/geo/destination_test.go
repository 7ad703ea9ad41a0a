package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDestination_RoundTripsThroughDistance(t *testing.T) {
	start := Point{Lat: 40.7128, Lng: -74.0060}
	for _, bearing := range []float64{0, 45, 90, 180, 270, 333} {
		for _, km := range []float64{0.5, 10, 250} {
			p := Destination(start, bearing, km)
			assert.True(t, p.Valid())
			assert.InDelta(t, km, Distance(start, p), 1e-6, "bearing=%v km=%v", bearing, km)
		}
	}
}

func TestDestination_NorthIncreasesLatitude(t *testing.T) {
	start := Point{Lat: 10, Lng: 20}
	p := Destination(start, 0, 111.195)
	assert.InDelta(t, 11, p.Lat, 1e-3)
	assert.InDelta(t, 20, p.Lng, 1e-9)
}

func TestDestination_WrapsAntimeridian(t *testing.T) {
	p := Destination(Point{Lat: 0, Lng: 179.9}, 90, 50)
	assert.Less(t, p.Lng, 0.0)
	assert.True(t, p.Valid())
}
