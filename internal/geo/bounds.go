package geo

import "math"

// Box is a latitude/longitude rectangle. When LngBounded is false the box
// spans every longitude (near the poles or across the antimeridian).
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
	LngBounded     bool
}

// boxSlack widens the box so that points exactly on the radius are never
// cut by floating point error before the exact distance check runs.
const boxSlack = 1.01

// Bounds returns a rectangle that contains every point within radiusKm of
// center. It is a prefilter only; callers must still apply Within.
func Bounds(center Point, radiusKm float64) Box {
	dAng := radiusKm * boxSlack / EarthRadiusKm
	dLat := dAng * 180 / math.Pi

	box := Box{
		MinLat: math.Max(-90, center.Lat-dLat),
		MaxLat: math.Min(90, center.Lat+dLat),
	}

	if center.Lat+dLat >= 90 || center.Lat-dLat <= -90 {
		return box
	}

	// Widest longitude offset of a spherical cap: asin(sin(d) / cos(lat)).
	ratio := math.Sin(dAng) / math.Cos(deg2rad(center.Lat))
	if dAng >= math.Pi/2 || ratio >= 1 {
		return box
	}
	dLng := math.Asin(ratio) * 180 / math.Pi
	if center.Lng-dLng < -180 || center.Lng+dLng > 180 {
		return box
	}

	box.MinLng = center.Lng - dLng
	box.MaxLng = center.Lng + dLng
	box.LngBounded = true
	return box
}
