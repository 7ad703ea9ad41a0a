package geo

import "math"

// Destination returns the point reached by travelling distanceKm from start
// along the initial bearing (degrees clockwise from north).
func Destination(start Point, bearingDeg, distanceKm float64) Point {
	delta := distanceKm / EarthRadiusKm
	theta := deg2rad(bearingDeg)
	lat1 := deg2rad(start.Lat)
	lng1 := deg2rad(start.Lng)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(theta))
	lng2 := lng1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(lat1),
		math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2),
	)

	lng := math.Mod(lng2*180/math.Pi+540, 360) - 180
	return Point{Lat: lat2 * 180 / math.Pi, Lng: lng}
}
