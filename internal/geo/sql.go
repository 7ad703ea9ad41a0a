package geo

import "fmt"

// SQLDistance renders the Haversine distance between the columns and a
// parameterised center as a PostgreSQL expression. The expression consumes
// three positional arguments in order: lat, lat, lng (see SQLArgs).
func SQLDistance(latCol, lngCol string) string {
	h := fmt.Sprintf(
		"POWER(SIN(RADIANS(%[1]s - ?) / 2), 2) + COS(RADIANS(?)) * COS(RADIANS(%[1]s)) * POWER(SIN(RADIANS(%[2]s - ?) / 2), 2)",
		latCol, lngCol,
	)
	clamped := fmt.Sprintf("LEAST(1.0, GREATEST(0.0, %s))", h)
	return fmt.Sprintf("(%v * 2 * ATAN2(SQRT(%[2]s), SQRT(1 - %[2]s)))", EarthRadiusKm, clamped)
}

// SQLArgs returns the arguments consumed by one SQLDistance expression.
// The clamped term appears twice in the expression, so the arguments repeat.
func SQLArgs(center Point) []interface{} {
	one := []interface{}{center.Lat, center.Lat, center.Lng}
	return append(one, one...)
}

// SQLPredicate renders "distance <= radius" and returns its arguments.
func SQLPredicate(latCol, lngCol string, center Point, radiusKm float64) (string, []interface{}) {
	args := SQLArgs(center)
	args = append(args, radiusKm)
	return SQLDistance(latCol, lngCol) + " <= ?", args
}
