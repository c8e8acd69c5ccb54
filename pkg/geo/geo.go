package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// HaversineKm returns the great-circle distance in kilometers between two
// points given in decimal degrees:
//
//	a = sin²(Δlat/2) + cos(lat1)·cos(lat2)·sin²(Δlon/2)
//	c = 2·atan2(√a, √(1−a))
//	d = R·c
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := Radians(lat2 - lat1)
	dLon := Radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(Radians(lat1))*math.Cos(Radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// WithinRadius reports whether (lat2, lon2) lies within radiusKm of
// (lat1, lon1), returning the computed distance as well.
func WithinRadius(lat1, lon1, lat2, lon2, radiusKm float64) (float64, bool) {
	d := HaversineKm(lat1, lon1, lat2, lon2)
	return d, d <= radiusKm
}
