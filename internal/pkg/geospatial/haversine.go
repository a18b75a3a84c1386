package geospatial

import "math"

// EarthRadiusMeters is the mean Earth radius used for great-circle distances.
const EarthRadiusMeters = 6371000.0

// MetersPerMile is the rounded mile used for "N miles away" labels.
const MetersPerMile = 1609.0

// metersPerDegree is the length of one degree of latitude on the sphere.
const metersPerDegree = EarthRadiusMeters * math.Pi / 180

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// BoundingBox returns a bounding box around a point with the given radius in meters.
// The box always contains every point within radiusMeters of (lat, lon).
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / metersPerDegree
	lonDelta := 180.0
	if cos := math.Cos(toRad(lat)); cos > 1e-9 {
		lonDelta = math.Min(180, radiusMeters/(metersPerDegree*cos))
	}

	minLat = math.Max(-90, lat-latDelta)
	maxLat = math.Min(90, lat+latDelta)
	minLon = math.Max(-180, lon-lonDelta)
	maxLon = math.Min(180, lon+lonDelta)
	return minLat, minLon, maxLat, maxLon
}

// Miles converts meters into miles.
func Miles(meters float64) float64 {
	return meters / MetersPerMile
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
