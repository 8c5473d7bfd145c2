package geo

import "math"

// EarthRadiusMeters is the mean radius of Earth used for Haversine distance.
const EarthRadiusMeters = 6_371_000.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Distance returns the great-circle distance in meters to other.
func (p Point) Distance(other Point) float64 {
	return Haversine(p.Lat, p.Lon, other.Lat, other.Lon)
}

// Valid reports whether the point lies within coordinate bounds.
func (p Point) Valid() bool {
	return ValidateCoordinates(p.Lat, p.Lon)
}

// Haversine returns the great-circle distance in meters between two points
// specified by latitude and longitude in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// GaussDecay returns a value in (0,1] that is 1 within offset meters of the
// origin and halves once the distance exceeds offset by scale meters.
func GaussDecay(distance, offset, scale float64) float64 {
	d := distance - offset
	if d <= 0 {
		return 1
	}
	if scale <= 0 {
		return 0
	}
	// sigma^2 chosen so that decay(offset+scale) == 0.5
	sigma2 := -(scale * scale) / (2 * math.Log(0.5))
	return math.Exp(-(d * d) / (2 * sigma2))
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
