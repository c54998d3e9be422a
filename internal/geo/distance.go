package geo

import "math"

const (
	earthRadiusKm = 6371.0

	// approximate kilometres per degree
	kmPerDegreeLat = 110.574
	kmPerDegreeLon = 111.320

	// the degree factors disagree slightly with earthRadiusKm, so the box is
	// padded to keep every point the Haversine filter accepts
	boxMargin = 1.01
)

// Box is a latitude/longitude rectangle used to pre-filter radius searches
type Box struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// Haversine returns the great-circle distance between two points in kilometres
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// BoundingBox returns the rectangle that contains every point within radiusKm
// of (lat, lon). Longitude span widens with latitude.
func BoundingBox(lat, lon, radiusKm float64) Box {
	radiusKm *= boxMargin
	latDelta := radiusKm / kmPerDegreeLat

	cosLat := math.Cos(toRadians(lat))
	lonDelta := 180.0
	if cosLat > 1e-9 {
		lonDelta = radiusKm / (kmPerDegreeLon * cosLat)
	}

	return Box{
		MinLat: math.Max(lat-latDelta, -90),
		MaxLat: math.Min(lat+latDelta, 90),
		MinLon: math.Max(lon-lonDelta, -180),
		MaxLon: math.Min(lon+lonDelta, 180),
	}
}

// Contains reports whether the point lies inside the box, edges included
func (b Box) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// ValidCoordinates reports whether lat/lon are within WGS84 ranges
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// RoundKm rounds a distance to two decimals for display
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
