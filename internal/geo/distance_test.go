package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Makati CBD and Quezon City Circle
const (
	makatiLat, makatiLon = 14.5547, 121.0244
	qcLat, qcLon         = 14.6516, 121.0493
	cebuLat, cebuLon     = 10.3157, 123.8854
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name     string
		lat1     float64
		lon1     float64
		lat2     float64
		lon2     float64
		expected float64
		delta    float64
	}{
		{"same point", makatiLat, makatiLon, makatiLat, makatiLon, 0, 0.0001},
		{"makati to quezon city", makatiLat, makatiLon, qcLat, qcLon, 11.1, 0.5},
		{"manila to cebu", makatiLat, makatiLon, cebuLat, cebuLon, 562, 10},
		{"one degree of latitude", 0, 0, 1, 0, 111.19, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2), tt.delta)
		})
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	a := Haversine(makatiLat, makatiLon, cebuLat, cebuLon)
	b := Haversine(cebuLat, cebuLon, makatiLat, makatiLon)
	assert.InDelta(t, a, b, 1e-9)
}

// destination returns the point distanceKm from (lat, lon) along bearing
// on the same sphere Haversine uses
func destination(lat, lon, bearing, distanceKm float64) (float64, float64) {
	lat1, lon1 := toRadians(lat), toRadians(lon)
	theta, delta := toRadians(bearing), distanceKm/earthRadiusKm

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(theta))
	lon2 := lon1 + math.Atan2(math.Sin(theta)*math.Sin(delta)*math.Cos(lat1), math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2))
	return lat2 * 180 / math.Pi, lon2 * 180 / math.Pi
}

func TestBoundingBox_ContainsEveryPointInRadius(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		radius   float64
	}{
		{"Makati 25km", makatiLat, makatiLon, 25},
		{"Makati 500km", makatiLat, makatiLon, 500},
		{"Baguio 100km", 16.4023, 120.5960, 100},
		{"far north 50km", 60, 10, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := BoundingBox(tt.lat, tt.lon, tt.radius)
			for bearing := 0.0; bearing < 360; bearing += 5 {
				lat, lon := destination(tt.lat, tt.lon, bearing, tt.radius)
				require.InDelta(t, tt.radius, Haversine(tt.lat, tt.lon, lat, lon), 1e-6)
				assert.True(t, box.Contains(lat, lon), "bearing %.0f", bearing)
			}
		})
	}
}

func TestBoundingBox_ExcludesDistantCities(t *testing.T) {
	box := BoundingBox(makatiLat, makatiLon, 25)
	assert.True(t, box.Contains(qcLat, qcLon))
	assert.False(t, box.Contains(cebuLat, cebuLon))
}

func TestBoundingBox_ClampsAtPoles(t *testing.T) {
	box := BoundingBox(89.9, 0, 100)
	assert.Equal(t, 90.0, box.MaxLat)
	assert.GreaterOrEqual(t, box.MinLon, -180.0)
	assert.LessOrEqual(t, box.MaxLon, 180.0)
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(makatiLat, makatiLon))
	assert.True(t, ValidCoordinates(-90, 180))
	assert.False(t, ValidCoordinates(91, 0))
	assert.False(t, ValidCoordinates(0, -181))
	assert.False(t, ValidCoordinates(math.NaN(), 0))
}

func TestRoundKm(t *testing.T) {
	assert.Equal(t, 11.12, RoundKm(11.1234))
}

func BenchmarkHaversine(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Haversine(makatiLat, makatiLon, cebuLat, cebuLon)
	}
}
