package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	tests := []struct {
		name string
		a, b Coordinate
		want float64
	}{
		{"same point", Coordinate{-118.40, 34.07}, Coordinate{-118.40, 34.07}, 0},
		{"one degree of latitude", Coordinate{0, 0}, Coordinate{0, 1}, 111.19},
		{"los angeles to new york", Coordinate{-118.2437, 34.0522}, Coordinate{-74.0060, 40.7128}, 3935.75},
		{"antipodes", Coordinate{0, 0}, Coordinate{180, 0}, MaxRadiusKm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, HaversineKm(tt.a, tt.b), 0.5)
			assert.InDelta(t, HaversineKm(tt.a, tt.b), HaversineKm(tt.b, tt.a), 1e-9)
		})
	}
}

func TestCoordinate_Validate(t *testing.T) {
	assert.NoError(t, Coordinate{Longitude: 180, Latitude: -90}.Validate())
	assert.ErrorIs(t, Coordinate{Longitude: 180.1}.Validate(), ErrValidation)
	assert.ErrorIs(t, Coordinate{Latitude: -90.5}.Validate(), ErrValidation)
}

func TestLatitudeBand(t *testing.T) {
	lo, hi := LatitudeBand(Coordinate{Latitude: 34}, KmPerDegreeLat)
	assert.InDelta(t, 33, lo, 1e-9)
	assert.InDelta(t, 35, hi, 1e-9)

	lo, hi = LatitudeBand(Coordinate{Latitude: 89.5}, 2*KmPerDegreeLat)
	assert.InDelta(t, 87.5, lo, 1e-9)
	assert.Equal(t, 90.0, hi)
}
