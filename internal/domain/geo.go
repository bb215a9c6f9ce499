package domain

import (
	"fmt"
	"math"
)

const (
	// EarthRadiusKm средний радиус Земли.
	EarthRadiusKm = 6371.0
	// MaxRadiusKm половина длины большого круга; больший радиус покрывает всю сферу.
	MaxRadiusKm = math.Pi * EarthRadiusKm
	// KmPerDegreeLat длина одного градуса широты.
	KmPerDegreeLat = math.Pi * EarthRadiusKm / 180
)

// Coordinate пара (долгота, широта) в градусах, порядок как в GeoJSON.
type Coordinate struct {
	Longitude float64
	Latitude  float64
}

// Validate проверяет диапазоны: долгота [-180,180], широта [-90,90].
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return &ValidationError{Field: "longitude", Value: fmt.Sprint(c.Longitude), Reason: "must be within [-180, 180]"}
	}
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return &ValidationError{Field: "latitude", Value: fmt.Sprint(c.Latitude), Reason: "must be within [-90, 90]"}
	}
	return nil
}

// HaversineKm расстояние по большому кругу между двумя точками в километрах.
func HaversineKm(a, b Coordinate) float64 {
	lat1 := degToRad(a.Latitude)
	lat2 := degToRad(b.Latitude)
	dLat := degToRad(b.Latitude - a.Latitude)
	dLon := degToRad(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// погрешность округления может дать h чуть больше 1
	h = math.Min(1, h)

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// LatitudeBand полоса широт, внутри которой лежат все точки в радиусе radiusKm от origin.
// Используется хранилищами как префильтр по индексу.
func LatitudeBand(origin Coordinate, radiusKm float64) (minLat, maxLat float64) {
	delta := radiusKm / KmPerDegreeLat
	return Clamp(origin.Latitude-delta, -90, 90), Clamp(origin.Latitude+delta, -90, 90)
}

func degToRad(d float64) float64 {
	return d * math.Pi / 180
}
