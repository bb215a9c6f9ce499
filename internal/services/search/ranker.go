package search

import (
	"cmp"
	"slices"

	"estate_search/internal/domain"
)

// rankByDistance пересчитывает расстояние для каждого кандидата, отбрасывает
// объекты без координат или дальше radiusKm и упорядочивает остальные:
// сначала featured, затем ближайшие. Хранилище может вернуть кандидатов с запасом,
// окончательный отбор всегда делается здесь.
func rankByDistance(candidates []domain.RankedProperty, origin domain.Coordinate, radiusKm float64) []domain.RankedProperty {
	eligible := make([]domain.RankedProperty, 0, len(candidates))
	for _, c := range candidates {
		coord := c.Property.Location.Coordinate
		if coord == nil {
			continue
		}
		d := domain.HaversineKm(origin, *coord)
		if d > radiusKm {
			continue
		}
		eligible = append(eligible, domain.RankedProperty{Property: c.Property, DistanceKm: d})
	}

	slices.SortStableFunc(eligible, func(a, b domain.RankedProperty) int {
		if a.Property.Featured != b.Property.Featured {
			if a.Property.Featured {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(a.DistanceKm, b.DistanceKm); c != 0 {
			return c
		}
		// порядок хранилища не обязан быть стабильным между запросами
		return domain.CompareProperties(a.Property, b.Property, nil)
	})
	return eligible
}

// pageSlice возвращает срез items для страницы page (1-indexed).
func pageSlice[T any](items []T, page, pageSize int) []T {
	pager := domain.NewPager(page, pageSize)
	start := pager.Offset()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + min(pager.Limit(), len(items)-start)
	return items[start:end]
}
