package propertyhttp

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"estate_search/internal/domain"
	"estate_search/internal/services/search"
)

// filtersFromQuery переносит параметры фильтрации как есть: разбор и проверка
// выполняются компилятором фильтров.
func filtersFromQuery(q url.Values) search.FilterParams {
	return search.FilterParams{
		Status:       q.Get("status"),
		PropertyType: q.Get("propertyType"),
		MinPrice:     q.Get("minPrice"),
		MaxPrice:     q.Get("maxPrice"),
		MinRent:      q.Get("minRent"),
		MaxRent:      q.Get("maxRent"),
		MinSqft:      q.Get("minSqft"),
		MaxSqft:      q.Get("maxSqft"),
		Beds:         q.Get("beds"),
		Baths:        q.Get("baths"),
		City:         q.Get("city"),
		State:        q.Get("state"),
		Featured:     q.Get("featured"),
		IsActive:     q.Get("isActive"),
		Furnished:    q.Get("furnished"),
		PetAllowed:   q.Get("petAllowed"),
		Query:        firstOf(q, "query", "q"),
	}
}

// firstOf возвращает первое непустое значение среди синонимов параметра.
func firstOf(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			return v
		}
	}
	return ""
}

// intParam разбирает целое; пустое значение даёт 0 (значение по умолчанию сервиса).
func intParam(q url.Values, field string, keys ...string) (int, error) {
	raw := firstOf(q, keys...)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.ValidationError{Field: field, Value: raw, Reason: "must be an integer"}
	}
	return n, nil
}

func floatParam(q url.Values, field string, keys ...string) (*float64, error) {
	raw := firstOf(q, keys...)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &domain.ValidationError{Field: field, Value: raw, Reason: "must be a finite number"}
	}
	return &f, nil
}

// originFromQuery читает точку поиска. Широта и долгота задаются только вместе.
func originFromQuery(q url.Values) (*domain.Coordinate, error) {
	lat, err := floatParam(q, "lat", "lat", "latitude")
	if err != nil {
		return nil, err
	}
	lng, err := floatParam(q, "lng", "lng", "lon", "longitude")
	if err != nil {
		return nil, err
	}
	switch {
	case lat == nil && lng == nil:
		return nil, nil
	case lat == nil:
		return nil, &domain.ValidationError{Field: "lat", Reason: "required together with lng"}
	case lng == nil:
		return nil, &domain.ValidationError{Field: "lng", Reason: "required together with lat"}
	}
	return &domain.Coordinate{Longitude: *lng, Latitude: *lat}, nil
}

func listQueryFromRequest(q url.Values) (search.ListQuery, error) {
	page, err := intParam(q, "page", "page")
	if err != nil {
		return search.ListQuery{}, err
	}
	pageSize, err := intParam(q, "pageSize", "limit", "pageSize")
	if err != nil {
		return search.ListQuery{}, err
	}
	return search.ListQuery{
		Filters:   filtersFromQuery(q),
		SortKey:   firstOf(q, "sort", "sortKey"),
		SortOrder: firstOf(q, "order", "sortOrder"),
		Page:      page,
		PageSize:  pageSize,
	}, nil
}

func searchQueryFromRequest(q url.Values) (search.SearchQuery, error) {
	page, err := intParam(q, "page", "page")
	if err != nil {
		return search.SearchQuery{}, err
	}
	pageSize, err := intParam(q, "pageSize", "limit", "pageSize")
	if err != nil {
		return search.SearchQuery{}, err
	}
	origin, err := originFromQuery(q)
	if err != nil {
		return search.SearchQuery{}, err
	}
	radius, err := floatParam(q, "radiusKm", "radius", "radiusKm")
	if err != nil {
		return search.SearchQuery{}, err
	}
	return search.SearchQuery{
		Filters:  filtersFromQuery(q),
		Origin:   origin,
		RadiusKm: radius,
		Page:     page,
		PageSize: pageSize,
	}, nil
}
