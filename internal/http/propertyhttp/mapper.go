package propertyhttp

import (
	"estate_search/internal/domain"
	"estate_search/internal/lib/snapshot"

	"github.com/samber/lo"
)

// propertyResponse повторяет формат документа каталога.
type propertyResponse struct {
	snapshot.Record
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

type pageResponse[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type similarResponse struct {
	ReferenceID string             `json:"referenceId"`
	Items       []propertyResponse `json:"items"`
}

func propertyDomainToResponse(p domain.Property) propertyResponse {
	return propertyResponse{Record: snapshot.FromDomain(p)}
}

func searchHitToResponse(h domain.SearchHit) propertyResponse {
	resp := propertyDomainToResponse(h.Property)
	resp.DistanceKm = h.DistanceKm
	return resp
}

func pageToResponse[T, R any](p domain.Page[T], mapItem func(T) R) pageResponse[R] {
	return pageResponse[R]{
		Items: lo.Map(p.Items, func(item T, _ int) R {
			return mapItem(item)
		}),
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	}
}
