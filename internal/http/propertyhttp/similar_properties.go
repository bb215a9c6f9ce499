package propertyhttp

import (
	"net/http"

	"estate_search/internal/domain"
	"estate_search/internal/services/search"

	"github.com/go-chi/render"
	"github.com/samber/lo"
)

// SimilarProperties: GET /api/properties/{id}/similar?limit=N.
func (s *serverAPI) SimilarProperties(w http.ResponseWriter, r *http.Request) {
	const op = "propertyhttp.SimilarProperties"

	id, err := propertyIDParam(r)
	if err != nil {
		s.writeError(w, r, op, err)
		return
	}
	limit, err := intParam(r.URL.Query(), "limit", "limit")
	if err != nil {
		s.writeError(w, r, op, err)
		return
	}

	props, err := s.search.SimilarProperties(r.Context(), search.SimilarQuery{
		ReferenceID: id,
		Limit:       limit,
		Deadline:    s.deadline(),
	})
	if err != nil {
		s.writeError(w, r, op, err)
		return
	}

	if s.wantsJSONLD(r) {
		s.writeJSONLD(w, r, s.jsonld.GenerateItemList("Similar properties", props))
		return
	}
	render.JSON(w, r, similarResponse{
		ReferenceID: id.String(),
		Items:       lo.Map(props, func(p domain.Property, _ int) propertyResponse { return propertyDomainToResponse(p) }),
	})
}
