package propertyhttp

import (
	"net/http"

	"github.com/go-chi/render"
)

// SearchProperties: GET /api/properties/search.
// С lat и lng выполняется поиск по радиусу (radius в км), иначе поиск по фильтрам и тексту.
func (s *serverAPI) SearchProperties(w http.ResponseWriter, r *http.Request) {
	const op = "propertyhttp.SearchProperties"

	q, err := searchQueryFromRequest(r.URL.Query())
	if err != nil {
		s.writeError(w, r, op, err)
		return
	}
	q.Deadline = s.deadline()

	page, err := s.search.SearchProperties(r.Context(), q)
	if err != nil {
		s.writeError(w, r, op, err)
		return
	}

	render.JSON(w, r, pageToResponse(page, searchHitToResponse))
}
