package propertyhttp

import (
	"net/http"

	"github.com/go-chi/render"
)

// ListProperties: GET /api/properties.
func (s *serverAPI) ListProperties(w http.ResponseWriter, r *http.Request) {
	const op = "propertyhttp.ListProperties"

	q, err := listQueryFromRequest(r.URL.Query())
	if err != nil {
		s.writeError(w, r, op, err)
		return
	}
	q.Deadline = s.deadline()

	page, err := s.search.ListProperties(r.Context(), q)
	if err != nil {
		s.writeError(w, r, op, err)
		return
	}

	render.JSON(w, r, pageToResponse(page, propertyDomainToResponse))
}
