package propertyhttp

import (
	"net/http"

	"estate_search/internal/lib/logger/sl"

	"github.com/go-chi/render"
)

// Health: GET /healthz. 503, если хранилище недоступно.
func (s *serverAPI) Health(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.log.Warn("health check failed", sl.Err(err))
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, map[string]string{"status": "unavailable"})
			return
		}
	}
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// Stats: GET /debug/stats.
func (s *serverAPI) Stats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.stats.GetStats())
}
