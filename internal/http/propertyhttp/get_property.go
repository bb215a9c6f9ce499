package propertyhttp

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"estate_search/internal/domain"
	"estate_search/internal/lib/logger/sl"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

const contentTypeJSONLD = "application/ld+json"

// GetProperty: GET /api/properties/{id}.
func (s *serverAPI) GetProperty(w http.ResponseWriter, r *http.Request) {
	const op = "propertyhttp.GetProperty"

	id, err := propertyIDParam(r)
	if err != nil {
		s.writeError(w, r, op, err)
		return
	}

	p, err := s.search.GetProperty(r.Context(), id)
	if err != nil {
		s.writeError(w, r, op, err)
		return
	}

	if s.wantsJSONLD(r) {
		s.writeJSONLD(w, r, s.jsonld.GeneratePropertyJSONLD(p))
		return
	}
	render.JSON(w, r, propertyDomainToResponse(p))
}

func propertyIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &domain.ValidationError{Field: "id", Value: raw, Reason: "must be a UUID"}
	}
	return id, nil
}

func (s *serverAPI) wantsJSONLD(r *http.Request) bool {
	return s.jsonld != nil && strings.Contains(r.Header.Get("Accept"), contentTypeJSONLD)
}

func (s *serverAPI) writeJSONLD(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", contentTypeJSONLD+"; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("failed to write JSON-LD", slog.String("path", r.URL.Path), sl.Err(err))
	}
}
