package propertyhttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"estate_search/internal/domain"
	"estate_search/internal/lib/logger/sl"

	"github.com/go-chi/render"
)

// StatusClientClosedRequest клиент закрыл соединение до ответа.
const StatusClientClosedRequest = 499

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
	Field  string `json:"field,omitempty"`
}

// statusFor сопоставляет доменную ошибку с HTTP статусом и кодом ошибки.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded"
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusInternalServerError, "invalid_state"
	case errors.Is(err, domain.ErrStorage):
		return http.StatusServiceUnavailable, "storage_unavailable"
	}
	return http.StatusInternalServerError, "internal"
}

func (s *serverAPI) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	code, kind := statusFor(err)

	resp := errorResponse{Error: kind}
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		resp.Detail = verr.Error()
		resp.Field = verr.Field
	case code == http.StatusNotFound:
		resp.Detail = "property not found"
	}

	if code >= http.StatusInternalServerError {
		s.log.Error("request failed", slog.String("op", op), slog.Int("status", code), sl.Err(err))
	}

	render.Status(r, code)
	render.JSON(w, r, resp)
}
