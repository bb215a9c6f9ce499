package propertyhttp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"estate_search/internal/domain"
	"estate_search/internal/lib/jsonld"
	"estate_search/internal/lib/metrics"
	"estate_search/internal/services/search"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// SearchService описывает поисковый движок, который обслуживает HTTP API.
type SearchService interface {
	ListProperties(ctx context.Context, q search.ListQuery) (domain.Page[domain.Property], error)
	SearchProperties(ctx context.Context, q search.SearchQuery) (domain.Page[domain.SearchHit], error)
	SimilarProperties(ctx context.Context, q search.SimilarQuery) ([]domain.Property, error)
	GetProperty(ctx context.Context, id uuid.UUID) (domain.Property, error)
}

// StatsProvider отдаёт снимок метрик запросов.
type StatsProvider interface {
	GetStats() metrics.Stats
}

// HealthChecker сообщает, готово ли хранилище.
type HealthChecker func(ctx context.Context) error

type serverAPI struct {
	log            *slog.Logger
	search         SearchService
	stats          StatsProvider
	health         HealthChecker
	jsonld         *jsonld.Generator
	requestTimeout time.Duration
}

// ServerOption опция для конфигурации сервера.
type ServerOption func(*serverAPI)

// WithStats подключает эндпоинт /debug/stats.
func WithStats(p StatsProvider) ServerOption {
	return func(s *serverAPI) {
		s.stats = p
	}
}

// WithHealthCheck подключает проверку хранилища к /healthz.
func WithHealthCheck(h HealthChecker) ServerOption {
	return func(s *serverAPI) {
		s.health = h
	}
}

// WithJSONLD включает ответы application/ld+json.
func WithJSONLD(g *jsonld.Generator) ServerOption {
	return func(s *serverAPI) {
		s.jsonld = g
	}
}

// WithRequestTimeout задаёт дедлайн для каждого поискового запроса.
func WithRequestTimeout(d time.Duration) ServerOption {
	return func(s *serverAPI) {
		s.requestTimeout = d
	}
}

// NewRouter собирает chi-роутер с API поиска.
func NewRouter(log *slog.Logger, svc SearchService, opts ...ServerOption) http.Handler {
	s := &serverAPI{
		log:    log,
		search: svc,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.Health)
	if s.stats != nil {
		r.Get("/debug/stats", s.Stats)
	}

	r.Route("/api/properties", func(r chi.Router) {
		r.Get("/", s.ListProperties)
		r.Get("/search", s.SearchProperties)
		r.Get("/{id}", s.GetProperty)
		r.Get("/{id}/similar", s.SimilarProperties)
	})

	return r
}

// deadline возвращает дедлайн запроса или нулевое время, если таймаут не задан.
func (s *serverAPI) deadline() time.Time {
	if s.requestTimeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(s.requestTimeout)
}
