package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"estate_search/internal/config"
	"estate_search/internal/domain"
	"estate_search/internal/lib/logger/sl"
	"estate_search/internal/lib/metrics"
	"estate_search/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PropertyRepository чтение каталога. Реализации: memory, postgres, mongo.
type PropertyRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Property, error)
	Find(ctx context.Context, pred domain.Predicate, opts domain.FindOptions) ([]domain.Property, error)
	Count(ctx context.Context, pred domain.Predicate) (int, error)
	// FindWithDistance возвращает кандидатов в радиусе; допускается запас, порядок не важен.
	FindWithDistance(ctx context.Context, pred domain.Predicate, origin domain.Coordinate, radiusKm float64) ([]domain.RankedProperty, error)
}

// ProximityPager хранилище, которое само отбирает объекты в радиусе, ранжирует
// их (featured, расстояние, id) и отдаёт только страницу opts.Skip/opts.Limit
// вместе с общим числом совпадений. Postgres и Mongo реализуют его, memory нет.
type ProximityPager interface {
	FindNearestPage(
		ctx context.Context,
		pred domain.Predicate,
		origin domain.Coordinate,
		radiusKm float64,
		opts domain.FindOptions,
	) ([]domain.RankedProperty, int, error)
}

// Service поисковый движок: листинг, поиск по тексту и радиусу, похожие объекты.
// Сервис не хранит изменяемого состояния, запросы независимы.
type Service struct {
	log     *slog.Logger
	repo    PropertyRepository
	metrics *metrics.QueryMetrics
	cfg     config.SearchConfig
}

func New(log *slog.Logger, repo PropertyRepository, m *metrics.QueryMetrics, cfg config.SearchConfig) *Service {
	if cfg.MaxRadiusKm <= 0 || cfg.MaxRadiusKm > domain.MaxRadiusKm {
		cfg.MaxRadiusKm = domain.MaxRadiusKm
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = domain.DefaultPageSize
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = domain.MaxPageSize
	}
	if cfg.SimilarDefaultLimit <= 0 {
		cfg.SimilarDefaultLimit = 4
	}
	if cfg.SimilarMaxLimit < cfg.SimilarDefaultLimit {
		cfg.SimilarMaxLimit = cfg.SimilarDefaultLimit
	}
	return &Service{
		log:     log,
		repo:    repo,
		metrics: m,
		cfg:     cfg,
	}
}

// ListQuery параметры листинга.
type ListQuery struct {
	Filters FilterParams
	// SortKey из allow-list: createdAt (по умолчанию), price, rent, sqft, beds
	SortKey   string
	SortOrder string
	Page      int
	PageSize  int
	// Deadline необязателен; нулевое значение означает "без дедлайна"
	Deadline time.Time
}

// SearchQuery параметры поиска. При заданном Origin выполняется поиск по радиусу.
type SearchQuery struct {
	Filters  FilterParams
	Origin   *domain.Coordinate
	RadiusKm *float64
	Page     int
	PageSize int
	Deadline time.Time
}

// SimilarQuery параметры подбора похожих объектов.
type SimilarQuery struct {
	ReferenceID uuid.UUID
	Limit       int
	Deadline    time.Time
}

// ListProperties листинг с фильтрами, сортировкой и пагинацией.
func (s *Service) ListProperties(ctx context.Context, q ListQuery) (domain.Page[domain.Property], error) {
	const op = "search.Service.ListProperties"
	log := s.log.With(slog.String("op", op))

	pred, err := Compile(q.Filters)
	if err != nil {
		return domain.Page[domain.Property]{}, fmt.Errorf("%s: %w", op, err)
	}
	sortFields, err := parseSort(q.SortKey, q.SortOrder)
	if err != nil {
		return domain.Page[domain.Property]{}, fmt.Errorf("%s: %w", op, err)
	}
	page, pageSize, err := s.normalizePage(q.Page, q.PageSize)
	if err != nil {
		return domain.Page[domain.Property]{}, fmt.Errorf("%s: %w", op, err)
	}
	pred = withActiveDefault(pred)

	ctx, cancel := withDeadline(ctx, q.Deadline)
	defer cancel()

	timer := s.metrics.StartTimer(metrics.QueryList)
	result, err := s.paginate(ctx, pred, sortFields, page, pageSize)
	timer.Stop(err, len(result.Items))
	if err != nil {
		log.Error("failed to list properties", sl.Err(err))
		return domain.Page[domain.Property]{}, storageError(op, err)
	}

	log.Debug("properties listed",
		slog.Int("page", page),
		slog.Int("returned", len(result.Items)),
		slog.Int("total", result.Total),
	)
	return result, nil
}

// SearchProperties поиск по фильтрам и тексту. С Origin результаты ранжируются по
// расстоянию (featured первыми, затем ближайшие); без Origin используется листинг,
// упорядоченный featured первыми, затем по новизне.
func (s *Service) SearchProperties(ctx context.Context, q SearchQuery) (domain.Page[domain.SearchHit], error) {
	const op = "search.Service.SearchProperties"
	log := s.log.With(slog.String("op", op))

	pred, err := Compile(q.Filters)
	if err != nil {
		return domain.Page[domain.SearchHit]{}, fmt.Errorf("%s: %w", op, err)
	}
	page, pageSize, err := s.normalizePage(q.Page, q.PageSize)
	if err != nil {
		return domain.Page[domain.SearchHit]{}, fmt.Errorf("%s: %w", op, err)
	}
	radiusKm, err := s.resolveRadius(q.RadiusKm)
	if err != nil {
		return domain.Page[domain.SearchHit]{}, fmt.Errorf("%s: %w", op, err)
	}
	if q.Origin != nil {
		if err := q.Origin.Validate(); err != nil {
			return domain.Page[domain.SearchHit]{}, fmt.Errorf("%s: origin: %w", op, err)
		}
	}
	pred = withActiveDefault(pred)

	ctx, cancel := withDeadline(ctx, q.Deadline)
	defer cancel()

	if q.Origin == nil {
		timer := s.metrics.StartTimer(metrics.QueryList)
		result, err := s.paginate(ctx, pred, fallbackSort(), page, pageSize)
		timer.Stop(err, len(result.Items))
		if err != nil {
			log.Error("failed to search properties", sl.Err(err))
			return domain.Page[domain.SearchHit]{}, storageError(op, err)
		}

		hits := make([]domain.SearchHit, 0, len(result.Items))
		for _, p := range result.Items {
			hits = append(hits, domain.SearchHit{Property: p})
		}
		return domain.NewPage(hits, page, pageSize, result.Total), nil
	}

	timer := s.metrics.StartTimer(metrics.QueryProximity)
	slice, total, err := s.nearest(ctx, pred, *q.Origin, radiusKm, page, pageSize)
	timer.Stop(err, len(slice))
	if err != nil {
		log.Error("failed to find properties by distance", sl.Err(err))
		return domain.Page[domain.SearchHit]{}, storageError(op, err)
	}

	hits := make([]domain.SearchHit, 0, len(slice))
	for _, rp := range slice {
		d := rp.DistanceKm
		hits = append(hits, domain.SearchHit{Property: rp.Property, DistanceKm: &d})
	}

	log.Debug("proximity search done",
		slog.Float64("radius_km", radiusKm),
		slog.Int("returned", len(hits)),
		slog.Int("eligible", total),
	)
	return domain.NewPage(hits, page, pageSize, total), nil
}

// nearest страница поиска по радиусу и число подходящих объектов. Если хранилище
// умеет отдавать страницу само, в память читается только она; иначе кандидаты
// ранжируются и режутся здесь.
func (s *Service) nearest(
	ctx context.Context,
	pred domain.Predicate,
	origin domain.Coordinate,
	radiusKm float64,
	page, pageSize int,
) ([]domain.RankedProperty, int, error) {
	if pager, ok := s.repo.(ProximityPager); ok {
		p := domain.NewPager(page, pageSize)
		return pager.FindNearestPage(ctx, pred, origin, radiusKm, domain.FindOptions{
			Skip:  p.Offset(),
			Limit: p.Limit(),
		})
	}

	candidates, err := s.repo.FindWithDistance(ctx, pred, origin, radiusKm)
	if err != nil {
		return nil, 0, err
	}
	ranked := rankByDistance(candidates, origin, radiusKm)
	return pageSlice(ranked, page, pageSize), len(ranked), nil
}

// SimilarProperties подбор похожих объектов: тот же тип, спальни ±1, цена в окне
// ±20% для продажи или ±30% для аренды. Сначала самые новые.
func (s *Service) SimilarProperties(ctx context.Context, q SimilarQuery) ([]domain.Property, error) {
	const op = "search.Service.SimilarProperties"
	log := s.log.With(slog.String("op", op), slog.String("reference_id", q.ReferenceID.String()))

	limit, err := s.normalizeLimit(q.Limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ctx, cancel := withDeadline(ctx, q.Deadline)
	defer cancel()

	timer := s.metrics.StartTimer(metrics.QuerySimilar)
	result, err := s.findSimilar(ctx, q.ReferenceID, limit)
	timer.Stop(err, len(result))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			log.Error("reference property is malformed", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if errors.Is(err, repository.ErrPropertyNotFound) {
			log.Warn("reference property not found")
		} else {
			log.Error("failed to find similar properties", sl.Err(err))
		}
		return nil, storageError(op, err)
	}

	return result, nil
}

func (s *Service) findSimilar(ctx context.Context, id uuid.UUID, limit int) ([]domain.Property, error) {
	ref, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	window, err := NewSimilarityWindow(ref)
	if err != nil {
		return nil, err
	}

	return s.repo.Find(ctx, window.Predicate(ref.ID), domain.FindOptions{
		Sort:  domain.RecencySort(),
		Limit: limit,
	})
}

// GetProperty получает объект по ID.
func (s *Service) GetProperty(ctx context.Context, id uuid.UUID) (domain.Property, error) {
	const op = "search.Service.GetProperty"

	timer := s.metrics.StartTimer(metrics.QueryGet)
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		timer.Stop(err, 0)
		if !errors.Is(err, repository.ErrPropertyNotFound) {
			s.log.Error("failed to get property", slog.String("op", op), sl.Err(err))
		}
		return domain.Property{}, storageError(op, err)
	}
	timer.Stop(nil, 1)

	return p, nil
}

// paginate считает общее число совпадений и читает страницу параллельно.
func (s *Service) paginate(
	ctx context.Context,
	pred domain.Predicate,
	sortFields []domain.SortField,
	page, pageSize int,
) (domain.Page[domain.Property], error) {
	pager := domain.NewPager(page, pageSize)

	var (
		total int
		items []domain.Property
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.Count(gctx, pred)
		total = n
		return err
	})
	g.Go(func() error {
		res, err := s.repo.Find(gctx, pred, domain.FindOptions{
			Sort:  sortFields,
			Skip:  pager.Offset(),
			Limit: pager.Limit(),
		})
		items = res
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Page[domain.Property]{}, err
	}

	return domain.NewPage(items, page, pageSize, total), nil
}

func (s *Service) normalizePage(page, pageSize int) (int, int, error) {
	if page < 0 {
		return 0, 0, &domain.ValidationError{Field: "page", Value: strconv.Itoa(page), Reason: "must be positive"}
	}
	if pageSize < 0 {
		return 0, 0, &domain.ValidationError{Field: "pageSize", Value: strconv.Itoa(pageSize), Reason: "must be positive"}
	}
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = s.cfg.DefaultPageSize
	}
	pageSize = min(pageSize, s.cfg.MaxPageSize)
	if !domain.PageInRange(page, pageSize) {
		return 0, 0, &domain.ValidationError{Field: "page", Value: strconv.Itoa(page), Reason: "offset out of range"}
	}
	return page, pageSize, nil
}

func (s *Service) normalizeLimit(limit int) (int, error) {
	if limit < 0 {
		return 0, &domain.ValidationError{Field: "limit", Value: strconv.Itoa(limit), Reason: "must be positive"}
	}
	if limit == 0 {
		return s.cfg.SimilarDefaultLimit, nil
	}
	return min(limit, s.cfg.SimilarMaxLimit), nil
}

// resolveRadius проверяет радиус; без явного значения берётся радиус из конфигурации.
func (s *Service) resolveRadius(radiusKm *float64) (float64, error) {
	if radiusKm == nil {
		return s.cfg.DefaultRadiusKm, nil
	}
	r := *radiusKm
	if math.IsNaN(r) || r <= 0 || r > s.cfg.MaxRadiusKm {
		return 0, &domain.ValidationError{
			Field:  "radiusKm",
			Value:  strconv.FormatFloat(r, 'f', -1, 64),
			Reason: fmt.Sprintf("must be within (0, %g]", s.cfg.MaxRadiusKm),
		}
	}
	return r, nil
}

func parseSort(key, order string) ([]domain.SortField, error) {
	k, ok := domain.ParseSortKey(key)
	if !ok {
		return nil, &domain.ValidationError{Field: "sortKey", Value: key, Reason: "unsupported sort key"}
	}
	o, ok := domain.ParseOrderDirection(order)
	if !ok {
		return nil, &domain.ValidationError{Field: "sortOrder", Value: order, Reason: "must be asc or desc"}
	}
	return []domain.SortField{{Key: k, Order: o}}, nil
}

func fallbackSort() []domain.SortField {
	return []domain.SortField{
		{Key: domain.SortByFeatured, Order: domain.OrderDesc},
		{Key: domain.SortByCreatedAt, Order: domain.OrderDesc},
	}
}

// withActiveDefault по умолчанию показывает только активные объявления,
// если клиент сам не задал isActive.
func withActiveDefault(pred domain.Predicate) domain.Predicate {
	if pred.Has(domain.FieldIsActive) {
		return pred
	}
	return pred.And(domain.Eq(domain.FieldIsActive, true))
}

func withDeadline(ctx context.Context, deadline time.Time) (context.Context, context.CancelFunc) {
	if deadline.IsZero() {
		return context.WithCancel(ctx)
	}
	return context.WithDeadline(ctx, deadline)
}

// storageError переводит ошибки хранилища в доменные. Отмена и таймаут контекста
// сохраняются как есть, чтобы вызывающий мог отличить их от отказа хранилища.
func storageError(op string, err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, repository.ErrPropertyNotFound):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrValidation):
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}
