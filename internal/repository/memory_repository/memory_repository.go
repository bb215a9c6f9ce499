package memory_repository

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"estate_search/internal/domain"
	"estate_search/internal/repository"

	"github.com/google/uuid"
)

type latEntry struct {
	lat float64
	id  uuid.UUID
}

// PropertyRepository хранит каталог в памяти.
// Объекты с координатами дополнительно индексируются по широте, что позволяет
// отбирать кандидатов для поиска по радиусу бинарным поиском по полосе широт.
type PropertyRepository struct {
	mu    sync.RWMutex
	log   *slog.Logger
	byID  map[uuid.UUID]domain.Property
	byLat []latEntry
}

func NewPropertyRepository(log *slog.Logger) *PropertyRepository {
	return &PropertyRepository{
		log:  log,
		byID: make(map[uuid.UUID]domain.Property),
	}
}

// Upsert добавляет или заменяет объекты. Невалидная запись прерывает загрузку,
// уже добавленные записи остаются.
func (r *PropertyRepository) Upsert(ctx context.Context, props ...domain.Property) error {
	const op = "memory.PropertyRepository.Upsert"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	reindex := false
	for _, p := range props {
		if p.ID == uuid.Nil {
			return fmt.Errorf("%s: %w", op, &domain.ValidationError{Field: "id", Reason: "must be set"})
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%s: property %s: %w", op, p.ID, err)
		}
		if old, ok := r.byID[p.ID]; ok && old.Location.Coordinate != nil {
			reindex = true
		}
		r.byID[p.ID] = p
		if p.Location.Coordinate != nil {
			reindex = true
		}
	}
	if reindex {
		r.rebuildIndex()
	}
	return nil
}

// Delete удаляет объект.
func (r *PropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "memory.PropertyRepository.Delete"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, repository.ErrPropertyNotFound)
	}
	delete(r.byID, id)
	if p.Location.Coordinate != nil {
		r.rebuildIndex()
	}
	return nil
}

// Len количество объектов в хранилище.
func (r *PropertyRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// rebuildIndex вызывается под записывающей блокировкой.
func (r *PropertyRepository) rebuildIndex() {
	idx := make([]latEntry, 0, len(r.byLat)+1)
	for id, p := range r.byID {
		if p.Location.Coordinate == nil {
			continue
		}
		idx = append(idx, latEntry{lat: p.Location.Coordinate.Latitude, id: id})
	}
	sort.Slice(idx, func(i, j int) bool {
		if idx[i].lat != idx[j].lat {
			return idx[i].lat < idx[j].lat
		}
		return idx[i].id.String() < idx[j].id.String()
	})
	r.byLat = idx
}

// GetByID получает объект по ID.
func (r *PropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Property, error) {
	const op = "memory.PropertyRepository.GetByID"

	if err := ctx.Err(); err != nil {
		return domain.Property{}, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return domain.Property{}, fmt.Errorf("%s: %w", op, repository.ErrPropertyNotFound)
	}
	return p, nil
}

// Find возвращает объекты, удовлетворяющие предикату, в порядке opts.Sort.
func (r *PropertyRepository) Find(ctx context.Context, pred domain.Predicate, opts domain.FindOptions) ([]domain.Property, error) {
	const op = "memory.PropertyRepository.Find"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.RLock()
	matched := make([]domain.Property, 0)
	for _, p := range r.byID {
		if pred.Match(p) {
			matched = append(matched, p)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, func(a, b domain.Property) int {
		return domain.CompareProperties(a, b, opts.Sort)
	})

	skip := max(opts.Skip, 0)
	if skip >= len(matched) {
		return []domain.Property{}, nil
	}
	matched = matched[skip:]
	if opts.Limit > 0 && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

// Count количество объектов, удовлетворяющих предикату.
func (r *PropertyRepository) Count(ctx context.Context, pred domain.Predicate) (int, error) {
	const op = "memory.PropertyRepository.Count"

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, p := range r.byID {
		if pred.Match(p) {
			n++
		}
	}
	return n, nil
}

// FindWithDistance отбирает объекты с координатами внутри полосы широт вокруг origin,
// удовлетворяющие предикату и лежащие не дальше radiusKm. Порядок не гарантируется.
func (r *PropertyRepository) FindWithDistance(
	ctx context.Context,
	pred domain.Predicate,
	origin domain.Coordinate,
	radiusKm float64,
) ([]domain.RankedProperty, error) {
	const op = "memory.PropertyRepository.FindWithDistance"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	minLat, maxLat := domain.LatitudeBand(origin, radiusKm)

	r.mu.RLock()
	defer r.mu.RUnlock()

	start := sort.Search(len(r.byLat), func(i int) bool {
		return r.byLat[i].lat >= minLat
	})

	result := make([]domain.RankedProperty, 0)
	scanned := 0
	for i := start; i < len(r.byLat) && r.byLat[i].lat <= maxLat; i++ {
		scanned++
		p := r.byID[r.byLat[i].id]
		if !pred.Match(p) {
			continue
		}
		d := domain.HaversineKm(origin, *p.Location.Coordinate)
		if d > radiusKm {
			continue
		}
		result = append(result, domain.RankedProperty{Property: p, DistanceKm: d})
	}

	r.log.Debug("proximity candidates selected",
		slog.String("op", op),
		slog.Int("scanned", scanned),
		slog.Int("candidates", len(result)),
	)
	return result, nil
}
