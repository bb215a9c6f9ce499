package memory_repository

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"estate_search/internal/domain"
	"estate_search/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newRepo(t *testing.T, props ...domain.Property) *PropertyRepository {
	t.Helper()
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	r := NewPropertyRepository(log)
	require.NoError(t, r.Upsert(context.Background(), props...))
	return r
}

func saleProperty(title string, price float64, created time.Time) domain.Property {
	return domain.Property{
		ID:           uuid.New(),
		Title:        title,
		Status:       domain.PropertyStatusForSale,
		PropertyType: domain.PropertyTypeResidential,
		Pricing:      domain.Pricing{SalesPrice: ptr(price)},
		IsActive:     true,
		CreatedAt:    created,
	}
}

func at(p domain.Property, lat, lon float64) domain.Property {
	p.Location.Coordinate = &domain.Coordinate{Latitude: lat, Longitude: lon}
	return p
}

func TestPropertyRepository_GetByID(t *testing.T) {
	p := saleProperty("House", 100_000, time.Now())
	r := newRepo(t, p)

	got, err := r.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Title, got.Title)

	_, err = r.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrPropertyNotFound)
}

func TestPropertyRepository_UpsertRejectsInvalid(t *testing.T) {
	r := newRepo(t)

	bad := saleProperty("No price", 0, time.Now())
	bad.Pricing.SalesPrice = nil

	err := r.Upsert(context.Background(), bad)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, r.Len())

	err = r.Upsert(context.Background(), domain.Property{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPropertyRepository_FindSortsAndSlices(t *testing.T) {
	now := time.Now()
	a := saleProperty("A", 300, now.Add(-3*time.Hour))
	b := saleProperty("B", 100, now.Add(-2*time.Hour))
	c := saleProperty("C", 200, now.Add(-1*time.Hour))
	rent := domain.Property{
		ID:           uuid.New(),
		Title:        "Rent",
		Status:       domain.PropertyStatusForRent,
		PropertyType: domain.PropertyTypeCondo,
		Pricing:      domain.Pricing{MonthlyRent: ptr(1500.0)},
		IsActive:     true,
		CreatedAt:    now,
	}
	r := newRepo(t, a, b, c, rent)

	tests := []struct {
		name string
		opts domain.FindOptions
		want []string
	}{
		{
			name: "recency",
			opts: domain.FindOptions{Sort: domain.RecencySort()},
			want: []string{"Rent", "C", "B", "A"},
		},
		{
			name: "price asc puts missing last",
			opts: domain.FindOptions{Sort: []domain.SortField{{Key: domain.SortBySalesPrice, Order: domain.OrderAsc}}},
			want: []string{"B", "C", "A", "Rent"},
		},
		{
			name: "price desc puts missing last",
			opts: domain.FindOptions{Sort: []domain.SortField{{Key: domain.SortBySalesPrice, Order: domain.OrderDesc}}},
			want: []string{"A", "C", "B", "Rent"},
		},
		{
			name: "skip and limit",
			opts: domain.FindOptions{Sort: domain.RecencySort(), Skip: 1, Limit: 2},
			want: []string{"C", "B"},
		},
		{
			name: "skip past end",
			opts: domain.FindOptions{Sort: domain.RecencySort(), Skip: 10},
			want: []string{},
		},
		{
			name: "negative skip starts at first item",
			opts: domain.FindOptions{Sort: domain.RecencySort(), Skip: -4, Limit: 2},
			want: []string{"Rent", "C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Find(context.Background(), domain.Predicate{}, tt.opts)
			require.NoError(t, err)

			titles := make([]string, 0, len(got))
			for _, p := range got {
				titles = append(titles, p.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestPropertyRepository_FindAndCountUsePredicate(t *testing.T) {
	now := time.Now()
	cheap := saleProperty("Cheap", 100, now)
	pricey := saleProperty("Pricey", 900, now)
	r := newRepo(t, cheap, pricey)

	pred := domain.Predicate{All: []domain.Condition{domain.Lte(domain.FieldSalesPrice, 500)}}

	got, err := r.Find(context.Background(), pred, domain.FindOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, cheap.ID, got[0].ID)

	n, err := r.Count(context.Background(), pred)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPropertyRepository_FindWithDistance(t *testing.T) {
	now := time.Now()
	origin := domain.Coordinate{Latitude: 40.0, Longitude: -74.0}

	near := at(saleProperty("Near", 100, now), 40.01, -74.0)    // ~1.1 km
	mid := at(saleProperty("Mid", 100, now), 40.05, -74.0)      // ~5.6 km
	far := at(saleProperty("Far", 100, now), 41.0, -74.0)       // ~111 km
	sameBand := at(saleProperty("East", 100, now), 40.0, -72.0) // в полосе широт, но ~170 km
	noCoord := saleProperty("NoCoord", 100, now)

	r := newRepo(t, near, mid, far, sameBand, noCoord)

	got, err := r.FindWithDistance(context.Background(), domain.Predicate{}, origin, 10)
	require.NoError(t, err)

	ids := map[uuid.UUID]float64{}
	for _, rp := range got {
		ids[rp.Property.ID] = rp.DistanceKm
		assert.LessOrEqual(t, rp.DistanceKm, 10.0)
	}
	assert.Len(t, ids, 2)
	assert.InDelta(t, 1.11, ids[near.ID], 0.01)
	assert.InDelta(t, 5.56, ids[mid.ID], 0.01)
}

func TestPropertyRepository_DeleteUpdatesIndex(t *testing.T) {
	origin := domain.Coordinate{Latitude: 10, Longitude: 10}
	p := at(saleProperty("Point", 100, time.Now()), 10, 10)
	r := newRepo(t, p)

	got, err := r.FindWithDistance(context.Background(), domain.Predicate{}, origin, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, r.Delete(context.Background(), p.ID))

	got, err = r.FindWithDistance(context.Background(), domain.Predicate{}, origin, 1)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.ErrorIs(t, r.Delete(context.Background(), p.ID), repository.ErrPropertyNotFound)
}

func TestPropertyRepository_CanceledContext(t *testing.T) {
	r := newRepo(t, saleProperty("A", 1, time.Now()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Find(ctx, domain.Predicate{}, domain.FindOptions{})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = r.Count(ctx, domain.Predicate{})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = r.FindWithDistance(ctx, domain.Predicate{}, domain.Coordinate{}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
