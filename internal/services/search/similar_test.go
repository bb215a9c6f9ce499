package search

import (
	"testing"

	"estate_search/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestNewSimilarityWindow(t *testing.T) {
	tests := []struct {
		name      string
		ref       domain.Property
		wantField domain.Field
		wantMin   float64
		wantMax   float64
		wantBeds  []int
	}{
		{
			name: "sale reference uses 20%",
			ref: domain.Property{
				PropertyType: domain.PropertyTypeResidential,
				BasicInfo:    domain.BasicInfo{Beds: 4},
				Pricing:      domain.Pricing{SalesPrice: ptr(1_000_000.0)},
			},
			wantField: domain.FieldSalesPrice,
			wantMin:   800_000,
			wantMax:   1_200_000,
			wantBeds:  []int{3, 4, 5},
		},
		{
			name: "rent reference uses 30%",
			ref: domain.Property{
				PropertyType: domain.PropertyTypeCondo,
				BasicInfo:    domain.BasicInfo{Beds: 2},
				Pricing:      domain.Pricing{MonthlyRent: ptr(2000.0)},
			},
			wantField: domain.FieldMonthlyRent,
			wantMin:   1400,
			wantMax:   2600,
			wantBeds:  []int{1, 2, 3},
		},
		{
			name: "studio skips negative beds",
			ref: domain.Property{
				PropertyType: domain.PropertyTypeCondo,
				Pricing:      domain.Pricing{MonthlyRent: ptr(1000.0)},
			},
			wantField: domain.FieldMonthlyRent,
			wantMin:   700,
			wantMax:   1300,
			wantBeds:  []int{0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewSimilarityWindow(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.wantField, w.PriceField)
			assert.InDelta(t, tt.wantMin, w.MinPrice, 1e-9)
			assert.InDelta(t, tt.wantMax, w.MaxPrice, 1e-9)
			assert.Equal(t, tt.wantBeds, w.Beds)
			assert.Equal(t, tt.ref.PropertyType, w.PropertyType)
		})
	}
}

func TestNewSimilarityWindow_InvalidState(t *testing.T) {
	_, err := NewSimilarityWindow(domain.Property{ID: uuid.New(), PropertyType: domain.PropertyTypeLand})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = NewSimilarityWindow(domain.Property{ID: uuid.New(), Pricing: domain.Pricing{SalesPrice: ptr(10.0)}})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestSimilarityWindow_Predicate(t *testing.T) {
	refID := uuid.New()
	w := SimilarityWindow{
		PropertyType: domain.PropertyTypeResidential,
		PriceField:   domain.FieldSalesPrice,
		MinPrice:     1_600_000,
		MaxPrice:     2_400_000,
		Beds:         []int{3, 4, 5},
	}
	pred := w.Predicate(refID)

	match := domain.Property{
		ID:           uuid.New(),
		IsActive:     true,
		PropertyType: domain.PropertyTypeResidential,
		BasicInfo:    domain.BasicInfo{Beds: 5},
		Pricing:      domain.Pricing{SalesPrice: ptr(1_600_000.0)},
	}
	assert.True(t, pred.Match(match))

	self := match
	self.ID = refID
	assert.False(t, pred.Match(self))

	inactive := match
	inactive.IsActive = false
	assert.False(t, pred.Match(inactive))

	tooManyBeds := match
	tooManyBeds.BasicInfo.Beds = 6
	assert.False(t, pred.Match(tooManyBeds))

	otherType := match
	otherType.PropertyType = domain.PropertyTypeCondo
	assert.False(t, pred.Match(otherType))

	rentOnly := match
	rentOnly.Pricing = domain.Pricing{MonthlyRent: ptr(2_000_000.0)}
	assert.False(t, pred.Match(rentOnly))
}
