package search

import (
	"testing"

	"estate_search/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_EmptyParamsProduceEmptyPredicate(t *testing.T) {
	pred, err := Compile(FilterParams{City: "   ", Beds: ""})
	require.NoError(t, err)
	assert.Empty(t, pred.All)
	assert.Empty(t, pred.Any)
}

func TestCompile_PriceGatedByStatus(t *testing.T) {
	tests := []struct {
		name      string
		params    FilterParams
		wantField []domain.Field
	}{
		{
			name:      "sale status applies price bounds",
			params:    FilterParams{Status: "ForSale", MinPrice: "500000", MaxPrice: "1500000", MinRent: "1000"},
			wantField: []domain.Field{domain.FieldStatus, domain.FieldSalesPrice, domain.FieldSalesPrice},
		},
		{
			name:      "rent status applies rent bounds",
			params:    FilterParams{Status: "forrent", MinPrice: "500000", MaxRent: "3000"},
			wantField: []domain.Field{domain.FieldStatus, domain.FieldMonthlyRent},
		},
		{
			name:      "rented is rent family",
			params:    FilterParams{Status: "Rented", MinRent: "100"},
			wantField: []domain.Field{domain.FieldStatus, domain.FieldMonthlyRent},
		},
		{
			name:      "sold is sale family",
			params:    FilterParams{Status: "Sold", MaxPrice: "100"},
			wantField: []domain.Field{domain.FieldStatus, domain.FieldSalesPrice},
		},
		{
			name:      "no status ignores both",
			params:    FilterParams{MinPrice: "1", MaxRent: "2"},
			wantField: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := Compile(tt.params)
			require.NoError(t, err)

			var fields []domain.Field
			for _, c := range pred.All {
				fields = append(fields, c.Field)
			}
			assert.Equal(t, tt.wantField, fields)
		})
	}
}

func TestCompile_Conditions(t *testing.T) {
	pred, err := Compile(FilterParams{
		Status:       "ForSale",
		PropertyType: "condo",
		MinPrice:     "100",
		MinSqft:      "500",
		MaxSqft:      "900",
		Beds:         "3",
		Baths:        "2",
		City:         "Los",
		State:        "ca",
		Featured:     "true",
		Furnished:    "furnished",
		PetAllowed:   "0",
	})
	require.NoError(t, err)

	assert.Equal(t, []domain.Condition{
		domain.Eq(domain.FieldStatus, "ForSale"),
		domain.Eq(domain.FieldPropertyType, "Condo"),
		domain.Gte(domain.FieldSalesPrice, 100),
		domain.Gte(domain.FieldSqft, 500),
		domain.Lte(domain.FieldSqft, 900),
		domain.Gte(domain.FieldBeds, 3),
		domain.Gte(domain.FieldBaths, 2),
		domain.Contains(domain.FieldCity, "Los"),
		domain.Contains(domain.FieldState, "ca"),
		domain.Eq(domain.FieldFeatured, true),
		domain.Eq(domain.FieldPetAllowed, false),
		domain.Eq(domain.FieldFurnished, "Furnished"),
	}, pred.All)
}

func TestCompile_QueryWidensWithOrGroup(t *testing.T) {
	pred, err := Compile(FilterParams{Query: " pool ", Beds: "2"})
	require.NoError(t, err)

	require.Len(t, pred.All, 1)
	require.Len(t, pred.Any, len(textFields))
	for i, c := range pred.Any {
		assert.Equal(t, textFields[i], c.Field)
		assert.Equal(t, domain.OpContains, c.Op)
		assert.Equal(t, "pool", c.Value)
	}

	withPool := domain.Property{Description: "Big POOL in the yard", BasicInfo: domain.BasicInfo{Beds: 2}}
	withoutPool := domain.Property{Description: "No water", BasicInfo: domain.BasicInfo{Beds: 2}}
	smallPool := domain.Property{Title: "pool house", BasicInfo: domain.BasicInfo{Beds: 1}}

	assert.True(t, pred.Match(withPool))
	assert.False(t, pred.Match(withoutPool))
	assert.False(t, pred.Match(smallPool), "OR group must compose with AND filters")
}

func TestCompile_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		params FilterParams
		field  string
	}{
		{"garbage price", FilterParams{Status: "ForSale", MinPrice: "cheap"}, "minPrice"},
		{"garbage price without status", FilterParams{MaxPrice: "12abc"}, "maxPrice"},
		{"garbage rent", FilterParams{MinRent: "NaN"}, "minRent"},
		{"infinite sqft", FilterParams{MaxSqft: "Inf"}, "maxSqft"},
		{"negative sqft", FilterParams{MinSqft: "-1"}, "minSqft"},
		{"inverted range", FilterParams{MinSqft: "900", MaxSqft: "100"}, "minSqft"},
		{"fractional beds", FilterParams{Beds: "2.5"}, "beds"},
		{"negative baths", FilterParams{Baths: "-2"}, "baths"},
		{"unknown status", FilterParams{Status: "Leased"}, "status"},
		{"unknown type", FilterParams{PropertyType: "Castle"}, "propertyType"},
		{"bad bool", FilterParams{Featured: "yes"}, "featured"},
		{"bad isActive", FilterParams{IsActive: "maybe"}, "isActive"},
		{"bad furnished", FilterParams{Furnished: "kind of"}, "furnished"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.params)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)

			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}
