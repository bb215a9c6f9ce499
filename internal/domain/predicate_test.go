package domain

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestCondition_Match(t *testing.T) {
	id := uuid.New()
	p := Property{
		ID:           id,
		Title:        "Ocean View Villa",
		Status:       PropertyStatusForSale,
		PropertyType: PropertyTypeResidential,
		BasicInfo:    BasicInfo{Beds: 3, Baths: 2, Sqft: 1800},
		Pricing:      Pricing{SalesPrice: ptr(750_000.0)},
		Location:     Location{City: "Los Angeles", State: "CA"},
		IsActive:     true,
	}

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"eq string", Eq(FieldStatus, "ForSale"), true},
		{"eq string mismatch", Eq(FieldStatus, "ForRent"), false},
		{"eq bool", Eq(FieldIsActive, true), true},
		{"eq id", Eq(FieldID, id), true},
		{"eq id as string", Eq(FieldID, id.String()), true},
		{"ne id", Ne(FieldID, id), false},
		{"gte inclusive", Gte(FieldBeds, 3), true},
		{"gte above", Gte(FieldBeds, 4), false},
		{"lte inclusive", Lte(FieldSalesPrice, 750_000), true},
		{"missing field fails gte", Gte(FieldMonthlyRent, 0), false},
		{"missing field passes ne", Ne(FieldMonthlyRent, 1.0), true},
		{"missing furnished fails eq", Eq(FieldFurnished, "Furnished"), false},
		{"in with float", In(FieldBeds, 2.0, 3.0, 4.0), true},
		{"in with int", In(FieldBeds, 1, 2), false},
		{"contains case-insensitive", Contains(FieldCity, "angel"), true},
		{"contains miss", Contains(FieldState, "NY"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cond.Match(p))
		})
	}
}

func TestPredicate_Match(t *testing.T) {
	p := Property{Title: "Loft", Location: Location{City: "Denver"}, BasicInfo: BasicInfo{Beds: 1}}

	assert.True(t, Predicate{}.Match(p))
	assert.True(t, Predicate{Any: []Condition{Contains(FieldTitle, "xx"), Contains(FieldCity, "den")}}.Match(p))
	assert.False(t, Predicate{
		All: []Condition{Gte(FieldBeds, 2)},
		Any: []Condition{Contains(FieldTitle, "loft")},
	}.Match(p))

	pred := Predicate{}.And(Eq(FieldFeatured, false))
	assert.True(t, pred.Has(FieldFeatured))
	assert.False(t, pred.Has(FieldIsActive))
}

func TestCompareProperties(t *testing.T) {
	now := time.Now()
	a := Property{ID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), CreatedAt: now, Pricing: Pricing{SalesPrice: ptr(10.0)}}
	b := Property{ID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), CreatedAt: now, Pricing: Pricing{SalesPrice: ptr(20.0)}}
	c := Property{ID: uuid.MustParse("00000000-0000-0000-0000-000000000003"), CreatedAt: now.Add(time.Hour)}

	priceAsc := []SortField{{Key: SortBySalesPrice, Order: OrderAsc}}
	priceDesc := []SortField{{Key: SortBySalesPrice, Order: OrderDesc}}

	assert.Negative(t, CompareProperties(a, b, priceAsc))
	assert.Positive(t, CompareProperties(a, b, priceDesc))
	assert.Positive(t, CompareProperties(c, a, priceAsc), "missing price sorts last ascending")
	assert.Positive(t, CompareProperties(c, a, priceDesc), "missing price sorts last descending")
	assert.Negative(t, CompareProperties(c, a, RecencySort()))
	assert.Negative(t, CompareProperties(a, b, RecencySort()), "ties break by id")
}

func TestProperty_Validate(t *testing.T) {
	assert.NoError(t, Property{Status: PropertyStatusForRent, Pricing: Pricing{MonthlyRent: ptr(100.0)}}.Validate())
	assert.ErrorIs(t, Property{Status: PropertyStatusSold, Pricing: Pricing{MonthlyRent: ptr(100.0)}}.Validate(), ErrValidation)
	assert.ErrorIs(t, Property{Location: Location{Coordinate: &Coordinate{Latitude: 100}}}.Validate(), ErrValidation)
	assert.ErrorIs(t, Property{BasicInfo: BasicInfo{Beds: -1}}.Validate(), ErrValidation)
}

func TestPage(t *testing.T) {
	p := NewPage[int](nil, 1, 5, 11)
	assert.Equal(t, []int{}, p.Items)
	assert.Equal(t, 3, p.TotalPages)

	assert.Equal(t, 10, NewPager(3, 5).Offset())
	assert.Equal(t, DefaultPageSize, NewPager(1, 0).Limit())
}

func TestPager_OffsetOverflow(t *testing.T) {
	huge := (1 << 61) + 1
	assert.Equal(t, math.MaxInt, NewPager(huge, 12).Offset())
	assert.Equal(t, math.MaxInt, NewPager(math.MaxInt, 100).Offset())
	assert.GreaterOrEqual(t, NewPager(huge, 1).Offset(), 0)

	assert.True(t, PageInRange(1, 100))
	assert.True(t, PageInRange(math.MaxInt, 1))
	assert.False(t, PageInRange(huge, 12))
	assert.False(t, PageInRange(math.MaxInt, 100))
}

func TestParseSortKey(t *testing.T) {
	k, ok := ParseSortKey("")
	assert.True(t, ok)
	assert.Equal(t, SortByCreatedAt, k)

	k, ok = ParseSortKey("Price")
	assert.True(t, ok)
	assert.Equal(t, SortBySalesPrice, k)

	_, ok = ParseSortKey("featured")
	assert.False(t, ok, "internal keys are not selectable")

	_, ok = ParseSortKey("password")
	assert.False(t, ok)
}
