package property_repository

import (
	"strings"
	"testing"

	"estate_search/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereBuilder_Predicate(t *testing.T) {
	id := uuid.New()
	pred := domain.Predicate{
		All: []domain.Condition{
			domain.Eq(domain.FieldStatus, "ForSale"),
			domain.Gte(domain.FieldSalesPrice, 500000),
			domain.Lte(domain.FieldSalesPrice, 1500000),
			domain.Gte(domain.FieldBeds, 3),
			domain.Contains(domain.FieldCity, "angeles"),
			domain.Ne(domain.FieldID, id),
			domain.In(domain.FieldBeds, 2.0, 3.0),
			domain.Eq(domain.FieldIsActive, true),
		},
		Any: []domain.Condition{
			domain.Contains(domain.FieldTitle, "pool"),
			domain.Contains(domain.FieldDescription, "pool"),
		},
	}

	b := newWhereBuilder()
	require.NoError(t, b.predicate(pred))

	assert.Equal(t, " WHERE "+strings.Join([]string{
		"status = $1",
		"sales_price >= $2::double precision",
		"sales_price <= $3::double precision",
		"beds >= $4::double precision",
		"POSITION(LOWER($5) IN LOWER(city)) > 0",
		"(property_id IS NULL OR property_id <> $6)",
		"beds = ANY($7::double precision[])",
		"is_active = $8",
		"(POSITION(LOWER($9) IN LOWER(title)) > 0 OR POSITION(LOWER($10) IN LOWER(description)) > 0)",
	}, " AND "), b.sql())

	assert.Equal(t, []interface{}{
		"ForSale", 500000.0, 1500000.0, 3.0, "angeles", id, []float64{2, 3}, true, "pool", "pool",
	}, b.params)
}

func TestWhereBuilder_Empty(t *testing.T) {
	b := newWhereBuilder()
	require.NoError(t, b.predicate(domain.Predicate{}))
	assert.Equal(t, "", b.sql())
	assert.Empty(t, b.params)
}

func TestWhereBuilder_UnsupportedField(t *testing.T) {
	b := newWhereBuilder()
	err := b.predicate(domain.Predicate{All: []domain.Condition{domain.Eq("owner; DROP TABLE", "x")}})
	assert.Error(t, err)
}

func TestOrderBy(t *testing.T) {
	got, err := orderBy([]domain.SortField{
		{Key: domain.SortByFeatured, Order: domain.OrderDesc},
		{Key: domain.SortBySalesPrice, Order: domain.OrderAsc},
	})
	require.NoError(t, err)
	assert.Equal(t, " ORDER BY featured DESC NULLS LAST, sales_price ASC NULLS LAST, property_id ASC", got)

	got, err = orderBy(nil)
	require.NoError(t, err)
	assert.Equal(t, " ORDER BY property_id ASC", got)

	_, err = orderBy([]domain.SortField{{Key: "password"}})
	assert.Error(t, err)
}

func TestBuildDistanceQuery(t *testing.T) {
	pred := domain.Predicate{All: []domain.Condition{domain.Eq(domain.FieldIsActive, true)}}
	origin := domain.Coordinate{Longitude: -118.40, Latitude: 34.07}

	query, params, err := buildDistanceQuery(pred, origin, 10)
	require.NoError(t, err)

	assert.Contains(t, query, "is_active = $1")
	assert.Contains(t, query, "latitude BETWEEN $2 AND $3")
	assert.Contains(t, query, "RADIANS(latitude - $4::double precision)")
	assert.Contains(t, query, "RADIANS(longitude - $5::double precision)")
	assert.Contains(t, query, "distance_km <= $6::double precision")
	require.Len(t, params, 6)

	minLat, maxLat := params[1].(float64), params[2].(float64)
	assert.Less(t, minLat, origin.Latitude)
	assert.Greater(t, maxLat, origin.Latitude)
	assert.InDelta(t, 10/domain.KmPerDegreeLat, origin.Latitude-minLat, 0.001)
	assert.Equal(t, origin.Latitude, params[3])
	assert.Equal(t, origin.Longitude, params[4])
}

func TestBuildNearestPageQuery(t *testing.T) {
	pred := domain.Predicate{All: []domain.Condition{domain.Eq(domain.FieldIsActive, true)}}
	origin := domain.Coordinate{Longitude: -118.40, Latitude: 34.07}

	query, params, err := buildNearestPageQuery(pred, origin, 10, domain.FindOptions{Skip: 24, Limit: 12})
	require.NoError(t, err)

	assert.Contains(t, query, "COUNT(*) OVER () AS total")
	assert.Contains(t, query, "distance_km <= $6::double precision")
	assert.Contains(t, query, "ORDER BY featured DESC, distance_km ASC, property_id ASC")
	assert.True(t, strings.HasSuffix(query, " OFFSET $7 LIMIT $8"), query)
	require.Len(t, params, 8)

	// радиус в SQL точный, без запаса
	assert.Equal(t, 10.0, params[5])
	assert.Equal(t, 24, params[6])
	assert.Equal(t, 12, params[7])
}

func TestBuildNearestPageQuery_FirstPage(t *testing.T) {
	query, params, err := buildNearestPageQuery(domain.Predicate{}, domain.Coordinate{}, 5, domain.FindOptions{Limit: 12})
	require.NoError(t, err)

	assert.NotContains(t, query, "OFFSET")
	assert.True(t, strings.HasSuffix(query, " LIMIT $6"), query)
	assert.Len(t, params, 6)
}

func TestBuildNearestCountQuery(t *testing.T) {
	pred := domain.Predicate{All: []domain.Condition{domain.Eq(domain.FieldIsActive, true)}}

	query, params, err := buildNearestCountQuery(pred, domain.Coordinate{Longitude: 1, Latitude: 2}, 10)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(strings.TrimSpace(query), "SELECT COUNT(*) FROM"), query)
	assert.Contains(t, query, "distance_km <= $6::double precision")
	assert.NotContains(t, query, "ORDER BY")
	assert.Len(t, params, 6)
	assert.Equal(t, 10.0, params[5])
}
