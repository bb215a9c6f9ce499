package property_repository

import (
	"fmt"
	"strings"

	"estate_search/internal/domain"
)

var columns = map[domain.Field]string{
	domain.FieldID:             "property_id",
	domain.FieldTitle:          "title",
	domain.FieldDescription:    "description",
	domain.FieldStatus:         "status",
	domain.FieldPropertyType:   "property_type",
	domain.FieldBeds:           "beds",
	domain.FieldBaths:          "baths",
	domain.FieldSqft:           "sqft",
	domain.FieldSalesPrice:     "sales_price",
	domain.FieldMonthlyRent:    "monthly_rent",
	domain.FieldStreet:         "street",
	domain.FieldCity:           "city",
	domain.FieldState:          "state",
	domain.FieldSchoolDistrict: "school_district",
	domain.FieldFeatured:       "featured",
	domain.FieldIsActive:       "is_active",
	domain.FieldFurnished:      "furnished",
	domain.FieldPetAllowed:     "pet_allowed",
}

var sortColumns = map[domain.SortKey]string{
	domain.SortByCreatedAt:   "created_at",
	domain.SortBySalesPrice:  "sales_price",
	domain.SortByMonthlyRent: "monthly_rent",
	domain.SortBySqft:        "sqft",
	domain.SortByBeds:        "beds",
	domain.SortByFeatured:    "featured",
}

// whereBuilder собирает WHERE с позиционными параметрами $1, $2, ...
type whereBuilder struct {
	clauses    []string
	params     []interface{}
	paramCount int
}

func newWhereBuilder() *whereBuilder {
	return &whereBuilder{paramCount: 1}
}

func (b *whereBuilder) arg(v interface{}) string {
	placeholder := fmt.Sprintf("$%d", b.paramCount)
	b.params = append(b.params, v)
	b.paramCount++
	return placeholder
}

func (b *whereBuilder) add(clause string) {
	b.clauses = append(b.clauses, clause)
}

// predicate переводит предикат в SQL. NULL не проходит ни одно условие, кроме ne,
// так же как отсутствующее значение в памяти.
func (b *whereBuilder) predicate(pred domain.Predicate) error {
	for _, c := range pred.All {
		clause, err := b.condition(c)
		if err != nil {
			return err
		}
		b.add(clause)
	}
	if len(pred.Any) > 0 {
		anyClauses := make([]string, 0, len(pred.Any))
		for _, c := range pred.Any {
			clause, err := b.condition(c)
			if err != nil {
				return err
			}
			anyClauses = append(anyClauses, clause)
		}
		b.add("(" + strings.Join(anyClauses, " OR ") + ")")
	}
	return nil
}

func (b *whereBuilder) condition(c domain.Condition) (string, error) {
	col, ok := columns[c.Field]
	if !ok {
		return "", fmt.Errorf("unsupported field %q", c.Field)
	}

	cast := ""
	if isNumeric(c.Field) {
		cast = "::double precision"
	}

	switch c.Op {
	case domain.OpEq:
		return fmt.Sprintf("%s = %s%s", col, b.arg(c.Value), cast), nil
	case domain.OpNe:
		return fmt.Sprintf("(%s IS NULL OR %s <> %s%s)", col, col, b.arg(c.Value), cast), nil
	case domain.OpGte:
		return fmt.Sprintf("%s >= %s::double precision", col, b.arg(c.Value)), nil
	case domain.OpLte:
		return fmt.Sprintf("%s <= %s::double precision", col, b.arg(c.Value)), nil
	case domain.OpIn:
		if isNumeric(c.Field) {
			vals := make([]float64, 0, len(c.Values))
			for _, v := range c.Values {
				f, ok := toFloat(v)
				if !ok {
					return "", fmt.Errorf("non-numeric value %v for field %q", v, c.Field)
				}
				vals = append(vals, f)
			}
			return fmt.Sprintf("%s = ANY(%s::double precision[])", col, b.arg(vals)), nil
		}
		vals := make([]string, 0, len(c.Values))
		for _, v := range c.Values {
			vals = append(vals, fmt.Sprint(v))
		}
		return fmt.Sprintf("%s = ANY(%s::text[])", col, b.arg(vals)), nil
	case domain.OpContains:
		return fmt.Sprintf("POSITION(LOWER(%s) IN LOWER(%s)) > 0", b.arg(c.Value), col), nil
	}
	return "", fmt.Errorf("unsupported operator %q", c.Op)
}

func (b *whereBuilder) sql() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.clauses, " AND ")
}

// orderBy строит ORDER BY. NULL всегда в конце, последним ключом идёт property_id.
func orderBy(fields []domain.SortField) (string, error) {
	parts := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		col, ok := sortColumns[f.Key]
		if !ok {
			return "", fmt.Errorf("unsupported sort key %q", f.Key)
		}
		dir := "DESC"
		if f.Order == domain.OrderAsc {
			dir = "ASC"
		}
		parts = append(parts, fmt.Sprintf("%s %s NULLS LAST", col, dir))
	}
	parts = append(parts, "property_id ASC")
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

func isNumeric(f domain.Field) bool {
	switch f {
	case domain.FieldBeds, domain.FieldBaths, domain.FieldSqft, domain.FieldSalesPrice, domain.FieldMonthlyRent:
		return true
	}
	return false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
