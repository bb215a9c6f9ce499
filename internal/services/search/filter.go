package search

import (
	"math"
	"strconv"
	"strings"

	"estate_search/internal/domain"
)

// FilterParams сырые параметры фильтрации в том виде, в каком они пришли от клиента.
// Пустая строка означает "не задано".
type FilterParams struct {
	Status       string
	PropertyType string

	// MinPrice/MaxPrice применяются только к продажным статусам
	MinPrice string
	MaxPrice string
	// MinRent/MaxRent применяются только к арендным статусам
	MinRent string
	MaxRent string

	MinSqft string
	MaxSqft string
	// Beds и Baths задают минимальное значение
	Beds  string
	Baths string

	City  string
	State string

	Featured   string
	IsActive   string
	Furnished  string
	PetAllowed string

	// Query свободный текст: ищется в названии, описании и адресе
	Query string
}

// textFields поля, в которых ищется свободный текст.
var textFields = []domain.Field{
	domain.FieldTitle,
	domain.FieldDescription,
	domain.FieldStreet,
	domain.FieldCity,
	domain.FieldState,
	domain.FieldSchoolDistrict,
}

// Compile превращает параметры в предикат. Любое непустое значение, которое не удалось
// разобрать, даёт *domain.ValidationError; ничего не отбрасывается молча.
//
// Ценовые границы проверяются всегда, но в предикат попадают только если статус задан
// и относится к соответствующему семейству: цена продажи к продажным статусам,
// аренда к арендным.
func Compile(params FilterParams) (domain.Predicate, error) {
	var pred domain.Predicate

	status, err := parseStatus(params.Status)
	if err != nil {
		return domain.Predicate{}, err
	}
	if status != domain.PropertyStatusUnspecified {
		pred.All = append(pred.All, domain.Eq(domain.FieldStatus, status.String()))
	}

	if s := strings.TrimSpace(params.PropertyType); s != "" {
		pt, ok := domain.ParsePropertyType(s)
		if !ok {
			return domain.Predicate{}, &domain.ValidationError{Field: "propertyType", Value: params.PropertyType, Reason: "unknown property type"}
		}
		pred.All = append(pred.All, domain.Eq(domain.FieldPropertyType, pt.String()))
	}

	priceConds, err := compileRange(domain.FieldSalesPrice, "minPrice", params.MinPrice, "maxPrice", params.MaxPrice)
	if err != nil {
		return domain.Predicate{}, err
	}
	if status.IsSaleFamily() {
		pred.All = append(pred.All, priceConds...)
	}

	rentConds, err := compileRange(domain.FieldMonthlyRent, "minRent", params.MinRent, "maxRent", params.MaxRent)
	if err != nil {
		return domain.Predicate{}, err
	}
	if status.IsRentFamily() {
		pred.All = append(pred.All, rentConds...)
	}

	sqftConds, err := compileRange(domain.FieldSqft, "minSqft", params.MinSqft, "maxSqft", params.MaxSqft)
	if err != nil {
		return domain.Predicate{}, err
	}
	pred.All = append(pred.All, sqftConds...)

	for _, m := range []struct {
		field domain.Field
		name  string
		raw   string
	}{
		{domain.FieldBeds, "beds", params.Beds},
		{domain.FieldBaths, "baths", params.Baths},
	} {
		n, ok, err := parseCount(m.name, m.raw)
		if err != nil {
			return domain.Predicate{}, err
		}
		if ok {
			pred.All = append(pred.All, domain.Gte(m.field, float64(n)))
		}
	}

	if s := strings.TrimSpace(params.City); s != "" {
		pred.All = append(pred.All, domain.Contains(domain.FieldCity, s))
	}
	if s := strings.TrimSpace(params.State); s != "" {
		pred.All = append(pred.All, domain.Contains(domain.FieldState, s))
	}

	for _, f := range []struct {
		field domain.Field
		name  string
		raw   string
	}{
		{domain.FieldFeatured, "featured", params.Featured},
		{domain.FieldIsActive, "isActive", params.IsActive},
		{domain.FieldPetAllowed, "petAllowed", params.PetAllowed},
	} {
		b, ok, err := parseBool(f.name, f.raw)
		if err != nil {
			return domain.Predicate{}, err
		}
		if ok {
			pred.All = append(pred.All, domain.Eq(f.field, b))
		}
	}

	if s := strings.TrimSpace(params.Furnished); s != "" {
		fu, ok := domain.ParseFurnished(s)
		if !ok {
			return domain.Predicate{}, &domain.ValidationError{Field: "furnished", Value: params.Furnished, Reason: "unknown furnished value"}
		}
		pred.All = append(pred.All, domain.Eq(domain.FieldFurnished, fu.String()))
	}

	if q := strings.TrimSpace(params.Query); q != "" {
		for _, f := range textFields {
			pred.Any = append(pred.Any, domain.Contains(f, q))
		}
	}

	return pred, nil
}

func parseStatus(raw string) (domain.PropertyStatus, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return domain.PropertyStatusUnspecified, nil
	}
	status, ok := domain.ParsePropertyStatus(s)
	if !ok {
		return domain.PropertyStatusUnspecified, &domain.ValidationError{Field: "status", Value: raw, Reason: "unknown status"}
	}
	return status, nil
}

// compileRange разбирает пару включительных границ. Перевёрнутый диапазон считается ошибкой.
func compileRange(field domain.Field, minName, minRaw, maxName, maxRaw string) ([]domain.Condition, error) {
	lo, hasLo, err := parseAmount(minName, minRaw)
	if err != nil {
		return nil, err
	}
	hi, hasHi, err := parseAmount(maxName, maxRaw)
	if err != nil {
		return nil, err
	}
	if hasLo && hasHi && lo > hi {
		return nil, &domain.ValidationError{Field: minName, Value: minRaw, Reason: "must not exceed " + maxName}
	}

	var conds []domain.Condition
	if hasLo {
		conds = append(conds, domain.Gte(field, lo))
	}
	if hasHi {
		conds = append(conds, domain.Lte(field, hi))
	}
	return conds, nil
}

func parseAmount(name, raw string) (float64, bool, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, &domain.ValidationError{Field: name, Value: raw, Reason: "must be a number"}
	}
	if v < 0 {
		return 0, false, &domain.ValidationError{Field: name, Value: raw, Reason: "must not be negative"}
	}
	return v, true, nil
}

func parseCount(name, raw string) (int, bool, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, &domain.ValidationError{Field: name, Value: raw, Reason: "must be an integer"}
	}
	if n < 0 {
		return 0, false, &domain.ValidationError{Field: name, Value: raw, Reason: "must not be negative"}
	}
	return n, true, nil
}

func parseBool(name, raw string) (bool, bool, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return false, false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, false, &domain.ValidationError{Field: name, Value: raw, Reason: "must be true or false"}
	}
	return b, true, nil
}
