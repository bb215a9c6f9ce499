package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Field поле объекта, по которому можно фильтровать.
type Field string

const (
	FieldID             Field = "id"
	FieldTitle          Field = "title"
	FieldDescription    Field = "description"
	FieldStatus         Field = "status"
	FieldPropertyType   Field = "propertyType"
	FieldBeds           Field = "beds"
	FieldBaths          Field = "baths"
	FieldSqft           Field = "sqft"
	FieldSalesPrice     Field = "salesPrice"
	FieldMonthlyRent    Field = "monthlyRent"
	FieldStreet         Field = "street"
	FieldCity           Field = "city"
	FieldState          Field = "state"
	FieldSchoolDistrict Field = "schoolDistrict"
	FieldFeatured       Field = "featured"
	FieldIsActive       Field = "isActive"
	FieldFurnished      Field = "furnished"
	FieldPetAllowed     Field = "petAllowed"
)

// Op оператор условия.
type Op string

const (
	OpEq       Op = "eq"
	OpNe       Op = "ne"
	OpGte      Op = "gte"
	OpLte      Op = "lte"
	OpIn       Op = "in"
	OpContains Op = "contains"
)

// Condition одно условие над полем.
// Value: string для текста и перечислений, float64 для чисел, bool для флагов, uuid.UUID для id.
type Condition struct {
	Field  Field
	Op     Op
	Value  any
	Values []any
}

// Predicate описание критериев отбора, не зависящее от хранилища.
// Запись подходит, если выполнены все условия All и, когда Any не пуст, хотя бы одно из Any.
type Predicate struct {
	All []Condition
	Any []Condition
}

// Eq поле равно значению.
func Eq(f Field, v any) Condition {
	return Condition{Field: f, Op: OpEq, Value: v}
}

// Ne поле не равно значению.
func Ne(f Field, v any) Condition {
	return Condition{Field: f, Op: OpNe, Value: v}
}

// Gte включительная нижняя граница.
func Gte(f Field, v float64) Condition {
	return Condition{Field: f, Op: OpGte, Value: v}
}

// Lte включительная верхняя граница.
func Lte(f Field, v float64) Condition {
	return Condition{Field: f, Op: OpLte, Value: v}
}

// In поле равно одному из значений.
func In(f Field, vs ...any) Condition {
	return Condition{Field: f, Op: OpIn, Values: vs}
}

// Contains подстрока без учёта регистра.
func Contains(f Field, s string) Condition {
	return Condition{Field: f, Op: OpContains, Value: s}
}

// And возвращает копию предиката с дополнительными условиями.
func (p Predicate) And(conds ...Condition) Predicate {
	all := make([]Condition, 0, len(p.All)+len(conds))
	all = append(all, p.All...)
	all = append(all, conds...)
	return Predicate{All: all, Any: p.Any}
}

// Has сообщает, есть ли в All условие на поле f.
func (p Predicate) Has(f Field) bool {
	for _, c := range p.All {
		if c.Field == f {
			return true
		}
	}
	return false
}

// Match вычисляет предикат над записью в памяти.
func (p Predicate) Match(prop Property) bool {
	for _, c := range p.All {
		if !c.Match(prop) {
			return false
		}
	}
	if len(p.Any) == 0 {
		return true
	}
	for _, c := range p.Any {
		if c.Match(prop) {
			return true
		}
	}
	return false
}

// Match вычисляет одно условие. Отсутствующее значение поля не удовлетворяет
// ни одному оператору, кроме ne.
func (c Condition) Match(prop Property) bool {
	actual, ok := prop.FieldValue(c.Field)

	switch c.Op {
	case OpEq:
		return ok && valuesEqual(actual, c.Value)
	case OpNe:
		return !ok || !valuesEqual(actual, c.Value)
	case OpGte, OpLte:
		if !ok {
			return false
		}
		a, aok := toFloat(actual)
		b, bok := toFloat(c.Value)
		if !aok || !bok {
			return false
		}
		if c.Op == OpGte {
			return a >= b
		}
		return a <= b
	case OpIn:
		if !ok {
			return false
		}
		for _, v := range c.Values {
			if valuesEqual(actual, v) {
				return true
			}
		}
		return false
	case OpContains:
		if !ok {
			return false
		}
		s, sok := actual.(string)
		sub, subok := c.Value.(string)
		return sok && subok && strings.Contains(strings.ToLower(s), strings.ToLower(sub))
	}
	return false
}

// FieldValue значение поля в нормализованном виде: числа как float64,
// перечисления как string. ok == false, если значение отсутствует.
func (p Property) FieldValue(f Field) (any, bool) {
	switch f {
	case FieldID:
		return p.ID, true
	case FieldTitle:
		return p.Title, true
	case FieldDescription:
		return p.Description, true
	case FieldStatus:
		return p.Status.String(), true
	case FieldPropertyType:
		return p.PropertyType.String(), true
	case FieldBeds:
		return float64(p.BasicInfo.Beds), true
	case FieldBaths:
		return float64(p.BasicInfo.Baths), true
	case FieldSqft:
		return float64(p.BasicInfo.Sqft), true
	case FieldSalesPrice:
		if p.Pricing.SalesPrice == nil {
			return nil, false
		}
		return *p.Pricing.SalesPrice, true
	case FieldMonthlyRent:
		if p.Pricing.MonthlyRent == nil {
			return nil, false
		}
		return *p.Pricing.MonthlyRent, true
	case FieldStreet:
		return p.Location.Street, true
	case FieldCity:
		return p.Location.City, true
	case FieldState:
		return p.Location.State, true
	case FieldSchoolDistrict:
		return p.Location.SchoolDistrict, true
	case FieldFeatured:
		return p.Featured, true
	case FieldIsActive:
		return p.IsActive, true
	case FieldFurnished:
		if p.Rental.Furnished == FurnishedUnspecified {
			return nil, false
		}
		return p.Rental.Furnished.String(), true
	case FieldPetAllowed:
		return p.Rental.PetAllowed, true
	}
	return nil, false
}

func valuesEqual(a, b any) bool {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	switch av := a.(type) {
	case uuid.UUID:
		switch bv := b.(type) {
		case uuid.UUID:
			return av == bv
		case string:
			return av.String() == bv
		}
		return false
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
