package mongo_repository

import (
	"fmt"
	"regexp"

	"estate_search/internal/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

const coordinatesPath = "location.coordinates"

var fieldPaths = map[domain.Field]string{
	domain.FieldID:             "_id",
	domain.FieldTitle:          "title",
	domain.FieldDescription:    "description",
	domain.FieldStatus:         "status",
	domain.FieldPropertyType:   "propertyType",
	domain.FieldBeds:           "basicInfo.beds",
	domain.FieldBaths:          "basicInfo.baths",
	domain.FieldSqft:           "basicInfo.sqft",
	domain.FieldSalesPrice:     "pricing.salesPrice",
	domain.FieldMonthlyRent:    "pricing.monthlyRent",
	domain.FieldStreet:         "location.street",
	domain.FieldCity:           "location.city",
	domain.FieldState:          "location.state",
	domain.FieldSchoolDistrict: "location.schoolDistrict",
	domain.FieldFeatured:       "featured",
	domain.FieldIsActive:       "isActive",
	domain.FieldFurnished:      "rental.furnished",
	domain.FieldPetAllowed:     "rental.petAllowed",
}

var sortPaths = map[domain.SortKey]string{
	domain.SortByCreatedAt:   "createdAt",
	domain.SortBySalesPrice:  "pricing.salesPrice",
	domain.SortByMonthlyRent: "pricing.monthlyRent",
	domain.SortBySqft:        "basicInfo.sqft",
	domain.SortByBeds:        "basicInfo.beds",
	domain.SortByFeatured:    "featured",
}

// optionalSortKeys поля, которые могут отсутствовать в документе.
var optionalSortKeys = map[domain.SortKey]bool{
	domain.SortBySalesPrice:  true,
	domain.SortByMonthlyRent: true,
}

// buildFilter переводит предикат в фильтр MongoDB. Условия All идут в $and,
// чтобы несколько условий на одно поле не перетирали друг друга.
func buildFilter(pred domain.Predicate) (bson.M, error) {
	filter := bson.M{}

	if len(pred.All) > 0 {
		and := make(bson.A, 0, len(pred.All))
		for _, c := range pred.All {
			cond, err := buildCondition(c)
			if err != nil {
				return nil, err
			}
			and = append(and, cond)
		}
		filter["$and"] = and
	}

	if len(pred.Any) > 0 {
		or := make(bson.A, 0, len(pred.Any))
		for _, c := range pred.Any {
			cond, err := buildCondition(c)
			if err != nil {
				return nil, err
			}
			or = append(or, cond)
		}
		filter["$or"] = or
	}

	return filter, nil
}

func buildCondition(c domain.Condition) (bson.M, error) {
	path, ok := fieldPaths[c.Field]
	if !ok {
		return nil, fmt.Errorf("unsupported field %q", c.Field)
	}

	switch c.Op {
	case domain.OpEq:
		return bson.M{path: bsonValue(c.Value)}, nil
	case domain.OpNe:
		return bson.M{path: bson.M{"$ne": bsonValue(c.Value)}}, nil
	case domain.OpGte:
		return bson.M{path: bson.M{"$gte": c.Value}}, nil
	case domain.OpLte:
		return bson.M{path: bson.M{"$lte": c.Value}}, nil
	case domain.OpIn:
		vals := make(bson.A, 0, len(c.Values))
		for _, v := range c.Values {
			vals = append(vals, bsonValue(v))
		}
		return bson.M{path: bson.M{"$in": vals}}, nil
	case domain.OpContains:
		s, ok := c.Value.(string)
		if !ok {
			return nil, fmt.Errorf("contains expects a string, got %T", c.Value)
		}
		return bson.M{path: bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}}, nil
	}
	return nil, fmt.Errorf("unsupported operator %q", c.Op)
}

// bsonValue приводит uuid к строке, в которой хранится _id.
func bsonValue(v any) any {
	if id, ok := v.(uuid.UUID); ok {
		return id.String()
	}
	return v
}

// sortStages строит $addFields и $sort. Для полей, которые могут отсутствовать,
// добавляется признак отсутствия, чтобы такие документы шли в конце при любом направлении.
func sortStages(fields []domain.SortField) (bson.D, bson.D, error) {
	addFields := bson.D{}
	sortDoc := bson.D{}

	for i, f := range fields {
		path, ok := sortPaths[f.Key]
		if !ok {
			return nil, nil, fmt.Errorf("unsupported sort key %q", f.Key)
		}
		if optionalSortKeys[f.Key] {
			flag := fmt.Sprintf("_missing%d", i)
			addFields = append(addFields, bson.E{Key: flag, Value: bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{bson.M{"$ifNull": bson.A{"$" + path, nil}}, nil}}, 1, 0},
			}})
			sortDoc = append(sortDoc, bson.E{Key: flag, Value: 1})
		}
		dir := -1
		if f.Order == domain.OrderAsc {
			dir = 1
		}
		sortDoc = append(sortDoc, bson.E{Key: path, Value: dir})
	}
	sortDoc = append(sortDoc, bson.E{Key: "_id", Value: 1})

	return addFields, sortDoc, nil
}
