package search

import (
	"estate_search/internal/domain"

	"github.com/google/uuid"
)

const (
	// SaleTolerance доля цены продажи, задающая половину ценового окна.
	SaleTolerance = 0.20
	// RentTolerance доля месячной аренды, задающая половину ценового окна.
	RentTolerance = 0.30
	// BedTolerance допустимое отклонение числа спален.
	BedTolerance = 1
)

// SimilarityWindow границы, в которые должен попасть похожий объект.
type SimilarityWindow struct {
	PropertyType domain.PropertyType
	// PriceField salesPrice или monthlyRent, в зависимости от действующей цены образца
	PriceField domain.Field
	MinPrice   float64
	MaxPrice   float64
	Beds       []int
}

// NewSimilarityWindow строит окно по образцу. Действующая цена: salesPrice, если задана,
// иначе monthlyRent. Без цены окно построить нельзя, это *domain.InvalidStateError.
func NewSimilarityWindow(ref domain.Property) (SimilarityWindow, error) {
	price, rent, ok := ref.OperativePrice()
	if !ok {
		return SimilarityWindow{}, &domain.InvalidStateError{
			Entity: "property",
			ID:     ref.ID.String(),
			Reason: "neither salesPrice nor monthlyRent is set",
		}
	}
	if ref.PropertyType == domain.PropertyTypeUnspecified {
		return SimilarityWindow{}, &domain.InvalidStateError{
			Entity: "property",
			ID:     ref.ID.String(),
			Reason: "propertyType is not set",
		}
	}

	field, tolerance := domain.FieldSalesPrice, SaleTolerance
	if rent {
		field, tolerance = domain.FieldMonthlyRent, RentTolerance
	}
	halfWidth := price * tolerance

	beds := make([]int, 0, 2*BedTolerance+1)
	for b := ref.BasicInfo.Beds - BedTolerance; b <= ref.BasicInfo.Beds+BedTolerance; b++ {
		if b >= 0 {
			beds = append(beds, b)
		}
	}

	return SimilarityWindow{
		PropertyType: ref.PropertyType,
		PriceField:   field,
		MinPrice:     price - halfWidth,
		MaxPrice:     price + halfWidth,
		Beds:         beds,
	}, nil
}

// Predicate условия отбора похожих объектов: активные, того же типа, в окне цены
// и спален, кроме самого образца.
func (w SimilarityWindow) Predicate(referenceID uuid.UUID) domain.Predicate {
	beds := make([]any, 0, len(w.Beds))
	for _, b := range w.Beds {
		beds = append(beds, float64(b))
	}

	return domain.Predicate{All: []domain.Condition{
		domain.Ne(domain.FieldID, referenceID),
		domain.Eq(domain.FieldIsActive, true),
		domain.Eq(domain.FieldPropertyType, w.PropertyType.String()),
		domain.In(domain.FieldBeds, beds...),
		domain.Gte(w.PriceField, w.MinPrice),
		domain.Lte(w.PriceField, w.MaxPrice),
	}}
}
