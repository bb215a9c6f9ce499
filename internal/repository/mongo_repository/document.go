package mongo_repository

import (
	"fmt"
	"time"

	"estate_search/internal/domain"

	"github.com/google/uuid"
)

// propertyDocument представление объекта в коллекции.
// Координаты хранятся как GeoJSON Point, порядок [долгота, широта].
type propertyDocument struct {
	ID           string       `bson:"_id"`
	Title        string       `bson:"title"`
	Description  string       `bson:"description"`
	Status       string       `bson:"status"`
	PropertyType string       `bson:"propertyType"`
	BasicInfo    basicInfoDoc `bson:"basicInfo"`
	Pricing      pricingDoc   `bson:"pricing"`
	Location     locationDoc  `bson:"location"`
	Featured     bool         `bson:"featured"`
	IsActive     bool         `bson:"isActive"`
	Rental       rentalDoc    `bson:"rental"`
	CreatedAt    time.Time    `bson:"createdAt"`
	UpdatedAt    time.Time    `bson:"updatedAt"`
}

type basicInfoDoc struct {
	Beds  int `bson:"beds"`
	Baths int `bson:"baths"`
	Sqft  int `bson:"sqft"`
}

type pricingDoc struct {
	SalesPrice  *float64 `bson:"salesPrice,omitempty"`
	MonthlyRent *float64 `bson:"monthlyRent,omitempty"`
}

type locationDoc struct {
	Street         string    `bson:"street"`
	City           string    `bson:"city"`
	State          string    `bson:"state"`
	Zip            string    `bson:"zip"`
	SchoolDistrict string    `bson:"schoolDistrict"`
	Coordinates    *geoPoint `bson:"coordinates,omitempty"`
}

type geoPoint struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

type rentalDoc struct {
	Furnished  string `bson:"furnished,omitempty"`
	PetAllowed bool   `bson:"petAllowed"`
}

// rankedDocument результат $geoNear. Заполнено одно из полей расстояния,
// в зависимости от distanceField конвейера.
type rankedDocument struct {
	propertyDocument `bson:",inline"`
	DistanceMeters   float64 `bson:"distanceMeters,omitempty"`
	DistanceKm       float64 `bson:"distanceKm,omitempty"`
}

// nearestPageDocument результат $facet: страница и общее число совпадений.
type nearestPageDocument struct {
	Items []rankedDocument `bson:"items"`
	Total []struct {
		N int `bson:"n"`
	} `bson:"total"`
}

func (d nearestPageDocument) total() int {
	if len(d.Total) == 0 {
		return 0
	}
	return d.Total[0].N
}

func toDocument(p domain.Property) propertyDocument {
	doc := propertyDocument{
		ID:           p.ID.String(),
		Title:        p.Title,
		Description:  p.Description,
		Status:       p.Status.String(),
		PropertyType: p.PropertyType.String(),
		BasicInfo: basicInfoDoc{
			Beds:  p.BasicInfo.Beds,
			Baths: p.BasicInfo.Baths,
			Sqft:  p.BasicInfo.Sqft,
		},
		Pricing: pricingDoc{
			SalesPrice:  p.Pricing.SalesPrice,
			MonthlyRent: p.Pricing.MonthlyRent,
		},
		Location: locationDoc{
			Street:         p.Location.Street,
			City:           p.Location.City,
			State:          p.Location.State,
			Zip:            p.Location.Zip,
			SchoolDistrict: p.Location.SchoolDistrict,
		},
		Featured: p.Featured,
		IsActive: p.IsActive,
		Rental: rentalDoc{
			Furnished:  p.Rental.Furnished.String(),
			PetAllowed: p.Rental.PetAllowed,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if c := p.Location.Coordinate; c != nil {
		doc.Location.Coordinates = &geoPoint{
			Type:        "Point",
			Coordinates: []float64{c.Longitude, c.Latitude},
		}
	}
	return doc
}

func (d propertyDocument) toDomain() (domain.Property, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return domain.Property{}, fmt.Errorf("invalid _id %q: %w", d.ID, err)
	}

	p := domain.Property{
		ID:           id,
		Title:        d.Title,
		Description:  d.Description,
		Status:       domain.PropertyStatus(d.Status),
		PropertyType: domain.PropertyType(d.PropertyType),
		BasicInfo: domain.BasicInfo{
			Beds:  d.BasicInfo.Beds,
			Baths: d.BasicInfo.Baths,
			Sqft:  d.BasicInfo.Sqft,
		},
		Pricing: domain.Pricing{
			SalesPrice:  d.Pricing.SalesPrice,
			MonthlyRent: d.Pricing.MonthlyRent,
		},
		Location: domain.Location{
			Street:         d.Location.Street,
			City:           d.Location.City,
			State:          d.Location.State,
			Zip:            d.Location.Zip,
			SchoolDistrict: d.Location.SchoolDistrict,
		},
		Featured: d.Featured,
		IsActive: d.IsActive,
		Rental: domain.Rental{
			Furnished:  domain.Furnished(d.Rental.Furnished),
			PetAllowed: d.Rental.PetAllowed,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if g := d.Location.Coordinates; g != nil && len(g.Coordinates) == 2 {
		p.Location.Coordinate = &domain.Coordinate{Longitude: g.Coordinates[0], Latitude: g.Coordinates[1]}
	}
	return p, nil
}
