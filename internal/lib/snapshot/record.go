package snapshot

import (
	"fmt"
	"time"

	"estate_search/internal/domain"

	"github.com/google/uuid"
)

// Record объект в файле снимка. Формат повторяет документ каталога:
// вложенные basicInfo, pricing, location (координаты как GeoJSON Point) и rental.
type Record struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Description  string    `json:"description" yaml:"description"`
	Status       string    `json:"status" yaml:"status"`
	PropertyType string    `json:"propertyType" yaml:"propertyType"`
	BasicInfo    BasicInfo `json:"basicInfo" yaml:"basicInfo"`
	Pricing      Pricing   `json:"pricing" yaml:"pricing"`
	Location     Location  `json:"location" yaml:"location"`
	Featured     bool      `json:"featured" yaml:"featured"`
	// IsActive по умолчанию true
	IsActive  *bool     `json:"isActive,omitempty" yaml:"isActive,omitempty"`
	Rental    Rental    `json:"rental" yaml:"rental"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

type BasicInfo struct {
	Beds  int `json:"beds" yaml:"beds"`
	Baths int `json:"baths" yaml:"baths"`
	Sqft  int `json:"sqft" yaml:"sqft"`
}

type Pricing struct {
	SalesPrice  *float64 `json:"salesPrice,omitempty" yaml:"salesPrice,omitempty"`
	MonthlyRent *float64 `json:"monthlyRent,omitempty" yaml:"monthlyRent,omitempty"`
}

type Location struct {
	Street         string    `json:"street" yaml:"street"`
	City           string    `json:"city" yaml:"city"`
	State          string    `json:"state" yaml:"state"`
	Zip            string    `json:"zip" yaml:"zip"`
	SchoolDistrict string    `json:"schoolDistrict" yaml:"schoolDistrict"`
	Coordinates    *GeoPoint `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
}

// GeoPoint GeoJSON Point, Coordinates = [долгота, широта].
type GeoPoint struct {
	Type        string    `json:"type" yaml:"type"`
	Coordinates []float64 `json:"coordinates" yaml:"coordinates"`
}

type Rental struct {
	Furnished  string `json:"furnished,omitempty" yaml:"furnished,omitempty"`
	PetAllowed bool   `json:"petAllowed" yaml:"petAllowed"`
}

// ToDomain разбирает запись строго: неизвестные перечисления и нарушенные
// инварианты дают ошибку.
func (r Record) ToDomain() (domain.Property, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return domain.Property{}, &domain.ValidationError{Field: "id", Value: r.ID, Reason: "must be a UUID"}
	}
	status, ok := domain.ParsePropertyStatus(r.Status)
	if !ok {
		return domain.Property{}, &domain.ValidationError{Field: "status", Value: r.Status, Reason: "unknown status"}
	}
	propertyType, ok := domain.ParsePropertyType(r.PropertyType)
	if !ok {
		return domain.Property{}, &domain.ValidationError{Field: "propertyType", Value: r.PropertyType, Reason: "unknown property type"}
	}

	furnished := domain.FurnishedUnspecified
	if r.Rental.Furnished != "" {
		furnished, ok = domain.ParseFurnished(r.Rental.Furnished)
		if !ok {
			return domain.Property{}, &domain.ValidationError{Field: "furnished", Value: r.Rental.Furnished, Reason: "unknown furnished value"}
		}
	}

	isActive := true
	if r.IsActive != nil {
		isActive = *r.IsActive
	}

	p := domain.Property{
		ID:           id,
		Title:        r.Title,
		Description:  r.Description,
		Status:       status,
		PropertyType: propertyType,
		BasicInfo: domain.BasicInfo{
			Beds:  r.BasicInfo.Beds,
			Baths: r.BasicInfo.Baths,
			Sqft:  r.BasicInfo.Sqft,
		},
		Pricing: domain.Pricing{
			SalesPrice:  r.Pricing.SalesPrice,
			MonthlyRent: r.Pricing.MonthlyRent,
		},
		Location: domain.Location{
			Street:         r.Location.Street,
			City:           r.Location.City,
			State:          r.Location.State,
			Zip:            r.Location.Zip,
			SchoolDistrict: r.Location.SchoolDistrict,
		},
		Featured:  r.Featured,
		IsActive:  isActive,
		Rental:    domain.Rental{Furnished: furnished, PetAllowed: r.Rental.PetAllowed},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}

	if g := r.Location.Coordinates; g != nil {
		if len(g.Coordinates) != 2 {
			return domain.Property{}, &domain.ValidationError{
				Field:  "location.coordinates",
				Value:  fmt.Sprint(g.Coordinates),
				Reason: "must be [longitude, latitude]",
			}
		}
		p.Location.Coordinate = &domain.Coordinate{Longitude: g.Coordinates[0], Latitude: g.Coordinates[1]}
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	if err := p.Validate(); err != nil {
		return domain.Property{}, err
	}
	return p, nil
}

// FromDomain обратное преобразование: выгрузка каталога и ответы HTTP API.
func FromDomain(p domain.Property) Record {
	isActive := p.IsActive
	r := Record{
		ID:           p.ID.String(),
		Title:        p.Title,
		Description:  p.Description,
		Status:       p.Status.String(),
		PropertyType: p.PropertyType.String(),
		BasicInfo:    BasicInfo{Beds: p.BasicInfo.Beds, Baths: p.BasicInfo.Baths, Sqft: p.BasicInfo.Sqft},
		Pricing:      Pricing{SalesPrice: p.Pricing.SalesPrice, MonthlyRent: p.Pricing.MonthlyRent},
		Location: Location{
			Street:         p.Location.Street,
			City:           p.Location.City,
			State:          p.Location.State,
			Zip:            p.Location.Zip,
			SchoolDistrict: p.Location.SchoolDistrict,
		},
		Featured:  p.Featured,
		IsActive:  &isActive,
		Rental:    Rental{Furnished: p.Rental.Furnished.String(), PetAllowed: p.Rental.PetAllowed},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if c := p.Location.Coordinate; c != nil {
		r.Location.Coordinates = &GeoPoint{Type: "Point", Coordinates: []float64{c.Longitude, c.Latitude}}
	}
	return r
}
