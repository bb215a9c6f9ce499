package domain

import (
	"time"

	"github.com/google/uuid"
)

// Property объект недвижимости, единица поиска.
type Property struct {
	ID           uuid.UUID
	Title        string
	Description  string
	Status       PropertyStatus
	PropertyType PropertyType
	BasicInfo    BasicInfo
	Pricing      Pricing
	Location     Location
	Featured     bool
	IsActive     bool
	// Rental заполняется только для аренды
	Rental    Rental
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BasicInfo основные характеристики объекта.
type BasicInfo struct {
	Beds  int
	Baths int
	Sqft  int
}

// Pricing цена продажи или аренды; заполняется только поле, соответствующее статусу.
type Pricing struct {
	SalesPrice  *float64
	MonthlyRent *float64
}

// Location адрес и координаты объекта.
type Location struct {
	Street         string
	City           string
	State          string
	Zip            string
	SchoolDistrict string
	// Coordinate используется только в поиске по радиусу
	Coordinate *Coordinate
}

// Rental признаки арендного объявления.
type Rental struct {
	Furnished  Furnished
	PetAllowed bool
}

// PropertyType тип недвижимости.
type PropertyType string

const (
	PropertyTypeUnspecified PropertyType = ""
	PropertyTypeResidential PropertyType = "Residential"
	PropertyTypeCommercial  PropertyType = "Commercial"
	PropertyTypeLand        PropertyType = "Land"
	PropertyTypeMultiFamily PropertyType = "MultiFamily"
	PropertyTypeCondo       PropertyType = "Condo"
	PropertyTypeTownhouse   PropertyType = "Townhouse"
)

var propertyTypes = []PropertyType{
	PropertyTypeResidential,
	PropertyTypeCommercial,
	PropertyTypeLand,
	PropertyTypeMultiFamily,
	PropertyTypeCondo,
	PropertyTypeTownhouse,
}

func (t PropertyType) String() string {
	return string(t)
}

// ParsePropertyType разбирает тип недвижимости без учёта регистра.
func ParsePropertyType(s string) (PropertyType, bool) {
	return parseEnum(s, propertyTypes)
}

// PropertyStatus статус объявления.
type PropertyStatus string

const (
	PropertyStatusUnspecified   PropertyStatus = ""
	PropertyStatusForSale       PropertyStatus = "ForSale"
	PropertyStatusForRent       PropertyStatus = "ForRent"
	PropertyStatusSold          PropertyStatus = "Sold"
	PropertyStatusRented        PropertyStatus = "Rented"
	PropertyStatusUnderContract PropertyStatus = "UnderContract"
	PropertyStatusOffMarket     PropertyStatus = "OffMarket"
	PropertyStatusComingSoon    PropertyStatus = "ComingSoon"
)

var propertyStatuses = []PropertyStatus{
	PropertyStatusForSale,
	PropertyStatusForRent,
	PropertyStatusSold,
	PropertyStatusRented,
	PropertyStatusUnderContract,
	PropertyStatusOffMarket,
	PropertyStatusComingSoon,
}

func (s PropertyStatus) String() string {
	return string(s)
}

// ParsePropertyStatus разбирает статус без учёта регистра.
func ParsePropertyStatus(s string) (PropertyStatus, bool) {
	return parseEnum(s, propertyStatuses)
}

// IsRentFamily сообщает, относится ли статус к аренде (ForRent, Rented).
func (s PropertyStatus) IsRentFamily() bool {
	return s == PropertyStatusForRent || s == PropertyStatusRented
}

// IsSaleFamily сообщает, относится ли статус к продаже.
// Все статусы, кроме арендных, считаются продажными.
func (s PropertyStatus) IsSaleFamily() bool {
	return s != PropertyStatusUnspecified && !s.IsRentFamily()
}

// Furnished меблированность арендного объекта.
type Furnished string

const (
	FurnishedUnspecified Furnished = ""
	FurnishedFull        Furnished = "Furnished"
	FurnishedNone        Furnished = "Unfurnished"
	FurnishedPartial     Furnished = "PartiallyFurnished"
)

var furnishedValues = []Furnished{FurnishedFull, FurnishedNone, FurnishedPartial}

func (f Furnished) String() string {
	return string(f)
}

// ParseFurnished разбирает признак меблированности без учёта регистра.
func ParseFurnished(s string) (Furnished, bool) {
	return parseEnum(s, furnishedValues)
}

// OperativePrice возвращает действующую цену: цену продажи, если она есть, иначе аренду.
// rent == true, если цена взята из MonthlyRent.
func (p Property) OperativePrice() (price float64, rent bool, ok bool) {
	if p.Pricing.SalesPrice != nil {
		return *p.Pricing.SalesPrice, false, true
	}
	if p.Pricing.MonthlyRent != nil {
		return *p.Pricing.MonthlyRent, true, true
	}
	return 0, false, false
}

// Validate проверяет инварианты записи: координаты и соответствие цены статусу.
func (p Property) Validate() error {
	if p.Location.Coordinate != nil {
		if err := p.Location.Coordinate.Validate(); err != nil {
			return err
		}
	}
	if p.BasicInfo.Beds < 0 {
		return &ValidationError{Field: "beds", Reason: "must not be negative"}
	}
	if p.BasicInfo.Baths < 0 {
		return &ValidationError{Field: "baths", Reason: "must not be negative"}
	}
	switch {
	case p.Status.IsRentFamily():
		if p.Pricing.MonthlyRent == nil || *p.Pricing.MonthlyRent <= 0 {
			return &ValidationError{Field: "monthlyRent", Reason: "rent listings must carry a positive monthly rent"}
		}
	case p.Status.IsSaleFamily():
		if p.Pricing.SalesPrice == nil || *p.Pricing.SalesPrice <= 0 {
			return &ValidationError{Field: "salesPrice", Reason: "sale listings must carry a positive sales price"}
		}
	}
	return nil
}

// RankedProperty объект с расстоянием до точки поиска в километрах.
type RankedProperty struct {
	Property   Property
	DistanceKm float64
}

// SearchHit элемент выдачи поиска. DistanceKm заполнен только для поиска по радиусу.
type SearchHit struct {
	Property   Property
	DistanceKm *float64
}
