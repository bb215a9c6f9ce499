package jsonld

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"estate_search/internal/domain"
)

const (
	schemaContext = "https://schema.org"
	currency      = "USD"
)

// Generator генератор JSON-LD разметки для объектов недвижимости.
type Generator struct {
	baseURL string
}

// NewGenerator создаёт генератор; baseURL используется в @id и url.
func NewGenerator(baseURL string) *Generator {
	return &Generator{baseURL: strings.TrimRight(baseURL, "/")}
}

// RealEstateListing JSON-LD структура для листинга недвижимости (schema.org).
type RealEstateListing struct {
	Context      string `json:"@context,omitempty"`
	Type         string `json:"@type"`
	ID           string `json:"@id,omitempty"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	URL          string `json:"url,omitempty"`
	DatePosted   string `json:"datePosted,omitempty"`
	DateModified string `json:"dateModified,omitempty"`

	Offers *Offer `json:"offers,omitempty"`

	Address *PostalAddress  `json:"address,omitempty"`
	Geo     *GeoCoordinates `json:"geo,omitempty"`

	FloorSize              *QuantitativeValue `json:"floorSize,omitempty"`
	NumberOfBedrooms       int                `json:"numberOfBedrooms"`
	NumberOfBathroomsTotal int                `json:"numberOfBathroomsTotal"`
	PropertyType           string             `json:"propertyType,omitempty"`

	AdditionalProperty []PropertyValue `json:"additionalProperty,omitempty"`
}

// Offer предложение (цена) по schema.org. Для аренды цена указывается за месяц.
type Offer struct {
	Type               string                  `json:"@type"`
	Price              float64                 `json:"price"`
	PriceCurrency      string                  `json:"priceCurrency"`
	BusinessFunction   string                  `json:"businessFunction,omitempty"`
	Availability       string                  `json:"availability,omitempty"`
	PriceSpecification *UnitPriceSpecification `json:"priceSpecification,omitempty"`
}

// UnitPriceSpecification цена за период.
type UnitPriceSpecification struct {
	Type          string  `json:"@type"`
	Price         float64 `json:"price"`
	PriceCurrency string  `json:"priceCurrency"`
	UnitCode      string  `json:"unitCode"`
}

// PostalAddress почтовый адрес по schema.org.
type PostalAddress struct {
	Type            string `json:"@type"`
	StreetAddress   string `json:"streetAddress,omitempty"`
	AddressLocality string `json:"addressLocality,omitempty"`
	AddressRegion   string `json:"addressRegion,omitempty"`
	PostalCode      string `json:"postalCode,omitempty"`
	AddressCountry  string `json:"addressCountry,omitempty"`
}

// GeoCoordinates географические координаты.
type GeoCoordinates struct {
	Type      string  `json:"@type"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// QuantitativeValue количественное значение.
type QuantitativeValue struct {
	Type     string  `json:"@type"`
	Value    float64 `json:"value"`
	UnitCode string  `json:"unitCode"`
	UnitText string  `json:"unitText,omitempty"`
}

// PropertyValue дополнительное свойство.
type PropertyValue struct {
	Type  string      `json:"@type"`
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// ItemList список объектов, например подборка похожих.
type ItemList struct {
	Context         string     `json:"@context"`
	Type            string     `json:"@type"`
	Name            string     `json:"name,omitempty"`
	NumberOfItems   int        `json:"numberOfItems"`
	ItemListElement []ListItem `json:"itemListElement"`
}

// ListItem элемент списка.
type ListItem struct {
	Type     string             `json:"@type"`
	Position int                `json:"position"`
	Item     *RealEstateListing `json:"item"`
}

// PropertyURL публичная ссылка на объект.
func (g *Generator) PropertyURL(p domain.Property) string {
	return fmt.Sprintf("%s/properties/%s", g.baseURL, p.ID.String())
}

// GeneratePropertyJSONLD генерирует JSON-LD разметку для объекта недвижимости.
func (g *Generator) GeneratePropertyJSONLD(property domain.Property) *RealEstateListing {
	listing := g.listing(property)
	listing.Context = schemaContext
	return listing
}

func (g *Generator) listing(property domain.Property) *RealEstateListing {
	url := g.PropertyURL(property)
	listing := &RealEstateListing{
		Type:                   "RealEstateListing",
		ID:                     url,
		Name:                   property.Title,
		Description:            property.Description,
		URL:                    url,
		DatePosted:             property.CreatedAt.Format(time.RFC3339),
		NumberOfBedrooms:       property.BasicInfo.Beds,
		NumberOfBathroomsTotal: property.BasicInfo.Baths,
		PropertyType:           g.mapPropertyType(property.PropertyType),
	}
	if !property.UpdatedAt.IsZero() {
		listing.DateModified = property.UpdatedAt.Format(time.RFC3339)
	}

	if price, rent, ok := property.OperativePrice(); ok {
		listing.Offers = &Offer{
			Type:             "Offer",
			Price:            price,
			PriceCurrency:    currency,
			BusinessFunction: "http://purl.org/goodrelations/v1#Sell",
			Availability:     g.mapPropertyStatus(property.Status),
		}
		if rent {
			listing.Offers.BusinessFunction = "http://purl.org/goodrelations/v1#LeaseOut"
			listing.Offers.PriceSpecification = &UnitPriceSpecification{
				Type:          "UnitPriceSpecification",
				Price:         price,
				PriceCurrency: currency,
				UnitCode:      "MON",
			}
		}
	}

	listing.Address = &PostalAddress{
		Type:            "PostalAddress",
		StreetAddress:   property.Location.Street,
		AddressLocality: property.Location.City,
		AddressRegion:   property.Location.State,
		PostalCode:      property.Location.Zip,
		AddressCountry:  "US",
	}

	if c := property.Location.Coordinate; c != nil {
		listing.Geo = &GeoCoordinates{
			Type:      "GeoCoordinates",
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
		}
	}

	if property.BasicInfo.Sqft > 0 {
		listing.FloorSize = &QuantitativeValue{
			Type:     "QuantitativeValue",
			Value:    float64(property.BasicInfo.Sqft),
			UnitCode: "FTK", // квадратные футы
			UnitText: "sqft",
		}
	}

	g.addAdditionalProperties(listing, property)
	return listing
}

// GenerateItemList генерирует ItemList для набора объектов.
func (g *Generator) GenerateItemList(name string, properties []domain.Property) *ItemList {
	list := &ItemList{
		Context:         schemaContext,
		Type:            "ItemList",
		Name:            name,
		NumberOfItems:   len(properties),
		ItemListElement: make([]ListItem, 0, len(properties)),
	}
	for i, p := range properties {
		list.ItemListElement = append(list.ItemListElement, ListItem{
			Type:     "ListItem",
			Position: i + 1,
			Item:     g.listing(p),
		})
	}
	return list
}

// GeneratePropertyJSONLDBytes генерирует JSON-LD в байтах.
func (g *Generator) GeneratePropertyJSONLDBytes(property domain.Property) ([]byte, error) {
	data, err := json.MarshalIndent(g.GeneratePropertyJSONLD(property), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON-LD: %w", err)
	}
	return data, nil
}

func (g *Generator) addAdditionalProperties(listing *RealEstateListing, property domain.Property) {
	add := func(name string, value interface{}) {
		listing.AdditionalProperty = append(listing.AdditionalProperty, PropertyValue{
			Type:  "PropertyValue",
			Name:  name,
			Value: value,
		})
	}

	add("status", property.Status.String())
	if property.Featured {
		add("featured", true)
	}
	if property.Location.SchoolDistrict != "" {
		add("schoolDistrict", property.Location.SchoolDistrict)
	}
	if property.Status.IsRentFamily() {
		if property.Rental.Furnished != domain.FurnishedUnspecified {
			add("furnished", property.Rental.Furnished.String())
		}
		add("petsAllowed", property.Rental.PetAllowed)
	}
}

// mapPropertyType возвращает текстовое описание типа.
func (g *Generator) mapPropertyType(pt domain.PropertyType) string {
	switch pt {
	case domain.PropertyTypeResidential:
		return "Single Family Residence"
	case domain.PropertyTypeCommercial:
		return "Commercial"
	case domain.PropertyTypeLand:
		return "Land"
	case domain.PropertyTypeMultiFamily:
		return "Multi-Family"
	case domain.PropertyTypeCondo:
		return "Condominium"
	case domain.PropertyTypeTownhouse:
		return "Townhouse"
	default:
		return "Real Estate"
	}
}

// mapPropertyStatus преобразует статус в schema.org availability.
func (g *Generator) mapPropertyStatus(status domain.PropertyStatus) string {
	switch status {
	case domain.PropertyStatusForSale, domain.PropertyStatusForRent:
		return "https://schema.org/InStock"
	case domain.PropertyStatusSold, domain.PropertyStatusRented:
		return "https://schema.org/SoldOut"
	case domain.PropertyStatusComingSoon:
		return "https://schema.org/PreOrder"
	case domain.PropertyStatusUnderContract:
		return "https://schema.org/LimitedAvailability"
	default:
		return "https://schema.org/OutOfStock"
	}
}
