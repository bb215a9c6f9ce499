package domain

import (
	"bytes"
	"cmp"
)

// CompareProperties сравнивает записи по списку полей сортировки.
// Отсутствующие значения всегда идут в конце независимо от направления.
// При равенстве всех полей порядок определяется по ID, чтобы страницы не пересекались.
func CompareProperties(a, b Property, fields []SortField) int {
	for _, f := range fields {
		c := compareByKey(a, b, f)
		if c != 0 {
			return c
		}
	}
	return bytes.Compare(a.ID[:], b.ID[:])
}

func compareByKey(a, b Property, f SortField) int {
	var c int
	switch f.Key {
	case SortByCreatedAt:
		c = a.CreatedAt.Compare(b.CreatedAt)
	case SortBySalesPrice:
		if c, done := compareMissing(a.Pricing.SalesPrice, b.Pricing.SalesPrice); done {
			return c
		}
		c = cmp.Compare(*a.Pricing.SalesPrice, *b.Pricing.SalesPrice)
	case SortByMonthlyRent:
		if c, done := compareMissing(a.Pricing.MonthlyRent, b.Pricing.MonthlyRent); done {
			return c
		}
		c = cmp.Compare(*a.Pricing.MonthlyRent, *b.Pricing.MonthlyRent)
	case SortBySqft:
		c = cmp.Compare(a.BasicInfo.Sqft, b.BasicInfo.Sqft)
	case SortByBeds:
		c = cmp.Compare(a.BasicInfo.Beds, b.BasicInfo.Beds)
	case SortByFeatured:
		c = compareBool(a.Featured, b.Featured)
	}
	if f.Order == OrderDesc {
		return -c
	}
	return c
}

// compareMissing обрабатывает nil-значения: done == true, если хотя бы одно отсутствует.
func compareMissing(a, b *float64) (int, bool) {
	switch {
	case a == nil && b == nil:
		return 0, true
	case a == nil:
		return 1, true
	case b == nil:
		return -1, true
	}
	return 0, false
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	}
	return -1
}
