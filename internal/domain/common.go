package domain

import (
	"math"
	"strings"

	"golang.org/x/exp/constraints"
)

const (
	// DefaultPageSize кол-во записей на странице по умолчанию
	DefaultPageSize = 12
	// MaxPageSize максимальное кол-во записей на странице
	MaxPageSize = 100
)

// OrderDirection направление сортировки
type OrderDirection string

const (
	OrderAsc  OrderDirection = "asc"
	OrderDesc OrderDirection = "desc"
)

// ParseOrderDirection разбирает направление сортировки; пустая строка даёт desc.
func ParseOrderDirection(dir string) (OrderDirection, bool) {
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "":
		return OrderDesc, true
	case "asc":
		return OrderAsc, true
	case "desc":
		return OrderDesc, true
	}
	return "", false
}

// SortKey поле сортировки. Вызывающая сторона может выбрать только ключи из allow-list.
type SortKey string

const (
	SortByCreatedAt   SortKey = "createdAt"
	SortBySalesPrice  SortKey = "price"
	SortByMonthlyRent SortKey = "rent"
	SortBySqft        SortKey = "sqft"
	SortByBeds        SortKey = "beds"
	// SortByFeatured используется только внутри движка
	SortByFeatured SortKey = "featured"
)

var publicSortKeys = map[string]SortKey{
	"createdat":   SortByCreatedAt,
	"created_at":  SortByCreatedAt,
	"price":       SortBySalesPrice,
	"salesprice":  SortBySalesPrice,
	"rent":        SortByMonthlyRent,
	"monthlyrent": SortByMonthlyRent,
	"sqft":        SortBySqft,
	"beds":        SortByBeds,
}

// ParseSortKey разбирает пользовательский ключ сортировки; пустая строка даёт createdAt.
func ParseSortKey(s string) (SortKey, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortByCreatedAt, true
	}
	key, ok := publicSortKeys[s]
	return key, ok
}

// SortField одно поле сортировки.
type SortField struct {
	Key   SortKey
	Order OrderDirection
}

// RecencySort сортировка "сначала новые".
func RecencySort() []SortField {
	return []SortField{{Key: SortByCreatedAt, Order: OrderDesc}}
}

// FindOptions сортировка и срез выборки для хранилища.
// Limit == 0 означает "без ограничения".
type FindOptions struct {
	Sort  []SortField
	Skip  int
	Limit int
}

// Page результат пагинированного запроса
type Page[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	Total      int
	TotalPages int
}

// NewPage собирает страницу и считает общее число страниц.
func NewPage[T any](items []T, page, pageSize, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return Page[T]{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Pager пагинация по номеру страницы (1-indexed).
type Pager struct {
	page, perPage int
}

func NewPager(page int, perPage int) *Pager {
	return &Pager{page: page, perPage: perPage}
}

// Limit вернет размер страницы
func (p *Pager) Limit() int {
	if p == nil || p.perPage == 0 {
		return DefaultPageSize
	}
	return p.perPage
}

// Offset вернет кол-во пропускаемых записей. При переполнении возвращает math.MaxInt,
// то есть страница заведомо пуста.
func (p *Pager) Offset() int {
	if p == nil || p.page <= 1 {
		return 0
	}
	limit := p.Limit()
	if limit <= 0 {
		return 0
	}
	if p.page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (p.page - 1) * limit
}

// PageInRange сообщает, помещается ли смещение страницы page размера pageSize в int.
func PageInRange(page, pageSize int) bool {
	return page <= 1 || pageSize <= 0 || page-1 <= math.MaxInt/pageSize
}

// Clamp ограничивает значение диапазоном [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func parseEnum[T ~string](s string, values []T) (T, bool) {
	s = strings.TrimSpace(s)
	for _, v := range values {
		if strings.EqualFold(string(v), s) {
			return v, true
		}
	}
	var zero T
	return zero, false
}
