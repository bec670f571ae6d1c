package products

import "time"

type Category string

const (
	CategorySorts  Category = "sorts"
	CategoryJoints Category = "joints"
)

var Categories = []Category{CategorySorts, CategoryJoints}

func (c Category) Valid() bool {
	return c == CategorySorts || c == CategoryJoints
}

type Subtype string

const (
	SubtypeSativa Subtype = "sativa"
	SubtypeIndica Subtype = "indica"
	SubtypeHybrid Subtype = "hybrid"
)

var Subtypes = []Subtype{SubtypeSativa, SubtypeIndica, SubtypeHybrid}

func (s Subtype) Valid() bool {
	return s == SubtypeSativa || s == SubtypeIndica || s == SubtypeHybrid
}

func (s Subtype) Emoji() string {
	switch s {
	case SubtypeSativa:
		return "🌞"
	case SubtypeIndica:
		return "🌙"
	default:
		return "🌗"
	}
}

const MaxNameLength = 100

type Product struct {
	ID           int64
	Name         string
	Category     Category
	Subtype      Subtype
	Potency      int
	Price        int64
	Description  string
	SpecialOffer string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Критерии для получения товара
type GetCriteria struct {
	ID *int64
}

// Критерии для удаления товара
type DeleteCriteria struct {
	ID *int64
}

// Критерии для списка товаров
type ListCriteria struct {
	Category *Category
	Subtype  *Subtype
	IsActive *bool
	Limit    int
	Offset   int
}

// UpdateParams enumerates every mutable product field. Nil fields are left as is.
type UpdateParams struct {
	Name         *string
	Category     *Category
	Subtype      *Subtype
	Potency      *int
	Price        *int64
	Description  *string
	SpecialOffer *string
	IsActive     *bool
}

func (p UpdateParams) Empty() bool {
	return p == UpdateParams{}
}
