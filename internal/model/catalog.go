package model

import "time"

// Category identifies the kind of a priced catalogue component.
type Category string

// Component categories. Hotels are priced per night.
const (
	CategoryFlight   Category = "flight"
	CategoryHotel    Category = "hotel"
	CategoryTransfer Category = "transfer"
	CategoryActivity Category = "activity"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFlight,
	CategoryTransfer,
	CategoryHotel,
	CategoryActivity,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryFlight, CategoryHotel, CategoryTransfer, CategoryActivity:
		return true
	}
	return false
}

// Component is a bookable catalogue unit with an intrinsic price.
// For hotels Price is the price per night.
type Component struct {
	ID        int64     `json:"id"`
	Category  Category  `json:"category"`
	Name      string    `json:"name"`
	Price     Money     `json:"price"`
	CreatedAt time.Time `json:"createdAt"`
}

// DayComponent is a component attached to a Day through a join row.
type DayComponent struct {
	DayID     int64     `json:"dayId"`
	Order     int       `json:"order"`
	Component Component `json:"component"`
}
