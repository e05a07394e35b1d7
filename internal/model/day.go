package model

import "time"

// Day is one day of travel in a city.
//
// Price is a cached derived value: the sum of the attached components' catalogue
// prices. It is written only by the pricing engine, whenever a component is attached
// to or detached from the day or an attached component's catalogue price changes.
type Day struct {
	ID          int64     `json:"id"`
	CityID      int64     `json:"cityId"`
	CityName    string    `json:"cityName"`
	DayNumber   int       `json:"dayNumber"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Price       Money     `json:"price"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DayItinerary is a day together with its attached components.
type DayItinerary struct {
	Day        Day            `json:"day"`
	Components []DayComponent `json:"components"`
}

// City is a destination a Day takes place in.
type City struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}
