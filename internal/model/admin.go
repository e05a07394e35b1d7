package model

import "github.com/shopspring/decimal"

// CreateComponentRequest adds a component to the catalogue.
type CreateComponentRequest struct {
	Name     string          `json:"name" validate:"required,max=180"`
	Price    decimal.Decimal `json:"price"`
	Currency Currency        `json:"currency" validate:"omitempty,oneof=USD EUR TRY"`
}

// PriceUpdateRequest changes a component's catalogue price.
type PriceUpdateRequest struct {
	Price    decimal.Decimal `json:"price"`
	Currency Currency        `json:"currency" validate:"omitempty,oneof=USD EUR TRY"`
}

// CreateDayRequest adds a standalone day.
type CreateDayRequest struct {
	CityID      int64    `json:"cityId" validate:"required,gt=0"`
	DayNumber   int      `json:"dayNumber" validate:"required,gt=0"`
	Title       string   `json:"title" validate:"max=180"`
	Description string   `json:"description"`
	Currency    Currency `json:"currency" validate:"omitempty,oneof=USD EUR TRY"`
}

// AttachComponentRequest attaches a component to a day.
type AttachComponentRequest struct {
	Order int `json:"order" validate:"gte=0"`
}

// CreateTourRequest adds a tour. An empty slug is derived from the title.
type CreateTourRequest struct {
	Title         string           `json:"title" validate:"required,max=180"`
	Slug          string           `json:"slug" validate:"omitempty,max=220"`
	Overview      string           `json:"overview"`
	Commission    *decimal.Decimal `json:"commission,omitempty"`
	Currency      Currency         `json:"currency" validate:"omitempty,oneof=USD EUR TRY"`
	PlacesCovered []int64          `json:"placesCovered"`
	IsPublished   *bool            `json:"isPublished,omitempty"`
}

// AttachDayRequest attaches a day to a tour. A zero order appends the day.
type AttachDayRequest struct {
	DayID int64  `json:"dayId" validate:"required,gt=0"`
	Order int    `json:"order" validate:"gte=0"`
	Title string `json:"title" validate:"max=255"`
}

// ReorderDayRequest moves a tour day to a new position.
type ReorderDayRequest struct {
	Order int `json:"order" validate:"required,gt=0"`
}

// CreateCityRequest adds a destination city.
type CreateCityRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Country string `json:"country" validate:"max=120"`
}
