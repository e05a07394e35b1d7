package model

import (
	"time"

	"github.com/google/uuid"
)

// Visibility flags hide a category from a booking. Activities cannot be hidden.
type Visibility struct {
	Flights   bool `json:"flights"`
	Transfers bool `json:"transfers"`
	Hotels    bool `json:"hotels"`
}

// Order is a customer booking against one tour.
// TotalPrice is a snapshot taken when the order is created and is not recomputed
// when the tour's price later changes.
type Order struct {
	ID         int64      `json:"-"`
	PublicID   uuid.UUID  `json:"id"`
	TourID     int64      `json:"tourId"`
	Pax        int        `json:"pax"`
	Email      string     `json:"email,omitempty"`
	SameRoom   bool       `json:"sameRoom"`
	Hide       Visibility `json:"hide"`
	StartDate  *time.Time `json:"startDate,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	TotalPrice Money      `json:"totalPrice"`
	IsPaid     bool       `json:"isPaid"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Traveler is a passenger attached to an order.
type Traveler struct {
	ID         int64      `json:"-"`
	OrderID    int64      `json:"-"`
	Title      string     `json:"title,omitempty"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	PassportNo string     `json:"passportNo,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	DOB        *time.Time `json:"dob,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// OrderRequest is the payload for creating an order.
type OrderRequest struct {
	TourID    int64      `json:"tourId" validate:"required,gt=0"`
	Pax       int        `json:"pax"`
	Email     string     `json:"email" validate:"omitempty,email"`
	SameRoom  *bool      `json:"sameRoom,omitempty"`
	Hide      Visibility `json:"hide"`
	StartDate string     `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string     `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// TravelerRequest is one traveler in a TravelersRequest.
// DOB is formatted DD/MM/YYYY.
type TravelerRequest struct {
	Title      string `json:"title" validate:"max=10"`
	FirstName  string `json:"firstName" validate:"required,max=80"`
	LastName   string `json:"lastName" validate:"required,max=80"`
	PassportNo string `json:"passportNo" validate:"max=40"`
	Phone      string `json:"phone" validate:"max=32"`
	DOB        string `json:"dob" validate:"required"`
}

// TravelersRequest is the payload for saving travelers on an order.
type TravelersRequest struct {
	Travelers []TravelerRequest `json:"travelers" validate:"required,min=1,dive"`
}

// OrderResponse is an order with its travelers and per-person price.
type OrderResponse struct {
	Order     Order      `json:"order"`
	PerPerson Money      `json:"perPerson"`
	Travelers []Traveler `json:"travelers"`
}
