package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Flight struct {
	ID             int64           `json:"id"`
	FlightNumber   string          `json:"flightNumber"`
	Origin         string          `json:"origin,omitempty"`
	Destination    string          `json:"destination,omitempty"`
	DepartureTime  *time.Time      `json:"departureTime,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Capacity       int             `json:"capacity,omitempty"`
	AvailableSeats int             `json:"availableSeats,omitempty"`
}

// Seat belongs to exactly one flight. An ID of zero means the backend record
// carried no identifier.
type Seat struct {
	ID         int64  `json:"id"`
	SeatNumber string `json:"seatNumber"`
	Available  bool   `json:"available"`
}

type Contact struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

type Passenger struct {
	ID             int64  `json:"id,omitempty"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	PassportNumber string `json:"passportNumber,omitempty"`
	DateOfBirth    string `json:"dateOfBirth,omitempty"`
	Nationality    string `json:"nationality,omitempty"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullname"`
	Country  string `json:"country"`
}

// BookingConfirmation is whatever the backend echoes back after a booking
// was created. Fields the backend omits stay zero.
type BookingConfirmation struct {
	ID         int64           `json:"id,omitempty"`
	Reference  string          `json:"bookingReference,omitempty"`
	Status     string          `json:"status,omitempty"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}
