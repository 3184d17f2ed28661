package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// BookingRequest is the canonical booking payload: selected seat ids plus a
// client-computed total price.
type BookingRequest struct {
	FullName   string      `json:"fullName"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone,omitempty"`
	FlightID   int64       `json:"flightId"`
	Seats      []int64     `json:"seats"`
	TotalPrice json.Number `json:"totalPrice"`
}

// TotalPrice is price × ticketCount in exact decimal arithmetic.
func TotalPrice(price decimal.Decimal, ticketCount int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(ticketCount)))
}

func NewBookingRequest(flight Flight, sel Selection, contact Contact, ticketCount int) BookingRequest {
	return BookingRequest{
		FullName:   contact.FullName,
		Email:      contact.Email,
		Phone:      contact.Phone,
		FlightID:   flight.ID,
		Seats:      sel.IDs(),
		TotalPrice: json.Number(TotalPrice(flight.Price, ticketCount).String()),
	}
}
