package backend

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/airline-booking-bff/internal/domain"
	"github.com/robertarktes/airline-booking-bff/internal/session"
)

func (c *Client) AvailableSeats(ctx context.Context, sess session.Session, flightID int64) ([]domain.Seat, error) {
	var seats []domain.Seat
	err := c.do(ctx, sess, "seats.available", http.MethodGet, "/api/seats/available/"+strconv.FormatInt(flightID, 10), nil, &seats)
	return seats, err
}

func (c *Client) Flight(ctx context.Context, sess session.Session, flightID int64) (domain.Flight, error) {
	var flight domain.Flight
	err := c.do(ctx, sess, "flights.get", http.MethodGet, "/api/flights/"+strconv.FormatInt(flightID, 10), nil, &flight)
	return flight, err
}

func (c *Client) CreateBooking(ctx context.Context, sess session.Session, req domain.BookingRequest) (domain.BookingConfirmation, error) {
	var conf domain.BookingConfirmation
	err := c.do(ctx, sess, "bookings.create", http.MethodPost, "/api/bookings", req, &conf)
	return conf, err
}

func (c *Client) CreatePassenger(ctx context.Context, sess session.Session, p domain.Passenger) (domain.Passenger, error) {
	var created domain.Passenger
	err := c.do(ctx, sess, "passengers.create", http.MethodPost, "/api/passengers", p, &created)
	return created, err
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, sess session.Session, creds domain.Credentials) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, sess, "auth.login", http.MethodPost, "/api/auth/login", creds, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errors.New("auth.login: backend returned no token")
	}
	return resp.Token, nil
}

func (c *Client) Register(ctx context.Context, sess session.Session, reg domain.Registration) error {
	return c.do(ctx, sess, "auth.register", http.MethodPost, "/api/auth/register", reg, nil)
}
