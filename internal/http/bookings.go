package http

import (
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/robertarktes/airline-booking-bff/internal/booking"
	"github.com/robertarktes/airline-booking-bff/internal/domain"
	"github.com/robertarktes/airline-booking-bff/internal/forms"
)

type attemptView struct {
	ID          uuid.UUID        `json:"id"`
	State       booking.State    `json:"state"`
	FlightID    int64            `json:"flight_id"`
	TicketCount int              `json:"ticket_count"`
	Flight      *domain.Flight   `json:"flight,omitempty"`
	Seats       []seatView       `json:"seats"`
	NoSeats     bool             `json:"no_seats"`
	Selection   domain.Selection `json:"selection"`
	TotalPrice  string           `json:"total_price,omitempty"`
	LastError   string           `json:"last_error,omitempty"`
}

type seatView struct {
	domain.Seat
	Selected bool `json:"selected"`
}

func attemptViewOf(a booking.Attempt) attemptView {
	seats := make([]seatView, len(a.Seats))
	for i, seat := range a.Seats {
		seats[i] = seatView{Seat: seat, Selected: a.Selection.Contains(seat.ID)}
	}
	v := attemptView{
		ID:          a.ID,
		State:       a.State,
		FlightID:    a.FlightID,
		TicketCount: a.TicketCount,
		Flight:      a.Flight,
		Seats:       seats,
		NoSeats:     a.NoSeats(),
		Selection:   a.Selection,
		LastError:   a.LastError,
	}
	if a.Flight != nil {
		v.TotalPrice = domain.TotalPrice(a.Flight.Price, a.TicketCount).String()
	}
	return v
}

func attemptID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errors.Mark(errors.Wrap(err, "invalid attempt id"), domain.ErrInvalidInput)
	}
	return id, nil
}

func (h *Handlers) StartAttempt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FlightID    int64 `json:"flightId"`
		TicketCount int   `json:"ticketCount"`
	}
	if err := forms.Decode(r.Body, forms.StartBooking, &req); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	sess, err := h.ensureSession(w, r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	a, err := h.Bookings.Start(r.Context(), sess, req.FlightID, req.TicketCount)
	if err != nil {
		if a.ID != uuid.Nil {
			writeAttemptError(w, r, h.Logger, err, a.ID)
			return
		}
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, attemptViewOf(a))
}

func (h *Handlers) GetAttempt(w http.ResponseWriter, r *http.Request) {
	id, err := attemptID(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	a, err := h.Bookings.Get(r.Context(), currentSession(r), id)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, attemptViewOf(a))
}

func (h *Handlers) ToggleSeat(w http.ResponseWriter, r *http.Request) {
	id, err := attemptID(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	seatID, err := strconv.ParseInt(chi.URLParam(r, "seatID"), 10, 64)
	if err != nil || seatID <= 0 {
		writeError(w, r, h.Logger, errors.Wrap(domain.ErrInvalidInput, "invalid seat id"))
		return
	}

	a, result, err := h.Bookings.Toggle(r.Context(), currentSession(r), id, seatID)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Result  domain.ToggleResult `json:"result"`
		Attempt attemptView         `json:"attempt"`
	}{Result: result, Attempt: attemptViewOf(a)})
}

func (h *Handlers) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	id, err := attemptID(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	sess := currentSession(r)
	key, done := h.replay(w, r, sess)
	if done {
		return
	}

	var contact domain.Contact
	if err := forms.Decode(r.Body, forms.Booking, &contact); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	conf, err := h.Bookings.Submit(r.Context(), sess, id, contact)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	data := writeJSON(w, http.StatusCreated, conf)
	h.remember(r, sess.TenantID, key, http.StatusCreated, data)
}

func (h *Handlers) AbandonAttempt(w http.ResponseWriter, r *http.Request) {
	id, err := attemptID(r)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	if err := h.Bookings.Abandon(r.Context(), currentSession(r), id); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
