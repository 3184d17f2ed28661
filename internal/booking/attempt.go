package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robertarktes/airline-booking-bff/internal/domain"
	"github.com/robertarktes/airline-booking-bff/internal/session"
)

type State string

const (
	StateIdle        State = "IDLE"
	StateLoading     State = "LOADING"
	StateSeatsLoaded State = "SEATS_LOADED"
	StateSubmitting  State = "SUBMITTING"
	StateSuccess     State = "SUCCESS"
	StateFailed      State = "FAILED"
)

// Attempt is the state of one booking attempt. It is owned by the browser
// session that started it and is discarded on success or abandonment.
type Attempt struct {
	ID          uuid.UUID        `json:"id"`
	TenantID    string           `json:"tenant_id"`
	OwnerID     string           `json:"owner_session_id"`
	FlightID    int64            `json:"flight_id"`
	TicketCount int              `json:"ticket_count"`
	State       State            `json:"state"`
	Flight      *domain.Flight   `json:"flight,omitempty"`
	Seats       []domain.Seat    `json:"seats"`
	Selection   domain.Selection `json:"selection"`
	LastError   string           `json:"last_error,omitempty"`
	Version     int64            `json:"version"`
	CreatedAt   time.Time        `json:"created_at"`
}

func newAttempt(owner session.Session, flightID int64, ticketCount int) Attempt {
	return Attempt{
		ID:          uuid.New(),
		TenantID:    owner.TenantID,
		OwnerID:     owner.ID,
		FlightID:    flightID,
		TicketCount: ticketCount,
		State:       StateIdle,
		Seats:       []domain.Seat{},
		Selection:   domain.NewSelection(ticketCount),
		CreatedAt:   time.Now().UTC(),
	}
}

// ownedBy reports whether sess started the attempt. Attempts of other
// sessions are reported as not found.
func (a Attempt) ownedBy(sess session.Session) bool {
	return sess.ID != "" && a.OwnerID == sess.ID && a.TenantID == sess.TenantID
}

// NoSeats reports the explicit "no seats" condition of a loaded attempt.
func (a Attempt) NoSeats() bool {
	return a.State != StateLoading && a.State != StateIdle && len(a.Seats) == 0
}

// selectable reports whether seat toggles and submissions are meaningful.
// A failed submission keeps its selection so the user may retry.
func (a Attempt) selectable() bool {
	return a.Flight != nil && (a.State == StateSeatsLoaded || a.State == StateFailed)
}

// Store keeps attempts between requests. Update applies fn atomically and
// bumps Version; fn returning an error leaves the stored attempt untouched.
type Store interface {
	Create(ctx context.Context, a Attempt) error
	Get(ctx context.Context, id uuid.UUID) (Attempt, error)
	Update(ctx context.Context, id uuid.UUID, fn func(a *Attempt) error) (Attempt, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
