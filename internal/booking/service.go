// Package booking implements the seat selection workflow of one booking
// attempt: Idle → Loading → SeatsLoaded → Submitting → Success | Failed.
package booking

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/robertarktes/airline-booking-bff/internal/domain"
	"github.com/robertarktes/airline-booking-bff/internal/events"
	"github.com/robertarktes/airline-booking-bff/internal/observability"
	"github.com/robertarktes/airline-booking-bff/internal/session"
	"golang.org/x/sync/errgroup"
)

// ErrStale is returned when a backend response arrives for an attempt that
// was abandoned or moved on in the meantime. The response is not applied.
var ErrStale = errors.New("booking attempt is no longer current")

type Backend interface {
	Flight(ctx context.Context, sess session.Session, flightID int64) (domain.Flight, error)
	AvailableSeats(ctx context.Context, sess session.Session, flightID int64) ([]domain.Seat, error)
	CreateBooking(ctx context.Context, sess session.Session, req domain.BookingRequest) (domain.BookingConfirmation, error)
}

type Service struct {
	store     Store
	backend   Backend
	publisher events.Publisher
	logger    observability.Logger
}

func NewService(store Store, backend Backend, publisher events.Publisher, logger observability.Logger) *Service {
	return &Service{store: store, backend: backend, publisher: publisher, logger: logger}
}

// Start opens an attempt for flightID and loads the flight and its available
// seats. ticketCount bounds the selection; validating it is the caller's job.
func (s *Service) Start(ctx context.Context, sess session.Session, flightID int64, ticketCount int) (Attempt, error) {
	if sess.ID == "" {
		return Attempt{}, errors.Wrap(domain.ErrInvalidInput, "booking attempt needs a session")
	}
	a := newAttempt(sess, flightID, ticketCount)
	a.State = StateLoading
	a.Version = 1
	if err := s.store.Create(ctx, a); err != nil {
		return Attempt{}, errors.Wrap(err, "create attempt")
	}

	var (
		flight domain.Flight
		seats  []domain.Seat
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		flight, err = s.backend.Flight(gctx, sess, flightID)
		return err
	})
	g.Go(func() error {
		var err error
		seats, err = s.backend.AvailableSeats(gctx, sess, flightID)
		return err
	})
	loadErr := g.Wait()

	loaded, err := s.applyIfCurrent(ctx, a.ID, a.Version, func(cur *Attempt) {
		if loadErr != nil {
			cur.State = StateFailed
			cur.LastError = loadErr.Error()
			return
		}
		cur.State = StateSeatsLoaded
		cur.Flight = &flight
		cur.Seats = domain.FilterSeats(seats)
	})
	if err != nil {
		return Attempt{}, err
	}
	if loadErr != nil {
		return loaded, loadErr
	}
	return loaded, nil
}

func (s *Service) Get(ctx context.Context, sess session.Session, id uuid.UUID) (Attempt, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return Attempt{}, err
	}
	if !a.ownedBy(sess) {
		return Attempt{}, domain.ErrNotFound
	}
	return a, nil
}

// Toggle flips seatID in the attempt's selection. A toggle that would exceed
// the ticket count is reported as ToggleRejected and changes nothing.
func (s *Service) Toggle(ctx context.Context, sess session.Session, id uuid.UUID, seatID int64) (Attempt, domain.ToggleResult, error) {
	var result domain.ToggleResult
	a, err := s.store.Update(ctx, id, func(a *Attempt) error {
		if !a.ownedBy(sess) {
			return domain.ErrNotFound
		}
		if !a.selectable() {
			return errors.Wrapf(domain.ErrInvalidState, "toggle in state %s", a.State)
		}
		seat, ok := domain.FindSeat(a.Seats, seatID)
		if !ok {
			return errors.Wrapf(domain.ErrUnknownSeat, "seat %d", seatID)
		}
		result = a.Selection.Toggle(seat)
		return nil
	})
	if err != nil {
		return Attempt{}, "", err
	}
	observability.SeatToggles.WithLabelValues(string(result)).Inc()
	return a, result, nil
}

// Submit posts the booking composed from the attempt's flight, selection and
// contact. Success clears the attempt. Failure moves it to Failed with the
// selection intact so the user can retry.
func (s *Service) Submit(ctx context.Context, sess session.Session, id uuid.UUID, contact domain.Contact) (domain.BookingConfirmation, error) {
	var req domain.BookingRequest
	a, err := s.store.Update(ctx, id, func(a *Attempt) error {
		if !a.ownedBy(sess) {
			return domain.ErrNotFound
		}
		if !a.selectable() {
			return errors.Wrapf(domain.ErrInvalidState, "submit in state %s", a.State)
		}
		if a.Selection.Len() == 0 {
			return domain.ErrNoSelection
		}
		a.State = StateSubmitting
		a.LastError = ""
		req = domain.NewBookingRequest(*a.Flight, a.Selection, contact, a.TicketCount)
		return nil
	})
	if err != nil {
		return domain.BookingConfirmation{}, err
	}

	logger := observability.LoggerFrom(ctx, s.logger).WithField("attempt_id", id.String())

	conf, submitErr := s.backend.CreateBooking(ctx, sess, req)
	if submitErr != nil {
		observability.BookingSubmissions.WithLabelValues("failed").Inc()
		_, err := s.applyIfCurrent(ctx, id, a.Version, func(cur *Attempt) {
			cur.State = StateFailed
			cur.LastError = submitErr.Error()
		})
		if err != nil && !errors.Is(err, ErrStale) {
			logger.WithError(err).Error("failed to record booking failure")
		}
		s.publish(ctx, logger, events.New(events.BookingFailed, sess.TenantID, map[string]interface{}{
			"attempt_id": id.String(),
			"flight_id":  req.FlightID,
			"error":      submitErr.Error(),
		}))
		return domain.BookingConfirmation{}, submitErr
	}

	observability.BookingSubmissions.WithLabelValues("success").Inc()
	if err := s.store.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.WithError(err).Warn("failed to clear booking attempt")
	}
	s.publish(ctx, logger, events.New(events.BookingCreated, sess.TenantID, map[string]interface{}{
		"attempt_id":  id.String(),
		"booking_id":  conf.ID,
		"flight_id":   req.FlightID,
		"seats":       req.Seats,
		"total_price": req.TotalPrice.String(),
		"email":       req.Email,
	}))
	return conf, nil
}

// Abandon discards the attempt. Responses still in flight for it are
// dropped when they arrive.
func (s *Service) Abandon(ctx context.Context, sess session.Session, id uuid.UUID) error {
	if _, err := s.Get(ctx, sess, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// applyIfCurrent applies fn only when the stored attempt still has version.
// A missing or newer attempt means the response is late and is ignored.
func (s *Service) applyIfCurrent(ctx context.Context, id uuid.UUID, version int64, fn func(a *Attempt)) (Attempt, error) {
	a, err := s.store.Update(ctx, id, func(a *Attempt) error {
		if a.Version != version {
			return ErrStale
		}
		fn(a)
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		err = ErrStale
	}
	if errors.Is(err, ErrStale) {
		observability.StaleResponses.Inc()
	}
	return a, err
}

func (s *Service) publish(ctx context.Context, logger observability.Logger, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		observability.EventPublishFailures.Inc()
		logger.WithError(err).WithField("event", e.Type).Warn("failed to publish event")
	}
}
