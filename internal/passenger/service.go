// Package passenger registers passenger records directly with the backend.
// It is independent of the booking workflow.
package passenger

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/airline-booking-bff/internal/domain"
	"github.com/robertarktes/airline-booking-bff/internal/events"
	"github.com/robertarktes/airline-booking-bff/internal/observability"
	"github.com/robertarktes/airline-booking-bff/internal/session"
)

// ErrCreationFailed is the generic creation error every failure is reported as.
var ErrCreationFailed = errors.New("failed to create passenger")

type Backend interface {
	CreatePassenger(ctx context.Context, sess session.Session, p domain.Passenger) (domain.Passenger, error)
}

type Service struct {
	backend   Backend
	publisher events.Publisher
	logger    observability.Logger
}

func NewService(backend Backend, publisher events.Publisher, logger observability.Logger) *Service {
	return &Service{backend: backend, publisher: publisher, logger: logger}
}

func (s *Service) Create(ctx context.Context, sess session.Session, p domain.Passenger) (domain.Passenger, error) {
	created, err := s.backend.CreatePassenger(ctx, sess, p)
	if err != nil {
		return domain.Passenger{}, errors.Mark(errors.Wrap(err, "create passenger"), ErrCreationFailed)
	}

	e := events.New(events.PassengerCreated, sess.TenantID, map[string]interface{}{
		"passenger_id": created.ID,
		"email":        created.Email,
	})
	if err := s.publisher.Publish(ctx, e); err != nil {
		observability.EventPublishFailures.Inc()
		observability.LoggerFrom(ctx, s.logger).WithError(err).Warn("failed to publish passenger event")
	}
	return created, nil
}
