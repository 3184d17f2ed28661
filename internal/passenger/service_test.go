package passenger_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/airline-booking-bff/internal/backend"
	"github.com/robertarktes/airline-booking-bff/internal/domain"
	"github.com/robertarktes/airline-booking-bff/internal/events"
	"github.com/robertarktes/airline-booking-bff/internal/observability"
	"github.com/robertarktes/airline-booking-bff/internal/passenger"
	"github.com/robertarktes/airline-booking-bff/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	got  domain.Passenger
	sess session.Session
	err  error
}

func (s *stubBackend) CreatePassenger(_ context.Context, sess session.Session, p domain.Passenger) (domain.Passenger, error) {
	s.got, s.sess = p, sess
	if s.err != nil {
		return domain.Passenger{}, s.err
	}
	p.ID = 31
	return p, nil
}

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(context.Context, events.Event) error {
	f.calls++
	return errors.New("broker down")
}

func TestCreate(t *testing.T) {
	be := &stubBackend{}
	pub := &failingPublisher{}
	svc := passenger.NewService(be, pub, observability.NewLogger("error"))

	p := domain.Passenger{FirstName: "Aru", LastName: "Sadykova", Email: "aru@example.com"}
	created, err := svc.Create(context.Background(), session.Anonymous("airline1"), p)

	require.NoError(t, err, "publish failures do not fail the creation")
	assert.Equal(t, int64(31), created.ID)
	assert.Equal(t, "airline1", be.sess.TenantID)
	assert.Equal(t, 1, pub.calls)
}

func TestCreate_GenericError(t *testing.T) {
	cause := &backend.APIError{StatusCode: http.StatusConflict, Message: "passport already registered"}
	svc := passenger.NewService(&stubBackend{err: cause}, events.Discard{}, observability.NewLogger("error"))

	_, err := svc.Create(context.Background(), session.Anonymous("airline1"), domain.Passenger{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, passenger.ErrCreationFailed))

	status, ok := backend.StatusCode(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, status)
}
