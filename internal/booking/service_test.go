package booking_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/robertarktes/airline-booking-bff/internal/booking"
	"github.com/robertarktes/airline-booking-bff/internal/domain"
	"github.com/robertarktes/airline-booking-bff/internal/events"
	"github.com/robertarktes/airline-booking-bff/internal/observability"
	"github.com/robertarktes/airline-booking-bff/internal/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu       sync.Mutex
	attempts map[uuid.UUID]booking.Attempt
}

func newMemStore() *memStore {
	return &memStore{attempts: map[uuid.UUID]booking.Attempt{}}
}

func (m *memStore) Create(_ context.Context, a booking.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[a.ID] = clone(a)
	return nil
}

func (m *memStore) Get(_ context.Context, id uuid.UUID) (booking.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return booking.Attempt{}, domain.ErrNotFound
	}
	return clone(a), nil
}

func (m *memStore) Update(_ context.Context, id uuid.UUID, fn func(a *booking.Attempt) error) (booking.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return booking.Attempt{}, domain.ErrNotFound
	}
	a = clone(a)
	if err := fn(&a); err != nil {
		return booking.Attempt{}, err
	}
	a.Version++
	m.attempts[id] = clone(a)
	return a, nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attempts, id)
	return nil
}

// clone round-trips through JSON, the same way the Redis store persists attempts.
func clone(a booking.Attempt) booking.Attempt {
	data, _ := json.Marshal(a)
	var out booking.Attempt
	json.Unmarshal(data, &out)
	return out
}

type fakeBackend struct {
	flight     domain.Flight
	seats      []domain.Seat
	seatsErr   error
	bookingErr error
	bookings   []domain.BookingRequest
	// beforeSeats runs before seats are returned, to simulate navigation
	// while the request is in flight.
	beforeSeats func()
	// beforeBooking runs while the booking request is in flight.
	beforeBooking func()
}

func (f *fakeBackend) Flight(context.Context, session.Session, int64) (domain.Flight, error) {
	return f.flight, nil
}

func (f *fakeBackend) AvailableSeats(context.Context, session.Session, int64) ([]domain.Seat, error) {
	if f.beforeSeats != nil {
		f.beforeSeats()
	}
	return f.seats, f.seatsErr
}

func (f *fakeBackend) CreateBooking(_ context.Context, _ session.Session, req domain.BookingRequest) (domain.BookingConfirmation, error) {
	if f.beforeBooking != nil {
		f.beforeBooking()
	}
	if f.bookingErr != nil {
		return domain.BookingConfirmation{}, f.bookingErr
	}
	f.bookings = append(f.bookings, req)
	return domain.BookingConfirmation{ID: 77, Status: "CONFIRMED"}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

var sess = session.Session{ID: "s1", Token: "abc", TenantID: "airline1"}

func newFixture() (*booking.Service, *memStore, *fakeBackend, *recordingPublisher) {
	store := newMemStore()
	be := &fakeBackend{
		flight: domain.Flight{ID: 5, FlightNumber: "KC101", Price: decimal.NewFromInt(100)},
		seats: []domain.Seat{
			{ID: 1, SeatNumber: "12A", Available: true},
			{ID: 2, SeatNumber: "12B", Available: true},
			{SeatNumber: "broken"},
			{ID: 3, SeatNumber: "12C", Available: true},
		},
	}
	pub := &recordingPublisher{}
	svc := booking.NewService(store, be, pub, observability.NewLogger("error"))
	return svc, store, be, pub
}

func TestStart_LoadsAndFiltersSeats(t *testing.T) {
	svc, _, _, _ := newFixture()

	a, err := svc.Start(context.Background(), sess, 5, 2)
	require.NoError(t, err)

	assert.Equal(t, booking.StateSeatsLoaded, a.State)
	assert.Len(t, a.Seats, 3)
	assert.False(t, a.NoSeats())
	assert.Equal(t, 2, a.Selection.Max)
	require.NotNil(t, a.Flight)
	assert.Equal(t, "KC101", a.Flight.FlightNumber)
}

func TestStart_NoSeats(t *testing.T) {
	svc, _, be, _ := newFixture()
	be.seats = []domain.Seat{{}, {}}

	a, err := svc.Start(context.Background(), sess, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, booking.StateSeatsLoaded, a.State)
	assert.True(t, a.NoSeats())
}

func TestStart_LoadFailure(t *testing.T) {
	svc, _, be, _ := newFixture()
	be.seatsErr = errors.New("backend down")

	a, err := svc.Start(context.Background(), sess, 5, 1)
	require.Error(t, err)
	assert.Equal(t, booking.StateFailed, a.State)
	assert.Contains(t, a.LastError, "backend down")

	_, _, err = svc.Toggle(context.Background(), sess, a.ID, 1)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

func TestStart_LateResponseAfterAbandonIsDropped(t *testing.T) {
	svc, store, be, _ := newFixture()
	be.beforeSeats = abandonAll(store)

	_, err := svc.Start(context.Background(), sess, 5, 1)
	assert.True(t, errors.Is(err, booking.ErrStale))
	assert.Empty(t, store.attempts)
}

func TestToggle_CapacityGuard(t *testing.T) {
	svc, _, _, _ := newFixture()
	ctx := context.Background()
	a, err := svc.Start(ctx, sess, 5, 2)
	require.NoError(t, err)

	_, res, err := svc.Toggle(ctx, sess, a.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.ToggleAdded, res)

	_, res, err = svc.Toggle(ctx, sess, a.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.ToggleAdded, res)

	got, res, err := svc.Toggle(ctx, sess, a.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.ToggleRejected, res)
	assert.Equal(t, []int64{1, 2}, got.Selection.IDs())

	got, res, err = svc.Toggle(ctx, sess, a.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.ToggleRemoved, res)
	assert.Equal(t, []int64{2}, got.Selection.IDs())
}

func TestToggle_Errors(t *testing.T) {
	svc, _, _, _ := newFixture()
	ctx := context.Background()
	a, err := svc.Start(ctx, sess, 5, 2)
	require.NoError(t, err)

	_, _, err = svc.Toggle(ctx, sess, a.ID, 99)
	assert.True(t, errors.Is(err, domain.ErrUnknownSeat))

	_, _, err = svc.Toggle(ctx, session.Session{ID: sess.ID, TenantID: "other-airline"}, a.ID, 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, _, err = svc.Toggle(ctx, sess, uuid.New(), 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSubmit_Success(t *testing.T) {
	svc, store, be, pub := newFixture()
	ctx := context.Background()
	a, err := svc.Start(ctx, sess, 5, 2)
	require.NoError(t, err)
	_, _, err = svc.Toggle(ctx, sess, a.ID, 1)
	require.NoError(t, err)
	_, _, err = svc.Toggle(ctx, sess, a.ID, 3)
	require.NoError(t, err)

	conf, err := svc.Submit(ctx, sess, a.ID, domain.Contact{FullName: "Aru Sadykova", Email: "aru@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(77), conf.ID)

	require.Len(t, be.bookings, 1)
	sent := be.bookings[0]
	assert.Equal(t, int64(5), sent.FlightID)
	assert.Equal(t, []int64{1, 3}, sent.Seats)
	assert.Equal(t, json.Number("200"), sent.TotalPrice)
	assert.Equal(t, "Aru Sadykova", sent.FullName)

	_, err = store.Get(ctx, a.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "success clears the attempt")
	assert.Equal(t, []string{events.BookingCreated}, pub.types())
}

func TestSubmit_FailureKeepsSelectionForRetry(t *testing.T) {
	svc, _, be, pub := newFixture()
	ctx := context.Background()
	a, err := svc.Start(ctx, sess, 5, 1)
	require.NoError(t, err)
	_, _, err = svc.Toggle(ctx, sess, a.ID, 2)
	require.NoError(t, err)

	be.bookingErr = errors.New("seat already taken")
	_, err = svc.Submit(ctx, sess, a.ID, domain.Contact{FullName: "Aru", Email: "aru@example.com"})
	require.Error(t, err)

	failed, err := svc.Get(ctx, sess, a.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StateFailed, failed.State)
	assert.Equal(t, []int64{2}, failed.Selection.IDs())
	assert.Contains(t, failed.LastError, "seat already taken")

	be.bookingErr = nil
	_, err = svc.Submit(ctx, sess, a.ID, domain.Contact{FullName: "Aru", Email: "aru@example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{events.BookingFailed, events.BookingCreated}, pub.types())
}

func TestSubmit_RequiresSelection(t *testing.T) {
	svc, _, be, _ := newFixture()
	ctx := context.Background()
	a, err := svc.Start(ctx, sess, 5, 1)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, sess, a.ID, domain.Contact{})
	assert.True(t, errors.Is(err, domain.ErrNoSelection))
	assert.Empty(t, be.bookings)
}

func TestAbandon(t *testing.T) {
	svc, _, _, _ := newFixture()
	ctx := context.Background()
	a, err := svc.Start(ctx, sess, 5, 1)
	require.NoError(t, err)

	assert.True(t, errors.Is(svc.Abandon(ctx, session.Session{ID: sess.ID, TenantID: "other-airline"}, a.ID), domain.ErrNotFound))
	require.NoError(t, svc.Abandon(ctx, sess, a.ID))

	_, err = svc.Get(ctx, sess, a.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestStart_RequiresSession(t *testing.T) {
	svc, store, _, _ := newFixture()

	_, err := svc.Start(context.Background(), session.Anonymous(sess.TenantID), 5, 1)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Empty(t, store.attempts)
}

func TestAttempt_OnlyOwnerMayUseIt(t *testing.T) {
	svc, _, be, _ := newFixture()
	ctx := context.Background()
	a, err := svc.Start(ctx, sess, 5, 1)
	require.NoError(t, err)

	strangers := []session.Session{
		session.Anonymous(sess.TenantID),
		{ID: "s2", Token: "other", TenantID: sess.TenantID},
	}
	for _, other := range strangers {
		_, err = svc.Get(ctx, other, a.ID)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		_, _, err = svc.Toggle(ctx, other, a.ID, 1)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		_, err = svc.Submit(ctx, other, a.ID, domain.Contact{FullName: "Eve", Email: "eve@example.com"})
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.True(t, errors.Is(svc.Abandon(ctx, other, a.ID), domain.ErrNotFound))
	}
	assert.Empty(t, be.bookings)

	got, err := svc.Get(ctx, sess, a.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StateSeatsLoaded, got.State)
	assert.Empty(t, got.Selection.Seats)
}

func abandonAll(store *memStore) func() {
	return func() {
		store.mu.Lock()
		defer store.mu.Unlock()
		for id := range store.attempts {
			delete(store.attempts, id)
		}
	}
}

func TestSubmit_LateFailureAfterAbandonIsDropped(t *testing.T) {
	svc, store, be, pub := newFixture()
	ctx := context.Background()
	a, err := svc.Start(ctx, sess, 5, 1)
	require.NoError(t, err)
	_, _, err = svc.Toggle(ctx, sess, a.ID, 1)
	require.NoError(t, err)

	be.bookingErr = errors.New("seat already taken")
	be.beforeBooking = abandonAll(store)

	_, err = svc.Submit(ctx, sess, a.ID, domain.Contact{FullName: "Aru", Email: "aru@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seat already taken")
	assert.Empty(t, store.attempts, "a late failure must not bring the attempt back")
	assert.Equal(t, []string{events.BookingFailed}, pub.types())
}

func TestSubmit_LateSuccessAfterAbandon(t *testing.T) {
	svc, store, be, pub := newFixture()
	ctx := context.Background()
	a, err := svc.Start(ctx, sess, 5, 1)
	require.NoError(t, err)
	_, _, err = svc.Toggle(ctx, sess, a.ID, 1)
	require.NoError(t, err)

	be.beforeBooking = abandonAll(store)

	conf, err := svc.Submit(ctx, sess, a.ID, domain.Contact{FullName: "Aru", Email: "aru@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(77), conf.ID)
	assert.Empty(t, store.attempts)
	assert.Equal(t, []string{events.BookingCreated}, pub.types())
}
