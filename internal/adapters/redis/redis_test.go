package redis_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	redisclient "github.com/redis/go-redis/v9"
	redisadapter "github.com/robertarktes/airline-booking-bff/internal/adapters/redis"
	"github.com/robertarktes/airline-booking-bff/internal/booking"
	"github.com/robertarktes/airline-booking-bff/internal/domain"
	"github.com/robertarktes/airline-booking-bff/internal/session"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redisclient.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("requires docker")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	client := redisclient.NewClient(&redisclient.Options{Addr: endpoint})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestSessionStore(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	store := redisadapter.NewSessionStore(client, time.Hour)

	created, err := store.Create(ctx, session.Session{Token: "abc", TenantID: "airline1"})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("expected generated session id")
	}

	if err := store.SetLanguage(ctx, created.ID, "kk"); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Token != "abc" || got.TenantID != "airline1" || got.Language != "kk" {
		t.Errorf("unexpected session %+v", got)
	}

	ttl, err := client.TTL(ctx, "session:"+created.ID).Result()
	if err != nil {
		t.Fatal(err)
	}
	if ttl <= 0 {
		t.Errorf("expected session ttl, got %v", ttl)
	}

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, created.ID); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}
	if err := store.SetLanguage(ctx, created.ID, "en"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected not found for deleted session, got %v", err)
	}
}

func TestAttemptStore_UpdateSerializesWriters(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	store := redisadapter.NewAttemptStore(client, time.Hour)

	a := booking.Attempt{
		ID:        uuid.New(),
		TenantID:  "airline1",
		State:     booking.StateSeatsLoaded,
		Seats:     []domain.Seat{},
		Selection: domain.NewSelection(50),
		Version:   1,
	}
	if err := store.Create(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := store.Create(ctx, a); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected conflict on duplicate create, got %v", err)
	}

	var wg sync.WaitGroup
	for i := 1; i <= 4; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := store.Update(ctx, a.ID, func(cur *booking.Attempt) error {
				cur.Selection.Toggle(domain.Seat{ID: id})
				return nil
			})
			if err != nil && !errors.Is(err, domain.ErrConflict) {
				t.Error(err)
			}
		}(int64(i))
	}
	wg.Wait()

	got, err := store.Get(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if int64(got.Selection.Len()) != got.Version-1 {
		t.Errorf("lost update: %d seats after %d versions", got.Selection.Len(), got.Version-1)
	}

	_, err = store.Update(ctx, a.ID, func(cur *booking.Attempt) error {
		cur.State = booking.StateFailed
		return domain.ErrInvalidState
	})
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("expected fn error to propagate, got %v", err)
	}
	unchanged, _ := store.Get(ctx, a.ID)
	if unchanged.State != booking.StateSeatsLoaded || unchanged.Version != got.Version {
		t.Errorf("failed update must not persist, got %+v", unchanged)
	}

	if err := store.Delete(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Update(ctx, a.ID, func(*booking.Attempt) error { return nil }); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestIdempotencyAndRateWindow(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()

	idemp := redisadapter.NewIdempotency(client)
	if got, err := idemp.Get(ctx, "missing"); err != nil || got != nil {
		t.Fatalf("expected empty result, got %v %v", got, err)
	}
	if err := idemp.Set(ctx, "k1", redisadapter.IdempResponse{Status: 201, Result: []byte(`{"id":1}`)}, time.Minute); err != nil {
		t.Fatal(err)
	}
	got, err := idemp.Get(ctx, "k1")
	if err != nil || got == nil || got.Status != 201 || string(got.Result) != `{"id":1}` {
		t.Fatalf("unexpected replay %+v %v", got, err)
	}

	cache := redisadapter.NewCache(client)
	for i := int64(1); i <= 3; i++ {
		n, err := cache.IncrWindow(ctx, "rl:test", time.Minute)
		if err != nil {
			t.Fatal(err)
		}
		if n != i {
			t.Errorf("expected counter %d, got %d", i, n)
		}
	}
}
