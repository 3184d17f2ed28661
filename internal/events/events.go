// Package events defines the domain events the BFF emits after successful
// backend writes. They feed the audit trail.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	BookingCreated   = "booking.created"
	BookingFailed    = "booking.failed"
	PassengerCreated = "passenger.created"
	UserRegistered   = "user.registered"
)

type Event struct {
	ID         uuid.UUID              `json:"id"`
	Type       string                 `json:"type"`
	TenantID   string                 `json:"tenant_id"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

func New(eventType, tenantID string, data map[string]interface{}) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		TenantID:   tenantID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Discard drops every event. Used when no broker is configured.
type Discard struct{}

func (Discard) Publish(context.Context, Event) error { return nil }
