// Package audit turns BFF domain events into audit log entries.
package audit

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robertarktes/airline-booking-bff/internal/events"
	"github.com/robertarktes/airline-booking-bff/internal/observability"
)

type Recorder interface {
	Record(ctx context.Context, e events.Event) error
}

// Acknowledger is the part of amqp.Delivery the worker settles messages with.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type Worker struct {
	recorder Recorder
	logger   observability.Logger
}

func NewWorker(recorder Recorder, logger observability.Logger) *Worker {
	return &Worker{recorder: recorder, logger: logger}
}

// Run handles deliveries until ctx is done or the channel closes.
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				w.logger.Warn("delivery channel closed")
				return
			}
			w.Handle(ctx, d.Body, &d)
		}
	}
}

// Handle records one message. Malformed messages are dropped, storage
// failures are requeued.
func (w *Worker) Handle(ctx context.Context, body []byte, ack Acknowledger) {
	e, err := decode(body)
	if err != nil {
		w.logger.WithError(err).Error("dropping malformed event")
		ack.Nack(false, false)
		return
	}

	logger := w.logger.WithField("event_id", e.ID.String()).WithField("event", e.Type)
	if err := w.recorder.Record(ctx, e); err != nil {
		logger.WithError(err).Error("failed to record event, requeueing")
		ack.Nack(false, true)
		return
	}
	logger.Debug("event recorded")
	ack.Ack(false)
}

func decode(body []byte) (events.Event, error) {
	var e events.Event
	if err := json.Unmarshal(body, &e); err != nil {
		return events.Event{}, errors.Wrap(err, "decode event")
	}
	if e.Type == "" {
		return events.Event{}, errors.New("event has no type")
	}
	return e, nil
}
