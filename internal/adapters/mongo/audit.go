package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robertarktes/airline-booking-bff/internal/events"
	"github.com/robertarktes/airline-booking-bff/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditCollection holds one document per recorded event, keyed by event id.
const AuditCollection = "audit_logs"

type AuditLogger struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditLogger(db *mongo.Database, logger observability.Logger) *AuditLogger {
	return &AuditLogger{
		coll:   db.Collection(AuditCollection),
		logger: logger,
	}
}

// EnsureIndexes creates the per-tenant lookup index.
func (a *AuditLogger) EnsureIndexes(ctx context.Context) error {
	_, err := a.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "occurred_at", Value: -1}},
	})
	return err
}

// Record stores e keyed by the event id, so redelivered events are written once.
func (a *AuditLogger) Record(ctx context.Context, e events.Event) error {
	_, err := a.coll.UpdateOne(ctx,
		bson.M{"_id": eventIDOrNew(e.ID).String()},
		bson.M{"$setOnInsert": bson.M{
			"action":      e.Type,
			"tenant_id":   e.TenantID,
			"occurred_at": e.OccurredAt,
			"recorded_at": time.Now().UTC(),
			"data":        bson.M(e.Data),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		a.logger.WithError(err).Error("failed to insert audit log")
		return err
	}
	return nil
}

func eventIDOrNew(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}
