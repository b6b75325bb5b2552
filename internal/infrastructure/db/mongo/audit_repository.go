package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/apiauth/account-service/internal/core/domain"
)

const auditCollection = "audit_events"

// MongoAuditRepository persists audit events. The collection is append-only.
type MongoAuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *MongoAuditRepository {
	return &MongoAuditRepository{coll: db.Collection(auditCollection)}
}

type mongoAuditEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Action    string             `bson:"action"`
	Outcome   string             `bson:"outcome"`
	Actor     string             `bson:"actor,omitempty"`
	RemoteIP  string             `bson:"remote_ip,omitempty"`
	Timestamp int64              `bson:"timestamp"`
}

func (r *MongoAuditRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	doc := mongoAuditEvent{
		Username:  event.Username,
		Action:    event.Action,
		Outcome:   event.Outcome,
		Actor:     event.Actor,
		RemoteIP:  event.RemoteIP,
		Timestamp: event.Timestamp.Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
