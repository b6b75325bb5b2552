package ports

import (
	"context"
	"time"

	"github.com/apiauth/account-service/internal/core/domain"
)

// AuditEventInput is a single audit record waiting to be persisted.
type AuditEventInput struct {
	Username  string
	Action    string
	Outcome   string
	Actor     string
	RemoteIP  string
	Timestamp time.Time
}

// AuditRepository persists audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}

// AuditService processes audit events dequeued by the dispatcher workers.
type AuditService interface {
	Record(ctx context.Context, in AuditEventInput) error
}
